package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig `mapstructure:"jwt"`
	Session   SessionConfig
	Auth      AuthConfig
	Log       LogConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Seed      SeedConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// 受信任的反向代理（IP或CIDR），为空时忽略 X-Forwarded-For，按连接地址识别客户端
	TrustedProxies []string
}

type DatabaseConfig struct {
	Driver   string // postgres 或 sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite 数据文件（DSN）
}

type JWTConfig struct {
	SecretKey     string `mapstructure:"secret_key"`     // JWT密钥
	TokenDuration string `mapstructure:"token_duration"` // 令牌有效期，如 "24h"
}

type SessionConfig struct {
	CookieName  string // 会话Cookie名称
	CookieHTTPS bool   // Cookie 仅通过HTTPS发送
	CleanupSpec string // 过期会话清理的cron表达式
}

type AuthConfig struct {
	AllowRegistration bool // 是否开放自助注册
}

type LogConfig struct {
	Level      string
	FilePath   string
	MaxSize    int    // MB
	MaxBackups int    // 保留的备份文件数
	MaxAge     int    // 保留天数
	Compress   bool   // 是否压缩
	Format     string // json 或 text
}

type RedisConfig struct {
	Host     string // Redis主机地址
	Port     int    // Redis端口
	Password string // Redis密码
	DB       int    // Redis数据库编号
	Prefix   string // 键前缀
}

type RateLimitConfig struct {
	LoginAttempts int           // 窗口内允许的登录次数
	LoginWindow   time.Duration // 统计窗口
}

type CORSConfig struct {
	AllowOrigins     []string // 允许的源
	AllowMethods     []string // 允许的HTTP方法
	AllowHeaders     []string // 允许的请求头
	ExposeHeaders    []string // 暴露的响应头
	AllowCredentials bool     // 是否允许携带凭证
	MaxAge           int      // 预检请求缓存时间（小时）
}

// SeedConfig 初始管理员账号
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// 获取环境变量，如果不存在则使用默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// 获取环境变量转换为int
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// 获取环境变量转换为bool
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true"
	}
	return defaultValue
}

// 获取环境变量转换为时长，格式同 time.ParseDuration
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// 获取环境变量转换为字符串数组（逗号分隔）
func getEnvAsStringArray(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// 处理逗号分隔的字符串，去除空格
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return defaultValue
}

// LoadConfig 从环境变量（以及可选的 .env 文件）加载配置
func LoadConfig() (*Config, error) {
	// .env 不存在时直接使用环境变量
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Mode:           getEnv("SERVER_MODE", "debug"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			TrustedProxies: getEnvAsStringArray("SERVER_TRUSTED_PROXIES", nil),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "saas_admin"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "data.db"),
		},
		JWT: JWTConfig{
			SecretKey:     getEnv("JWT_SECRET_KEY", "default-secret-change-me"),
			TokenDuration: getEnv("JWT_TOKEN_DURATION", "24h"),
		},
		Session: SessionConfig{
			CookieName:  getEnv("SESSION_COOKIE_NAME", "saas_session"),
			CookieHTTPS: getEnvAsBool("SESSION_COOKIE_HTTPS", false),
			CleanupSpec: getEnv("SESSION_CLEANUP_SPEC", "@every 15m"),
		},
		Auth: AuthConfig{
			AllowRegistration: getEnvAsBool("AUTH_ALLOW_REGISTRATION", true),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			FilePath:   getEnv("LOG_FILE_PATH", "logs/app.log"),
			MaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 7),
			MaxAge:     getEnvAsInt("LOG_MAX_AGE", 30),
			Compress:   getEnvAsBool("LOG_COMPRESS", true),
			Format:     getEnv("LOG_FORMAT", "json"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "saas"),
		},
		RateLimit: RateLimitConfig{
			LoginAttempts: getEnvAsInt("RATE_LIMIT_LOGIN_ATTEMPTS", 10),
			LoginWindow:   getEnvAsDuration("RATE_LIMIT_LOGIN_WINDOW", time.Minute),
		},
		CORS: CORSConfig{
			AllowOrigins:     getEnvAsStringArray("CORS_ALLOW_ORIGINS", []string{"*"}),
			AllowMethods:     getEnvAsStringArray("CORS_ALLOW_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
			AllowHeaders:     getEnvAsStringArray("CORS_ALLOW_HEADERS", []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"}),
			ExposeHeaders:    getEnvAsStringArray("CORS_EXPOSE_HEADERS", []string{"Content-Length", "Content-Type", "X-Request-ID"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 12),
		},
		Seed: SeedConfig{
			AdminUsername: getEnv("SEED_ADMIN_USERNAME", "admin"),
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		},
	}

	return config, nil
}

// TokenTTL 解析JWT有效期，格式错误时回退为24小时
func (c JWTConfig) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.TokenDuration)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}
