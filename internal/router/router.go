package router

import (
	"saasadmin/internal/handlers"
	"saasadmin/internal/middleware"
	"saasadmin/internal/realtime"
	"saasadmin/internal/services"
	"saasadmin/pkg/config"
	"saasadmin/pkg/jwt"
	"saasadmin/pkg/logger"
	"saasadmin/pkg/metrics"
	"saasadmin/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Dependencies 路由依赖，Redis / Limiter / Broadcaster 可为空
type Dependencies struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
	JWT         *jwt.JWTManager
	Hub         *realtime.Hub
	Broadcaster services.Broadcaster // 为空时直接推送到本地 Hub
	Limiter     *ratelimit.Limiter
}

// SetupRouter 设置路由
func SetupRouter(deps Dependencies) *gin.Engine {
	handlers.SetupValidator()
	metrics.Register()

	if deps.Hub == nil {
		deps.Hub = realtime.NewHub()
	}

	router := gin.New()
	// 登录限流按客户端IP计数，只有受信任的代理才能通过 X-Forwarded-For 指定客户端IP
	if err := router.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		logger.GetLogger().WithError(err).Warn("Invalid trusted proxies, ignoring forwarded headers")
		_ = router.SetTrustedProxies(nil)
	}

	// 中间件
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())
	router.Use(metrics.Middleware())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS(deps.Config.CORS))

	// 注册路由
	registerRoutes(router, deps)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	var broadcaster services.Broadcaster = deps.Hub
	if deps.Broadcaster != nil {
		broadcaster = deps.Broadcaster
	}

	// 服务层
	activityService := services.NewActivityService(deps.DB, broadcaster)
	sessionService := services.NewSessionService(deps.DB, deps.JWT)
	userService := services.NewUserService(deps.DB, activityService)
	tenantService := services.NewTenantService(deps.DB, activityService)
	planService := services.NewPlanService(deps.DB, activityService)
	subscriptionService := services.NewSubscriptionService(deps.DB, activityService)
	settingService := services.NewSettingService(deps.DB, activityService)
	roleService := services.NewRoleService(deps.DB, activityService)
	permissionService := services.NewPermissionService(deps.DB, activityService)
	dashboardService := services.NewDashboardService(deps.DB)

	auth := middleware.NewAuthMiddleware(sessionService, cfg.Session.CookieName)
	systemHandler := handlers.NewSystemHandler(deps.DB, deps.Redis, deps.Hub)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", systemHandler.Health)

	// API路由组
	api := router.Group("/api")
	{
		api.GET("/health", systemHandler.Health)

		// 认证
		authHandler := handlers.NewAuthHandler(sessionService, userService, roleService, deps.Limiter, cfg.Session, cfg.Auth)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", middleware.LoginRateLimit(deps.Limiter), authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", auth.RequireSession(), authHandler.Me)
		}

		// 以下接口都需要登录
		protected := api.Group("")
		protected.Use(auth.RequireSession())

		userHandler := handlers.NewUserHandler(userService)
		users := protected.Group("/users")
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.GetByID)
			users.POST("", auth.RequireAdmin(), userHandler.Create)
			users.PATCH("/:id", userHandler.Update) // 本人或管理员，由服务层判断
			users.DELETE("/:id", auth.RequireAdmin(), userHandler.Delete)
		}

		tenantHandler := handlers.NewTenantHandler(tenantService)
		tenants := protected.Group("/tenants")
		{
			tenants.GET("", tenantHandler.List)
			tenants.GET("/:id", tenantHandler.GetByID)
			tenants.POST("", auth.RequireAdmin(), tenantHandler.Create)
			tenants.PATCH("/:id", auth.RequireAdmin(), tenantHandler.Update)
			tenants.DELETE("/:id", auth.RequireAdmin(), tenantHandler.Delete)
		}

		planHandler := handlers.NewPlanHandler(planService)
		plans := protected.Group("/plans")
		{
			plans.GET("", planHandler.List)
			plans.GET("/:id", planHandler.GetByID)
			plans.POST("", auth.RequireAdmin(), planHandler.Create)
			plans.PATCH("/:id", auth.RequireAdmin(), planHandler.Update)
			plans.DELETE("/:id", auth.RequireAdmin(), planHandler.Delete)
		}

		subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
		subscriptions := protected.Group("/subscriptions")
		{
			subscriptions.GET("", subscriptionHandler.List)
			subscriptions.GET("/:id", subscriptionHandler.GetByID)
			subscriptions.POST("", auth.RequireAdmin(), subscriptionHandler.Create)
			subscriptions.PATCH("/:id", auth.RequireAdmin(), subscriptionHandler.Update)
			subscriptions.DELETE("/:id", auth.RequireAdmin(), subscriptionHandler.Delete)
		}

		settingHandler := handlers.NewSettingHandler(settingService)
		settings := protected.Group("/settings")
		{
			settings.GET("", settingHandler.List)
			settings.GET("/:id", settingHandler.GetByID)
			settings.POST("", auth.RequireAdmin(), settingHandler.Upsert)
			settings.PATCH("/:id", auth.RequireAdmin(), settingHandler.Update)
			settings.DELETE("/:id", auth.RequireAdmin(), settingHandler.Delete)
		}

		roleHandler := handlers.NewRoleHandler(roleService)
		roles := protected.Group("/roles")
		{
			roles.GET("", roleHandler.List)
			roles.GET("/:id", roleHandler.GetByID)
			roles.POST("", auth.RequireAdmin(), roleHandler.Create)
			roles.PATCH("/:id", auth.RequireAdmin(), roleHandler.Update)
			roles.DELETE("/:id", auth.RequireAdmin(), roleHandler.Delete)
		}

		permissionHandler := handlers.NewPermissionHandler(permissionService)
		permissions := protected.Group("/permissions")
		{
			permissions.GET("", permissionHandler.List)
			permissions.GET("/:id", permissionHandler.GetByID)
			permissions.POST("", auth.RequireAdmin(), permissionHandler.Create)
			permissions.PATCH("/:id", auth.RequireAdmin(), permissionHandler.Update)
			permissions.DELETE("/:id", auth.RequireAdmin(), permissionHandler.Delete)
		}

		activityHandler := handlers.NewActivityHandler(activityService)
		wsHandler := handlers.NewWebSocketHandler(deps.Hub, cfg.CORS.AllowOrigins)
		activities := protected.Group("/activities")
		{
			activities.GET("", activityHandler.List)
			activities.GET("/stream", wsHandler.ActivityStream)
		}

		dashboardHandler := handlers.NewDashboardHandler(dashboardService)
		protected.GET("/dashboard/stats", dashboardHandler.Stats)
	}
}
