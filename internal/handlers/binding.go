package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"saasadmin/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	setupValidatorOnce sync.Once
	usernamePattern    = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// SetupValidator 配置gin的校验器：拒绝未知字段，错误字段名使用json标签
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	})
}

// bindJSON 绑定并校验请求体，失败时返回 Validation 错误
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var validationErrors validator.ValidationErrors
	if stderrors.As(err, &validationErrors) {
		fields := make([]string, 0, len(validationErrors))
		seen := make(map[string]struct{}, len(validationErrors))
		for _, fe := range validationErrors {
			name := fe.Field()
			if i := strings.IndexByte(name, '['); i > 0 {
				name = name[:i]
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			fields = append(fields, name)
		}
		return errors.Validation("参数校验失败", fields...)
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return errors.Validation("字段类型错误", typeErr.Field)
	}

	if stderrors.Is(err, io.EOF) {
		return errors.Validation("请求体不能为空")
	}

	msg := err.Error()
	if strings.HasPrefix(msg, "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
		return errors.Validation("不支持的字段: "+field, field)
	}
	return errors.Validation("请求参数格式错误")
}

// parseID 解析路径中的 :id
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.Validation("ID格式错误", "id")
	}
	return uint(id), nil
}

// parseOptionalUint 解析可选的查询参数
func parseOptionalUint(c *gin.Context, key string) (*uint, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, errors.Validation(key+"格式错误", key)
	}
	u := uint(v)
	return &u, nil
}
