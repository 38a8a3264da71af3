package response

import (
	"net/http"

	"saasadmin/pkg/errors"
	"saasadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse 统一错误返回格式
type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   interface{} `json:"error,omitempty"`
}

// FieldErrors 校验失败详情
type FieldErrors struct {
	Fields []string `json:"fields"`
}

// ========== 基础返回方法 ==========

// Success 成功返回，直接输出资源本身
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 删除成功
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SuccessWithMessage 仅返回提示消息
func SuccessWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Error 通用错误返回
func Error(c *gin.Context, code int, message string, detail interface{}) {
	c.JSON(code, ErrorResponse{
		Code:    code,
		Message: message,
		Error:   detail,
	})
}

// Fail 根据业务错误类型返回对应状态码，非业务错误按500处理并记录日志
func Fail(c *gin.Context, err error) {
	appErr := errors.As(err)
	if appErr == nil || appErr.Kind == errors.KindInternal {
		logger.GetLogger().WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
		}).WithError(err).Error("request failed")
		ServerError(c, "服务器内部错误")
		return
	}

	var detail interface{}
	if len(appErr.Fields) > 0 {
		detail = FieldErrors{Fields: appErr.Fields}
	}
	Error(c, appErr.Code(), appErr.Message, detail)
}

// ========== HTTP错误快捷方法 ==========

func BadRequest(c *gin.Context, message string) {
	Error(c, errors.CodeInvalidParam, message, nil)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, errors.CodeUnauthorized, message, nil)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, errors.CodeForbidden, message, nil)
}

func NotFound(c *gin.Context, message string) {
	Error(c, errors.CodeNotFound, message, nil)
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, errors.CodeTooManyRequests, message, nil)
}

func ServerError(c *gin.Context, message string) {
	Error(c, errors.CodeServerError, message, nil)
}
