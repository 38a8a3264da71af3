package errors

import (
	stderrors "errors"
	"fmt"
)

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam    = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeServerError     = 500
)

// Kind 业务错误分类
type Kind string

const (
	KindUnauthenticated  Kind = "unauthenticated"
	KindForbidden        Kind = "forbidden"
	KindNotFound         Kind = "not_found"
	KindValidation       Kind = "validation"
	KindConflict         Kind = "conflict"
	KindInvalidReference Kind = "invalid_reference"
	KindRateLimited      Kind = "rate_limited"
	KindInternal         Kind = "internal"
)

// AppError 服务层统一错误
type AppError struct {
	Kind    Kind
	Message string
	Fields  []string // 校验失败的字段
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按 Kind 比较，便于 errors.Is(err, errors.ErrNotFound) 之类的判断
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Code 返回对应的HTTP状态码
func (e *AppError) Code() int {
	return CodeOf(e.Kind)
}

// 哨兵错误，仅用于 errors.Is 判断
var (
	ErrUnauthenticated  = &AppError{Kind: KindUnauthenticated}
	ErrForbidden        = &AppError{Kind: KindForbidden}
	ErrNotFound         = &AppError{Kind: KindNotFound}
	ErrValidation       = &AppError{Kind: KindValidation}
	ErrConflict         = &AppError{Kind: KindConflict}
	ErrInvalidReference = &AppError{Kind: KindInvalidReference}
	ErrRateLimited      = &AppError{Kind: KindRateLimited}
)

// CodeOf 错误分类到HTTP状态码的映射
func CodeOf(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return CodeUnauthorized
	case KindForbidden:
		return CodeForbidden
	case KindNotFound:
		return CodeNotFound
	case KindValidation, KindConflict, KindInvalidReference:
		return CodeInvalidParam
	case KindRateLimited:
		return CodeTooManyRequests
	default:
		return CodeServerError
	}
}

func Unauthenticated(message string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// Validation 参数校验失败，fields 为出错的字段名
func Validation(message string, fields ...string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// InvalidReference 引用的关联记录不存在
func InvalidReference(message string, fields ...string) *AppError {
	return &AppError{Kind: KindInvalidReference, Message: message, Fields: fields}
}

func RateLimited(message string) *AppError {
	return &AppError{Kind: KindRateLimited, Message: message}
}

func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// As 提取 AppError，非业务错误返回 nil
func As(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return nil
}
