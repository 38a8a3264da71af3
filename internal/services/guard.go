package services

import (
	"saasadmin/internal/models"
	"saasadmin/pkg/errors"
)

// 授权判断只看 role 字符串，不查角色矩阵，也不记录拒绝日志

// RequireSession 必须有已登录的主体
func RequireSession(principal *models.User) error {
	if principal == nil || !principal.Persisted() {
		return errors.Unauthenticated("未登录或会话已失效")
	}
	return nil
}

// RequireAdmin 主体角色必须是 admin
func RequireAdmin(principal *models.User) error {
	if err := RequireSession(principal); err != nil {
		return err
	}
	if !principal.IsAdmin() {
		return errors.Forbidden("需要管理员权限")
	}
	return nil
}

// AuthorizeUserUpdate 非管理员只能修改自己，并且不能修改特权字段
// 特权字段会被直接从请求中剔除
func AuthorizeUserUpdate(principal *models.User, targetID uint, req *UpdateUserRequest) error {
	if err := RequireSession(principal); err != nil {
		return err
	}
	if principal.IsAdmin() {
		return nil
	}
	if principal.ID != targetID {
		return errors.Forbidden("只能修改自己的账号")
	}
	req.Role = nil
	req.TenantID = nil
	req.Status = nil
	return nil
}

// AuthorizeUserDelete 仅管理员可删除用户，且不能删除自己
func AuthorizeUserDelete(principal *models.User, targetID uint) error {
	if err := RequireAdmin(principal); err != nil {
		return err
	}
	if principal.ID == targetID {
		return errors.Validation("不能删除当前登录的账号", "id")
	}
	return nil
}
