package services

import (
	"context"
	stderrors "errors"

	"saasadmin/internal/models"
	"saasadmin/pkg/errors"

	"gorm.io/gorm"
)

// ActivityEntry 一次变更对应的审计内容
type ActivityEntry struct {
	ActorID     uint
	TenantID    *uint
	EntityType  string
	EntityID    uint
	Verb        string
	Description string
	Details     map[string]interface{}
}

// ActivityRecorder 审计记录器
// Record 在变更所在的事务中写入；Publish 在提交之后调用，不影响请求结果
type ActivityRecorder interface {
	Record(tx *gorm.DB, entry ActivityEntry) (*models.Activity, error)
	Publish(activity *models.Activity)
}

// withAudit 在同一事务中执行变更并写审计记录，审计失败时整体回滚
func withAudit(ctx context.Context, db *gorm.DB, recorder ActivityRecorder, fn func(tx *gorm.DB) (ActivityEntry, error)) error {
	var activity *models.Activity
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := fn(tx)
		if err != nil {
			return err
		}
		activity, err = recorder.Record(tx, entry)
		if err != nil {
			return errors.Internal("记录操作日志失败", err)
		}
		return nil
	})
	if err != nil {
		return translateDBError(err)
	}

	recorder.Publish(activity)
	return nil
}

// translateDBError 把数据库错误转换为业务错误，已是业务错误的原样返回
func translateDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.As(err) != nil {
		return err
	}
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.NotFound("记录不存在")
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Conflict("记录已存在")
	case stderrors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Conflict("存在关联数据，无法操作")
	default:
		return errors.Internal("数据库操作失败", err)
	}
}

// notFoundOr 查询单条记录时把 ErrRecordNotFound 转成带具体提示的 NotFound
func notFoundOr(err error, message string) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound(message)
	}
	return translateDBError(err)
}

// exists 判断满足条件的记录是否存在
func exists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func tenantRef(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
