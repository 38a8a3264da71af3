package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"saasadmin/internal/models"
	"saasadmin/pkg/errors"

	"gorm.io/gorm"
)

type SubscriptionService struct {
	db       *gorm.DB
	recorder ActivityRecorder
	now      func() time.Time
}

func NewSubscriptionService(db *gorm.DB, recorder ActivityRecorder) *SubscriptionService {
	return &SubscriptionService{
		db:       db,
		recorder: recorder,
		now:      time.Now,
	}
}

// List 订阅列表
func (s *SubscriptionService) List(ctx context.Context, filter SubscriptionFilter) ([]*models.Subscription, error) {
	subscriptions := make([]*models.Subscription, 0)

	query := s.db.WithContext(ctx).Model(&models.Subscription{})
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if err := query.Order("id ASC").Find(&subscriptions).Error; err != nil {
		return nil, translateDBError(err)
	}
	return subscriptions, nil
}

func (s *SubscriptionService) GetByID(ctx context.Context, id uint) (*models.Subscription, error) {
	var subscription models.Subscription
	if err := s.db.WithContext(ctx).First(&subscription, id).Error; err != nil {
		return nil, notFoundOr(err, "订阅不存在")
	}
	return &subscription, nil
}

// Create 创建订阅，租户与套餐必须存在
func (s *SubscriptionService) Create(ctx context.Context, actor *models.User, req CreateSubscriptionRequest) (*models.Subscription, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	subscription := &models.Subscription{
		TenantID:    req.TenantID,
		PlanID:      req.PlanID,
		Status:      req.Status,
		EndDate:     req.EndDate,
		RenewalDate: req.RenewalDate,
	}
	if subscription.Status == "" {
		subscription.Status = models.SubscriptionStatusActive
	}
	if req.StartDate != nil {
		subscription.StartDate = *req.StartDate
	} else {
		subscription.StartDate = s.now()
	}
	s.applyLifecycle(subscription)
	if err := validateDates(subscription); err != nil {
		return nil, err
	}

	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		plan, err := checkSubscriptionRefs(tx, subscription.TenantID, subscription.PlanID)
		if err != nil {
			return ActivityEntry{}, err
		}
		if err := tx.Create(subscription).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    &subscription.TenantID,
			EntityType:  models.EntitySubscription,
			EntityID:    subscription.ID,
			Verb:        models.VerbCreated,
			Description: fmt.Sprintf("为租户 #%d 创建订阅（套餐 %s）", subscription.TenantID, plan.Name),
			Details:     map[string]interface{}{"plan_id": plan.ID, "status": subscription.Status},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

// Update 修改订阅，状态流转不做限制
func (s *SubscriptionService) Update(ctx context.Context, actor *models.User, id uint, req UpdateSubscriptionRequest) (*models.Subscription, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	var subscription models.Subscription
	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := tx.First(&subscription, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "订阅不存在")
		}
		previousStatus := subscription.Status

		if req.TenantID != nil {
			subscription.TenantID = *req.TenantID
		}
		if req.PlanID != nil {
			subscription.PlanID = *req.PlanID
		}
		if req.Status != nil {
			subscription.Status = *req.Status
		}
		if req.StartDate != nil {
			subscription.StartDate = *req.StartDate
		}
		if req.EndDate != nil {
			subscription.EndDate = req.EndDate
		}
		if req.RenewalDate != nil {
			subscription.RenewalDate = req.RenewalDate
		}
		s.applyLifecycle(&subscription)
		if err := validateDates(&subscription); err != nil {
			return ActivityEntry{}, err
		}

		if req.TenantID != nil || req.PlanID != nil {
			if _, err := checkSubscriptionRefs(tx, subscription.TenantID, subscription.PlanID); err != nil {
				return ActivityEntry{}, err
			}
		}

		if err := tx.Save(&subscription).Error; err != nil {
			return ActivityEntry{}, err
		}

		details := map[string]interface{}{}
		if previousStatus != subscription.Status {
			details["from_status"] = previousStatus
			details["to_status"] = subscription.Status
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    &subscription.TenantID,
			EntityType:  models.EntitySubscription,
			EntityID:    subscription.ID,
			Verb:        models.VerbUpdated,
			Description: fmt.Sprintf("更新订阅 #%d", subscription.ID),
			Details:     details,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (s *SubscriptionService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}

	return withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		var subscription models.Subscription
		if err := tx.First(&subscription, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "订阅不存在")
		}
		if err := tx.Delete(&subscription).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    &subscription.TenantID,
			EntityType:  models.EntitySubscription,
			EntityID:    subscription.ID,
			Verb:        models.VerbDeleted,
			Description: fmt.Sprintf("删除订阅 #%d", subscription.ID),
		}, nil
	})
}

// applyLifecycle 取消且未指定结束时间的订阅，结束时间记为当前时间
func (s *SubscriptionService) applyLifecycle(subscription *models.Subscription) {
	if subscription.Status == models.SubscriptionStatusCanceled && subscription.EndDate == nil {
		now := s.now()
		subscription.EndDate = &now
	}
}

func validateDates(subscription *models.Subscription) error {
	if subscription.EndDate != nil && subscription.EndDate.Before(subscription.StartDate) {
		return errors.Validation("结束时间不能早于开始时间", "end_date")
	}
	return nil
}

// checkSubscriptionRefs 校验租户和套餐存在，返回套餐用于描述
func checkSubscriptionRefs(tx *gorm.DB, tenantID, planID uint) (*models.Plan, error) {
	ok, err := exists(tx, &models.Tenant{}, "id = ?", tenantID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.InvalidReference("租户不存在", "tenant_id")
	}

	var plan models.Plan
	if err := tx.First(&plan, planID).Error; err != nil {
		return nil, notFoundOrReference(err, "套餐不存在", "plan_id")
	}
	return &plan, nil
}

func notFoundOrReference(err error, message, field string) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.InvalidReference(message, field)
	}
	return translateDBError(err)
}
