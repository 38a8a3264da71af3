package services

import (
	"context"
	"fmt"
	"strings"

	"saasadmin/internal/models"
	"saasadmin/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlanService struct {
	db       *gorm.DB
	recorder ActivityRecorder
}

func NewPlanService(db *gorm.DB, recorder ActivityRecorder) *PlanService {
	return &PlanService{
		db:       db,
		recorder: recorder,
	}
}

// List 套餐列表，按价格升序
func (s *PlanService) List(ctx context.Context, status string) ([]*models.Plan, error) {
	plans := make([]*models.Plan, 0)

	query := s.db.WithContext(ctx).Model(&models.Plan{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("price ASC").Order("id ASC").Find(&plans).Error; err != nil {
		return nil, translateDBError(err)
	}
	return plans, nil
}

func (s *PlanService) GetByID(ctx context.Context, id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := s.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, notFoundOr(err, "套餐不存在")
	}
	return &plan, nil
}

func (s *PlanService) Create(ctx context.Context, actor *models.User, req CreatePlanRequest) (*models.Plan, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if req.Price == nil {
		return nil, errors.Validation("价格不能为空", "price")
	}

	plan := &models.Plan{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		Currency:    strings.ToUpper(req.Currency),
		Interval:    req.Interval,
		Status:      req.Status,
		Features:    datatypes.JSONSlice[string](normalizeFeatures(req.Features)),
	}
	if plan.Currency == "" {
		plan.Currency = "USD"
	}
	if plan.Interval == "" {
		plan.Interval = models.PlanIntervalMonth
	}
	if plan.Status == "" {
		plan.Status = models.PlanStatusActive
	}

	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := s.checkUnique(tx, 0, plan.Name); err != nil {
			return ActivityEntry{}, err
		}
		if err := tx.Create(plan).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			EntityType:  models.EntityPlan,
			EntityID:    plan.ID,
			Verb:        models.VerbCreated,
			Description: fmt.Sprintf("创建套餐 %s", plan.Name),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) Update(ctx context.Context, actor *models.User, id uint, req UpdatePlanRequest) (*models.Plan, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	var plan models.Plan
	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := tx.First(&plan, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "套餐不存在")
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name != plan.Name {
				if err := s.checkUnique(tx, plan.ID, name); err != nil {
					return ActivityEntry{}, err
				}
				plan.Name = name
			}
		}
		if req.Description != nil {
			plan.Description = *req.Description
		}
		if req.Price != nil {
			plan.Price = *req.Price
		}
		if req.Currency != nil {
			plan.Currency = strings.ToUpper(*req.Currency)
		}
		if req.Interval != nil {
			plan.Interval = *req.Interval
		}
		if req.Status != nil {
			plan.Status = *req.Status
		}
		if req.Features != nil {
			plan.Features = datatypes.JSONSlice[string](normalizeFeatures(*req.Features))
		}

		if err := tx.Save(&plan).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			EntityType:  models.EntityPlan,
			EntityID:    plan.ID,
			Verb:        models.VerbUpdated,
			Description: fmt.Sprintf("更新套餐 %s", plan.Name),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Delete 删除套餐，订阅对套餐的引用只在写入时校验，这里不检查
func (s *PlanService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}

	return withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		var plan models.Plan
		if err := tx.First(&plan, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "套餐不存在")
		}
		if err := tx.Delete(&plan).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			EntityType:  models.EntityPlan,
			EntityID:    plan.ID,
			Verb:        models.VerbDeleted,
			Description: fmt.Sprintf("删除套餐 %s", plan.Name),
		}, nil
	})
}

func (s *PlanService) checkUnique(tx *gorm.DB, excludeID uint, name string) error {
	taken, err := exists(tx, &models.Plan{}, "name = ? AND id <> ?", name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.Conflict("套餐名称已存在")
	}
	return nil
}

// normalizeFeatures 去掉首尾空白和重复项，保持顺序
func normalizeFeatures(features []string) []string {
	result := make([]string, 0, len(features))
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		result = append(result, f)
	}
	return result
}
