package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MechanicWorks/MechanicWorks/internal/common/errs"
	"github.com/MechanicWorks/MechanicWorks/internal/mechanic"
	"gorm.io/gorm"
)

const vinMaxLen = 17

// Service 工单领域用例：客户侧按 customer_id 限定访问，
// 以及两组多对多关联的维护。
type Service struct {
	repo      *Repo
	mechanics *mechanic.Repo
}

func NewService(repo *Repo, mechanics *mechanic.Repo) *Service {
	return &Service{repo: repo, mechanics: mechanics}
}

// Create 客户创建工单；service_date 默认当前时间。
func (s *Service) Create(ctx context.Context, customerID uint, vin, description string) (*ServiceTicket, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	vin = strings.TrimSpace(vin)
	description = strings.TrimSpace(description)
	if vin == "" || description == "" {
		return nil, errs.New(errs.KindValidation, "VIN and description are required")
	}
	if len(vin) > vinMaxLen {
		return nil, errs.Validation(map[string]string{"VIN": "Longer than maximum length 17."})
	}

	t := &ServiceTicket{
		VIN:         vin,
		Description: description,
		ServiceDate: time.Now(),
		CustomerID:  customerID,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "create ticket", err)
	}
	return t, nil
}

// GetOwned 客户查看自己的工单；别人的工单返回 NotFound。
func (s *Service) GetOwned(ctx context.Context, customerID, ticketID uint) (*ServiceTicket, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	t, err := s.repo.GetScoped(ctx, ticketID, customerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.KindNotFound, "Service ticket not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "lookup ticket", err)
	}
	return t, nil
}

// Patch 工单更新白名单：只允许改 VIN 和描述。
type Patch struct {
	VIN         *string `json:"VIN"`
	Description *string `json:"description"`
}

// UpdateOwned 客户更新自己的工单。
func (s *Service) UpdateOwned(ctx context.Context, customerID, ticketID uint, p Patch) (*ServiceTicket, error) {
	t, err := s.GetOwned(ctx, customerID, ticketID)
	if err != nil {
		return nil, err
	}

	if p.VIN != nil {
		vin := strings.TrimSpace(*p.VIN)
		if vin == "" || len(vin) > vinMaxLen {
			return nil, errs.Validation(map[string]string{"VIN": "Invalid VIN."})
		}
		t.VIN = vin
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		if desc == "" {
			return nil, errs.Validation(map[string]string{"description": "Missing data for required field."})
		}
		t.Description = desc
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "update ticket", err)
	}
	return t, nil
}

// DeleteOwned 客户删除自己的工单（硬删除，连带清关联行）。
func (s *Service) DeleteOwned(ctx context.Context, customerID, ticketID uint) error {
	t, err := s.GetOwned(ctx, customerID, ticketID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, t.ID); err != nil {
		return errs.Wrap(errs.KindInternal, "delete ticket", err)
	}
	return nil
}

// ListByCustomer 客户的工单列表（含关联库存件）。
func (s *Service) ListByCustomer(ctx context.Context, customerID uint) ([]View, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	tickets, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "list tickets", err)
	}

	views := make([]View, 0, len(tickets))
	for _, t := range tickets {
		items, err := s.repo.InventoryItems(ctx, t.ID)
		if err != nil {
			return nil, errs.Wrap(errs.KindInternal, "list ticket parts", err)
		}
		if items == nil {
			items = []PartView{}
		}
		views = append(views, View{
			ID:             t.ID,
			VIN:            t.VIN,
			Description:    t.Description,
			ServiceDate:    t.ServiceDate,
			CustomerID:     t.CustomerID,
			InventoryItems: items,
		})
	}
	return views, nil
}

// CountByCustomer 客户名下工单数（删除客户前的前置检查用）。
func (s *Service) CountByCustomer(ctx context.Context, customerID uint) (int64, error) {
	if s == nil || s.repo == nil {
		return 0, fmt.Errorf("service not initialized")
	}
	count, err := s.repo.CountByCustomer(ctx, customerID)
	if err != nil {
		return 0, errs.Wrap(errs.KindInternal, "count tickets", err)
	}
	return count, nil
}

// UpdateMechanics 维护工单-技师关联：
// - add_ids：不存在的技师 ID 静默跳过；已关联的为幂等空操作
// - remove_ids：存在才解除
// 工单不存在返回 NotFound。
func (s *Service) UpdateMechanics(ctx context.Context, ticketID uint, addIDs, removeIDs []uint) error {
	if s == nil || s.repo == nil || s.mechanics == nil {
		return fmt.Errorf("service not initialized")
	}

	if _, err := s.repo.GetByID(ctx, ticketID); errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.New(errs.KindNotFound, "Service ticket not found")
	} else if err != nil {
		return errs.Wrap(errs.KindInternal, "lookup ticket", err)
	}

	for _, id := range addIDs {
		exists, err := s.mechanics.Exists(ctx, id)
		if err != nil {
			return errs.Wrap(errs.KindInternal, "lookup mechanic", err)
		}
		if !exists {
			continue // silently skip
		}
		attached, err := s.repo.HasMechanic(ctx, ticketID, id)
		if err != nil {
			return errs.Wrap(errs.KindInternal, "check association", err)
		}
		if attached {
			continue
		}
		if err := s.repo.AddMechanic(ctx, ticketID, id); err != nil {
			return errs.Wrap(errs.KindInternal, "add mechanic", err)
		}
	}

	for _, id := range removeIDs {
		attached, err := s.repo.HasMechanic(ctx, ticketID, id)
		if err != nil {
			return errs.Wrap(errs.KindInternal, "check association", err)
		}
		if !attached {
			continue
		}
		if err := s.repo.RemoveMechanic(ctx, ticketID, id); err != nil {
			return errs.Wrap(errs.KindInternal, "remove mechanic", err)
		}
	}
	return nil
}
