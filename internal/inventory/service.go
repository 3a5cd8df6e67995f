package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MechanicWorks/MechanicWorks/internal/common/errs"
	"github.com/MechanicWorks/MechanicWorks/internal/ticket"
	"gorm.io/gorm"
)

// Service 库存配件用例，含配件挂到工单的关联维护。
type Service struct {
	repo    *Repo
	tickets *ticket.Repo
}

func NewService(repo *Repo, tickets *ticket.Repo) *Service {
	return &Service{repo: repo, tickets: tickets}
}

func validateFields(name string, price float64) error {
	fields := map[string]string{}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "Missing data for required field."
	}
	if price < 0 {
		fields["price"] = "Must not be negative."
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

// Create 新建配件；价格不允许为负。
func (s *Service) Create(ctx context.Context, name string, price float64) (*Inventory, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := validateFields(name, price); err != nil {
		return nil, err
	}

	item := &Inventory{Name: strings.TrimSpace(name), Price: price}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "create inventory", err)
	}
	return item, nil
}

func (s *Service) List(ctx context.Context) ([]Inventory, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "list inventory", err)
	}
	return items, nil
}

// Patch 配件更新白名单。
type Patch struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

// Update 按白名单应用变更。
func (s *Service) Update(ctx context.Context, id uint, p Patch) (*Inventory, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	item, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.KindNotFound, "Inventory not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "lookup inventory", err)
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, errs.Validation(map[string]string{"name": "Missing data for required field."})
		}
		item.Name = name
	}
	if p.Price != nil {
		if *p.Price < 0 {
			return nil, errs.Validation(map[string]string{"price": "Must not be negative."})
		}
		item.Price = *p.Price
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "update inventory", err)
	}
	return item, nil
}

// Delete 硬删除；连带清掉工单关联。
func (s *Service) Delete(ctx context.Context, id uint) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("service not initialized")
	}
	if _, err := s.repo.FindByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.New(errs.KindNotFound, "Inventory not found")
	} else if err != nil {
		return errs.Wrap(errs.KindInternal, "lookup inventory", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errs.Wrap(errs.KindInternal, "delete inventory", err)
	}
	return nil
}

// AddPartToTicket 把配件挂到工单：
// - 配件或工单不存在 -> NotFound
// - 已关联 -> Conflict（400）
func (s *Service) AddPartToTicket(ctx context.Context, inventoryID, ticketID uint) error {
	if s == nil || s.repo == nil || s.tickets == nil {
		return fmt.Errorf("service not initialized")
	}

	if _, err := s.repo.FindByID(ctx, inventoryID); errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.New(errs.KindNotFound, "Inventory not found")
	} else if err != nil {
		return errs.Wrap(errs.KindInternal, "lookup inventory", err)
	}

	if _, err := s.tickets.GetByID(ctx, ticketID); errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.New(errs.KindNotFound, "Service ticket not found")
	} else if err != nil {
		return errs.Wrap(errs.KindInternal, "lookup ticket", err)
	}

	attached, err := s.tickets.HasPart(ctx, ticketID, inventoryID)
	if err != nil {
		return errs.Wrap(errs.KindInternal, "check association", err)
	}
	if attached {
		return errs.New(errs.KindConflict, "Part is already associated with this service ticket")
	}

	if err := s.tickets.AddPart(ctx, ticketID, inventoryID); err != nil {
		return errs.Wrap(errs.KindInternal, "add part", err)
	}
	return nil
}
