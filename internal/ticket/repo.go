package ticket

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, t *ServiceTicket) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(t).Error
}

func (r *Repo) Update(ctx context.Context, t *ServiceTicket) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(t).Error
}

func (r *Repo) GetByID(ctx context.Context, id uint) (*ServiceTicket, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var t ServiceTicket
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetScoped 客户侧访问：同时按工单 ID 与 customer_id 过滤。
// 别人的工单在这里等同于不存在。
func (r *Repo) GetScoped(ctx context.Context, id, customerID uint) (*ServiceTicket, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var t ServiceTicket
	if err := db.Where("id = ? AND customer_id = ?", id, customerID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) ListByCustomer(ctx context.Context, customerID uint) ([]ServiceTicket, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var tickets []ServiceTicket
	if err := db.Where("customer_id = ?", customerID).Order("id").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *Repo) CountByCustomer(ctx context.Context, customerID uint) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var count int64
	if err := db.Model(&ServiceTicket{}).Where("customer_id = ?", customerID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete 硬删除工单，同一事务内清掉两张关联表里的行。
func (r *Repo) Delete(ctx context.Context, id uint) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_ticket_id = ?", id).Delete(&TicketMechanic{}).Error; err != nil {
			return err
		}
		if err := tx.Where("service_ticket_id = ?", id).Delete(&TicketPart{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ServiceTicket{}, id).Error
	})
}

// HasMechanic 关联是否已存在。
func (r *Repo) HasMechanic(ctx context.Context, ticketID, mechanicID uint) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var count int64
	err := db.Model(&TicketMechanic{}).
		Where("service_ticket_id = ? AND mechanic_id = ?", ticketID, mechanicID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repo) AddMechanic(ctx context.Context, ticketID, mechanicID uint) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(&TicketMechanic{MechanicID: mechanicID, ServiceTicketID: ticketID}).Error
}

func (r *Repo) RemoveMechanic(ctx context.Context, ticketID, mechanicID uint) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Where("service_ticket_id = ? AND mechanic_id = ?", ticketID, mechanicID).
		Delete(&TicketMechanic{}).Error
}

// HasPart 库存件是否已挂在工单上。
func (r *Repo) HasPart(ctx context.Context, ticketID, inventoryID uint) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var count int64
	err := db.Model(&TicketPart{}).
		Where("service_ticket_id = ? AND inventory_id = ?", ticketID, inventoryID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repo) AddPart(ctx context.Context, ticketID, inventoryID uint) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(&TicketPart{InventoryID: inventoryID, ServiceTicketID: ticketID}).Error
}

// InventoryItems 工单上关联的库存件视图（按关联表连 inventory 表）。
func (r *Repo) InventoryItems(ctx context.Context, ticketID uint) ([]PartView, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var items []PartView
	err := db.Table("inventory").
		Select("inventory.id AS id, inventory.name AS name, inventory.price AS price").
		Joins("INNER JOIN inventory_service_ticket ON inventory_service_ticket.inventory_id = inventory.id").
		Where("inventory_service_ticket.service_ticket_id = ?", ticketID).
		Order("inventory.id").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
