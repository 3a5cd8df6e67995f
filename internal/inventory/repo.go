package inventory

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

func (r *Repo) Create(ctx context.Context, item *Inventory) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(item).Error
}

func (r *Repo) Update(ctx context.Context, item *Inventory) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(item).Error
}

func (r *Repo) FindByID(ctx context.Context, id uint) (*Inventory, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var item Inventory
	if err := db.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repo) List(ctx context.Context) ([]Inventory, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var items []Inventory
	if err := db.Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repo) Delete(ctx context.Context, id uint) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		// 先清工单关联行
		if err := tx.Exec("DELETE FROM inventory_service_ticket WHERE inventory_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&Inventory{}, id).Error
	})
}
