package mechanic

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

func (r *Repo) Create(ctx context.Context, m *Mechanic) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(m).Error
}

func (r *Repo) Update(ctx context.Context, m *Mechanic) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(m).Error
}

func (r *Repo) FindByID(ctx context.Context, id uint) (*Mechanic, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var m Mechanic
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (*Mechanic, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var m Mechanic
	if err := db.Where("email = ?", email).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) FindByPhone(ctx context.Context, phone string) (*Mechanic, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var m Mechanic
	if err := db.Where("phone = ?", phone).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Exists 只做存在性判断，add-mechanics 里用来静默跳过不存在的 ID。
func (r *Repo) Exists(ctx context.Context, id uint) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var count int64
	if err := db.Model(&Mechanic{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repo) List(ctx context.Context) ([]Mechanic, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var mechanics []Mechanic
	if err := db.Order("id").Find(&mechanics).Error; err != nil {
		return nil, err
	}
	return mechanics, nil
}

func (r *Repo) Delete(ctx context.Context, id uint) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		// 先清关联表，避免悬挂的关联行
		if err := tx.Exec("DELETE FROM mechanic_service_ticket WHERE mechanic_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&Mechanic{}, id).Error
	})
}

// Statistics 统计每个技师名下的工单数。内连接：没有任何工单的技师被排除，
// 结果按 ticket_count 降序。
func (r *Repo) Statistics(ctx context.Context) ([]Stat, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var stats []Stat
	err := db.Table("mechanics").
		Select("mechanics.id AS id, mechanics.name AS name, COUNT(mechanic_service_ticket.service_ticket_id) AS ticket_count").
		Joins("INNER JOIN mechanic_service_ticket ON mechanic_service_ticket.mechanic_id = mechanics.id").
		Group("mechanics.id, mechanics.name").
		Order("ticket_count DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
