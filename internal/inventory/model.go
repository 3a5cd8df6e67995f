package inventory

// Inventory 是 inventory 表的 GORM 模型（库存配件）。
// 只记录名称与单价，不做库存量跟踪。
type Inventory struct {
	ID    uint    `gorm:"primaryKey" json:"id"`
	Name  string  `gorm:"size:100;not null" json:"name"`
	Price float64 `gorm:"not null" json:"price"`
}

func (Inventory) TableName() string { return "inventory" }
