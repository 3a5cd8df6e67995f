package ticket

import "time"

// ServiceTicket 是 service_tickets 表的 GORM 模型。
// 每张工单属于且仅属于一个客户；与技师、库存件各有一张纯关联表。
type ServiceTicket struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VIN         string    `gorm:"column:vin;size:17;not null" json:"VIN"`
	Description string    `gorm:"size:300;not null" json:"description"`
	ServiceDate time.Time `gorm:"not null" json:"service_date"`
	CustomerID  uint      `gorm:"not null;index" json:"customer_id"`
}

func (ServiceTicket) TableName() string { return "service_tickets" }

// TicketMechanic 技师-工单关联行（复合主键，无自有属性）。
type TicketMechanic struct {
	MechanicID      uint `gorm:"primaryKey"`
	ServiceTicketID uint `gorm:"primaryKey"`
}

func (TicketMechanic) TableName() string { return "mechanic_service_ticket" }

// TicketPart 库存件-工单关联行（复合主键，无自有属性）。
type TicketPart struct {
	InventoryID     uint `gorm:"primaryKey"`
	ServiceTicketID uint `gorm:"primaryKey"`
}

func (TicketPart) TableName() string { return "inventory_service_ticket" }

// PartView 工单上关联的库存件只读视图（my-tickets 列表里嵌套输出）。
type PartView struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// View 工单输出结构，含关联库存件。
type View struct {
	ID             uint       `json:"id"`
	VIN            string     `json:"VIN"`
	Description    string     `json:"description"`
	ServiceDate    time.Time  `json:"service_date"`
	CustomerID     uint       `json:"customer_id"`
	InventoryItems []PartView `json:"inventory_items"`
}
