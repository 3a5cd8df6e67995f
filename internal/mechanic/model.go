package mechanic

// Mechanic 是 mechanics 表的 GORM 模型。技师不拥有工单，
// 通过 mechanic_service_ticket 关联表参与工单。
type Mechanic struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"size:100;not null" json:"name"`
	Email        string  `gorm:"uniqueIndex;size:150;not null" json:"email"`
	Phone        string  `gorm:"uniqueIndex;size:150;not null" json:"phone"`
	Salary       float64 `gorm:"not null" json:"salary"`
	PasswordHash string  `gorm:"size:256;not null" json:"-"`
}

func (Mechanic) TableName() string { return "mechanics" }

// Stat 技师工单统计行（内连接语义：无工单的技师不出现）。
type Stat struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	TicketCount int64  `json:"ticket_count"`
}
