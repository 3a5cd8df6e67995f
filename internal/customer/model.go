package customer

// Customer 是 customers 表的 GORM 模型。客户拥有工单（一对多）。
type Customer struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:150;not null" json:"email"`
	PasswordHash string `gorm:"size:256;not null" json:"-"`
	Phone        string `gorm:"size:15;not null" json:"phone"`
}

func (Customer) TableName() string { return "customers" }
