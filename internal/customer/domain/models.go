package domain

import "time"

const IDPrefix = "cust_"

type Customer struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Email     string    `json:"email"`
	GSTNo     *string   `gorm:"column:gst_no" json:"gst_no,omitempty"`
	Address   string    `json:"address"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Customer) TableName() string { return "customers" }
