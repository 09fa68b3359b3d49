package models

import "time"

// Price bounds that fit the decimal(10,2) column.
const (
	MinPrice = 0.01
	MaxPrice = 100000000
)

// Product represents a product in the catalog.
type Product struct {
	ID           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Price        float64   `json:"price" gorm:"type:decimal(10,2);not null" validate:"required,gte=0.01,lt=100000000"`
	Availability bool      `json:"availability" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName keeps the table name stable regardless of GORM naming strategy.
func (Product) TableName() string {
	return "products"
}
