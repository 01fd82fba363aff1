package models

import "time"

// ProductCategory groups products (e.g. "Vegetables")
type ProductCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ProductCategory) TableName() string { return "product_categories" }

// Product is something a box can be filled with
type Product struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"name"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Category ProductCategory `gorm:"foreignKey:CategoryID" json:"category"`
}

func (Product) TableName() string { return "products" }

// BoxType describes a kind of box and how much it holds when full
type BoxType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"`
	Description string    `json:"description"`
	DefaultQty  int       `gorm:"not null;default:0" json:"default_qty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (BoxType) TableName() string { return "box_types" }
