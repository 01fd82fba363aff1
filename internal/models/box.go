package models

import "time"

// Box is a physical, reusable container identified by its box number.
// A box is either empty (no product, location, expiration or fill date)
// or filled (all four present).
type Box struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	BoxNumber     string     `gorm:"type:varchar(8);uniqueIndex;not null" json:"box_number"`
	BoxTypeID     uint       `gorm:"not null;index" json:"box_type_id"`
	LocationID    *uint      `gorm:"index" json:"location_id,omitempty"`
	ProductID     *uint      `gorm:"index" json:"product_id,omitempty"`
	ExpYear       *int       `json:"exp_year,omitempty"`
	ExpMonthStart *int       `json:"exp_month_start,omitempty"`
	ExpMonthEnd   *int       `json:"exp_month_end,omitempty"`
	DateFilled    *time.Time `json:"date_filled,omitempty"`
	Quantity      *int       `json:"quantity,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	BoxType  BoxType   `gorm:"foreignKey:BoxTypeID" json:"box_type"`
	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Product  *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Box) TableName() string { return "boxes" }

// IsEmpty reports whether the box holds no product
func (b *Box) IsEmpty() bool {
	return b.ProductID == nil
}

// IsFilled reports whether every filled-state field is present
func (b *Box) IsFilled() bool {
	return b.ProductID != nil && b.LocationID != nil && b.ExpYear != nil && b.DateFilled != nil
}

// IsConsistent reports whether the box is cleanly empty or cleanly filled
func (b *Box) IsConsistent() bool {
	if b.IsFilled() {
		return true
	}
	return b.ProductID == nil && b.LocationID == nil && b.ExpYear == nil &&
		b.ExpMonthStart == nil && b.ExpMonthEnd == nil && b.DateFilled == nil
}

// Empty clears every content attribute, including loaded relations so
// that a later save cannot restore the foreign keys from them.
func (b *Box) Empty() {
	b.LocationID = nil
	b.Location = nil
	b.ProductID = nil
	b.Product = nil
	b.ExpYear = nil
	b.ExpMonthStart = nil
	b.ExpMonthEnd = nil
	b.DateFilled = nil
	b.Quantity = nil
}
