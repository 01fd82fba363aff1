package models

import "time"

// Pallet statuses
const (
	PalletStatusFill  = "Fill"
	PalletStatusMerge = "Merge"
	PalletStatusMove  = "Move"
)

// Staged box statuses
const (
	PalletBoxNew      = "New"
	PalletBoxOriginal = "Original"
	PalletBoxMove     = "Move"
)

// Pallet is a transient staging area for boxes checked in together.
// It is deleted once it has been finished.
type Pallet struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(200);uniqueIndex;not null" json:"name"`
	LocationID *uint     `gorm:"index" json:"location_id,omitempty"`
	Status     string    `gorm:"type:varchar(15);not null;default:Fill" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Location *Location   `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Boxes    []PalletBox `gorm:"foreignKey:PalletID;constraint:OnDelete:CASCADE" json:"boxes,omitempty"`
}

func (Pallet) TableName() string { return "pallets" }

// PalletBox is one staged, not yet committed box entry on a pallet
type PalletBox struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PalletID      uint      `gorm:"not null;uniqueIndex:idx_pallet_boxes_pallet_box" json:"pallet_id"`
	BoxNumber     string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_pallet_boxes_pallet_box" json:"box_number"`
	BoxID         *uint     `gorm:"index" json:"box_id,omitempty"`
	ProductID     *uint     `gorm:"index" json:"product_id,omitempty"`
	ExpYear       int       `json:"exp_year"`
	ExpMonthStart int       `json:"exp_month_start"`
	ExpMonthEnd   int       `json:"exp_month_end"`
	BoxStatus     string    `gorm:"type:varchar(15);not null" json:"box_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	Box     *Box     `gorm:"foreignKey:BoxID" json:"box,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (PalletBox) TableName() string { return "pallet_boxes" }
