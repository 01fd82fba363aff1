package models

import "time"

// LocRow is a warehouse row (e.g. "01")
type LocRow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(2);uniqueIndex;not null" json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (LocRow) TableName() string { return "loc_rows" }

// LocBin is a bin within a row (e.g. "02")
type LocBin struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(2);uniqueIndex;not null" json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (LocBin) TableName() string { return "loc_bins" }

// LocTier is a vertical tier within a bin (e.g. "A1")
type LocTier struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(2);uniqueIndex;not null" json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (LocTier) TableName() string { return "loc_tiers" }

// Location is one physical position: row + bin + tier.
// Code is the concatenation of the three codes, e.g. "0102A1".
type Location struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(6);uniqueIndex;not null" json:"code"`
	RowID       uint      `gorm:"not null;uniqueIndex:idx_locations_row_bin_tier" json:"row_id"`
	BinID       uint      `gorm:"not null;uniqueIndex:idx_locations_row_bin_tier" json:"bin_id"`
	TierID      uint      `gorm:"not null;uniqueIndex:idx_locations_row_bin_tier" json:"tier_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Row  LocRow  `gorm:"foreignKey:RowID" json:"row"`
	Bin  LocBin  `gorm:"foreignKey:BinID" json:"bin"`
	Tier LocTier `gorm:"foreignKey:TierID" json:"tier"`
}

func (Location) TableName() string { return "locations" }

// LocationCode joins row, bin and tier codes into a location code
func LocationCode(row, bin, tier string) string {
	return row + bin + tier
}
