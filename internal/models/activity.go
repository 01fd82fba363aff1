package models

import (
	"time"

	"gorm.io/datatypes"
)

// Adjustment codes explaining an out-of-sequence ledger correction
const (
	AdjustFillEmptied    = "Fill Emptied"
	AdjustMoveAdded      = "Move Added"
	AdjustConsumeAdded   = "Consume Added"
	AdjustConsumeEmptied = "Consume Emptied"
)

// Activity records one fill-to-consume lifespan of a box's contents.
// Box, location and product fields are copied at write time, not
// referenced, so catalog edits never rewrite history.
// At most one row per box number may have a null DateConsumed.
type Activity struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	BoxNumber      string          `gorm:"type:varchar(8);not null;index;uniqueIndex:idx_activities_open_box,where:date_consumed IS NULL" json:"box_number"`
	BoxType        string          `gorm:"type:varchar(10);not null" json:"box_type"`
	LocRow         string          `gorm:"type:varchar(2)" json:"loc_row"`
	LocBin         string          `gorm:"type:varchar(2)" json:"loc_bin"`
	LocTier        string          `gorm:"type:varchar(2)" json:"loc_tier"`
	ProdName       string          `gorm:"type:varchar(30)" json:"prod_name"`
	ProdCatName    string          `gorm:"type:varchar(30)" json:"prod_cat_name"`
	DateFilled     datatypes.Date  `gorm:"not null;index" json:"date_filled"`
	DateConsumed   *datatypes.Date `gorm:"index" json:"date_consumed,omitempty"`
	ExpYear        int             `json:"exp_year"`
	ExpMonthStart  int             `json:"exp_month_start"`
	ExpMonthEnd    int             `json:"exp_month_end"`
	Quantity       int             `json:"quantity"`
	Duration       int             `gorm:"not null;default:0" json:"duration"`
	AdjustmentCode *string         `gorm:"type:varchar(15)" json:"adjustment_code,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Activity) TableName() string { return "activities" }

// IsOpen reports whether the activity still has no consume date
func (a *Activity) IsOpen() bool {
	return a.DateConsumed == nil
}
