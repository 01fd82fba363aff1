package inventory

import (
	"github.com/xelth-com/pantrywms/internal/config"
)

// Rules are the constraints applied to box contents. They are built once
// at startup and passed by value.
type Rules struct {
	MinExpYear     int
	MaxExpYear     int
	DefaultBoxType string
}

// NewRules builds the rule set from configuration
func NewRules(cfg config.InventoryConfig) Rules {
	return Rules{
		MinExpYear:     cfg.MinExpYear,
		MaxExpYear:     cfg.MaxExpYear,
		DefaultBoxType: cfg.DefaultBoxType,
	}
}

// ValidateExpiration checks an expiration year and optional month range.
// A month of 0 means "not given".
func (r Rules) ValidateExpiration(year, monthStart, monthEnd int) error {
	if year < r.MinExpYear || year > r.MaxExpYear {
		return ErrInvalidValue("expiration year %d outside %d..%d", year, r.MinExpYear, r.MaxExpYear).
			WithDetail("exp_year", "out of range")
	}
	if monthStart < 0 || monthStart > 12 {
		return ErrInvalidValue("expiration start month %d invalid", monthStart).
			WithDetail("exp_month_start", "must be 1..12")
	}
	if monthEnd < 0 || monthEnd > 12 {
		return ErrInvalidValue("expiration end month %d invalid", monthEnd).
			WithDetail("exp_month_end", "must be 1..12")
	}
	if monthStart > 0 && monthEnd > 0 && monthStart > monthEnd {
		return ErrInvalidValue("expiration start month %d after end month %d", monthStart, monthEnd).
			WithDetail("exp_month_start", "must not exceed exp_month_end")
	}
	return nil
}
