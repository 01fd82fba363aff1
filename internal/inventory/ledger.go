package inventory

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xelth-com/pantrywms/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ledger appends and closes Activity rows. It is only driven by Manager,
// inside the caller's transaction.
type ledger struct {
	log *zap.Logger
	rec Recorder
	now func() time.Time
}

func adjustment(code string) *string {
	return &code
}

// findOpen returns the activity of a box number with no consume date, or nil
func (l *ledger) findOpen(tx *gorm.DB, box *models.Box) (*models.Activity, error) {
	var acts []models.Activity
	err := tx.Where("box_number = ? AND date_consumed IS NULL", box.BoxNumber).
		Order("date_filled, id").
		Limit(1).
		Find(&acts).Error
	if err != nil {
		return nil, l.fail("lookup", box, nil, err)
	}
	if len(acts) == 0 {
		return nil, nil
	}
	return &acts[0], nil
}

// add closes a still open activity with Fill Emptied and opens a fresh one
// from the box's current contents
func (l *ledger) add(tx *gorm.DB, box *models.Box, adj *string) (*models.Activity, error) {
	open, err := l.findOpen(tx, box)
	if err != nil {
		return nil, err
	}
	if open != nil {
		if err := l.close(tx, box, open, models.AdjustFillEmptied); err != nil {
			return nil, err
		}
	}

	act := snapshot(box)
	act.AdjustmentCode = adj
	if err := tx.Omit(clause.Associations).Create(act).Error; err != nil {
		return nil, l.fail("add", box, act, err)
	}
	l.log.Debug("Activity opened",
		zap.String("box_number", act.BoxNumber),
		zap.Uint("activity_id", act.ID),
		zap.Stringp("adjustment", adj))
	return act, nil
}

// updateLocation rewrites the location snapshot of the open activity for
// the box's current fill date, opening one with Move Added if it is missing
func (l *ledger) updateLocation(tx *gorm.DB, box *models.Box) error {
	filled := datatypes.Date(dateOnly(*box.DateFilled))

	var acts []models.Activity
	err := tx.Where("box_number = ? AND date_filled = ? AND date_consumed IS NULL", box.BoxNumber, filled).
		Limit(1).
		Find(&acts).Error
	if err != nil {
		return l.fail("update_location", box, nil, err)
	}
	if len(acts) == 0 {
		_, err := l.add(tx, box, adjustment(models.AdjustMoveAdded))
		return err
	}

	act := &acts[0]
	row, bin, tier := locationCodes(box.Location)
	err = tx.Model(act).Updates(map[string]interface{}{
		"loc_row":  row,
		"loc_bin":  bin,
		"loc_tier": tier,
	}).Error
	if err != nil {
		return l.fail("update_location", box, act, err)
	}
	return nil
}

// close sets the consume date to today and the duration in days. An
// existing adjustment code is never overwritten.
func (l *ledger) close(tx *gorm.DB, box *models.Box, act *models.Activity, adj string) error {
	filled := dateOnly(time.Time(act.DateFilled))
	consumed := dateOnly(l.now())
	if consumed.Before(filled) {
		consumed = filled
	}

	date := datatypes.Date(consumed)
	act.DateConsumed = &date
	act.Duration = daysBetween(filled, consumed)
	if act.AdjustmentCode == nil && adj != "" {
		act.AdjustmentCode = adjustment(adj)
	}

	err := tx.Model(act).Updates(map[string]interface{}{
		"date_consumed":   date,
		"duration":        act.Duration,
		"adjustment_code": act.AdjustmentCode,
	}).Error
	if err != nil {
		return l.fail("close", box, act, err)
	}
	l.log.Debug("Activity closed",
		zap.String("box_number", act.BoxNumber),
		zap.Uint("activity_id", act.ID),
		zap.Int("duration", act.Duration),
		zap.Stringp("adjustment", act.AdjustmentCode))
	return nil
}

// consume closes the activity matching the box's fill. A stale open
// activity from another fill is closed with Consume Emptied and a missing
// one is synthesized with Consume Added.
func (l *ledger) consume(tx *gorm.DB, box *models.Box) error {
	open, err := l.findOpen(tx, box)
	if err != nil {
		return err
	}
	if open != nil {
		if dateOnly(time.Time(open.DateFilled)).Equal(dateOnly(*box.DateFilled)) {
			return l.close(tx, box, open, "")
		}
		if err := l.close(tx, box, open, models.AdjustConsumeEmptied); err != nil {
			return err
		}
	}

	act, err := l.add(tx, box, adjustment(models.AdjustConsumeAdded))
	if err != nil {
		return err
	}
	return l.close(tx, box, act, "")
}

// snapshot copies the box's current contents into a new open activity
func snapshot(box *models.Box) *models.Activity {
	act := &models.Activity{
		BoxNumber:     box.BoxNumber,
		BoxType:       box.BoxType.Code,
		ExpYear:       derefInt(box.ExpYear),
		ExpMonthStart: derefInt(box.ExpMonthStart),
		ExpMonthEnd:   derefInt(box.ExpMonthEnd),
		Quantity:      derefInt(box.Quantity),
	}
	if box.DateFilled != nil {
		act.DateFilled = datatypes.Date(dateOnly(*box.DateFilled))
	}
	act.LocRow, act.LocBin, act.LocTier = locationCodes(box.Location)
	if box.Product != nil {
		act.ProdName = box.Product.Name
		act.ProdCatName = box.Product.Category.Name
	}
	return act
}

func locationCodes(loc *models.Location) (row, bin, tier string) {
	if loc == nil {
		return "", "", ""
	}
	return loc.Row.Code, loc.Bin.Code, loc.Tier.Code
}

// fail logs a rejected ledger write with the box and activity state and
// turns it into an internal error
func (l *ledger) fail(op string, box *models.Box, act *models.Activity, err error) error {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("box_number", box.BoxNumber),
		zap.Error(err),
	}
	ierr := (&Error{
		Kind:    KindInternal,
		Message: fmt.Sprintf("activity ledger %s failed for box %s", op, box.BoxNumber),
	}).WithDetail("box_number", box.BoxNumber)

	if act != nil {
		filled := time.Time(act.DateFilled).Format(time.DateOnly)
		consumed := ""
		if act.DateConsumed != nil {
			consumed = time.Time(*act.DateConsumed).Format(time.DateOnly)
		}
		fields = append(fields,
			zap.Uint("activity_id", act.ID),
			zap.String("date_filled", filled),
			zap.String("date_consumed", consumed),
			zap.Stringp("adjustment", act.AdjustmentCode))
		ierr.WithDetail("activity_id", strconv.FormatUint(uint64(act.ID), 10)).
			WithDetail("date_filled", filled).
			WithDetail("date_consumed", consumed)
	}

	l.log.Error("Activity ledger write failed", fields...)
	l.rec.RecordInternalError(op)
	return ierr.Wrap(err)
}
