package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xelth-com/pantrywms/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StageRequest is one box a volunteer puts on a pallet. BoxTypeID is only
// used when the box does not exist yet; 0 selects the default box type.
type StageRequest struct {
	BoxNumber     string
	BoxTypeID     uint
	ProductID     uint
	ExpYear       int
	ExpMonthStart int
	ExpMonthEnd   int
}

func validPalletStatus(status string) bool {
	switch status {
	case models.PalletStatusFill, models.PalletStatusMerge, models.PalletStatusMove:
		return true
	}
	return false
}

func palletKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func lockPallet(tx *gorm.DB, id uint) (*models.Pallet, error) {
	var pallet models.Pallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pallet, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("pallet", palletKey(id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock pallet %d: %w", id, err)
	}
	return &pallet, nil
}

// CreatePallet opens a named staging pallet. Status defaults to Fill.
func (m *Manager) CreatePallet(ctx context.Context, name, status string, locationID *uint) (*models.Pallet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidValue("pallet name is required").WithDetail("name", "required")
	}
	if status == "" {
		status = models.PalletStatusFill
	}
	if !validPalletStatus(status) {
		return nil, ErrInvalidValue("pallet status %q must be Fill, Merge or Move", status).WithDetail("status", status)
	}

	pallet := &models.Pallet{Name: name, Status: status}
	err := m.inTx(ctx, "create_pallet", func(t *txn) error {
		if locationID != nil && *locationID != 0 {
			loc, err := findLocation(t.DB, *locationID)
			if err != nil {
				return err
			}
			pallet.LocationID = &loc.ID
			pallet.Location = loc
		}

		var count int64
		if err := t.Model(&models.Pallet{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check pallet %q: %w", name, err)
		}
		if count > 0 {
			return ErrInvalidAction("pallet %q already exists", name).WithDetail("name", name)
		}
		if err := t.Omit(clause.Associations).Create(pallet).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrInvalidAction("pallet %q already exists", name).WithDetail("name", name)
			}
			return fmt.Errorf("failed to create pallet %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pallet, nil
}

// SetPalletLocation sets where a pallet's boxes will be put away
func (m *Manager) SetPalletLocation(ctx context.Context, palletID, locationID uint) (*models.Pallet, error) {
	var pallet *models.Pallet
	err := m.inTx(ctx, "set_pallet_location", func(t *txn) error {
		p, err := lockPallet(t.DB, palletID)
		if err != nil {
			return err
		}
		loc, err := findLocation(t.DB, locationID)
		if err != nil {
			return err
		}
		p.LocationID = &loc.ID
		if err := t.Omit(clause.Associations).Save(p).Error; err != nil {
			return fmt.Errorf("failed to save pallet %d: %w", palletID, err)
		}
		p.Location = loc
		pallet = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pallet, nil
}

// GetPallet returns a pallet with its staged boxes
func (m *Manager) GetPallet(ctx context.Context, palletID uint) (*models.Pallet, error) {
	var pallet models.Pallet
	err := m.db.WithContext(ctx).
		Preload("Location").
		Preload("Boxes", func(db *gorm.DB) *gorm.DB { return db.Order("box_number") }).
		Preload("Boxes.Box").
		Preload("Boxes.Product").
		First(&pallet, palletID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("pallet", palletKey(palletID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pallet %d: %w", palletID, err)
	}
	return &pallet, nil
}

// ListPallets returns every pallet still being staged
func (m *Manager) ListPallets(ctx context.Context) ([]models.Pallet, error) {
	var pallets []models.Pallet
	if err := m.db.WithContext(ctx).Preload("Location").Order("name").Find(&pallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list pallets: %w", err)
	}
	return pallets, nil
}

// Stage puts a single box on a pallet
func (m *Manager) Stage(ctx context.Context, palletID uint, req StageRequest) (*models.PalletBox, error) {
	staged, err := m.StageBatch(ctx, palletID, []StageRequest{req})
	if err != nil {
		return nil, err
	}
	return &staged[0], nil
}

// StageBatch puts boxes on a pallet. The whole batch is checked for
// malformed and duplicate box numbers before anything is written.
func (m *Manager) StageBatch(ctx context.Context, palletID uint, reqs []StageRequest) ([]models.PalletBox, error) {
	if len(reqs) == 0 {
		return nil, ErrInvalidValue("no boxes to stage")
	}

	numbers := make([]string, len(reqs))
	seen := make(map[string]bool, len(reqs))
	var dups []string
	for i, req := range reqs {
		number, err := normalizeBoxNumber(req.BoxNumber)
		if err != nil {
			return nil, err
		}
		if seen[number] {
			dups = append(dups, number)
		}
		seen[number] = true
		numbers[i] = number

		if req.ProductID != 0 || req.ExpYear != 0 {
			if err := m.rules.ValidateExpiration(req.ExpYear, req.ExpMonthStart, req.ExpMonthEnd); err != nil {
				return nil, withBoxNumber(err, number)
			}
		}
	}
	if len(dups) > 0 {
		return nil, duplicateError(dups)
	}

	var staged []models.PalletBox
	err := m.inTx(ctx, "stage", func(t *txn) error {
		pallet, err := lockPallet(t.DB, palletID)
		if err != nil {
			return err
		}

		var existing []string
		err = t.Model(&models.PalletBox{}).
			Where("pallet_id = ? AND box_number IN ?", pallet.ID, numbers).
			Pluck("box_number", &existing).Error
		if err != nil {
			return fmt.Errorf("failed to check staged boxes on pallet %d: %w", pallet.ID, err)
		}
		if len(existing) > 0 {
			return duplicateError(existing)
		}

		staged = make([]models.PalletBox, 0, len(reqs))
		for i, req := range reqs {
			entry, err := m.stageTx(t, pallet, numbers[i], req)
			if err != nil {
				return err
			}
			staged = append(staged, *entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return staged, nil
}

func (m *Manager) stageTx(t *txn, pallet *models.Pallet, number string, req StageRequest) (*models.PalletBox, error) {
	entry := &models.PalletBox{
		PalletID:      pallet.ID,
		BoxNumber:     number,
		ExpYear:       req.ExpYear,
		ExpMonthStart: req.ExpMonthStart,
		ExpMonthEnd:   req.ExpMonthEnd,
	}
	if req.ProductID != 0 {
		product, err := findProduct(t.DB, req.ProductID)
		if err != nil {
			return nil, err
		}
		entry.ProductID = &product.ID
		entry.Product = product
	}

	var boxes []models.Box
	if err := t.Where("box_number = ?", number).Limit(1).Find(&boxes).Error; err != nil {
		return nil, fmt.Errorf("failed to look up box %s: %w", number, err)
	}
	if pallet.Status == models.PalletStatusMove && (len(boxes) == 0 || boxes[0].IsEmpty()) {
		return nil, ErrInvalidAction("box %s is not filled and cannot go on move pallet %q", number, pallet.Name).
			WithDetail("box_number", number)
	}
	if len(boxes) > 0 {
		box := boxes[0]
		entry.BoxID = &box.ID
		entry.BoxStatus = models.PalletBoxOriginal
		if pallet.Status == models.PalletStatusMove {
			entry.BoxStatus = models.PalletBoxMove
		}
	} else {
		boxType, err := m.resolveBoxType(t.DB, req.BoxTypeID)
		if err != nil {
			return nil, err
		}
		box, err := m.newBoxTx(t, number, boxType)
		if err != nil {
			return nil, err
		}
		entry.BoxID = &box.ID
		entry.BoxStatus = models.PalletBoxNew
	}

	if err := t.Omit(clause.Associations).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicateError([]string{number})
		}
		return nil, fmt.Errorf("failed to stage box %s on pallet %d: %w", number, pallet.ID, err)
	}
	return entry, nil
}

func duplicateError(numbers []string) *Error {
	sorted := append([]string(nil), numbers...)
	sort.Strings(sorted)
	joined := strings.Join(sorted, ", ")
	return ErrInvalidAction("duplicate box numbers: %s", joined).WithDetail("box_numbers", joined)
}

// Unstage takes a box off a pallet. A box created by staging stays registered.
func (m *Manager) Unstage(ctx context.Context, palletID uint, boxNumber string) error {
	number, err := normalizeBoxNumber(boxNumber)
	if err != nil {
		return err
	}
	return m.inTx(ctx, "unstage", func(t *txn) error {
		if _, err := lockPallet(t.DB, palletID); err != nil {
			return err
		}
		res := t.Where("pallet_id = ? AND box_number = ?", palletID, number).Delete(&models.PalletBox{})
		if res.Error != nil {
			return fmt.Errorf("failed to unstage box %s: %w", number, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound("staged box", number)
		}
		return nil
	})
}

// DeletePallet abandons a pallet without touching any box
func (m *Manager) DeletePallet(ctx context.Context, palletID uint) error {
	return m.inTx(ctx, "delete_pallet", func(t *txn) error {
		pallet, err := lockPallet(t.DB, palletID)
		if err != nil {
			return err
		}
		return deletePalletTx(t, pallet)
	})
}

func deletePalletTx(t *txn, pallet *models.Pallet) error {
	if err := t.Where("pallet_id = ?", pallet.ID).Delete(&models.PalletBox{}).Error; err != nil {
		return fmt.Errorf("failed to delete boxes of pallet %d: %w", pallet.ID, err)
	}
	if err := t.Delete(pallet).Error; err != nil {
		return fmt.Errorf("failed to delete pallet %d: %w", pallet.ID, err)
	}
	return nil
}

// finishStep is the planned transition of one staged box
type finishStep struct {
	entry models.PalletBox
	box   *models.Box
	fill  bool
	c     contents
}

// FinishPallet commits every staged box to inventory at the pallet's
// location and deletes the pallet. Fill pallets fill each box, Move pallets
// move each box and Merge pallets move filled boxes and fill empty ones.
// Either every box changes or none does.
func (m *Manager) FinishPallet(ctx context.Context, palletID uint) error {
	var status string
	var count int
	err := m.inTx(ctx, "finish_pallet", func(t *txn) error {
		pallet, err := lockPallet(t.DB, palletID)
		if err != nil {
			return err
		}
		status = pallet.Status

		var entries []models.PalletBox
		if err := t.Where("pallet_id = ?", pallet.ID).Order("id").Find(&entries).Error; err != nil {
			return fmt.Errorf("failed to load boxes of pallet %d: %w", pallet.ID, err)
		}
		count = len(entries)

		if count > 0 {
			if pallet.LocationID == nil {
				return ErrInvalidValue("pallet %q has no location", pallet.Name).
					WithDetail("pallet_id", palletKey(pallet.ID))
			}
			loc, err := findLocation(t.DB, *pallet.LocationID)
			if err != nil {
				return err
			}
			steps, err := m.planFinish(t, pallet, loc, entries)
			if err != nil {
				return err
			}
			if err := m.applyFinish(t, loc, steps); err != nil {
				return err
			}
		}

		if err := deletePalletTx(t, pallet); err != nil {
			return err
		}
		t.emit(Event{Type: EventPalletFinished, PalletID: pallet.ID})
		return nil
	})
	if err != nil {
		return err
	}

	m.rec.RecordPalletFinished(status, count)
	m.log.Info("Pallet finished",
		zap.Uint("pallet_id", palletID),
		zap.String("status", status),
		zap.Int("boxes", count))
	return nil
}

// planFinish checks every staged box before anything is written
func (m *Manager) planFinish(t *txn, pallet *models.Pallet, loc *models.Location, entries []models.PalletBox) ([]finishStep, error) {
	seen := make(map[string]bool, len(entries))
	var dups []string
	for _, e := range entries {
		if seen[e.BoxNumber] {
			dups = append(dups, e.BoxNumber)
		}
		seen[e.BoxNumber] = true
	}
	if len(dups) > 0 {
		return nil, duplicateError(dups)
	}

	steps := make([]finishStep, 0, len(entries))
	for _, e := range entries {
		step := finishStep{
			entry: e,
			c: contents{
				locationID:    loc.ID,
				expYear:       e.ExpYear,
				expMonthStart: e.ExpMonthStart,
				expMonthEnd:   e.ExpMonthEnd,
			},
		}
		if e.ProductID != nil {
			step.c.productID = *e.ProductID
		}

		box, err := lockBox(t.DB, e.BoxNumber)
		if err != nil && !IsKind(err, KindNotFound) {
			return nil, err
		}
		step.box = box

		switch pallet.Status {
		case models.PalletStatusMove:
			if box == nil || box.IsEmpty() {
				return nil, ErrInvalidAction("box %s on move pallet %q is empty", e.BoxNumber, pallet.Name).
					WithDetail("box_number", e.BoxNumber)
			}
		case models.PalletStatusMerge:
			step.fill = box == nil || box.IsEmpty()
		default:
			step.fill = true
		}

		if step.fill {
			if err := m.validateContents(step.c); err != nil {
				return nil, withBoxNumber(err, e.BoxNumber)
			}
			if _, err := findProduct(t.DB, step.c.productID); err != nil {
				return nil, withBoxNumber(err, e.BoxNumber)
			}
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (m *Manager) applyFinish(t *txn, loc *models.Location, steps []finishStep) error {
	for _, step := range steps {
		box := step.box
		if box == nil {
			boxType, err := m.resolveBoxType(t.DB, 0)
			if err != nil {
				return err
			}
			if box, err = m.newBoxTx(t, step.entry.BoxNumber, boxType); err != nil {
				return err
			}
		}
		if step.fill {
			if err := m.fillTx(t, box, step.c); err != nil {
				return err
			}
			continue
		}
		if err := m.moveTx(t, box, loc); err != nil {
			return err
		}
	}
	return nil
}
