package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/xelth-com/pantrywms/internal/models"
	"github.com/xelth-com/pantrywms/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BoxFilter narrows ListBoxes; zero values match everything
type BoxFilter struct {
	LocationID uint
	ProductID  uint
	Filled     *bool
}

func normalizeBoxNumber(s string) (string, error) {
	n, err := utils.NormalizeBoxNumber(s)
	if err != nil {
		return "", ErrInvalidValue("box number %q must look like BOX00001", s).
			WithDetail("box_number", s).Wrap(err)
	}
	return n, nil
}

// NewBox registers an empty box. Quantity starts at the box type's default.
// A boxTypeID of 0 selects the configured default box type.
func (m *Manager) NewBox(ctx context.Context, boxNumber string, boxTypeID uint) (*models.Box, error) {
	number, err := normalizeBoxNumber(boxNumber)
	if err != nil {
		return nil, err
	}

	var box *models.Box
	err = m.inTx(ctx, "new", func(t *txn) error {
		boxType, err := m.resolveBoxType(t.DB, boxTypeID)
		if err != nil {
			return err
		}
		box, err = m.newBoxTx(t, number, boxType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

func (m *Manager) newBoxTx(t *txn, number string, boxType *models.BoxType) (*models.Box, error) {
	var count int64
	if err := t.Model(&models.Box{}).Where("box_number = ?", number).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check box %s: %w", number, err)
	}
	if count > 0 {
		return nil, ErrInvalidAction("box %s already exists", number).WithDetail("box_number", number)
	}

	box := &models.Box{
		BoxNumber: number,
		BoxTypeID: boxType.ID,
		Quantity:  intPtr(boxType.DefaultQty),
	}
	if err := t.Omit(clause.Associations).Create(box).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrInvalidAction("box %s already exists", number).WithDetail("box_number", number)
		}
		return nil, fmt.Errorf("failed to create box %s: %w", number, err)
	}
	box.BoxType = *boxType

	t.emit(Event{Type: EventBoxCreated, BoxNumber: number})
	return box, nil
}

// lockBox loads a box with its row locked for the rest of the transaction,
// then loads its references
func lockBox(tx *gorm.DB, number string) (*models.Box, error) {
	var box models.Box
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("box_number = ?", number).
		First(&box).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("box", number)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock box %s: %w", number, err)
	}
	if err := loadBoxRefs(tx, &box); err != nil {
		return nil, err
	}
	return &box, nil
}

func loadBoxRefs(tx *gorm.DB, box *models.Box) error {
	if err := tx.First(&box.BoxType, box.BoxTypeID).Error; err != nil {
		return fmt.Errorf("failed to load box type of %s: %w", box.BoxNumber, err)
	}
	box.Location = nil
	if box.LocationID != nil {
		loc, err := findLocation(tx, *box.LocationID)
		if err != nil {
			return err
		}
		box.Location = loc
	}
	box.Product = nil
	if box.ProductID != nil {
		product, err := findProduct(tx, *box.ProductID)
		if err != nil {
			return err
		}
		box.Product = product
	}
	return nil
}

func saveBox(tx *gorm.DB, box *models.Box) error {
	if err := tx.Omit(clause.Associations).Save(box).Error; err != nil {
		return fmt.Errorf("failed to save box %s: %w", box.BoxNumber, err)
	}
	return nil
}

// GetBox returns a box with its type, location and product
func (m *Manager) GetBox(ctx context.Context, boxNumber string) (*models.Box, error) {
	number, err := normalizeBoxNumber(boxNumber)
	if err != nil {
		return nil, err
	}
	var box models.Box
	err = m.db.WithContext(ctx).
		Preload("BoxType").
		Preload("Location.Row").Preload("Location.Bin").Preload("Location.Tier").
		Preload("Product.Category").
		Where("box_number = ?", number).
		First(&box).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("box", number)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load box %s: %w", number, err)
	}
	return &box, nil
}

// ListBoxes returns boxes matching filter ordered by box number
func (m *Manager) ListBoxes(ctx context.Context, filter BoxFilter) ([]models.Box, error) {
	query := m.db.WithContext(ctx).Model(&models.Box{}).
		Preload("BoxType").
		Preload("Location").
		Preload("Product.Category")
	if filter.LocationID != 0 {
		query = query.Where("location_id = ?", filter.LocationID)
	}
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Filled != nil {
		if *filter.Filled {
			query = query.Where("product_id IS NOT NULL")
		} else {
			query = query.Where("product_id IS NULL")
		}
	}

	var boxes []models.Box
	if err := query.Order("box_number").Find(&boxes).Error; err != nil {
		return nil, fmt.Errorf("failed to list boxes: %w", err)
	}
	return boxes, nil
}

// NextBoxNumber returns the number after the highest box registered so far
func (m *Manager) NextBoxNumber(ctx context.Context) (string, error) {
	var last []string
	err := m.db.WithContext(ctx).Model(&models.Box{}).
		Order("box_number DESC").Limit(1).
		Pluck("box_number", &last).Error
	if err != nil {
		return "", fmt.Errorf("failed to read highest box number: %w", err)
	}

	next := 1
	if len(last) > 0 {
		n, err := utils.ParseBoxNumber(last[0])
		if err != nil {
			return "", fmt.Errorf("stored box number %q is malformed: %w", last[0], err)
		}
		next = n + 1
	}
	if next > utils.MaxBoxNumber {
		return "", ErrInvalidAction("box numbers exhausted")
	}
	return utils.FormatBoxNumber(next)
}

// BoxHistory returns every activity recorded for a box number, oldest first
func (m *Manager) BoxHistory(ctx context.Context, boxNumber string) ([]models.Activity, error) {
	number, err := normalizeBoxNumber(boxNumber)
	if err != nil {
		return nil, err
	}
	var activities []models.Activity
	err = m.db.WithContext(ctx).
		Where("box_number = ?", number).
		Order("date_filled, id").
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load activities of %s: %w", number, err)
	}
	return activities, nil
}
