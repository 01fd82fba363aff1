package inventory

import (
	"context"
	"fmt"

	"github.com/xelth-com/pantrywms/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// FillRequest describes new contents for a box. Months are 0 when not given.
type FillRequest struct {
	BoxNumber     string
	LocationID    uint
	ProductID     uint
	ExpYear       int
	ExpMonthStart int
	ExpMonthEnd   int
}

// contents is a validated fill, shared by Fill and pallet finishing
type contents struct {
	locationID    uint
	productID     uint
	expYear       int
	expMonthStart int
	expMonthEnd   int
}

func (m *Manager) validateContents(c contents) error {
	if c.locationID == 0 {
		return ErrInvalidValue("location is required").WithDetail("location_id", "required")
	}
	if c.productID == 0 {
		return ErrInvalidValue("product is required").WithDetail("product_id", "required")
	}
	return m.rules.ValidateExpiration(c.expYear, c.expMonthStart, c.expMonthEnd)
}

// Fill puts product into a box at a location. A box that still holds
// something is emptied first and its open activity closed as Fill Emptied.
func (m *Manager) Fill(ctx context.Context, req FillRequest) (*models.Box, error) {
	number, err := normalizeBoxNumber(req.BoxNumber)
	if err != nil {
		return nil, err
	}
	c := contents{
		locationID:    req.LocationID,
		productID:     req.ProductID,
		expYear:       req.ExpYear,
		expMonthStart: req.ExpMonthStart,
		expMonthEnd:   req.ExpMonthEnd,
	}
	if err := m.validateContents(c); err != nil {
		return nil, err
	}

	var box *models.Box
	err = m.inTx(ctx, "fill", func(t *txn) error {
		b, err := lockBox(t.DB, number)
		if err != nil {
			return err
		}
		if err := m.fillTx(t, b, c); err != nil {
			return err
		}
		box = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

func (m *Manager) fillTx(t *txn, box *models.Box, c contents) error {
	loc, err := findLocation(t.DB, c.locationID)
	if err != nil {
		return err
	}
	product, err := findProduct(t.DB, c.productID)
	if err != nil {
		return err
	}

	filledAt := t.at
	box.LocationID = &loc.ID
	box.Location = loc
	box.ProductID = &product.ID
	box.Product = product
	box.ExpYear = intPtr(c.expYear)
	box.ExpMonthStart = monthPtr(c.expMonthStart)
	box.ExpMonthEnd = monthPtr(c.expMonthEnd)
	box.DateFilled = &filledAt
	box.Quantity = intPtr(box.BoxType.DefaultQty)

	if err := saveBox(t.DB, box); err != nil {
		return err
	}
	if _, err := m.ledger.add(t.DB, box, nil); err != nil {
		return err
	}

	m.log.Debug("Box filled",
		zap.String("box_number", box.BoxNumber),
		zap.String("location", loc.Code),
		zap.String("product", product.Name))
	t.emit(Event{Type: EventBoxFilled, BoxNumber: box.BoxNumber, Location: loc.Code})
	return nil
}

// Move relocates a filled box and updates its open activity
func (m *Manager) Move(ctx context.Context, boxNumber string, locationID uint) (*models.Box, error) {
	number, err := normalizeBoxNumber(boxNumber)
	if err != nil {
		return nil, err
	}
	if locationID == 0 {
		return nil, ErrInvalidValue("location is required").WithDetail("location_id", "required")
	}

	var box *models.Box
	err = m.inTx(ctx, "move", func(t *txn) error {
		b, err := lockBox(t.DB, number)
		if err != nil {
			return err
		}
		loc, err := findLocation(t.DB, locationID)
		if err != nil {
			return err
		}
		if err := m.moveTx(t, b, loc); err != nil {
			return err
		}
		box = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

func (m *Manager) moveTx(t *txn, box *models.Box, loc *models.Location) error {
	if box.IsEmpty() {
		return ErrInvalidAction("box %s is empty and cannot be moved", box.BoxNumber).
			WithDetail("box_number", box.BoxNumber)
	}
	if box.DateFilled == nil {
		filledAt := t.at
		box.DateFilled = &filledAt
	}

	box.LocationID = &loc.ID
	box.Location = loc
	if err := saveBox(t.DB, box); err != nil {
		return err
	}
	if err := m.ledger.updateLocation(t.DB, box); err != nil {
		return err
	}

	m.log.Debug("Box moved", zap.String("box_number", box.BoxNumber), zap.String("location", loc.Code))
	t.emit(Event{Type: EventBoxMoved, BoxNumber: box.BoxNumber, Location: loc.Code})
	return nil
}

// Consume empties a filled box and closes its activity
func (m *Manager) Consume(ctx context.Context, boxNumber string) (*models.Box, error) {
	number, err := normalizeBoxNumber(boxNumber)
	if err != nil {
		return nil, err
	}

	var box *models.Box
	err = m.inTx(ctx, "consume", func(t *txn) error {
		b, err := lockBox(t.DB, number)
		if err != nil {
			return err
		}
		if err := m.consumeTx(t, b); err != nil {
			return err
		}
		box = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

func (m *Manager) consumeTx(t *txn, box *models.Box) error {
	if box.IsEmpty() {
		return ErrInvalidAction("box %s is already empty", box.BoxNumber).
			WithDetail("box_number", box.BoxNumber)
	}
	if box.DateFilled == nil {
		filledAt := t.at
		box.DateFilled = &filledAt
	}

	if err := m.ledger.consume(t.DB, box); err != nil {
		return err
	}
	box.Empty()
	if err := saveBox(t.DB, box); err != nil {
		return err
	}

	m.log.Debug("Box consumed", zap.String("box_number", box.BoxNumber))
	t.emit(Event{Type: EventBoxConsumed, BoxNumber: box.BoxNumber})
	return nil
}

// MoveLocation moves every filled box at one location to another and
// returns how many moved
func (m *Manager) MoveLocation(ctx context.Context, fromLocationID, toLocationID uint) (int, error) {
	if fromLocationID == 0 || toLocationID == 0 {
		return 0, ErrInvalidValue("both locations are required")
	}
	if fromLocationID == toLocationID {
		return 0, ErrInvalidAction("boxes are already at location %d", toLocationID)
	}

	moved := 0
	err := m.inTx(ctx, "move_location", func(t *txn) error {
		if _, err := findLocation(t.DB, fromLocationID); err != nil {
			return err
		}
		to, err := findLocation(t.DB, toLocationID)
		if err != nil {
			return err
		}

		var boxes []models.Box
		err = t.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("location_id = ? AND product_id IS NOT NULL", fromLocationID).
			Order("box_number").
			Find(&boxes).Error
		if err != nil {
			return fmt.Errorf("failed to lock boxes at location %d: %w", fromLocationID, err)
		}

		for i := range boxes {
			box := &boxes[i]
			if err := loadBoxRefs(t.DB, box); err != nil {
				return err
			}
			if err := m.moveTx(t, box, to); err != nil {
				return err
			}
		}
		moved = len(boxes)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}
