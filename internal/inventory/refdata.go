package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/xelth-com/pantrywms/internal/models"
	"gorm.io/gorm"
)

// Location, catalog and box type rows are reference data: the manager
// only reads them.

func findLocation(tx *gorm.DB, id uint) (*models.Location, error) {
	var loc models.Location
	err := tx.Preload("Row").Preload("Bin").Preload("Tier").First(&loc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidValue("location %d does not exist", id).WithDetail("location_id", strconv.FormatUint(uint64(id), 10))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load location %d: %w", id, err)
	}
	return &loc, nil
}

func findProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	err := tx.Preload("Category").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidValue("product %d does not exist", id).WithDetail("product_id", strconv.FormatUint(uint64(id), 10))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}
	return &product, nil
}

func findBoxType(tx *gorm.DB, id uint) (*models.BoxType, error) {
	var boxType models.BoxType
	err := tx.First(&boxType, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidValue("box type %d does not exist", id).WithDetail("box_type_id", strconv.FormatUint(uint64(id), 10))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load box type %d: %w", id, err)
	}
	return &boxType, nil
}

func findBoxTypeByCode(tx *gorm.DB, code string) (*models.BoxType, error) {
	var boxType models.BoxType
	err := tx.Where("code = ?", code).First(&boxType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidValue("box type %q does not exist", code).WithDetail("box_type", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load box type %q: %w", code, err)
	}
	return &boxType, nil
}

// resolveBoxType picks the requested box type, falling back to the
// configured default when id is 0
func (m *Manager) resolveBoxType(tx *gorm.DB, id uint) (*models.BoxType, error) {
	if id != 0 {
		return findBoxType(tx, id)
	}
	if m.rules.DefaultBoxType == "" {
		return nil, ErrInvalidValue("box type is required")
	}
	return findBoxTypeByCode(tx, m.rules.DefaultBoxType)
}

// ListLocations returns every location ordered by code
func (m *Manager) ListLocations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	err := m.db.WithContext(ctx).Preload("Row").Preload("Bin").Preload("Tier").
		Order("code").Find(&locations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// LocationByCode resolves a row+bin+tier code such as "0102A1"
func (m *Manager) LocationByCode(ctx context.Context, code string) (*models.Location, error) {
	var loc models.Location
	err := m.db.WithContext(ctx).Preload("Row").Preload("Bin").Preload("Tier").
		Where("code = ?", code).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidValue("location %q does not exist", code).WithDetail("location", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", code, err)
	}
	return &loc, nil
}

// ListProducts returns every product with its category
func (m *Manager) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := m.db.WithContext(ctx).Preload("Category").Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListBoxTypes returns every box type
func (m *Manager) ListBoxTypes(ctx context.Context) ([]models.BoxType, error) {
	var boxTypes []models.BoxType
	if err := m.db.WithContext(ctx).Order("code").Find(&boxTypes).Error; err != nil {
		return nil, fmt.Errorf("failed to list box types: %w", err)
	}
	return boxTypes, nil
}
