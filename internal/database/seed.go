package database

import (
	"fmt"
	"sort"

	"github.com/xelth-com/pantrywms/internal/models"
	"gorm.io/gorm"
)

// ReferenceData is the read-only data the inventory core depends on:
// warehouse positions, the product catalog and box types.
type ReferenceData struct {
	Rows     []string
	Bins     []string
	Tiers    []string
	Catalog  map[string][]string // category name -> product names
	BoxTypes []models.BoxType
}

// SeedSummary counts the rows a seed run ensured exist
type SeedSummary struct {
	Locations int
	Products  int
	BoxTypes  int
}

// DemoReference is the layout of a small pantry warehouse
func DemoReference() ReferenceData {
	return ReferenceData{
		Rows:  []string{"01", "02", "03", "04"},
		Bins:  []string{"01", "02", "03", "04", "05", "06", "07", "08", "09"},
		Tiers: []string{"A1", "A2", "B1", "B2", "C1", "C2"},
		Catalog: map[string][]string{
			"Vegetables": {"Corn", "Green Beans", "Peas", "Carrots"},
			"Fruit":      {"Peaches", "Pears", "Applesauce"},
			"Protein":    {"Tuna", "Chicken", "Peanut Butter"},
			"Grains":     {"Rice", "Pasta", "Oatmeal"},
			"Soup":       {"Tomato Soup", "Chicken Noodle Soup"},
		},
		BoxTypes: []models.BoxType{
			{Code: "Evans", Description: "Evans box", DefaultQty: 12},
			{Code: "Small", Description: "Small box", DefaultQty: 6},
			{Code: "Large", Description: "Large box", DefaultQty: 24},
		},
	}
}

// SeedReference inserts missing reference rows. Existing rows are kept, so
// it is safe to run repeatedly.
func SeedReference(db *gorm.DB, data ReferenceData) (*SeedSummary, error) {
	summary := &SeedSummary{}
	err := db.Transaction(func(tx *gorm.DB) error {
		rows := make(map[string]models.LocRow, len(data.Rows))
		for _, code := range data.Rows {
			row := models.LocRow{Code: code, Description: "Row " + code}
			if err := tx.Where(models.LocRow{Code: code}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("failed to seed row %s: %w", code, err)
			}
			rows[code] = row
		}
		bins := make(map[string]models.LocBin, len(data.Bins))
		for _, code := range data.Bins {
			bin := models.LocBin{Code: code, Description: "Bin " + code}
			if err := tx.Where(models.LocBin{Code: code}).FirstOrCreate(&bin).Error; err != nil {
				return fmt.Errorf("failed to seed bin %s: %w", code, err)
			}
			bins[code] = bin
		}
		tiers := make(map[string]models.LocTier, len(data.Tiers))
		for _, code := range data.Tiers {
			tier := models.LocTier{Code: code, Description: "Tier " + code}
			if err := tx.Where(models.LocTier{Code: code}).FirstOrCreate(&tier).Error; err != nil {
				return fmt.Errorf("failed to seed tier %s: %w", code, err)
			}
			tiers[code] = tier
		}

		for _, r := range data.Rows {
			for _, b := range data.Bins {
				for _, t := range data.Tiers {
					code := models.LocationCode(r, b, t)
					loc := models.Location{
						Code:   code,
						RowID:  rows[r].ID,
						BinID:  bins[b].ID,
						TierID: tiers[t].ID,
					}
					if err := tx.Where(models.Location{Code: code}).FirstOrCreate(&loc).Error; err != nil {
						return fmt.Errorf("failed to seed location %s: %w", code, err)
					}
					summary.Locations++
				}
			}
		}

		categories := make([]string, 0, len(data.Catalog))
		for name := range data.Catalog {
			categories = append(categories, name)
		}
		sort.Strings(categories)
		for _, name := range categories {
			cat := models.ProductCategory{Name: name}
			if err := tx.Where(models.ProductCategory{Name: name}).FirstOrCreate(&cat).Error; err != nil {
				return fmt.Errorf("failed to seed category %s: %w", name, err)
			}
			for _, productName := range data.Catalog[name] {
				product := models.Product{Name: productName, CategoryID: cat.ID}
				if err := tx.Where(models.Product{Name: productName}).FirstOrCreate(&product).Error; err != nil {
					return fmt.Errorf("failed to seed product %s: %w", productName, err)
				}
				summary.Products++
			}
		}

		for _, bt := range data.BoxTypes {
			boxType := bt
			if err := tx.Where(models.BoxType{Code: bt.Code}).FirstOrCreate(&boxType).Error; err != nil {
				return fmt.Errorf("failed to seed box type %s: %w", bt.Code, err)
			}
			summary.BoxTypes++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
