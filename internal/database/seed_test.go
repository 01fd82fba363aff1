package database_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/pantrywms/internal/database"
	"github.com/xelth-com/pantrywms/internal/models"
	"github.com/xelth-com/pantrywms/internal/testutil"
)

func TestMain(m *testing.M) {
	os.Exit(testutil.Run(m))
}

func TestSeedReferenceIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	data := testutil.TestReference()

	first, err := database.SeedReference(db, data)
	require.NoError(t, err)
	assert.Equal(t, 12, first.Locations)
	assert.Equal(t, 3, first.Products)
	assert.Equal(t, 2, first.BoxTypes)

	second, err := database.SeedReference(db, data)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var locations, products int64
	require.NoError(t, db.Model(&models.Location{}).Count(&locations).Error)
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.EqualValues(t, 12, locations)
	assert.EqualValues(t, 3, products)

	var loc models.Location
	require.NoError(t, db.Preload("Row").Preload("Bin").Preload("Tier").
		Where("code = ?", models.LocationCode("02", "03", "B1")).First(&loc).Error)
	assert.Equal(t, "02", loc.Row.Code)
	assert.Equal(t, "03", loc.Bin.Code)
	assert.Equal(t, "B1", loc.Tier.Code)
}

func TestDemoReferenceShape(t *testing.T) {
	data := database.DemoReference()
	assert.Len(t, data.Rows, 4)
	assert.Len(t, data.Bins, 9)
	assert.Len(t, data.Tiers, 6)

	codes := make([]string, 0, len(data.BoxTypes))
	for _, bt := range data.BoxTypes {
		codes = append(codes, bt.Code)
		assert.Positive(t, bt.DefaultQty, bt.Code)
	}
	assert.Contains(t, codes, "Evans")
}
