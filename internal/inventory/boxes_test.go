package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoxErrors(t *testing.T) {
	e := setup(t)
	e.newBox(t, "BOX00001")

	_, err := e.m.NewBox(e.ctx, "BOX00001", e.f.Evans.ID)
	assert.Equal(t, KindInvalidAction, KindOf(err))

	_, err = e.m.NewBox(e.ctx, "box00001", e.f.Evans.ID)
	assert.Equal(t, KindInvalidAction, KindOf(err))

	_, err = e.m.NewBox(e.ctx, "BOX123", e.f.Evans.ID)
	assert.Equal(t, KindInvalidValue, KindOf(err))

	_, err = e.m.NewBox(e.ctx, "BOX00002", 99999)
	assert.Equal(t, KindInvalidValue, KindOf(err))
}

func TestNextBoxNumber(t *testing.T) {
	e := setup(t)

	next, err := e.m.NextBoxNumber(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, "BOX00001", next)

	e.newBox(t, "BOX00009")
	e.newBox(t, "BOX00120")
	next, err = e.m.NextBoxNumber(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, "BOX00121", next)
}

func TestGetBox(t *testing.T) {
	e := setup(t)
	e.newBox(t, "BOX00001")
	e.fill(t, "BOX00001", e.f.Loc0102A, e.f.Corn)

	box, err := e.m.GetBox(e.ctx, " box00001 ")
	require.NoError(t, err)
	assert.Equal(t, "Evans", box.BoxType.Code)
	require.NotNil(t, box.Location)
	assert.Equal(t, "01", box.Location.Row.Code)
	require.NotNil(t, box.Product)
	assert.Equal(t, "Vegetables", box.Product.Category.Name)

	_, err = e.m.GetBox(e.ctx, "BOX00002")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestListBoxesFilter(t *testing.T) {
	e := setup(t)
	e.newBox(t, "BOX00001")
	e.newBox(t, "BOX00002")
	e.fill(t, "BOX00002", e.f.Loc0102A, e.f.Corn)
	e.newBox(t, "BOX00003")
	e.fill(t, "BOX00003", e.f.Loc0102A, e.f.Beans)

	all, err := e.m.ListBoxes(e.ctx, BoxFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	empty := false
	got, err := e.m.ListBoxes(e.ctx, BoxFilter{Filled: &empty})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BOX00001", got[0].BoxNumber)

	got, err = e.m.ListBoxes(e.ctx, BoxFilter{ProductID: e.f.Beans.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BOX00003", got[0].BoxNumber)
}

func TestReferenceLookups(t *testing.T) {
	e := setup(t)

	locs, err := e.m.ListLocations(e.ctx)
	require.NoError(t, err)
	assert.Len(t, locs, 12)

	loc, err := e.m.LocationByCode(e.ctx, "0201B1")
	require.NoError(t, err)
	assert.Equal(t, "B1", loc.Tier.Code)

	_, err = e.m.LocationByCode(e.ctx, "9999Z9")
	assert.True(t, IsKind(err, KindInvalidValue))

	products, err := e.m.ListProducts(e.ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	types, err := e.m.ListBoxTypes(e.ctx)
	require.NoError(t, err)
	assert.Len(t, types, 2)
}
