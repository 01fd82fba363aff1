package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/pantrywms/internal/buildinfo"
	"github.com/xelth-com/pantrywms/internal/inventory"
	"github.com/xelth-com/pantrywms/internal/metrics"
	"github.com/xelth-com/pantrywms/internal/models"
	"github.com/xelth-com/pantrywms/internal/testutil"
)

func TestMain(m *testing.M) {
	os.Exit(testutil.Run(m))
}

type apiEnv struct {
	router *Router
	f      *testutil.Fixtures
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	f := testutil.Seed(t, db)
	rules := inventory.Rules{MinExpYear: 2020, MaxExpYear: 2040, DefaultBoxType: "Evans"}
	router := NewRouter(Deps{
		Inventory: inventory.NewManager(db, rules, nil),
		DB:        db,
		Metrics:   metrics.New(),
		Version:   "test",
	})
	return &apiEnv{router: router, f: f}
}

func (e *apiEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) inventory.Error {
	t.Helper()
	var out inventory.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(inventory.KindInvalidValue))
	assert.Equal(t, http.StatusConflict, statusFor(inventory.KindInvalidAction))
	assert.Equal(t, http.StatusNotFound, statusFor(inventory.KindNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(inventory.KindInternal))
	assert.Equal(t, http.StatusInternalServerError, statusFor(""))
}

func TestBoxLifecycleOverHTTP(t *testing.T) {
	e := setupAPI(t)

	rec := e.do(t, http.MethodPost, "/api/boxes", map[string]interface{}{"box_number": "BOX00042"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var box models.Box
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &box))
	assert.Equal(t, e.f.Evans.ID, box.BoxTypeID)

	rec = e.do(t, http.MethodPost, "/api/boxes/BOX00042/fill", map[string]interface{}{
		"location_id": e.f.Loc0102A.ID, "product_id": e.f.Corn.ID, "exp_year": 2027,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/boxes/BOX00042/move", map[string]interface{}{"location_id": e.f.Loc0201A.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/boxes/BOX00042/consume", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/api/boxes/BOX00042/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var acts []models.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acts))
	require.Len(t, acts, 1)
	assert.Equal(t, "02", acts[0].LocRow)
	assert.NotNil(t, acts[0].DateConsumed)

	rec = e.do(t, http.MethodGet, "/api/boxes/next-number", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "BOX00043")
}

func TestErrorMapping(t *testing.T) {
	e := setupAPI(t)
	e.do(t, http.MethodPost, "/api/boxes", map[string]interface{}{"box_number": "BOX00001"})

	rec := e.do(t, http.MethodPost, "/api/boxes/BOX00001/consume", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, inventory.KindInvalidAction, decodeError(t, rec).Kind)

	rec = e.do(t, http.MethodGet, "/api/boxes/BOX00077", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/boxes/BOX7", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/boxes", map[string]interface{}{"box_number": "CRATE1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "must look like BOX00001", decodeError(t, rec).Details["box_number"])

	rec = e.do(t, http.MethodPost, "/api/boxes/BOX00001/fill", map[string]interface{}{"exp_year": 2027})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeError(t, rec).Details
	assert.Equal(t, "required", details["location_id"])
	assert.Equal(t, "required", details["product_id"])

	rec = e.do(t, http.MethodGet, "/api/boxes?filled=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPalletFlowOverHTTP(t *testing.T) {
	e := setupAPI(t)

	rec := e.do(t, http.MethodPost, "/api/pallets", map[string]interface{}{"name": "Truck 9", "location_id": e.f.Loc0103B.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var pallet models.Pallet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pallet))
	base := fmt.Sprintf("/api/pallets/%d", pallet.ID)

	rec = e.do(t, http.MethodPost, base+"/boxes/batch", map[string]interface{}{
		"boxes": []map[string]interface{}{
			{"box_number": "BOX00001", "product_id": e.f.Corn.ID, "exp_year": 2027},
			{"box_number": "BOX00001", "product_id": e.f.Corn.ID, "exp_year": 2027},
		},
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "BOX00001")

	rec = e.do(t, http.MethodPost, base+"/boxes/batch", map[string]interface{}{
		"boxes": []map[string]interface{}{
			{"box_number": "BOX00001", "product_id": e.f.Corn.ID, "exp_year": 2027},
			{"box_number": "BOX00002", "product_id": e.f.Beans.ID, "exp_year": 2027},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, base+"/boxes", map[string]interface{}{
		"box_number": "BOX00003", "product_id": e.f.Peaches.ID, "exp_year": 2028,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pallet))
	assert.Len(t, pallet.Boxes, 3)

	rec = e.do(t, http.MethodPost, base+"/finish", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodGet, fmt.Sprintf("/api/boxes?location_id=%d&filled=true", e.f.Loc0103B.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var boxes []models.Box
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &boxes))
	assert.Len(t, boxes, 3)

	rec = e.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	e := setupAPI(t)

	rec := e.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	rec = e.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"default_box_type":"Evans"`)

	rec = e.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pantry_http_requests_total{method="GET",path="/api/status",status="200"} 1`)
}

func TestStatusUptimeFollowsProcessStart(t *testing.T) {
	e := setupAPI(t)
	old := buildinfo.StartTime
	t.Cleanup(func() { buildinfo.StartTime = old })
	buildinfo.StartTime = time.Now().Add(-90 * time.Second)

	rec := e.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		Uptime int `json:"uptime_seconds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.GreaterOrEqual(t, status.Uptime, 90)
	assert.Less(t, status.Uptime, 3600)
}
