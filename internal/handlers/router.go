package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/xelth-com/pantrywms/internal/buildinfo"
	"github.com/xelth-com/pantrywms/internal/inventory"
	"github.com/xelth-com/pantrywms/internal/metrics"
	"github.com/xelth-com/pantrywms/internal/middleware"
	"github.com/xelth-com/pantrywms/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer adapts. Hub and Metrics are
// optional.
type Deps struct {
	Inventory *inventory.Manager
	DB        *gorm.DB
	Hub       *websocket.Hub
	Metrics   *metrics.Metrics
	Log       *zap.Logger
	Version   string
}

// Router wraps the mux router and the inventory manager
type Router struct {
	*mux.Router
	inv      *inventory.Manager
	db       *gorm.DB
	hub      *websocket.Hub
	log      *zap.Logger
	validate *validator.Validate
	version  string
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(d Deps) *Router {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{
		Router:   mux.NewRouter(),
		inv:      d.Inventory,
		db:       d.DB,
		hub:      d.Hub,
		log:      log,
		validate: newValidator(),
		version:  d.Version,
	}

	var rec middleware.HTTPRecorder
	if d.Metrics != nil {
		rec = d.Metrics
	}
	r.Use(middleware.AccessLog(log, rec))

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler()).Methods("GET")
	}
	if d.Hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(d.Hub, w, req)
		})
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", r.getStatus).Methods("GET")

	// Boxes
	api.HandleFunc("/boxes", r.listBoxes).Methods("GET")
	api.HandleFunc("/boxes", r.createBox).Methods("POST")
	api.HandleFunc("/boxes/next-number", r.nextBoxNumber).Methods("GET")
	api.HandleFunc("/boxes/{number}", r.getBox).Methods("GET")
	api.HandleFunc("/boxes/{number}/activities", r.boxHistory).Methods("GET")
	api.HandleFunc("/boxes/{number}/fill", r.fillBox).Methods("POST")
	api.HandleFunc("/boxes/{number}/move", r.moveBox).Methods("POST")
	api.HandleFunc("/boxes/{number}/consume", r.consumeBox).Methods("POST")

	// Reference data
	api.HandleFunc("/locations", r.listLocations).Methods("GET")
	api.HandleFunc("/locations/{id}/move", r.moveLocation).Methods("POST")
	api.HandleFunc("/products", r.listProducts).Methods("GET")
	api.HandleFunc("/box-types", r.listBoxTypes).Methods("GET")

	// Pallets
	api.HandleFunc("/pallets", r.listPallets).Methods("GET")
	api.HandleFunc("/pallets", r.createPallet).Methods("POST")
	api.HandleFunc("/pallets/{id}", r.getPallet).Methods("GET")
	api.HandleFunc("/pallets/{id}", r.deletePallet).Methods("DELETE")
	api.HandleFunc("/pallets/{id}/location", r.setPalletLocation).Methods("PUT")
	api.HandleFunc("/pallets/{id}/boxes", r.stageBox).Methods("POST")
	api.HandleFunc("/pallets/{id}/boxes/batch", r.stageBatch).Methods("POST")
	api.HandleFunc("/pallets/{id}/boxes/{number}", r.unstageBox).Methods("DELETE")
	api.HandleFunc("/pallets/{id}/finish", r.finishPallet).Methods("POST")

	return r
}

// healthCheck reports whether the database answers
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	status := "ok"
	code := http.StatusOK
	if r.db != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := r.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			r.log.Warn("Health check failed", zap.Error(err))
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, code, map[string]string{"status": status})
}

// getStatus returns the current status
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	clients := 0
	if r.hub != nil {
		clients = r.hub.ClientCount()
	}
	rules := r.inv.Rules()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "running",
		"version":          r.version,
		"build_time":       buildinfo.BuildTime,
		"uptime_seconds":   int(time.Since(buildinfo.StartTime).Seconds()),
		"live_clients":     clients,
		"exp_year_min":     rules.MinExpYear,
		"exp_year_max":     rules.MaxExpYear,
		"default_box_type": rules.DefaultBoxType,
	})
}
