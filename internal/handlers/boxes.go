package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/xelth-com/pantrywms/internal/inventory"
)

type createBoxRequest struct {
	BoxNumber string `json:"box_number" validate:"required,box_number"`
	BoxTypeID uint   `json:"box_type_id"`
}

type fillRequest struct {
	LocationID    uint `json:"location_id" validate:"required"`
	ProductID     uint `json:"product_id" validate:"required"`
	ExpYear       int  `json:"exp_year" validate:"required"`
	ExpMonthStart int  `json:"exp_month_start" validate:"min=0,max=12"`
	ExpMonthEnd   int  `json:"exp_month_end" validate:"min=0,max=12"`
}

type moveRequest struct {
	LocationID uint `json:"location_id" validate:"required"`
}

type moveLocationRequest struct {
	ToLocationID uint `json:"to_location_id" validate:"required"`
}

// listBoxes returns boxes, optionally filtered by location, product or fill state
func (r *Router) listBoxes(w http.ResponseWriter, req *http.Request) {
	var filter inventory.BoxFilter
	var err error
	if filter.LocationID, err = uintQuery(req, "location_id"); err != nil {
		r.respondError(w, req, err)
		return
	}
	if filter.ProductID, err = uintQuery(req, "product_id"); err != nil {
		r.respondError(w, req, err)
		return
	}
	if raw := req.URL.Query().Get("filled"); raw != "" {
		filled, err := strconv.ParseBool(raw)
		if err != nil {
			r.respondError(w, req, inventory.ErrInvalidValue("filled must be true or false").WithDetail("filled", raw))
			return
		}
		filter.Filled = &filled
	}

	boxes, err := r.inv.ListBoxes(req.Context(), filter)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, boxes)
}

// createBox registers a new empty box
func (r *Router) createBox(w http.ResponseWriter, req *http.Request) {
	var body createBoxRequest
	if err := r.decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	box, err := r.inv.NewBox(req.Context(), body.BoxNumber, body.BoxTypeID)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusCreated, box)
}

func (r *Router) nextBoxNumber(w http.ResponseWriter, req *http.Request) {
	next, err := r.inv.NextBoxNumber(req.Context())
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"box_number": next})
}

func (r *Router) getBox(w http.ResponseWriter, req *http.Request) {
	box, err := r.inv.GetBox(req.Context(), mux.Vars(req)["number"])
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, box)
}

func (r *Router) boxHistory(w http.ResponseWriter, req *http.Request) {
	acts, err := r.inv.BoxHistory(req.Context(), mux.Vars(req)["number"])
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, acts)
}

func (r *Router) fillBox(w http.ResponseWriter, req *http.Request) {
	var body fillRequest
	if err := r.decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	box, err := r.inv.Fill(req.Context(), inventory.FillRequest{
		BoxNumber:     mux.Vars(req)["number"],
		LocationID:    body.LocationID,
		ProductID:     body.ProductID,
		ExpYear:       body.ExpYear,
		ExpMonthStart: body.ExpMonthStart,
		ExpMonthEnd:   body.ExpMonthEnd,
	})
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, box)
}

func (r *Router) moveBox(w http.ResponseWriter, req *http.Request) {
	var body moveRequest
	if err := r.decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	box, err := r.inv.Move(req.Context(), mux.Vars(req)["number"], body.LocationID)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, box)
}

func (r *Router) consumeBox(w http.ResponseWriter, req *http.Request) {
	box, err := r.inv.Consume(req.Context(), mux.Vars(req)["number"])
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, box)
}

// moveLocation moves every filled box at {id} to another location
func (r *Router) moveLocation(w http.ResponseWriter, req *http.Request) {
	from, err := idParam(req, "id")
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	var body moveLocationRequest
	if err := r.decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	moved, err := r.inv.MoveLocation(req.Context(), from, body.ToLocationID)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"moved": moved})
}

// listLocations returns every location, or the one matching ?code=
func (r *Router) listLocations(w http.ResponseWriter, req *http.Request) {
	if code := req.URL.Query().Get("code"); code != "" {
		loc, err := r.inv.LocationByCode(req.Context(), code)
		if err != nil {
			r.respondError(w, req, err)
			return
		}
		respondJSON(w, http.StatusOK, loc)
		return
	}
	locs, err := r.inv.ListLocations(req.Context())
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, locs)
}

func (r *Router) listProducts(w http.ResponseWriter, req *http.Request) {
	products, err := r.inv.ListProducts(req.Context())
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (r *Router) listBoxTypes(w http.ResponseWriter, req *http.Request) {
	types, err := r.inv.ListBoxTypes(req.Context())
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, types)
}
