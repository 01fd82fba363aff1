package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/pantrywms/internal/inventory"
)

type createPalletRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Status     string `json:"status" validate:"omitempty,oneof=Fill Merge Move"`
	LocationID *uint  `json:"location_id"`
}

type palletLocationRequest struct {
	LocationID uint `json:"location_id" validate:"required"`
}

type stageRequest struct {
	BoxNumber     string `json:"box_number" validate:"required,box_number"`
	BoxTypeID     uint   `json:"box_type_id"`
	ProductID     uint   `json:"product_id"`
	ExpYear       int    `json:"exp_year"`
	ExpMonthStart int    `json:"exp_month_start" validate:"min=0,max=12"`
	ExpMonthEnd   int    `json:"exp_month_end" validate:"min=0,max=12"`
}

func (s stageRequest) toInventory() inventory.StageRequest {
	return inventory.StageRequest{
		BoxNumber:     s.BoxNumber,
		BoxTypeID:     s.BoxTypeID,
		ProductID:     s.ProductID,
		ExpYear:       s.ExpYear,
		ExpMonthStart: s.ExpMonthStart,
		ExpMonthEnd:   s.ExpMonthEnd,
	}
}

type stageBatchRequest struct {
	Boxes []stageRequest `json:"boxes" validate:"required,min=1,dive"`
}

func (r *Router) listPallets(w http.ResponseWriter, req *http.Request) {
	pallets, err := r.inv.ListPallets(req.Context())
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, pallets)
}

func (r *Router) createPallet(w http.ResponseWriter, req *http.Request) {
	var body createPalletRequest
	if err := r.decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	pallet, err := r.inv.CreatePallet(req.Context(), body.Name, body.Status, body.LocationID)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusCreated, pallet)
}

func (r *Router) getPallet(w http.ResponseWriter, req *http.Request) {
	id, err := idParam(req, "id")
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	pallet, err := r.inv.GetPallet(req.Context(), id)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, pallet)
}

func (r *Router) deletePallet(w http.ResponseWriter, req *http.Request) {
	id, err := idParam(req, "id")
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	if err := r.inv.DeletePallet(req.Context(), id); err != nil {
		r.respondError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) setPalletLocation(w http.ResponseWriter, req *http.Request) {
	id, err := idParam(req, "id")
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	var body palletLocationRequest
	if err := r.decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	pallet, err := r.inv.SetPalletLocation(req.Context(), id, body.LocationID)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, pallet)
}

func (r *Router) stageBox(w http.ResponseWriter, req *http.Request) {
	id, err := idParam(req, "id")
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	var body stageRequest
	if err := r.decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	staged, err := r.inv.Stage(req.Context(), id, body.toInventory())
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusCreated, staged)
}

func (r *Router) stageBatch(w http.ResponseWriter, req *http.Request) {
	id, err := idParam(req, "id")
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	var body stageBatchRequest
	if err := r.decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	reqs := make([]inventory.StageRequest, len(body.Boxes))
	for i, b := range body.Boxes {
		reqs[i] = b.toInventory()
	}
	staged, err := r.inv.StageBatch(req.Context(), id, reqs)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusCreated, staged)
}

func (r *Router) unstageBox(w http.ResponseWriter, req *http.Request) {
	id, err := idParam(req, "id")
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	if err := r.inv.Unstage(req.Context(), id, mux.Vars(req)["number"]); err != nil {
		r.respondError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// finishPallet commits every staged box and removes the pallet
func (r *Router) finishPallet(w http.ResponseWriter, req *http.Request) {
	id, err := idParam(req, "id")
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	if err := r.inv.FinishPallet(req.Context(), id); err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"pallet_id": id, "finished": true})
}
