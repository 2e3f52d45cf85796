package handler

import (
	"fmt"
	"net/http"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/service"
)

// ListBoatsForSale handles GET /boats
// Returns every boat that can be bought right now.
func (h *Handler) ListBoatsForSale(w http.ResponseWriter, r *http.Request) {
	listings, err := h.market.ListBoatsForSale(r.Context())
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	out := make([]listingView, 0, len(listings))
	for _, l := range listings {
		out = append(out, listingView{
			Boat:         h.boatView(l.Boat),
			ClubName:     l.ClubName,
			ClubLocation: l.ClubLocation,
			Seller:       l.Seller,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// AddBoat handles POST /boats
// Lists a boat under the caller's club.
func (h *Handler) AddBoat(w http.ResponseWriter, r *http.Request) {
	var req model.AddBoatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	price, err := h.amount("unit_price", req.UnitPrice, "price", req.Price)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	id, err := h.market.AddBoat(r.Context(), Caller(r.Context()), service.NewBoat{
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	boat, err := h.market.GetBoat(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, h.boatView(boat))
}

// GetBoat handles GET /boats/{id}
func (h *Handler) GetBoat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	boat, err := h.market.GetBoat(r.Context(), model.BoatID(id))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, h.boatView(boat))
}

// ToggleBoat handles POST /boats/{id}/toggle
func (h *Handler) ToggleBoat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.market.ToggleBoatStatus(r.Context(), Caller(r.Context()), model.BoatID(id)); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	boat, err := h.market.GetBoat(r.Context(), model.BoatID(id))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, h.boatView(boat))
}

// RemoveBoat handles DELETE /boats/{id}
func (h *Handler) RemoveBoat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.market.RemoveBoat(r.Context(), Caller(r.Context()), model.BoatID(id)); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// amount resolves a money field given either in smallest units or as a
// display string.
func (h *Handler) amount(unitsField string, units model.Amount, displayField, display string) (model.Amount, error) {
	switch {
	case display != "" && units != 0:
		return 0, fmt.Errorf("%w: give either %s or %s, not both", model.ErrInvalidInput, unitsField, displayField)
	case display != "":
		return h.units.Parse(display)
	default:
		return units, nil
	}
}
