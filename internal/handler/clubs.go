package handler

import (
	"context"
	"net/http"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
)

// ListClubs handles GET /clubs
// Returns every club id, Removed clubs included.
func (h *Handler) ListClubs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.market.ListClubIDs(r.Context())
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	if ids == nil {
		ids = []model.ClubID{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// AddClub handles POST /clubs
// Creates an Open club owned by the caller.
func (h *Handler) AddClub(w http.ResponseWriter, r *http.Request) {
	var req model.AddClubRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id, err := h.market.AddClub(r.Context(), Caller(r.Context()), req.Name, req.Location)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	club, err := h.market.GetClub(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, club)
}

// GetClub handles GET /clubs/{id}
func (h *Handler) GetClub(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	club, err := h.market.GetClub(r.Context(), model.ClubID(id))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, club)
}

// ListClubBoats handles GET /clubs/{id}/boats
// Returns the ids of every boat in the club, Removed boats included.
func (h *Handler) ListClubBoats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ids, err := h.market.ListBoatIDsByClub(r.Context(), model.ClubID(id))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	if ids == nil {
		ids = []model.BoatID{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// OpenClub handles POST /clubs/{id}/open
func (h *Handler) OpenClub(w http.ResponseWriter, r *http.Request) {
	h.transitionClub(w, r, h.market.OpenClub)
}

// CloseClub handles POST /clubs/{id}/close
func (h *Handler) CloseClub(w http.ResponseWriter, r *http.Request) {
	h.transitionClub(w, r, h.market.CloseClub)
}

// RemoveClub handles DELETE /clubs/{id}
func (h *Handler) RemoveClub(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.market.RemoveClub(r.Context(), Caller(r.Context()), model.ClubID(id)); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type clubTransition func(ctx context.Context, caller model.Account, id model.ClubID) error

func (h *Handler) transitionClub(w http.ResponseWriter, r *http.Request, apply clubTransition) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := apply(r.Context(), Caller(r.Context()), model.ClubID(id)); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	club, err := h.market.GetClub(r.Context(), model.ClubID(id))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, club)
}
