package handler

import (
	"net/http"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
)

// GetMarket handles GET /market
// Returns the owner, the suspend switch and which operations it freezes.
func (h *Handler) GetMarket(w http.ResponseWriter, r *http.Request) {
	info, err := h.market.MarketInfo(r.Context())
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, h.marketView(info, h.market.Policy()))
}

// ToggleMarket handles POST /market/toggle
func (h *Handler) ToggleMarket(w http.ResponseWriter, r *http.Request) {
	suspended, err := h.market.ToggleSuspended(r.Context(), Caller(r.Context()))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"suspended": suspended})
}

// ListAdmins handles GET /admins
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.market.ListMarketAdmins(r.Context())
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, accounts(admins))
}

// AddAdmin handles POST /admins
func (h *Handler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	var req model.AccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	target := model.NormalizeAccount(req.Account)
	if err := h.market.AddMarketAdmin(r.Context(), Caller(r.Context()), target); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, model.AccountRequest{Account: string(target)})
}

// RemoveAdmin handles DELETE /admins/{account}
func (h *Handler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.market.RemoveMarketAdmin(r.Context(), Caller(r.Context()), pathAccount(r)); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListClubOwners handles GET /club-owners
func (h *Handler) ListClubOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.market.ListClubOwners(r.Context())
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, accounts(owners))
}

// AddClubOwner handles POST /club-owners
func (h *Handler) AddClubOwner(w http.ResponseWriter, r *http.Request) {
	var req model.AccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	target := model.NormalizeAccount(req.Account)
	if err := h.market.AddClubOwner(r.Context(), Caller(r.Context()), target); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, model.AccountRequest{Account: string(target)})
}

// RemoveClubOwner handles DELETE /club-owners/{account}
func (h *Handler) RemoveClubOwner(w http.ResponseWriter, r *http.Request) {
	if err := h.market.RemoveClubOwner(r.Context(), Caller(r.Context()), pathAccount(r)); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// accounts returns an empty array rather than null for better client
// compatibility.
func accounts(in []model.Account) []model.Account {
	if in == nil {
		return []model.Account{}
	}
	return in
}
