package handler

import "net/http"

// GetBalance handles GET /accounts/{account}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	account := pathAccount(r)
	bal, err := h.market.Balance(r.Context(), account)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, balanceView{Account: account, Balance: bal, Display: h.units.Format(bal)})
}

// GetOwnedClub handles GET /accounts/{account}/club
// Returns club_id 0 when the account has never owned a club.
func (h *Handler) GetOwnedClub(w http.ResponseWriter, r *http.Request) {
	account := pathAccount(r)
	id, err := h.market.OwnedClub(r.Context(), account)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": account, "club_id": id})
}

// GetRoles handles GET /accounts/{account}/roles
func (h *Handler) GetRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.market.Roles(r.Context(), pathAccount(r))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

// ListPurchases handles GET /accounts/{account}/purchases
func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.market.ListPurchasesByBuyer(r.Context(), pathAccount(r))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	out := make([]purchaseView, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, h.purchaseView(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// ListWithdrawals handles GET /accounts/{account}/withdrawals
func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := h.market.ListWithdrawals(r.Context(), pathAccount(r))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	out := make([]withdrawalView, 0, len(withdrawals))
	for _, wd := range withdrawals {
		out = append(out, h.withdrawalView(wd))
	}
	writeJSON(w, http.StatusOK, out)
}
