package handler

import (
	"errors"
	"net/http"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
)

// PurchaseBoat handles POST /boats/{id}/purchase
// Buys boats for the caller. Overpayment is refunded. If the refund transfer
// fails the purchase still stands and is returned with a 502.
func (h *Handler) PurchaseBoat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.PurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	funds, err := h.amount("funds_sent", req.FundsSent, "funds", req.Funds)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	p, err := h.market.PurchaseBoat(r.Context(), Caller(r.Context()), model.BoatID(id), req.Quantity, funds)
	if errors.Is(err, model.ErrRefundFailed) {
		h.fail(w, r, err, h.purchaseView(p))
		return
	}
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, h.purchaseView(p))
}

// GetPurchase handles GET /purchases/{id}
func (h *Handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.market.GetPurchase(r.Context(), model.PurchaseID(id))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, h.purchaseView(p))
}

// Withdraw handles POST /withdrawals
// Pays out the caller's whole balance. If the transfer fails the balance
// stays zero and the withdrawal is returned with a 502.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	wd, err := h.market.WithdrawFunds(r.Context(), Caller(r.Context()))
	if errors.Is(err, model.ErrTransferFailed) {
		h.fail(w, r, err, h.withdrawalView(wd))
		return
	}
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, h.withdrawalView(wd))
}

// ListReconciliations handles GET /reconciliations
// Returns transfers that failed after commit. Owner only.
func (h *Handler) ListReconciliations(w http.ResponseWriter, r *http.Request) {
	failures, err := h.market.ListTransferFailures(r.Context(), Caller(r.Context()))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	out := make([]failureView, 0, len(failures))
	for _, f := range failures {
		out = append(out, failureView{TransferFailure: f, AmountDisplay: h.units.Format(f.Amount)})
	}
	writeJSON(w, http.StatusOK, out)
}
