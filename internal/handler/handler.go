// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the marketplace service.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/money"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/service"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/version"
)

// Handler holds all HTTP handlers for the marketplace API.
type Handler struct {
	market *service.Market
	units  money.Units
	logger *slog.Logger
}

// New constructs a Handler. A nil logger uses slog.Default().
func New(market *service.Market, units money.Units, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{market: market, units: units, logger: logger}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pathID parses a positive integer id from the URL.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func pathAccount(r *http.Request) model.Account {
	return model.NormalizeAccount(chi.URLParam(r, "account"))
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrRefundFailed), errors.Is(err, model.ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, model.ErrClubNotFound),
		errors.Is(err, model.ErrBoatNotFound),
		errors.Is(err, model.ErrPurchaseNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidPrice),
		errors.Is(err, model.ErrInvalidQuantity),
		errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrAmountOverflow),
		errors.Is(err, money.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case model.ErrorCode(err) != "":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its status and error kind. record is the committed
// purchase or withdrawal when a transfer failed after commit.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, record any) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, status, "internal error")
		return
	}

	resp := model.ErrorResponse{Error: err.Error(), Code: model.ErrorCode(err)}
	if resp.Code == "" && errors.Is(err, money.ErrInvalidAmount) {
		resp.Code = "InvalidAmount"
	}
	var terr *model.TransferError
	if errors.As(err, &terr) {
		resp.Reference = terr.Reference().String()
		resp.Record = record
	}
	writeJSON(w, status, resp)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Get(),
	})
}
