package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
)

// AccountHeader carries the caller identity established by the wallet or
// session layer in front of this service.
const AccountHeader = "X-Account"

type ctxKey int

const accountKey ctxKey = iota

// Identity stores the caller from AccountHeader in the request context.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a := model.NormalizeAccount(r.Header.Get(AccountHeader)); a != "" {
			r = r.WithContext(context.WithValue(r.Context(), accountKey, a))
		}
		next.ServeHTTP(w, r)
	})
}

// Caller returns the account set by Identity, or "".
func Caller(ctx context.Context) model.Account {
	a, _ := ctx.Value(accountKey).(model.Account)
	return a
}

// RequireAccount rejects requests without a caller identity.
func RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Caller(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, AccountHeader+" header is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Logger writes one structured access log line per request.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
				"account", Caller(r.Context()),
			)
		})
	}
}

// CORS allows browser clients from any origin to call the API.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+AccountHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
