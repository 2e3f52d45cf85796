package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
)

// ProviderError is a non-2xx response from the payment provider.
type ProviderError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider error %d: %s", e.StatusCode, e.Message)
}

// HTTPSender posts transfers to a payment provider endpoint.
type HTTPSender struct {
	url        string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures an HTTPSender.
type Option func(*HTTPSender)

// NewHTTPSender creates a sender for the given payout endpoint.
func NewHTTPSender(url, apiKey string, opts ...Option) *HTTPSender {
	s := &HTTPSender{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSender) {
		s.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *HTTPSender) {
		s.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *HTTPSender) {
		s.httpClient = hc
	}
}

type payoutRequest struct {
	Reference string `json:"reference"`
	Kind      string `json:"kind"`
	To        string `json:"to"`
	Amount    int64  `json:"amount"`
}

// maxErrorBody caps how much of a failed response is kept.
const maxErrorBody = 4 << 10

// Send posts t once. Any transport error or non-2xx status is a failure.
func (s *HTTPSender) Send(ctx context.Context, t model.Transfer) error {
	body, err := json.Marshal(payoutRequest{
		Reference: t.Reference.String(),
		Kind:      string(t.Kind),
		To:        string(t.To),
		Amount:    int64(t.Amount),
	})
	if err != nil {
		return fmt.Errorf("marshal transfer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", t.Reference.String())
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       respBody,
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Debug("transfer accepted",
		"reference", t.Reference,
		"kind", t.Kind,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return nil
}
