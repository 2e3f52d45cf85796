// Package service implements the marketplace rules: who may change what, in
// which state, and how stock and money move when a boat is sold.
//
// Every mutating operation runs as one repository.Store.Update transaction.
// Validation failures abort the transaction and leave no trace. Outbound
// transfers run only after the transaction has committed.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/repository"
)

// Sender moves currency out of the market. Implementations must not call
// Send twice for the same transfer reference.
type Sender interface {
	Send(ctx context.Context, t model.Transfer) error
}

// SuspendPolicy lists the operation groups frozen while the market is
// suspended, in addition to club-owner grants which are always frozen.
// Withdrawals are never frozen.
type SuspendPolicy struct {
	Purchases bool // PurchaseBoat
	Inventory bool // AddBoat, ToggleBoatStatus, RemoveBoat
	Clubs     bool // AddClub, OpenClub, CloseClub, RemoveClub
}

// DefaultSuspendPolicy freezes purchases only.
var DefaultSuspendPolicy = SuspendPolicy{Purchases: true}

// Market is the marketplace state machine and escrow ledger.
type Market struct {
	store  repository.Store
	sender Sender
	policy SuspendPolicy
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Market.
type Option func(*Market)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Market) {
		m.logger = logger
	}
}

// WithSuspendPolicy sets which operations the suspend switch freezes.
func WithSuspendPolicy(p SuspendPolicy) Option {
	return func(m *Market) {
		m.policy = p
	}
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Market) {
		m.now = now
	}
}

// New returns a Market over a bootstrapped store.
func New(store repository.Store, sender Sender, opts ...Option) *Market {
	m := &Market{
		store:  store,
		sender: sender,
		policy: DefaultSuspendPolicy,
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Policy returns the active suspend policy.
func (m *Market) Policy() SuspendPolicy { return m.policy }

// gate fails with ErrMarketSuspended when frozen is set and the market is
// suspended.
func gate(ctx context.Context, tx repository.Tx, frozen bool) error {
	if !frozen {
		return nil
	}
	info, err := tx.Market(ctx)
	if err != nil {
		return err
	}
	if info.Suspended {
		return model.ErrMarketSuspended
	}
	return nil
}

func requireOwner(ctx context.Context, tx repository.Tx, caller model.Account) error {
	info, err := tx.Market(ctx)
	if err != nil {
		return err
	}
	if caller == "" || caller != info.Owner {
		return model.ErrUnauthorized
	}
	return nil
}

func requireMarketAdmin(ctx context.Context, tx repository.Tx, caller model.Account) error {
	if caller == "" {
		return model.ErrUnauthorized
	}
	ok, err := tx.IsMarketAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrUnauthorized
	}
	return nil
}

func loadClub(ctx context.Context, tx repository.Tx, id model.ClubID) (model.Club, error) {
	c, err := tx.GetClub(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c, model.ErrClubNotFound
	}
	return c, err
}

func loadBoat(ctx context.Context, tx repository.Tx, id model.BoatID) (model.Boat, error) {
	b, err := tx.GetBoat(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return b, model.ErrBoatNotFound
	}
	return b, err
}

// requireText trims s and rejects it when empty.
func requireText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", model.ErrInvalidInput, field)
	}
	return s, nil
}

func requireAccount(a model.Account) error {
	if a == "" {
		return fmt.Errorf("%w: account is required", model.ErrInvalidInput)
	}
	return nil
}

func newReference() uuid.UUID { return uuid.New() }
