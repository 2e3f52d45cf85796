// Package repository persists marketplace state. Every mutation runs inside a
// Store.Update transaction, and all Update transactions are serialized: one
// commits or rolls back entirely before the next begins.
package repository

import (
	"context"
	"errors"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrOwnerMismatch is returned by Bootstrap when the store already belongs to
// a different owner. The owner is fixed at creation.
var ErrOwnerMismatch = errors.New("market already bootstrapped with a different owner")

// ErrNotBootstrapped is returned when the market row has not been created.
var ErrNotBootstrapped = errors.New("market not bootstrapped")

// ErrReadOnly is returned when a View transaction attempts a write.
var ErrReadOnly = errors.New("write in read-only transaction")

// Store is a transactional marketplace store.
type Store interface {
	// Bootstrap creates the market with its owner, seeding the owner as a
	// market admin. It is a no-op when the market already has that owner.
	Bootstrap(ctx context.Context, owner model.Account) error

	// Update runs fn in a serialized read-write transaction. Changes made
	// through tx are committed only if fn returns nil.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(tx Tx) error) error

	Close()
}

// Tx is the set of queries available inside a transaction.
type Tx interface {
	Market(ctx context.Context) (model.MarketInfo, error)
	SetSuspended(ctx context.Context, suspended bool) error

	IsMarketAdmin(ctx context.Context, a model.Account) (bool, error)
	InsertMarketAdmin(ctx context.Context, a model.Account) error
	DeleteMarketAdmin(ctx context.Context, a model.Account) error
	ListMarketAdmins(ctx context.Context) ([]model.Account, error)

	IsClubOwner(ctx context.Context, a model.Account) (bool, error)
	InsertClubOwner(ctx context.Context, a model.Account) error
	DeleteClubOwner(ctx context.Context, a model.Account) error
	ListClubOwners(ctx context.Context) ([]model.Account, error)

	// OwnedClub returns the club mapped to a, or 0 when there is none.
	OwnedClub(ctx context.Context, a model.Account) (model.ClubID, error)
	SetOwnedClub(ctx context.Context, a model.Account, id model.ClubID) error

	// InsertClub stores c and assigns c.ID.
	InsertClub(ctx context.Context, c *model.Club) error
	GetClub(ctx context.Context, id model.ClubID) (model.Club, error)
	SetClubStatus(ctx context.Context, id model.ClubID, status model.ClubStatus) error
	ListClubIDs(ctx context.Context) ([]model.ClubID, error)

	// InsertBoat stores b and assigns b.ID.
	InsertBoat(ctx context.Context, b *model.Boat) error
	GetBoat(ctx context.Context, id model.BoatID) (model.Boat, error)
	SetBoatStatus(ctx context.Context, id model.BoatID, status model.BoatStatus) error
	SetBoatQuantity(ctx context.Context, id model.BoatID, quantity int64) error
	ListBoatIDsByClub(ctx context.Context, club model.ClubID) ([]model.BoatID, error)

	Balance(ctx context.Context, a model.Account) (model.Amount, error)
	SetBalance(ctx context.Context, a model.Account, amount model.Amount) error

	// InsertPurchase appends p and assigns p.ID.
	InsertPurchase(ctx context.Context, p *model.Purchase) error
	GetPurchase(ctx context.Context, id model.PurchaseID) (model.Purchase, error)
	ListPurchasesByBuyer(ctx context.Context, buyer model.Account) ([]model.Purchase, error)

	// InsertWithdrawal appends w and assigns w.ID.
	InsertWithdrawal(ctx context.Context, w *model.Withdrawal) error
	ListWithdrawals(ctx context.Context, a model.Account) ([]model.Withdrawal, error)

	// InsertTransferFailure appends f and assigns f.ID.
	InsertTransferFailure(ctx context.Context, f *model.TransferFailure) error
	ListTransferFailures(ctx context.Context) ([]model.TransferFailure, error)
}
