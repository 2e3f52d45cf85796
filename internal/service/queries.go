package service

import (
	"context"
	"errors"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/repository"
)

// MarketInfo returns the owner and the suspend switch.
func (m *Market) MarketInfo(ctx context.Context) (model.MarketInfo, error) {
	var info model.MarketInfo
	err := m.store.View(ctx, func(tx repository.Tx) error {
		var err error
		info, err = tx.Market(ctx)
		return err
	})
	return info, err
}

// GetClub returns a club by id.
func (m *Market) GetClub(ctx context.Context, id model.ClubID) (model.Club, error) {
	var c model.Club
	err := m.store.View(ctx, func(tx repository.Tx) error {
		var err error
		c, err = loadClub(ctx, tx, id)
		return err
	})
	return c, err
}

// GetBoat returns a boat by id.
func (m *Market) GetBoat(ctx context.Context, id model.BoatID) (model.Boat, error) {
	var b model.Boat
	err := m.store.View(ctx, func(tx repository.Tx) error {
		var err error
		b, err = loadBoat(ctx, tx, id)
		return err
	})
	return b, err
}

// ListClubIDs returns every club id, Removed clubs included.
func (m *Market) ListClubIDs(ctx context.Context) ([]model.ClubID, error) {
	var ids []model.ClubID
	err := m.store.View(ctx, func(tx repository.Tx) error {
		var err error
		ids, err = tx.ListClubIDs(ctx)
		return err
	})
	return ids, err
}

// ListBoatIDsByClub returns the ids of every boat in a club, Removed boats
// included.
func (m *Market) ListBoatIDsByClub(ctx context.Context, club model.ClubID) ([]model.BoatID, error) {
	var ids []model.BoatID
	err := m.store.View(ctx, func(tx repository.Tx) error {
		if _, err := loadClub(ctx, tx, club); err != nil {
			return err
		}
		var err error
		ids, err = tx.ListBoatIDsByClub(ctx, club)
		return err
	})
	return ids, err
}

// ListMarketAdmins returns the market admins in the order they were added.
func (m *Market) ListMarketAdmins(ctx context.Context) ([]model.Account, error) {
	var out []model.Account
	err := m.store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListMarketAdmins(ctx)
		return err
	})
	return out, err
}

// ListClubOwners returns the club owners in the order they were added.
func (m *Market) ListClubOwners(ctx context.Context) ([]model.Account, error) {
	var out []model.Account
	err := m.store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListClubOwners(ctx)
		return err
	})
	return out, err
}

// Balance returns the withdrawable proceeds of an account.
func (m *Market) Balance(ctx context.Context, a model.Account) (model.Amount, error) {
	var bal model.Amount
	err := m.store.View(ctx, func(tx repository.Tx) error {
		var err error
		bal, err = tx.Balance(ctx, a)
		return err
	})
	return bal, err
}

// OwnedClub returns the club an account owns, or 0. The id of a Removed club
// is still returned until the account creates a new one.
func (m *Market) OwnedClub(ctx context.Context, a model.Account) (model.ClubID, error) {
	var id model.ClubID
	err := m.store.View(ctx, func(tx repository.Tx) error {
		var err error
		id, err = tx.OwnedClub(ctx, a)
		return err
	})
	return id, err
}

// Roles reports every role an account holds.
func (m *Market) Roles(ctx context.Context, a model.Account) (model.AccountRoles, error) {
	r := model.AccountRoles{Account: a}
	err := m.store.View(ctx, func(tx repository.Tx) error {
		info, err := tx.Market(ctx)
		if err != nil {
			return err
		}
		r.Owner = a == info.Owner
		if r.MarketAdmin, err = tx.IsMarketAdmin(ctx, a); err != nil {
			return err
		}
		if r.ClubOwner, err = tx.IsClubOwner(ctx, a); err != nil {
			return err
		}
		r.Club, err = tx.OwnedClub(ctx, a)
		return err
	})
	return r, err
}

// ListBoatsForSale returns every boat that can be bought right now, with the
// club selling it. While the market is suspended and purchases are frozen
// the list is empty.
func (m *Market) ListBoatsForSale(ctx context.Context) ([]model.Listing, error) {
	var out []model.Listing
	err := m.store.View(ctx, func(tx repository.Tx) error {
		if err := gate(ctx, tx, m.policy.Purchases); err != nil {
			if errors.Is(err, model.ErrMarketSuspended) {
				return nil
			}
			return err
		}

		clubIDs, err := tx.ListClubIDs(ctx)
		if err != nil {
			return err
		}
		for _, cid := range clubIDs {
			club, err := tx.GetClub(ctx, cid)
			if err != nil {
				return err
			}
			if club.Status != model.ClubOpen {
				continue
			}
			boatIDs, err := tx.ListBoatIDsByClub(ctx, cid)
			if err != nil {
				return err
			}
			for _, bid := range boatIDs {
				boat, err := tx.GetBoat(ctx, bid)
				if err != nil {
					return err
				}
				if !boat.Purchasable(club.Status) {
					continue
				}
				out = append(out, model.Listing{
					Boat:         boat,
					ClubName:     club.Name,
					ClubLocation: club.Location,
					Seller:       club.Owner,
				})
			}
		}
		return nil
	})
	return out, err
}

// GetPurchase returns a purchase record by id.
func (m *Market) GetPurchase(ctx context.Context, id model.PurchaseID) (model.Purchase, error) {
	var p model.Purchase
	err := m.store.View(ctx, func(tx repository.Tx) error {
		var err error
		p, err = tx.GetPurchase(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return model.ErrPurchaseNotFound
		}
		return err
	})
	return p, err
}

// ListPurchasesByBuyer returns a buyer's purchases, oldest first.
func (m *Market) ListPurchasesByBuyer(ctx context.Context, buyer model.Account) ([]model.Purchase, error) {
	var out []model.Purchase
	err := m.store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListPurchasesByBuyer(ctx, buyer)
		return err
	})
	return out, err
}

// ListWithdrawals returns an account's withdrawals, oldest first.
func (m *Market) ListWithdrawals(ctx context.Context, a model.Account) ([]model.Withdrawal, error) {
	var out []model.Withdrawal
	err := m.store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListWithdrawals(ctx, a)
		return err
	})
	return out, err
}

// ListTransferFailures returns the transfers awaiting manual reconciliation.
// Owner only.
func (m *Market) ListTransferFailures(ctx context.Context, caller model.Account) ([]model.TransferFailure, error) {
	var out []model.TransferFailure
	err := m.store.View(ctx, func(tx repository.Tx) error {
		if err := requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		var err error
		out, err = tx.ListTransferFailures(ctx)
		return err
	})
	return out, err
}
