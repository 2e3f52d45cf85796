package service

import (
	"context"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/repository"
)

// AddMarketAdmin grants target the market-admin role. Owner only.
func (m *Market) AddMarketAdmin(ctx context.Context, caller, target model.Account) error {
	target = model.NormalizeAccount(string(target))
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		if err := requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		if err := requireAccount(target); err != nil {
			return err
		}
		exists, err := tx.IsMarketAdmin(ctx, target)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrAlreadyAdmin
		}
		return tx.InsertMarketAdmin(ctx, target)
	})
	if err != nil {
		return err
	}

	m.logger.Info("market admin added", "by", caller, "admin", target)
	return nil
}

// RemoveMarketAdmin revokes target's market-admin role. Owner only. The
// owner's own admin role cannot be revoked.
func (m *Market) RemoveMarketAdmin(ctx context.Context, caller, target model.Account) error {
	target = model.NormalizeAccount(string(target))
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		if err := requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		info, err := tx.Market(ctx)
		if err != nil {
			return err
		}
		if target == info.Owner {
			return model.ErrCannotRemoveOwner
		}
		exists, err := tx.IsMarketAdmin(ctx, target)
		if err != nil {
			return err
		}
		if !exists {
			return model.ErrNotAdmin
		}
		return tx.DeleteMarketAdmin(ctx, target)
	})
	if err != nil {
		return err
	}

	m.logger.Info("market admin removed", "by", caller, "admin", target)
	return nil
}

// AddClubOwner grants target the club-owner role. Market admins only, and
// never while the market is suspended.
func (m *Market) AddClubOwner(ctx context.Context, caller, target model.Account) error {
	target = model.NormalizeAccount(string(target))
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		if err := requireMarketAdmin(ctx, tx, caller); err != nil {
			return err
		}
		if err := gate(ctx, tx, true); err != nil {
			return err
		}
		if err := requireAccount(target); err != nil {
			return err
		}
		exists, err := tx.IsClubOwner(ctx, target)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrAlreadyClubOwner
		}
		return tx.InsertClubOwner(ctx, target)
	})
	if err != nil {
		return err
	}

	m.logger.Info("club owner added", "by", caller, "club_owner", target)
	return nil
}

// RemoveClubOwner revokes target's club-owner role. Market admins only, and
// never while the market is suspended. A club the account already owns is
// left untouched.
func (m *Market) RemoveClubOwner(ctx context.Context, caller, target model.Account) error {
	target = model.NormalizeAccount(string(target))
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		if err := requireMarketAdmin(ctx, tx, caller); err != nil {
			return err
		}
		if err := gate(ctx, tx, true); err != nil {
			return err
		}
		exists, err := tx.IsClubOwner(ctx, target)
		if err != nil {
			return err
		}
		if !exists {
			return model.ErrNotClubOwner
		}
		return tx.DeleteClubOwner(ctx, target)
	})
	if err != nil {
		return err
	}

	m.logger.Info("club owner removed", "by", caller, "club_owner", target)
	return nil
}
