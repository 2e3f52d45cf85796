package service

import (
	"context"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/repository"
)

// ToggleSuspended flips the market suspend switch and returns the new value.
// Owner only.
func (m *Market) ToggleSuspended(ctx context.Context, caller model.Account) (bool, error) {
	var suspended bool
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		if err := requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		info, err := tx.Market(ctx)
		if err != nil {
			return err
		}
		suspended = !info.Suspended
		return tx.SetSuspended(ctx, suspended)
	})
	if err != nil {
		return false, err
	}

	m.logger.Info("market suspend toggled", "by", caller, "suspended", suspended)
	return suspended, nil
}
