package service

import (
	"context"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/repository"
)

// AddClub creates an Open club owned by caller and returns its id. The caller
// must hold the club-owner role and must not already own a club that is
// still Open or Closed.
func (m *Market) AddClub(ctx context.Context, caller model.Account, name, location string) (model.ClubID, error) {
	var club model.Club
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		if caller == "" {
			return model.ErrUnauthorized
		}
		ok, err := tx.IsClubOwner(ctx, caller)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrUnauthorized
		}
		if err := gate(ctx, tx, m.policy.Clubs); err != nil {
			return err
		}

		if name, err = requireText("name", name); err != nil {
			return err
		}
		if location, err = requireText("location", location); err != nil {
			return err
		}

		owned, err := tx.OwnedClub(ctx, caller)
		if err != nil {
			return err
		}
		if owned != 0 {
			prev, err := loadClub(ctx, tx, owned)
			if err != nil {
				return err
			}
			if prev.Status != model.ClubRemoved {
				return model.ErrAlreadyOwnsClub
			}
		}

		club = model.Club{Owner: caller, Name: name, Location: location, Status: model.ClubOpen}
		if err := tx.InsertClub(ctx, &club); err != nil {
			return err
		}
		return tx.SetOwnedClub(ctx, caller, club.ID)
	})
	if err != nil {
		return 0, err
	}

	m.logger.Info("club added",
		"by", caller,
		"club_id", club.ID,
		"name", club.Name,
		"location", club.Location,
	)
	return club.ID, nil
}

// OpenClub reopens a Closed club. Club owner only.
func (m *Market) OpenClub(ctx context.Context, caller model.Account, id model.ClubID) error {
	return m.transitionClub(ctx, caller, id, model.ClubActionOpen)
}

// CloseClub closes an Open club. Its boats stay listed but cannot be bought.
// Club owner only.
func (m *Market) CloseClub(ctx context.Context, caller model.Account, id model.ClubID) error {
	return m.transitionClub(ctx, caller, id, model.ClubActionClose)
}

// RemoveClub retires a club permanently. Boats are not removed with it but
// become unpurchasable. Club owner only.
func (m *Market) RemoveClub(ctx context.Context, caller model.Account, id model.ClubID) error {
	return m.transitionClub(ctx, caller, id, model.ClubActionRemove)
}

func (m *Market) transitionClub(ctx context.Context, caller model.Account, id model.ClubID, action model.ClubAction) error {
	var from, to model.ClubStatus
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		club, err := loadClub(ctx, tx, id)
		if err != nil {
			return err
		}
		if caller == "" || caller != club.Owner {
			return model.ErrUnauthorized
		}
		if err := gate(ctx, tx, m.policy.Clubs); err != nil {
			return err
		}

		from = club.Status
		if to, err = model.NextClubStatus(from, action); err != nil {
			return err
		}
		return tx.SetClubStatus(ctx, id, to)
	})
	if err != nil {
		return err
	}

	m.logger.Info("club status changed",
		"by", caller,
		"club_id", id,
		"from", from,
		"to", to,
	)
	return nil
}
