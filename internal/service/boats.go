package service

import (
	"context"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/repository"
)

// NewBoat holds the caller-supplied fields of a boat listing.
type NewBoat struct {
	Name        string
	Description string
	UnitPrice   model.Amount
	Quantity    int64
}

// AddBoat lists a boat for sale under the caller's club, which must be Open.
func (m *Market) AddBoat(ctx context.Context, caller model.Account, nb NewBoat) (model.BoatID, error) {
	var boat model.Boat
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		if caller == "" {
			return model.ErrUnauthorized
		}
		clubID, err := tx.OwnedClub(ctx, caller)
		if err != nil {
			return err
		}
		if clubID == 0 {
			return model.ErrUnauthorized
		}
		if err := gate(ctx, tx, m.policy.Inventory); err != nil {
			return err
		}

		club, err := loadClub(ctx, tx, clubID)
		if err != nil {
			return err
		}
		if club.Status != model.ClubOpen {
			return model.ErrClubNotOpen
		}

		name, err := requireText("name", nb.Name)
		if err != nil {
			return err
		}
		description, err := requireText("description", nb.Description)
		if err != nil {
			return err
		}
		if nb.UnitPrice <= 0 {
			return model.ErrInvalidPrice
		}
		if nb.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}

		boat = model.Boat{
			ClubID:      clubID,
			Name:        name,
			Description: description,
			UnitPrice:   nb.UnitPrice,
			Quantity:    nb.Quantity,
			Status:      model.BoatForSale,
		}
		return tx.InsertBoat(ctx, &boat)
	})
	if err != nil {
		return 0, err
	}

	m.logger.Info("boat added",
		"by", caller,
		"club_id", boat.ClubID,
		"boat_id", boat.ID,
		"name", boat.Name,
		"unit_price", boat.UnitPrice,
		"quantity", boat.Quantity,
	)
	return boat.ID, nil
}

// ToggleBoatStatus flips a boat between ForSale and NotForSale and returns
// the new status. Owner of the boat's club only.
func (m *Market) ToggleBoatStatus(ctx context.Context, caller model.Account, id model.BoatID) (model.BoatStatus, error) {
	return m.transitionBoat(ctx, caller, id, model.BoatActionToggle)
}

// RemoveBoat retires a boat permanently, whatever stock remains. Owner of the
// boat's club only.
func (m *Market) RemoveBoat(ctx context.Context, caller model.Account, id model.BoatID) error {
	_, err := m.transitionBoat(ctx, caller, id, model.BoatActionRemove)
	return err
}

func (m *Market) transitionBoat(ctx context.Context, caller model.Account, id model.BoatID, action model.BoatAction) (model.BoatStatus, error) {
	var from, to model.BoatStatus
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		boat, err := loadBoat(ctx, tx, id)
		if err != nil {
			return err
		}
		club, err := loadClub(ctx, tx, boat.ClubID)
		if err != nil {
			return err
		}
		if caller == "" || caller != club.Owner {
			return model.ErrUnauthorized
		}
		if err := gate(ctx, tx, m.policy.Inventory); err != nil {
			return err
		}

		from = boat.Status
		if to, err = model.NextBoatStatus(from, action); err != nil {
			return err
		}
		return tx.SetBoatStatus(ctx, id, to)
	})
	if err != nil {
		return 0, err
	}

	m.logger.Info("boat status changed",
		"by", caller,
		"boat_id", id,
		"from", from,
		"to", to,
	)
	return to, nil
}
