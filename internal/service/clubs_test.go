package service

import (
	"testing"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
)

func TestAddClub(t *testing.T) {
	h := newHarness(t)

	_, err := h.m.AddClub(h.ctx, seller, "Putney RC", "SW15")
	wantErr(t, err, model.ErrUnauthorized)

	h.clubOwner(seller)
	_, err = h.m.AddClub(h.ctx, seller, "  ", "SW15")
	wantErr(t, err, model.ErrInvalidInput)
	_, err = h.m.AddClub(h.ctx, seller, "Putney RC", "")
	wantErr(t, err, model.ErrInvalidInput)

	id, err := h.m.AddClub(h.ctx, seller, "  Putney RC ", "SW15")
	h.must(err)
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	if c := h.club(id); c.Name != "Putney RC" || c.Status != model.ClubOpen {
		t.Errorf("club = %+v", c)
	}
	owned, err := h.m.OwnedClub(h.ctx, seller)
	h.must(err)
	if owned != id {
		t.Errorf("OwnedClub = %d, want %d", owned, id)
	}

	_, err = h.m.AddClub(h.ctx, seller, "Thames RC", "SW15")
	wantErr(t, err, model.ErrAlreadyOwnsClub)

	// A closed club still counts.
	h.must(h.m.CloseClub(h.ctx, seller, id))
	_, err = h.m.AddClub(h.ctx, seller, "Thames RC", "SW15")
	wantErr(t, err, model.ErrAlreadyOwnsClub)
}

func TestAddClub_AfterRemove(t *testing.T) {
	h := newHarness(t)
	h.clubOwner(seller)
	first, err := h.m.AddClub(h.ctx, seller, "Putney RC", "SW15")
	h.must(err)
	h.must(h.m.RemoveClub(h.ctx, seller, first))

	owned, err := h.m.OwnedClub(h.ctx, seller)
	h.must(err)
	if owned != first {
		t.Errorf("OwnedClub after remove = %d, want %d", owned, first)
	}

	second, err := h.m.AddClub(h.ctx, seller, "Thames RC", "Putney Embankment")
	h.must(err)
	if second != first+1 {
		t.Errorf("second id = %d, want %d", second, first+1)
	}
	owned, err = h.m.OwnedClub(h.ctx, seller)
	h.must(err)
	if owned != second {
		t.Errorf("OwnedClub = %d, want %d", owned, second)
	}
	if got := h.club(first).Status; got != model.ClubRemoved {
		t.Errorf("first club status = %s, want Removed", got)
	}
}

func TestClubTransitions(t *testing.T) {
	h := newHarness(t)
	h.clubOwner(seller)
	id, err := h.m.AddClub(h.ctx, seller, "Putney RC", "SW15")
	h.must(err)

	steps := []struct {
		name    string
		caller  model.Account
		op      func(caller model.Account, id model.ClubID) error
		id      model.ClubID
		wantErr error
		want    model.ClubStatus
	}{
		{"open an open club", seller, h.openClub, id, model.ErrNoOpTransition, model.ClubOpen},
		{"close by stranger", buyer, h.closeClub, id, model.ErrUnauthorized, model.ClubOpen},
		{"close by market owner", owner, h.closeClub, id, model.ErrUnauthorized, model.ClubOpen},
		{"close", seller, h.closeClub, id, nil, model.ClubClosed},
		{"close a closed club", seller, h.closeClub, id, model.ErrNoOpTransition, model.ClubClosed},
		{"reopen", seller, h.openClub, id, nil, model.ClubOpen},
		{"unknown club", seller, h.openClub, 99, model.ErrClubNotFound, model.ClubOpen},
		{"remove", seller, h.removeClub, id, nil, model.ClubRemoved},
		{"open a removed club", seller, h.openClub, id, model.ErrInvalidTransition, model.ClubRemoved},
		{"close a removed club", seller, h.closeClub, id, model.ErrInvalidTransition, model.ClubRemoved},
		{"remove a removed club", seller, h.removeClub, id, model.ErrInvalidTransition, model.ClubRemoved},
	}

	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			wantErr(t, s.op(s.caller, s.id), s.wantErr)
			if got := h.club(id).Status; got != s.want {
				t.Errorf("status = %s, want %s", got, s.want)
			}
		})
	}
}

func (h *harness) openClub(caller model.Account, id model.ClubID) error {
	return h.m.OpenClub(h.ctx, caller, id)
}

func (h *harness) closeClub(caller model.Account, id model.ClubID) error {
	return h.m.CloseClub(h.ctx, caller, id)
}

func (h *harness) removeClub(caller model.Account, id model.ClubID) error {
	return h.m.RemoveClub(h.ctx, caller, id)
}

func TestCloseOpenRoundTrip(t *testing.T) {
	h := newHarness(t)
	clubID, _ := h.scenarioA()
	before := h.club(clubID)

	h.must(h.m.CloseClub(h.ctx, seller, clubID))
	h.must(h.m.OpenClub(h.ctx, seller, clubID))

	if after := h.club(clubID); after != before {
		t.Errorf("club after round trip = %+v, want %+v", after, before)
	}
}

func TestClubMutations_SuspendPolicy(t *testing.T) {
	t.Run("not frozen by default", func(t *testing.T) {
		h := newHarness(t)
		h.clubOwner(seller)
		h.suspend()

		id, err := h.m.AddClub(h.ctx, seller, "Putney RC", "SW15")
		h.must(err)
		h.must(h.m.CloseClub(h.ctx, seller, id))
	})

	t.Run("frozen when configured", func(t *testing.T) {
		h := newHarness(t, WithSuspendPolicy(SuspendPolicy{Clubs: true}))
		h.clubOwner(seller)
		id, err := h.m.AddClub(h.ctx, seller, "Putney RC", "SW15")
		h.must(err)
		h.suspend()

		_, err = h.m.AddClub(h.ctx, buyer, "Thames RC", "SW15")
		wantErr(t, err, model.ErrUnauthorized)
		wantErr(t, h.m.CloseClub(h.ctx, seller, id), model.ErrMarketSuspended)
		wantErr(t, h.m.RemoveClub(h.ctx, seller, id), model.ErrMarketSuspended)
		if got := h.club(id).Status; got != model.ClubOpen {
			t.Errorf("status = %s, want Open", got)
		}
	})
}
