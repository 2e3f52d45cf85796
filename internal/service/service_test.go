package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/repository"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/transfer"
)

const (
	owner  model.Account = "0xowner"
	admin  model.Account = "0xadmin"
	seller model.Account = "0xseller"
	buyer  model.Account = "0xbuyer"
	nobody model.Account = "0xnobody"
)

var fixedNow = time.Date(2018, 12, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	ctx    context.Context
	store  *repository.MemoryStore
	ledger *transfer.Ledger
	m      *Market
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := repository.NewMemoryStore()
	if err := store.Bootstrap(ctx, owner); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	ledger := transfer.NewLedger(logger)

	base := []Option{WithLogger(logger), WithClock(func() time.Time { return fixedNow })}
	m := New(store, ledger, append(base, opts...)...)
	return &harness{t: t, ctx: ctx, store: store, ledger: ledger, m: m}
}

func (h *harness) must(err error) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("unexpected error: %v", err)
	}
}

// clubOwner grants a the club-owner role through admin.
func (h *harness) clubOwner(a model.Account) {
	h.t.Helper()
	if ok, _ := h.isMarketAdmin(admin); !ok {
		h.must(h.m.AddMarketAdmin(h.ctx, owner, admin))
	}
	h.must(h.m.AddClubOwner(h.ctx, admin, a))
}

func (h *harness) isMarketAdmin(a model.Account) (bool, error) {
	r, err := h.m.Roles(h.ctx, a)
	return r.MarketAdmin, err
}

// scenarioA sets up seller's club "Putney RC" with boat "Eight" at 100 x 5.
func (h *harness) scenarioA() (model.ClubID, model.BoatID) {
	h.t.Helper()
	h.clubOwner(seller)
	clubID, err := h.m.AddClub(h.ctx, seller, "Putney RC", "SW15")
	h.must(err)
	boatID, err := h.m.AddBoat(h.ctx, seller, NewBoat{
		Name:        "Eight",
		Description: "racing shell",
		UnitPrice:   100,
		Quantity:    5,
	})
	h.must(err)
	return clubID, boatID
}

func (h *harness) boat(id model.BoatID) model.Boat {
	h.t.Helper()
	b, err := h.m.GetBoat(h.ctx, id)
	h.must(err)
	return b
}

func (h *harness) club(id model.ClubID) model.Club {
	h.t.Helper()
	c, err := h.m.GetClub(h.ctx, id)
	h.must(err)
	return c
}

func (h *harness) balance(a model.Account) model.Amount {
	h.t.Helper()
	b, err := h.m.Balance(h.ctx, a)
	h.must(err)
	return b
}

func (h *harness) suspend() {
	h.t.Helper()
	suspended, err := h.m.ToggleSuspended(h.ctx, owner)
	h.must(err)
	if !suspended {
		h.t.Fatal("market should now be suspended")
	}
}

func wantErr(t *testing.T, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Fatalf("err = %v, want %v", got, want)
	}
}

func TestScenarioA_ListBoat(t *testing.T) {
	h := newHarness(t)
	clubID, boatID := h.scenarioA()

	c := h.club(clubID)
	if c.Owner != seller || c.Name != "Putney RC" || c.Location != "SW15" || c.Status != model.ClubOpen {
		t.Errorf("club = %+v", c)
	}

	b := h.boat(boatID)
	if b.Status != model.BoatForSale {
		t.Errorf("Status = %s, want ForSale", b.Status)
	}
	if b.Quantity != 5 {
		t.Errorf("Quantity = %d, want 5", b.Quantity)
	}
	if b.ClubID != clubID || b.UnitPrice != 100 {
		t.Errorf("boat = %+v", b)
	}
}

func TestScenarioB_PurchaseWithRefund(t *testing.T) {
	h := newHarness(t)
	clubID, boatID := h.scenarioA()

	p, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, 120)
	h.must(err)

	if p.CostOfSale != 100 || p.Refund != 20 || p.FundsSent != 120 {
		t.Errorf("purchase amounts = cost %d refund %d sent %d, want 100/20/120", p.CostOfSale, p.Refund, p.FundsSent)
	}
	if p.ID != 1 || p.ClubID != clubID || p.BoatID != boatID || p.Buyer != buyer || p.Quantity != 1 {
		t.Errorf("purchase = %+v", p)
	}
	if !p.PurchasedAt.Equal(fixedNow) {
		t.Errorf("PurchasedAt = %v, want %v", p.PurchasedAt, fixedNow)
	}
	if got := h.boat(boatID).Quantity; got != 4 {
		t.Errorf("Quantity = %d, want 4", got)
	}
	if got := h.balance(seller); got != 100 {
		t.Errorf("balance(seller) = %d, want 100", got)
	}

	transfers := h.ledger.Transfers()
	if len(transfers) != 1 {
		t.Fatalf("transfers = %v, want one refund", transfers)
	}
	refund := transfers[0]
	if refund.Kind != model.TransferRefund || refund.To != buyer || refund.Amount != 20 || refund.Reference != p.Reference {
		t.Errorf("refund = %+v", refund)
	}

	stored, err := h.m.GetPurchase(h.ctx, p.ID)
	h.must(err)
	if stored != p {
		t.Errorf("stored purchase = %+v, want %+v", stored, p)
	}
}

func TestScenarioC_InsufficientFunds(t *testing.T) {
	h := newHarness(t)
	_, boatID := h.scenarioA()
	_, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, 120)
	h.must(err)

	_, err = h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, 99)
	wantErr(t, err, model.ErrInsufficientFunds)

	if got := h.boat(boatID).Quantity; got != 4 {
		t.Errorf("Quantity = %d, want 4", got)
	}
	if got := h.balance(seller); got != 100 {
		t.Errorf("balance(seller) = %d, want 100", got)
	}
	if got := len(h.ledger.Transfers()); got != 1 {
		t.Errorf("transfers = %d, want 1", got)
	}
}

func TestScenarioD_Withdraw(t *testing.T) {
	h := newHarness(t)
	_, boatID := h.scenarioA()
	_, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 2, 200)
	h.must(err)

	w, err := h.m.WithdrawFunds(h.ctx, seller)
	h.must(err)

	if w.Amount != 200 || w.Account != seller {
		t.Errorf("withdrawal = %+v", w)
	}
	if got := h.balance(seller); got != 0 {
		t.Errorf("balance(seller) = %d, want 0", got)
	}

	var payouts []model.Transfer
	for _, tr := range h.ledger.Transfers() {
		if tr.Kind == model.TransferWithdrawal {
			payouts = append(payouts, tr)
		}
	}
	if len(payouts) != 1 || payouts[0].Amount != 200 || payouts[0].To != seller || payouts[0].Reference != w.Reference {
		t.Errorf("payouts = %+v, want exactly one of 200 to seller", payouts)
	}

	_, err = h.m.WithdrawFunds(h.ctx, seller)
	wantErr(t, err, model.ErrNothingToWithdraw)
	if got := h.ledger.Total(seller); got != 200 {
		t.Errorf("Total(seller) = %d, want 200", got)
	}
}

func TestScenarioE_SuspendedFreezesClubOwnerGrants(t *testing.T) {
	h := newHarness(t)
	h.must(h.m.AddMarketAdmin(h.ctx, owner, admin))
	h.must(h.m.AddClubOwner(h.ctx, admin, seller))
	h.suspend()

	wantErr(t, h.m.AddClubOwner(h.ctx, admin, buyer), model.ErrMarketSuspended)
	wantErr(t, h.m.RemoveClubOwner(h.ctx, admin, seller), model.ErrMarketSuspended)

	owners, err := h.m.ListClubOwners(h.ctx)
	h.must(err)
	if len(owners) != 1 || owners[0] != seller {
		t.Errorf("club owners = %v, want [%s]", owners, seller)
	}
	admins, err := h.m.ListMarketAdmins(h.ctx)
	h.must(err)
	if len(admins) != 2 {
		t.Errorf("admins = %v, want owner and admin", admins)
	}
}

func TestNew_Defaults(t *testing.T) {
	m := New(repository.NewMemoryStore(), transfer.NewLedger(nil))
	if m.logger == nil {
		t.Error("logger should not be nil")
	}
	if m.Policy() != DefaultSuspendPolicy {
		t.Errorf("Policy() = %+v, want %+v", m.Policy(), DefaultSuspendPolicy)
	}
	if m.now == nil {
		t.Error("clock should not be nil")
	}
}
