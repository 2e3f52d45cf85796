package service

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/money"
)

func TestPurchaseBoat_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(h *harness, clubID model.ClubID, boatID model.BoatID)
		caller   model.Account
		boat     model.BoatID // 0 uses the scenario boat
		quantity int64
		funds    model.Amount
		wantErr  error
	}{
		{
			name:     "anonymous buyer",
			caller:   "",
			quantity: 1,
			funds:    100,
			wantErr:  model.ErrUnauthorized,
		},
		{
			name:     "unknown boat",
			caller:   buyer,
			boat:     77,
			quantity: 1,
			funds:    100,
			wantErr:  model.ErrBoatNotFound,
		},
		{
			name: "not for sale",
			setup: func(h *harness, _ model.ClubID, b model.BoatID) {
				_, err := h.m.ToggleBoatStatus(h.ctx, seller, b)
				h.must(err)
			},
			caller:   buyer,
			quantity: 1,
			funds:    100,
			wantErr:  model.ErrNotPurchasable,
		},
		{
			name: "removed boat",
			setup: func(h *harness, _ model.ClubID, b model.BoatID) {
				h.must(h.m.RemoveBoat(h.ctx, seller, b))
			},
			caller:   buyer,
			quantity: 1,
			funds:    100,
			wantErr:  model.ErrNotPurchasable,
		},
		{
			name: "closed club",
			setup: func(h *harness, c model.ClubID, _ model.BoatID) {
				h.must(h.m.CloseClub(h.ctx, seller, c))
			},
			caller:   buyer,
			quantity: 1,
			funds:    100,
			wantErr:  model.ErrNotPurchasable,
		},
		{
			name: "removed club",
			setup: func(h *harness, c model.ClubID, _ model.BoatID) {
				h.must(h.m.RemoveClub(h.ctx, seller, c))
			},
			caller:   buyer,
			quantity: 1,
			funds:    100,
			wantErr:  model.ErrNotPurchasable,
		},
		{
			name: "sold out",
			setup: func(h *harness, _ model.ClubID, b model.BoatID) {
				_, err := h.m.PurchaseBoat(h.ctx, "0xearly", b, 5, 500)
				h.must(err)
			},
			caller:   buyer,
			quantity: 1,
			funds:    100,
			wantErr:  model.ErrNotPurchasable,
		},
		{
			name:     "zero quantity",
			caller:   buyer,
			quantity: 0,
			funds:    100,
			wantErr:  model.ErrInvalidQuantity,
		},
		{
			name:     "negative quantity",
			caller:   buyer,
			quantity: -2,
			funds:    100,
			wantErr:  model.ErrInvalidQuantity,
		},
		{
			name:     "more than stock",
			caller:   buyer,
			quantity: 6,
			funds:    600,
			wantErr:  model.ErrInsufficientStock,
		},
		{
			name:     "one short",
			caller:   buyer,
			quantity: 2,
			funds:    199,
			wantErr:  model.ErrInsufficientFunds,
		},
		{
			name:     "negative funds",
			caller:   buyer,
			quantity: 1,
			funds:    -100,
			wantErr:  model.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			clubID, boatID := h.scenarioA()
			if tt.setup != nil {
				tt.setup(h, clubID, boatID)
			}
			target := boatID
			if tt.boat != 0 {
				target = tt.boat
			}

			stockBefore := h.boat(boatID).Quantity
			balanceBefore := h.balance(seller)
			transfersBefore := len(h.ledger.Transfers())

			_, err := h.m.PurchaseBoat(h.ctx, tt.caller, target, tt.quantity, tt.funds)
			wantErr(t, err, tt.wantErr)

			if got := h.boat(boatID).Quantity; got != stockBefore {
				t.Errorf("Quantity = %d, want %d", got, stockBefore)
			}
			if got := h.balance(seller); got != balanceBefore {
				t.Errorf("balance(seller) = %d, want %d", got, balanceBefore)
			}
			if got := len(h.ledger.Transfers()); got != transfersBefore {
				t.Errorf("transfers = %d, want %d", got, transfersBefore)
			}
			purchases, err := h.m.ListPurchasesByBuyer(h.ctx, tt.caller)
			h.must(err)
			if len(purchases) != 0 {
				t.Errorf("purchases = %v, want none", purchases)
			}
		})
	}
}

func TestPurchaseBoat_ExactFundsSkipsRefund(t *testing.T) {
	h := newHarness(t)
	_, boatID := h.scenarioA()

	p, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 5, 500)
	h.must(err)
	if p.Refund != 0 {
		t.Errorf("Refund = %d, want 0", p.Refund)
	}
	if got := len(h.ledger.Transfers()); got != 0 {
		t.Errorf("transfers = %d, want 0", got)
	}
	b := h.boat(boatID)
	if b.Quantity != 0 || b.Status != model.BoatForSale {
		t.Errorf("boat = %+v, want ForSale with no stock", b)
	}
}

func TestPurchaseBoat_Overflow(t *testing.T) {
	h := newHarness(t)
	h.clubOwner(seller)
	_, err := h.m.AddClub(h.ctx, seller, "Putney RC", "SW15")
	h.must(err)
	boatID, err := h.m.AddBoat(h.ctx, seller, NewBoat{
		Name:        "Superyacht",
		Description: "not a rowing boat",
		UnitPrice:   math.MaxInt64 / 2,
		Quantity:    3,
	})
	h.must(err)

	_, err = h.m.PurchaseBoat(h.ctx, buyer, boatID, 3, math.MaxInt64)
	wantErr(t, err, model.ErrAmountOverflow)
	if got := h.boat(boatID).Quantity; got != 3 {
		t.Errorf("Quantity = %d, want 3", got)
	}

	// The seller balance holds two sales but not a third.
	_, err = h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, math.MaxInt64/2)
	h.must(err)
	_, err = h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, math.MaxInt64/2)
	h.must(err)
	_, err = h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, math.MaxInt64/2)
	wantErr(t, err, model.ErrAmountOverflow)
	if got := h.boat(boatID).Quantity; got != 1 {
		t.Errorf("Quantity = %d, want 1", got)
	}
}

func TestPurchaseBoat_WholeCurrencyUnitsAtDefaultPrecision(t *testing.T) {
	units := money.NewUnits(9)
	price, err := units.Parse("5")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	h := newHarness(t)
	h.clubOwner(seller)
	_, err = h.m.AddClub(h.ctx, seller, "Putney RC", "SW15")
	h.must(err)
	boatID, err := h.m.AddBoat(h.ctx, seller, NewBoat{
		Name:        "Eight",
		Description: "racing shell",
		UnitPrice:   price,
		Quantity:    10,
	})
	h.must(err)

	for i := 0; i < 10; i++ {
		_, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, price)
		h.must(err)
	}
	if got := units.Format(h.balance(seller)); got != "50" {
		t.Errorf("seller balance = %s, want 50", got)
	}
}

func TestPurchaseBoat_SuspendPolicy(t *testing.T) {
	t.Run("frozen by default", func(t *testing.T) {
		h := newHarness(t)
		_, boatID := h.scenarioA()
		h.suspend()

		_, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, 100)
		wantErr(t, err, model.ErrMarketSuspended)
		if got := h.boat(boatID).Quantity; got != 5 {
			t.Errorf("Quantity = %d, want 5", got)
		}
	})

	t.Run("open when not configured", func(t *testing.T) {
		h := newHarness(t, WithSuspendPolicy(SuspendPolicy{}))
		_, boatID := h.scenarioA()
		h.suspend()

		_, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, 100)
		h.must(err)
	})

	t.Run("withdrawals never frozen", func(t *testing.T) {
		h := newHarness(t, WithSuspendPolicy(SuspendPolicy{Purchases: true, Inventory: true, Clubs: true}))
		_, boatID := h.scenarioA()
		_, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, 100)
		h.must(err)
		h.suspend()

		w, err := h.m.WithdrawFunds(h.ctx, seller)
		h.must(err)
		if w.Amount != 100 {
			t.Errorf("Amount = %d, want 100", w.Amount)
		}
	})
}

func TestPurchaseBoat_RefundFailure(t *testing.T) {
	h := newHarness(t)
	_, boatID := h.scenarioA()
	cause := errors.New("buyer wallet rejected payment")
	h.ledger.FailWith(func(tr model.Transfer) error {
		if tr.Kind == model.TransferRefund {
			return cause
		}
		return nil
	})

	p, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, 150)
	wantErr(t, err, model.ErrRefundFailed)
	if !errors.Is(err, cause) {
		t.Errorf("err = %v, want it to wrap the transfer cause", err)
	}
	var terr *model.TransferError
	if !errors.As(err, &terr) || terr.Reference() != p.Reference {
		t.Errorf("err = %#v, want *TransferError for reference %s", err, p.Reference)
	}

	// The sale stands.
	if p.ID == 0 || p.Refund != 50 {
		t.Errorf("purchase = %+v, want committed with refund 50", p)
	}
	if got := h.boat(boatID).Quantity; got != 4 {
		t.Errorf("Quantity = %d, want 4", got)
	}
	if got := h.balance(seller); got != 100 {
		t.Errorf("balance(seller) = %d, want 100", got)
	}

	failures, err := h.m.ListTransferFailures(h.ctx, owner)
	h.must(err)
	if len(failures) != 1 {
		t.Fatalf("failures = %v, want 1", failures)
	}
	f := failures[0]
	if f.Kind != model.TransferRefund || f.Account != buyer || f.Amount != 50 || f.PurchaseID != p.ID || f.Reference != p.Reference {
		t.Errorf("failure = %+v", f)
	}
	if f.Reason != cause.Error() {
		t.Errorf("Reason = %q, want %q", f.Reason, cause.Error())
	}
}

func TestWithdrawFunds_TransferFailure(t *testing.T) {
	h := newHarness(t)
	_, boatID := h.scenarioA()
	_, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 3, 300)
	h.must(err)

	h.ledger.FailWith(func(model.Transfer) error { return errors.New("provider timeout") })
	w, err := h.m.WithdrawFunds(h.ctx, seller)
	wantErr(t, err, model.ErrTransferFailed)
	if w.Amount != 300 {
		t.Errorf("withdrawal = %+v, want amount 300", w)
	}

	// The balance is not restored.
	if got := h.balance(seller); got != 0 {
		t.Errorf("balance(seller) = %d, want 0", got)
	}
	h.ledger.FailWith(nil)
	_, err = h.m.WithdrawFunds(h.ctx, seller)
	wantErr(t, err, model.ErrNothingToWithdraw)

	failures, err := h.m.ListTransferFailures(h.ctx, owner)
	h.must(err)
	if len(failures) != 1 || failures[0].Kind != model.TransferWithdrawal || failures[0].Amount != 300 || failures[0].PurchaseID != 0 {
		t.Errorf("failures = %+v", failures)
	}
	withdrawals, err := h.m.ListWithdrawals(h.ctx, seller)
	h.must(err)
	if len(withdrawals) != 1 || withdrawals[0].Reference != failures[0].Reference {
		t.Errorf("withdrawals = %+v", withdrawals)
	}
}

func TestWithdrawFunds_ReentrantCallFindsNothing(t *testing.T) {
	h := newHarness(t)
	_, boatID := h.scenarioA()
	_, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 2, 200)
	h.must(err)

	var reentrantErr error
	var once sync.Once
	h.ledger.OnSend(func(ctx context.Context, tr model.Transfer) {
		if tr.Kind != model.TransferWithdrawal {
			return
		}
		once.Do(func() {
			if got := h.balance(seller); got != 0 {
				t.Errorf("balance during transfer = %d, want 0", got)
			}
			_, reentrantErr = h.m.WithdrawFunds(ctx, seller)
		})
	})

	_, err = h.m.WithdrawFunds(h.ctx, seller)
	h.must(err)
	wantErr(t, reentrantErr, model.ErrNothingToWithdraw)
	if got := h.ledger.Total(seller); got != 200 {
		t.Errorf("paid to seller = %d, want 200", got)
	}
}

func TestTransfersSurviveCancellationAfterCommit(t *testing.T) {
	var cancelOnCommit context.CancelFunc
	h := newHarness(t, WithClock(func() time.Time {
		if cancelOnCommit != nil {
			cancelOnCommit()
		}
		return fixedNow
	}))
	_, boatID := h.scenarioA()

	ctx, cancel := context.WithCancel(h.ctx)
	cancelOnCommit = cancel
	p, err := h.m.PurchaseBoat(ctx, buyer, boatID, 1, 120)
	h.must(err)
	if ctx.Err() == nil {
		t.Fatal("context should have been cancelled inside the purchase")
	}
	if p.Refund != 20 {
		t.Errorf("Refund = %d, want 20", p.Refund)
	}
	if got := h.ledger.Total(buyer); got != 20 {
		t.Errorf("refunded to buyer = %d, want 20", got)
	}

	ctx, cancel = context.WithCancel(h.ctx)
	cancelOnCommit = cancel
	w, err := h.m.WithdrawFunds(ctx, seller)
	h.must(err)
	if w.Amount != 100 {
		t.Errorf("Amount = %d, want 100", w.Amount)
	}
	if got := h.ledger.Total(seller); got != 100 {
		t.Errorf("paid to seller = %d, want 100", got)
	}

	cancelOnCommit = nil
	failures, err := h.m.ListTransferFailures(h.ctx, owner)
	h.must(err)
	if len(failures) != 0 {
		t.Errorf("transfer failures = %+v, want none", failures)
	}
}

func TestWithdrawFunds_NothingToWithdraw(t *testing.T) {
	h := newHarness(t)
	_, err := h.m.WithdrawFunds(h.ctx, nobody)
	wantErr(t, err, model.ErrNothingToWithdraw)
	_, err = h.m.WithdrawFunds(h.ctx, "")
	wantErr(t, err, model.ErrUnauthorized)
	if got := len(h.ledger.Transfers()); got != 0 {
		t.Errorf("transfers = %d, want 0", got)
	}
}

func TestPurchaseBoat_ConcurrentBuyersNeverOversell(t *testing.T) {
	h := newHarness(t)
	_, boatID := h.scenarioA()

	const buyers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		sold    int
		soldOut int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.m.PurchaseBoat(h.ctx, buyer, boatID, 1, 110)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold++
			case errors.Is(err, model.ErrNotPurchasable):
				soldOut++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if sold != 5 || soldOut != buyers-5 {
		t.Errorf("sold = %d, sold out = %d, want 5 and %d", sold, soldOut, buyers-5)
	}
	if got := h.boat(boatID).Quantity; got != 0 {
		t.Errorf("Quantity = %d, want 0", got)
	}
	if got := h.balance(seller); got != 500 {
		t.Errorf("balance(seller) = %d, want 500", got)
	}
	if got := h.ledger.Total(buyer); got != 50 {
		t.Errorf("refunded = %d, want 50", got)
	}
}

// TestLedgerInvariants drives a random mix of purchases and withdrawals and
// checks conservation, refund accounting and stock monotonicity after every
// step.
func TestLedgerInvariants(t *testing.T) {
	h := newHarness(t)
	rng := rand.New(rand.NewPCG(1, 2))

	sellers := []model.Account{"0xs1", "0xs2", "0xs3"}
	var boats []model.BoatID
	for i, s := range sellers {
		h.clubOwner(s)
		_, err := h.m.AddClub(h.ctx, s, "Club", "Thames")
		h.must(err)
		for j := 0; j < 2; j++ {
			id, err := h.m.AddBoat(h.ctx, s, NewBoat{
				Name:        "Boat",
				Description: "hull",
				UnitPrice:   model.Amount(10 * (i + j + 1)),
				Quantity:    int64(5 + i),
			})
			h.must(err)
			boats = append(boats, id)
		}
	}

	stock := make(map[model.BoatID]int64)
	for _, id := range boats {
		stock[id] = h.boat(id).Quantity
	}
	var (
		totalCost      model.Amount
		totalWithdrawn model.Amount
		purchases      []model.Purchase
	)
	buyers := []model.Account{"0xb1", "0xb2"}

	for step := 0; step < 200; step++ {
		if rng.IntN(4) == 0 {
			s := sellers[rng.IntN(len(sellers))]
			w, err := h.m.WithdrawFunds(h.ctx, s)
			switch {
			case err == nil:
				totalWithdrawn += w.Amount
			case errors.Is(err, model.ErrNothingToWithdraw):
			default:
				t.Fatalf("step %d: withdraw: %v", step, err)
			}
		} else {
			id := boats[rng.IntN(len(boats))]
			qty := int64(rng.IntN(3)) // zero is a rejected request
			funds := model.Amount(rng.IntN(150))
			p, err := h.m.PurchaseBoat(h.ctx, buyers[rng.IntN(len(buyers))], id, qty, funds)
			if err == nil {
				totalCost += p.CostOfSale
				purchases = append(purchases, p)
			} else if model.ErrorCode(err) == "" {
				t.Fatalf("step %d: purchase: %v", step, err)
			}
		}

		var balances model.Amount
		for _, s := range sellers {
			balances += h.balance(s)
		}
		if balances+totalWithdrawn != totalCost {
			t.Fatalf("step %d: balances %d + withdrawn %d != cost of sales %d", step, balances, totalWithdrawn, totalCost)
		}
		for _, id := range boats {
			q := h.boat(id).Quantity
			if q < 0 || q > stock[id] {
				t.Fatalf("step %d: boat %d quantity went from %d to %d", step, id, stock[id], q)
			}
			stock[id] = q
		}
	}

	if len(purchases) == 0 {
		t.Fatal("random walk made no purchases")
	}
	for _, p := range purchases {
		if p.Refund < 0 || p.FundsSent != p.CostOfSale+p.Refund {
			t.Errorf("purchase %d: sent %d != cost %d + refund %d", p.ID, p.FundsSent, p.CostOfSale, p.Refund)
		}
	}
}
