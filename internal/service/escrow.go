package service

import (
	"context"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/repository"
)

// PurchaseBoat buys quantity units of a boat with fundsSent, which may exceed
// the cost of sale. Stock, the seller's balance and the purchase record are
// committed together. The overpayment is then refunded to the buyer. Once
// committed, the refund is sent even if ctx is cancelled.
//
// If the refund transfer fails the purchase stands: the committed purchase is
// returned together with a *model.TransferError matching
// model.ErrRefundFailed, and the failure is queued for reconciliation.
func (m *Market) PurchaseBoat(ctx context.Context, caller model.Account, id model.BoatID, quantity int64, fundsSent model.Amount) (model.Purchase, error) {
	var (
		p      model.Purchase
		seller model.Account
	)
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		if caller == "" {
			return model.ErrUnauthorized
		}
		if err := gate(ctx, tx, m.policy.Purchases); err != nil {
			return err
		}

		boat, err := loadBoat(ctx, tx, id)
		if err != nil {
			return err
		}
		club, err := loadClub(ctx, tx, boat.ClubID)
		if err != nil {
			return err
		}
		if !boat.Purchasable(club.Status) {
			return model.ErrNotPurchasable
		}
		if quantity < 1 {
			return model.ErrInvalidQuantity
		}
		if quantity > boat.Quantity {
			return model.ErrInsufficientStock
		}

		cost, err := model.MulQuantity(boat.UnitPrice, quantity)
		if err != nil {
			return err
		}
		if fundsSent < cost {
			return model.ErrInsufficientFunds
		}

		if err := tx.SetBoatQuantity(ctx, id, boat.Quantity-quantity); err != nil {
			return err
		}

		seller = club.Owner
		balance, err := tx.Balance(ctx, seller)
		if err != nil {
			return err
		}
		if balance, err = balance.Add(cost); err != nil {
			return err
		}
		if err := tx.SetBalance(ctx, seller, balance); err != nil {
			return err
		}

		p = model.Purchase{
			Reference:   newReference(),
			ClubID:      club.ID,
			BoatID:      id,
			Buyer:       caller,
			Quantity:    quantity,
			CostOfSale:  cost,
			FundsSent:   fundsSent,
			Refund:      fundsSent - cost,
			PurchasedAt: m.now().UTC(),
		}
		return tx.InsertPurchase(ctx, &p)
	})
	if err != nil {
		return model.Purchase{}, err
	}

	m.logger.Info("boat purchased",
		"purchase_id", p.ID,
		"reference", p.Reference,
		"buyer", p.Buyer,
		"seller", seller,
		"club_id", p.ClubID,
		"boat_id", p.BoatID,
		"quantity", p.Quantity,
		"cost_of_sale", p.CostOfSale,
		"funds_sent", p.FundsSent,
		"refund", p.Refund,
	)

	if p.Refund == 0 {
		return p, nil
	}
	refund := model.Transfer{
		Reference: p.Reference,
		Kind:      model.TransferRefund,
		To:        p.Buyer,
		Amount:    p.Refund,
	}
	if err := m.sender.Send(context.WithoutCancel(ctx), refund); err != nil {
		return p, m.transferFailed(ctx, refund, p.ID, err)
	}
	return p, nil
}

// WithdrawFunds pays out the caller's whole balance. The balance is zeroed
// and the withdrawal recorded before the transfer is attempted, so a second
// call made while the transfer is in flight finds nothing to withdraw. Once
// committed, the payout is sent even if ctx is cancelled.
//
// If the transfer fails the balance stays zero: the committed withdrawal is
// returned together with a *model.TransferError matching
// model.ErrTransferFailed, and the failure is queued for reconciliation.
func (m *Market) WithdrawFunds(ctx context.Context, caller model.Account) (model.Withdrawal, error) {
	var w model.Withdrawal
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		if caller == "" {
			return model.ErrUnauthorized
		}
		amount, err := tx.Balance(ctx, caller)
		if err != nil {
			return err
		}
		if amount <= 0 {
			return model.ErrNothingToWithdraw
		}
		if err := tx.SetBalance(ctx, caller, 0); err != nil {
			return err
		}

		w = model.Withdrawal{
			Reference:   newReference(),
			Account:     caller,
			Amount:      amount,
			WithdrawnAt: m.now().UTC(),
		}
		return tx.InsertWithdrawal(ctx, &w)
	})
	if err != nil {
		return model.Withdrawal{}, err
	}

	m.logger.Info("funds withdrawn",
		"withdrawal_id", w.ID,
		"reference", w.Reference,
		"account", w.Account,
		"amount", w.Amount,
	)

	payout := model.Transfer{
		Reference: w.Reference,
		Kind:      model.TransferWithdrawal,
		To:        w.Account,
		Amount:    w.Amount,
	}
	if err := m.sender.Send(context.WithoutCancel(ctx), payout); err != nil {
		return w, m.transferFailed(ctx, payout, 0, err)
	}
	return w, nil
}

// transferFailed queues a failed post-commit transfer for reconciliation and
// returns the error to report. Nothing is retried and no balance is restored.
func (m *Market) transferFailed(ctx context.Context, t model.Transfer, purchase model.PurchaseID, cause error) error {
	terr := &model.TransferError{Transfer: t, Err: cause}
	m.logger.Error("transfer failed after commit",
		"reference", t.Reference,
		"kind", t.Kind,
		"account", t.To,
		"amount", t.Amount,
		"purchase_id", purchase,
		"error", cause,
	)

	// The request may already be cancelled; the record must still be written.
	ctx = context.WithoutCancel(ctx)
	err := m.store.Update(ctx, func(tx repository.Tx) error {
		return tx.InsertTransferFailure(ctx, &model.TransferFailure{
			Reference:  t.Reference,
			Kind:       t.Kind,
			Account:    t.To,
			Amount:     t.Amount,
			PurchaseID: purchase,
			Reason:     cause.Error(),
			FailedAt:   m.now().UTC(),
		})
	})
	if err != nil {
		m.logger.Error("record transfer failure",
			"reference", t.Reference,
			"error", err,
		)
	}
	return terr
}
