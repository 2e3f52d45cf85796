package handler

import (
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/service"
)

// Response shapes add display-unit strings next to smallest-unit amounts.

type marketView struct {
	model.MarketInfo
	SuspendPolicy suspendPolicyView `json:"suspend_policy"`
	Decimals      int32             `json:"currency_decimals"`
}

type suspendPolicyView struct {
	Purchases bool `json:"purchases"`
	Inventory bool `json:"inventory"`
	Clubs     bool `json:"clubs"`
}

type boatView struct {
	model.Boat
	UnitPriceDisplay string `json:"unit_price_display"`
}

type listingView struct {
	Boat         boatView      `json:"boat"`
	ClubName     string        `json:"club_name"`
	ClubLocation string        `json:"club_location"`
	Seller       model.Account `json:"seller"`
}

type purchaseView struct {
	model.Purchase
	CostOfSaleDisplay string `json:"cost_of_sale_display"`
	FundsSentDisplay  string `json:"funds_sent_display"`
	RefundDisplay     string `json:"refund_display"`
}

type withdrawalView struct {
	model.Withdrawal
	AmountDisplay string `json:"amount_display"`
}

type failureView struct {
	model.TransferFailure
	AmountDisplay string `json:"amount_display"`
}

type balanceView struct {
	Account model.Account `json:"account"`
	Balance model.Amount  `json:"balance"`
	Display string        `json:"balance_display"`
}

func (h *Handler) marketView(info model.MarketInfo, p service.SuspendPolicy) marketView {
	return marketView{
		MarketInfo:    info,
		SuspendPolicy: suspendPolicyView(p),
		Decimals:      h.units.Decimals(),
	}
}

func (h *Handler) boatView(b model.Boat) boatView {
	return boatView{Boat: b, UnitPriceDisplay: h.units.Format(b.UnitPrice)}
}

func (h *Handler) purchaseView(p model.Purchase) purchaseView {
	return purchaseView{
		Purchase:          p,
		CostOfSaleDisplay: h.units.Format(p.CostOfSale),
		FundsSentDisplay:  h.units.Format(p.FundsSent),
		RefundDisplay:     h.units.Format(p.Refund),
	}
}

func (h *Handler) withdrawalView(w model.Withdrawal) withdrawalView {
	return withdrawalView{Withdrawal: w, AmountDisplay: h.units.Format(w.Amount)}
}
