// Package model defines the core domain types for the boat marketplace.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is an opaque caller identity (a wallet address).
type Account string

// NormalizeAccount trims surrounding whitespace from a raw identity.
func NormalizeAccount(raw string) Account {
	return Account(strings.TrimSpace(raw))
}

// Amount is a quantity of currency in its smallest unit.
type Amount int64

// ClubID identifies a club. Zero means "no club".
type ClubID int64

// BoatID identifies a boat. Zero means "no boat".
type BoatID int64

// PurchaseID identifies a purchase record.
type PurchaseID int64

// Club is a named, located selling entity owned by exactly one account.
type Club struct {
	ID       ClubID     `json:"id"`
	Owner    Account    `json:"owner"`
	Name     string     `json:"name"`
	Location string     `json:"location"`
	Status   ClubStatus `json:"status"`
}

// Boat is a unit of sellable inventory bound to one club.
type Boat struct {
	ID          BoatID     `json:"id"`
	ClubID      ClubID     `json:"club_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	UnitPrice   Amount     `json:"unit_price"`
	Quantity    int64      `json:"quantity"`
	Status      BoatStatus `json:"status"`
}

// Purchasable reports whether the boat can be bought given the status of its
// owning club. All three conditions must hold at the moment of purchase.
func (b *Boat) Purchasable(club ClubStatus) bool {
	return b.Status == BoatForSale && b.Quantity > 0 && club == ClubOpen
}

// Listing pairs a purchasable boat with the club selling it.
type Listing struct {
	Boat         Boat    `json:"boat"`
	ClubName     string  `json:"club_name"`
	ClubLocation string  `json:"club_location"`
	Seller       Account `json:"seller"`
}

// Purchase is an immutable record of a completed sale.
type Purchase struct {
	ID          PurchaseID `json:"id"`
	Reference   uuid.UUID  `json:"reference"`
	ClubID      ClubID     `json:"club_id"`
	BoatID      BoatID     `json:"boat_id"`
	Buyer       Account    `json:"buyer"`
	Quantity    int64      `json:"quantity"`
	CostOfSale  Amount     `json:"cost_of_sale"`
	FundsSent   Amount     `json:"funds_sent"`
	Refund      Amount     `json:"refund"`
	PurchasedAt time.Time  `json:"purchased_at"`
}

// Withdrawal records proceeds paid out of the balance ledger.
type Withdrawal struct {
	ID          int64     `json:"id"`
	Reference   uuid.UUID `json:"reference"`
	Account     Account   `json:"account"`
	Amount      Amount    `json:"amount"`
	WithdrawnAt time.Time `json:"withdrawn_at"`
}

// TransferKind says why an outbound transfer was issued.
type TransferKind string

const (
	TransferRefund     TransferKind = "refund"
	TransferWithdrawal TransferKind = "withdrawal"
)

// Transfer is a single outbound payment handed to the value-transfer primitive.
// Reference is stable for the payment and doubles as an idempotency key.
type Transfer struct {
	Reference uuid.UUID    `json:"reference"`
	Kind      TransferKind `json:"kind"`
	To        Account      `json:"to"`
	Amount    Amount       `json:"amount"`
}

// TransferFailure is an outbound transfer that failed after the ledger had
// already committed. It awaits manual reconciliation.
type TransferFailure struct {
	ID         int64        `json:"id"`
	Reference  uuid.UUID    `json:"reference"`
	Kind       TransferKind `json:"kind"`
	Account    Account      `json:"account"`
	Amount     Amount       `json:"amount"`
	PurchaseID PurchaseID   `json:"purchase_id,omitempty"`
	Reason     string       `json:"reason"`
	FailedAt   time.Time    `json:"failed_at"`
}

// MarketInfo is the global market state.
type MarketInfo struct {
	Owner     Account `json:"owner"`
	Suspended bool    `json:"suspended"`
}

// AccountRoles summarizes what an account may do in the market.
type AccountRoles struct {
	Account     Account `json:"account"`
	Owner       bool    `json:"owner"`
	MarketAdmin bool    `json:"market_admin"`
	ClubOwner   bool    `json:"club_owner"`
	Club        ClubID  `json:"club_id"`
}
