package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validation errors. An operation failing with one of these has changed
// nothing and may be retried with corrected input or roles.
var (
	ErrUnauthorized      = errors.New("caller is not authorized for this operation")
	ErrAlreadyAdmin      = errors.New("account is already a market admin")
	ErrNotAdmin          = errors.New("account is not a market admin")
	ErrCannotRemoveOwner = errors.New("the owner cannot be removed as market admin")
	ErrMarketSuspended   = errors.New("market is suspended")
	ErrAlreadyClubOwner  = errors.New("account is already a club owner")
	ErrNotClubOwner      = errors.New("account is not a club owner")
	ErrAlreadyOwnsClub   = errors.New("account already owns a club")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoOpTransition    = errors.New("entity is already in the requested status")
	ErrClubNotOpen       = errors.New("club is not open")
	ErrInvalidPrice      = errors.New("unit price must be positive")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrNotPurchasable    = errors.New("boat is not available for purchase")
	ErrInsufficientStock = errors.New("requested quantity exceeds stock")
	ErrInsufficientFunds = errors.New("funds sent do not cover the cost of sale")
	ErrNothingToWithdraw = errors.New("no balance to withdraw")
	ErrAmountOverflow    = errors.New("amount overflows")
	ErrInvalidInput      = errors.New("invalid input")

	ErrClubNotFound     = errors.New("club not found")
	ErrBoatNotFound     = errors.New("boat not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
)

// Fatal errors. Raised only after the ledger has committed; they need manual
// reconciliation and must never be retried automatically.
var (
	ErrRefundFailed   = errors.New("refund transfer failed")
	ErrTransferFailed = errors.New("withdrawal transfer failed")
)

// TransferError describes an outbound transfer that failed after commit.
// It matches ErrRefundFailed or ErrTransferFailed under errors.Is.
type TransferError struct {
	Transfer Transfer
	Err      error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s of %d to %s (ref %s): %v",
		e.Transfer.Kind, e.Transfer.Amount, e.Transfer.To, e.Transfer.Reference, e.Err)
}

func (e *TransferError) Is(target error) bool {
	switch e.Transfer.Kind {
	case TransferRefund:
		return target == ErrRefundFailed
	case TransferWithdrawal:
		return target == ErrTransferFailed
	}
	return false
}

func (e *TransferError) Unwrap() error { return e.Err }

// Reference returns the transfer reference for operator lookups.
func (e *TransferError) Reference() uuid.UUID { return e.Transfer.Reference }

// ErrorCode returns the taxonomy name of err, or "" when err is not a domain
// error.
func ErrorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrRefundFailed, "RefundFailed"},
	{ErrTransferFailed, "TransferFailed"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrAlreadyAdmin, "AlreadyAdmin"},
	{ErrNotAdmin, "NotAdmin"},
	{ErrCannotRemoveOwner, "CannotRemoveOwner"},
	{ErrMarketSuspended, "MarketSuspended"},
	{ErrAlreadyClubOwner, "AlreadyClubOwner"},
	{ErrNotClubOwner, "NotClubOwner"},
	{ErrAlreadyOwnsClub, "AlreadyOwnsClub"},
	{ErrInvalidTransition, "InvalidTransition"},
	{ErrNoOpTransition, "NoOpTransition"},
	{ErrClubNotOpen, "ClubNotOpen"},
	{ErrInvalidPrice, "InvalidPrice"},
	{ErrInvalidQuantity, "InvalidQuantity"},
	{ErrNotPurchasable, "NotPurchasable"},
	{ErrInsufficientStock, "InsufficientStock"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrNothingToWithdraw, "NothingToWithdraw"},
	{ErrAmountOverflow, "AmountOverflow"},
	{ErrInvalidInput, "InvalidInput"},
	{ErrClubNotFound, "ClubNotFound"},
	{ErrBoatNotFound, "BoatNotFound"},
	{ErrPurchaseNotFound, "PurchaseNotFound"},
}
