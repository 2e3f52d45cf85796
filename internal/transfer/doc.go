// Package transfer implements the outbound value-transfer primitive used for
// purchase refunds and seller withdrawals.
//
// Two senders are provided:
//
//   - Ledger records transfers in process memory. It is the development
//     driver and the test double, with hooks to inject failures.
//   - HTTPSender posts each transfer to a payment provider. The transfer
//     reference is sent as the idempotency key.
//
// Neither sender retries. A failed transfer is reported to the caller, which
// records it for manual reconciliation.
package transfer
