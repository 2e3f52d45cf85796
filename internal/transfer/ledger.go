package transfer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
)

// Ledger is an in-process transfer sink.
type Ledger struct {
	mu     sync.Mutex
	sent   []model.Transfer
	fail   func(model.Transfer) error
	onSend func(context.Context, model.Transfer)
	logger *slog.Logger
}

// NewLedger returns an empty ledger. A nil logger uses slog.Default().
func NewLedger(logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{logger: logger}
}

// Send records t unless the failure function rejects it.
func (l *Ledger) Send(ctx context.Context, t model.Transfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	fail, onSend := l.fail, l.onSend
	l.mu.Unlock()

	// Called without the lock held so the hook may call back into the market.
	if onSend != nil {
		onSend(ctx, t)
	}
	if fail != nil {
		if err := fail(t); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.sent = append(l.sent, t)
	l.mu.Unlock()

	l.logger.Info("transfer sent",
		"reference", t.Reference,
		"kind", t.Kind,
		"to", t.To,
		"amount", t.Amount,
	)
	return nil
}

// FailWith installs fn to decide whether each transfer fails. A nil fn clears it.
func (l *Ledger) FailWith(fn func(model.Transfer) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail = fn
}

// OnSend installs fn to run at the start of every Send.
func (l *Ledger) OnSend(fn func(context.Context, model.Transfer)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onSend = fn
}

// Transfers returns a copy of every successful transfer in send order.
func (l *Ledger) Transfers() []model.Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Transfer, len(l.sent))
	copy(out, l.sent)
	return out
}

// Total returns the sum of successful transfers to an account.
func (l *Ledger) Total(to model.Account) model.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sum model.Amount
	for _, t := range l.sent {
		if t.To == to {
			sum += t.Amount
		}
	}
	return sum
}
