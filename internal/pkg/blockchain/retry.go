package blockchain

import (
	"context"
	"errors"
	"time"

	"github.com/jpillora/backoff"
	"github.com/onflow/flow-go-sdk"
	"github.com/rs/zerolog/log"
)

// WithRetry re-runs op while it fails with a transport error. Contract
// rejections and other errors return immediately.
func WithRetry(ctx context.Context, attempts int, op func() error) error {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    2 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil || !errors.Is(err, ErrTransport) || attempt >= attempts {
			return err
		}

		wait := b.Duration()
		log.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("Retrying ledger call")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// RetryingLedger retries the read-only calls of a ledger. Submissions are
// passed through once: a resubmitted transaction could apply twice.
type RetryingLedger struct {
	Ledger
	attempts int
}

func NewRetryingLedger(ledger Ledger, attempts int) *RetryingLedger {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryingLedger{Ledger: ledger, attempts: attempts}
}

func (r *RetryingLedger) Simulate(ctx context.Context, tx *Transaction) (*Simulation, error) {
	var sim *Simulation
	err := WithRetry(ctx, r.attempts, func() error {
		var err error
		sim, err = r.Ledger.Simulate(ctx, tx)
		return err
	})
	return sim, err
}

func (r *RetryingLedger) LatestLedger(ctx context.Context) (uint32, error) {
	var seq uint32
	err := WithRetry(ctx, r.attempts, func() error {
		var err error
		seq, err = r.Ledger.LatestLedger(ctx)
		return err
	})
	return seq, err
}

func (r *RetryingLedger) AccountSequence(ctx context.Context, address flow.Address) (uint64, error) {
	var seq uint64
	err := WithRetry(ctx, r.attempts, func() error {
		var err error
		seq, err = r.Ledger.AccountSequence(ctx, address)
		return err
	})
	return seq, err
}

func (r *RetryingLedger) Events(ctx context.Context, filter EventFilter) ([]Event, error) {
	var events []Event
	err := WithRetry(ctx, r.attempts, func() error {
		var err error
		events, err = r.Ledger.Events(ctx, filter)
		return err
	})
	return events, err
}
