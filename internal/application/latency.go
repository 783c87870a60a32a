package application

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Latency models the round trip of the backend the store stands in for. The
// wait ends early when ctx is cancelled and fails with ErrOperationTimeout
// when Timeout elapses first.
type Latency struct {
	Delay   time.Duration
	Timeout time.Duration
}

// Wait blocks for the configured delay.
func (l Latency) Wait(ctx context.Context) error {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return mapWaitError(err)
	}
	if l.Delay <= 0 {
		return nil
	}

	timer := time.NewTimer(l.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return mapWaitError(ctx.Err())
	}
}

func mapWaitError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrOperationTimeout, err)
	}
	return err
}
