package checker

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout applies when a check declares no timeout of its own
const DefaultTimeout = 5 * time.Second

type runOutcome struct {
	res Result
	err error
}

// Execute runs one check under a hard timeout and never fails: timeouts,
// cancellation, panics, and probe errors all come back as down Results with
// an error code set
func Execute(ctx context.Context, client Client, chk Check, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan runOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- runOutcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := chk.Run(cctx, client)
		done <- runOutcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) || errors.Is(out.err, context.Canceled) {
				return timeoutResult(chk, timeout)
			}
			return Result{
				CheckKey:     chk.Key(),
				Status:       StatusDown,
				ErrorCode:    ErrCodeExecution,
				ErrorMessage: out.err.Error(),
				ObservedAt:   time.Now().UTC(),
			}
		}
		res := out.res
		if res.CheckKey == "" {
			res.CheckKey = chk.Key()
		}
		if res.ObservedAt.IsZero() {
			res.ObservedAt = time.Now().UTC()
		}
		if res.Status == "" {
			res.Status = StatusDown
			res.ErrorCode = ErrCodeExecution
			res.ErrorMessage = "check returned no status"
		}
		return res
	case <-cctx.Done():
		// the probe goroutine keeps running until its client call observes
		// cancellation; the buffered channel lets it finish without leaking
		return timeoutResult(chk, timeout)
	}
}

func timeoutResult(chk Check, timeout time.Duration) Result {
	return Result{
		CheckKey:     chk.Key(),
		Status:       StatusDown,
		ErrorCode:    ErrCodeTimeout,
		ErrorMessage: fmt.Sprintf("Check timed out after %gs", timeout.Seconds()),
		ObservedAt:   time.Now().UTC(),
	}
}
