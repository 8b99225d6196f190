package probe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Retry defaults, applied by NewRetrier to out-of-range values.
const (
	DefaultAttempts = 3
	DefaultDelay    = 5 * time.Second
)

// Retrier drives an Executor through bounded sequential attempts with a
// fixed pause between failures. The pause is scoped to one probe's retry
// loop, not shared across tests.
type Retrier struct {
	Exec     Executor
	Attempts int
	Delay    time.Duration
	Log      *zap.Logger
}

func NewRetrier(exec Executor, attempts int, delay time.Duration, log *zap.Logger) *Retrier {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if delay < 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retrier{Exec: exec, Attempts: attempts, Delay: delay, Log: log}
}

// Run probes t until an attempt succeeds or attempts are exhausted. The
// returned Result is complete in every case.
//
// A non-nil error reports that the final attempt died in transport.
// Callers must treat that as the runner malfunctioning rather than the
// service being down: a response with a bad status is the service's
// problem, exhausting retries on transport errors is ours.
func (r *Retrier) Run(ctx context.Context, t Test) (Result, error) {
	res := Result{Test: t}

	for i := 0; i < r.Attempts; i++ {
		res.Attempts++
		res.Last = r.Exec.Execute(ctx, t)

		if res.Last.Success {
			res.Success = true
			return res, nil
		}

		// A method the executor can never send fails identically on every
		// attempt: record the one failure, no sleep, no retry.
		if res.Last.Reason == ReasonUnsupportedMethod {
			return res, nil
		}

		if i < r.Attempts-1 {
			if res.Last.Reason == ReasonTransport {
				r.Log.Warn("probe_transport_error",
					zap.String("test", t.Name),
					zap.Int("attempt", res.Attempts),
					zap.Error(res.Last.Err),
				)
			}
			time.Sleep(r.Delay)
		}
	}

	if res.Attempts == 0 {
		res.Last = Outcome{Reason: ReasonNoResponse}
	}
	if res.Last.Reason == ReasonTransport {
		return res, fmt.Errorf("probe %s: transport failed on final attempt: %w", t.Name, res.Last.Err)
	}
	return res, nil
}
