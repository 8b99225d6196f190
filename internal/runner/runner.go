package runner

import (
	"context"

	"go.uber.org/zap"

	"servicemon/internal/probe"
)

// Runner sweeps the configured tests one at a time, in declared order.
// Sequential on purpose: a slow or dying endpoint must not smear its
// failures across the other probes.
type Runner struct {
	Log     *zap.Logger
	Retrier *probe.Retrier
}

func New(log *zap.Logger, retrier *probe.Retrier) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Log: log, Retrier: retrier}
}

// Run probes every test and collects the failures. A non-nil error means
// the runner itself broke mid-sweep; the sweep stops there and nothing
// collected so far is reported. Ordinary probe failures never abort.
func (r *Runner) Run(ctx context.Context, tests []probe.Test) (*Report, error) {
	var failed []probe.Result

	for _, t := range tests {
		res, err := r.Retrier.Run(ctx, t)
		if err != nil {
			r.Log.Error("sweep_aborted",
				zap.String("test", t.Name),
				zap.Int("attempts", res.Attempts),
				zap.Error(err),
			)
			return nil, err
		}

		if res.Success {
			r.Log.Debug("probe_passed",
				zap.String("test", t.Name),
				zap.Int("attempts", res.Attempts),
				zap.Int("status", res.Last.StatusCode),
				zap.String("body", res.Last.Body),
			)
			continue
		}

		r.Log.Error("probe_failed",
			zap.String("test", t.Name),
			zap.String("url", t.URL),
			zap.Int("attempts", res.Attempts),
			zap.String("reason", res.Last.Reason.String()),
			zap.String("got", res.Last.Got()),
			zap.String("body", res.Last.Body),
		)
		failed = append(failed, res)
	}

	if len(failed) == 0 {
		return nil, nil
	}
	return &Report{Failed: failed}, nil
}
