package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout caps the network call of a single attempt.
const DefaultTimeout = 60 * time.Second

// excerptLimit bounds how much of a response body is kept for reports and
// debug traces.
const excerptLimit = 512

// HTTPExecutor performs one HTTP attempt per Execute call. The underlying
// client carries the per-attempt timeout; exceeding it is a transport
// failure like any other.
type HTTPExecutor struct {
	Client *http.Client
	Log    *zap.Logger
}

func NewHTTPExecutor(timeout time.Duration, log *zap.Logger) *HTTPExecutor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPExecutor{
		Client: &http.Client{Timeout: timeout},
		Log:    log,
	}
}

// Execute runs a single attempt. Network-layer failures of any kind are
// captured in the Outcome, never propagated as faults.
func (e *HTTPExecutor) Execute(ctx context.Context, t Test) Outcome {
	var resp *http.Response
	var err error

	switch t.Method {
	case http.MethodGet:
		resp, err = e.get(ctx, t)
	case http.MethodPost:
		resp, err = e.post(ctx, t)
	default:
		e.Log.Error("probe_unsupported_method",
			zap.String("test", t.Name),
			zap.String("method", t.Method),
		)
		return Outcome{
			Reason: ReasonUnsupportedMethod,
			Err:    fmt.Errorf("unsupported method %q", t.Method),
		}
	}
	if err != nil {
		return Outcome{Reason: ReasonTransport, Err: err}
	}
	defer resp.Body.Close()

	// Excerpt is best effort; a body that cannot be read just stays empty.
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, excerptLimit))

	out := Outcome{StatusCode: resp.StatusCode, Body: string(excerpt)}
	if statusAccepted(resp.StatusCode, t.Accept) {
		out.Success = true
	} else {
		out.Reason = ReasonStatusNotAccepted
	}

	e.Log.Debug("probe_attempt",
		zap.String("test", t.Name),
		zap.String("method", t.Method),
		zap.String("url", t.URL),
		zap.Int("status", out.StatusCode),
		zap.Bool("accepted", out.Success),
		zap.String("body", out.Body),
	)
	return out
}

func (e *HTTPExecutor) get(ctx context.Context, t Test) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return nil, err
	}
	if len(t.QueryArgs) > 0 {
		q := req.URL.Query()
		for k, v := range t.QueryArgs {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	return e.Client.Do(req)
}

func (e *HTTPExecutor) post(ctx context.Context, t Test) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if len(t.Payload) > 0 {
		body = bytes.NewReader(t.Payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, body)
	if err != nil {
		return nil, err
	}
	if len(t.Payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.Client.Do(req)
}

func statusAccepted(code int, accept []int) bool {
	for _, a := range accept {
		if a == code {
			return true
		}
	}
	return false
}
