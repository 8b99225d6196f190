package probe

import (
	"context"
	"encoding/json"
	"strconv"
)

// Test is one configured HTTP check. Instances are read-only inputs owned
// by the config loader; nothing here mutates them.
//
// Fields:
// - Method: normalized upper-case. Anything other than GET/POST survives
//   loading and fails at execution time instead (it is a probe failure,
//   not a config error).
// - Accept: allow-listed status codes. An empty set accepts nothing, so
//   every attempt fails.
type Test struct {
	Name      string
	URL       string
	Method    string
	QueryArgs map[string]string // GET only
	Payload   json.RawMessage   // POST only, sent verbatim as the JSON body
	Accept    []int
}

// Reason classifies why an attempt failed. Retry policy branches on the
// kind, never on message text.
type Reason int

const (
	// ReasonNone marks a successful attempt.
	ReasonNone Reason = iota
	// ReasonUnsupportedMethod means the method is not GET or POST. The
	// failure is deterministic, so it is never retried.
	ReasonUnsupportedMethod
	// ReasonStatusNotAccepted means a response arrived with a status code
	// outside the test's accept set.
	ReasonStatusNotAccepted
	// ReasonTransport means the request died below HTTP: DNS, dial,
	// timeout, malformed URL.
	ReasonTransport
	// ReasonNoResponse means retries exhausted without any attempt
	// producing a terminal outcome.
	ReasonNoResponse
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonUnsupportedMethod:
		return "unsupported-method"
	case ReasonStatusNotAccepted:
		return "status-not-accepted"
	case ReasonTransport:
		return "transport-error"
	case ReasonNoResponse:
		return "no-response"
	default:
		return "unknown"
	}
}

// Outcome is the result of a single attempt.
//
// StatusCode is 0 when no response was received. Body holds at most
// excerptLimit bytes of the response. Err carries the underlying cause
// for transport and unsupported-method failures.
type Outcome struct {
	Success    bool
	Reason     Reason
	StatusCode int
	Body       string
	Err        error
}

// Got renders what the attempt observed, for reports and logs.
func (o Outcome) Got() string {
	if o.StatusCode != 0 {
		return strconv.Itoa(o.StatusCode)
	}
	if o.Reason == ReasonUnsupportedMethod && o.Err != nil {
		return "no response (" + o.Err.Error() + ")"
	}
	return "no response"
}

// Result is the record of a fully retried probe. It is complete whether
// the probe passed or failed: the test, how many attempts were made, and
// the final attempt's outcome.
type Result struct {
	Test     Test
	Success  bool
	Attempts int
	Last     Outcome
}

// Executor performs a single attempt for a test.
type Executor interface {
	Execute(ctx context.Context, t Test) Outcome
}
