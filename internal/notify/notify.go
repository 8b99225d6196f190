package notify

import "context"

// Audience selects which recipient tier an alert goes to. Probe failures
// go to everyone; a broken runner only concerns the operators.
type Audience int

const (
	AudienceAll Audience = iota
	AudienceOperators
)

func (a Audience) String() string {
	if a == AudienceOperators {
		return "operators"
	}
	return "all"
}

type Notifier interface {
	Send(ctx context.Context, msg string, audience Audience) error
}
