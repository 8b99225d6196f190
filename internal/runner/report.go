package runner

import (
	"fmt"
	"strings"

	"servicemon/internal/probe"
)

// Report aggregates the probes that failed during one sweep, in the
// order the tests were declared. Built once, rendered for the alert,
// never persisted.
type Report struct {
	Failed []probe.Result
}

// Render lays the failures out as the alert body, one block per failed
// probe. Underscores in test names read as spaces.
func (r *Report) Render() string {
	blocks := make([]string, 0, len(r.Failed))
	for _, res := range r.Failed {
		name := strings.ReplaceAll(res.Test.Name, "_", " ")
		blocks = append(blocks, fmt.Sprintf(
			"Test `%s`\n\tURL: %s\n\tExpected status codes: %v\n\tGot: %s\n",
			name, res.Test.URL, res.Test.Accept, res.Last.Got(),
		))
	}
	return strings.Join(blocks, "\n")
}
