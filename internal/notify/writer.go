package notify

import (
	"context"
	"fmt"
	"io"
)

// Writer prints alerts to a stream instead of delivering them. Backs the
// -dry-run flag so a config can be rehearsed without mailing anyone.
type Writer struct {
	Out io.Writer
}

func (w *Writer) Send(_ context.Context, msg string, audience Audience) error {
	_, err := fmt.Fprintf(w.Out, "--- alert (audience=%s) ---\n%s\n", audience, msg)
	return err
}
