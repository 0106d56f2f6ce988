package contxt

import (
	"context"
	"os"
	"time"
)

// NewContext returns a context bounded by timeout, detached from any caller
// lifecycle. Snapshot publishes use it so state fan-out never outlives its
// deadline. CONTEXT_TEST disables the deadline for test runs.
func NewContext(timeout time.Duration) context.Context {
	if os.Getenv("CONTEXT_TEST") != "" {
		return context.Background()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}
