package extraction

import (
	"context"
	"time"

	"github.com/notifid/logextractor/internal/domain/extraction"
)

// metadataOp asks a download endpoint for a descriptor that may not be
// ready yet.
type metadataOp func(ctx context.Context) (extraction.DownloadDescriptor, error)

// fetchReady calls op once; when the descriptor is not ready it waits the
// advertised RetryAfter and calls op exactly one more time, returning the
// second descriptor as is, ready or not. Transport failures propagate
// immediately and are never retried here.
func fetchReady(ctx context.Context, sleep SleepFunc, op metadataOp) (extraction.DownloadDescriptor, error) {
	desc, err := op(ctx)
	if err != nil || desc.Ready() {
		return desc, err
	}
	if err := sleep(ctx, desc.RetryAfter); err != nil {
		return desc, err
	}
	return op(ctx)
}

// ContextSleep waits for d or until the context is cancelled.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
