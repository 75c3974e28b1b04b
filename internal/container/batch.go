package container

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RestartResult is the outcome of one restart in a batch.
type RestartResult struct {
	Container string `json:"container"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// RestartBatch restarts every named container concurrently and waits for all of
// them. Each restart gets its own timeout; a failure is logged and does not stop
// or undo the others. Results keep the order of names.
func RestartBatch(ctx context.Context, ctl Controller, names []string, timeout time.Duration, logger *zap.SugaredLogger) []RestartResult {
	results := make([]RestartResult, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			rctx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				rctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			results[i] = RestartResult{Container: name, OK: true}
			if err := ctl.Restart(rctx, name); err != nil {
				logger.Warnw("container restart failed", "container", name, "err", err)
				results[i] = RestartResult{Container: name, Error: err.Error()}
			}
		}(i, name)
	}
	wg.Wait()
	return results
}

// Failed counts the failed restarts in a batch.
func Failed(results []RestartResult) int {
	n := 0
	for _, r := range results {
		if !r.OK {
			n++
		}
	}
	return n
}
