package fs

import (
	"context"
	"fmt"
	"time"
)

const maxWaitDelay = 500 * time.Millisecond

// WaitForFile polls until path exists and is non-empty, backing off from 50ms up to 500ms.
func WaitForFile(ctx context.Context, path string, maxWait time.Duration) (FileInfo, error) {
	deadline := time.Now().Add(maxWait)
	delay := 50 * time.Millisecond

	for {
		if info, err := Stat(path); err == nil && info.SizeBytes > 0 {
			return info, nil
		}

		if !time.Now().Before(deadline) {
			return FileInfo{}, fmt.Errorf("timeout waiting for file %s after %v", path, maxWait)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return FileInfo{}, ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxWaitDelay {
			delay = maxWaitDelay
		}
	}
}
