package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitForFile_Appears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elpris.png")
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(path, []byte("png"), 0644)
	}()

	info, err := WaitForFile(context.Background(), path, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, int64(3), info.SizeBytes)
}

func TestWaitForFile_Timeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.png")

	_, err := WaitForFile(context.Background(), path, 120*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "timeout")
}

func TestWaitForFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WaitForFile(ctx, filepath.Join(t.TempDir(), "missing.png"), time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}
