package workers

import (
	"bytes"
	"chat-aggregator/runtime"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestHeartbeatWorker_Run(t *testing.T) {
	req := require.New(t)
	var out syncBuffer
	log := slog.New(slog.NewTextHandler(&out, nil))
	worker := NewHeartbeatWorker(log, &runtime.Stats{}, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// When the worker runs until its context expires
	err := worker.Run(ctx)

	// Then it stopped on cancellation after logging at least one beat
	req.ErrorIs(err, context.DeadlineExceeded)
	req.True(strings.Contains(out.String(), "msg=Heartbeat"))
	req.True(strings.Contains(out.String(), "processed=0"))
}
