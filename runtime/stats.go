package runtime

import "sync/atomic"

// Stats counts what the listeners did with the messages they fetched.
// One Stats may be shared by several listeners.
type Stats struct {
	processed atomic.Int64
	failed    atomic.Int64
	ignored   atomic.Int64
}

type Snapshot struct {
	Processed int64
	Failed    int64
	Ignored   int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Processed: s.processed.Load(),
		Failed:    s.failed.Load(),
		Ignored:   s.ignored.Load(),
	}
}
