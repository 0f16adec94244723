package aggregator

import "golang.org/x/sync/errgroup"

// fanOut calls fn concurrently for every id and waits for all of them, in no particular order.
// It fails with the first error seen. Calls that succeeded are not rolled back.
func fanOut(ids []string, fn func(id string) error) error {
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error { return fn(id) })
	}
	return g.Wait()
}
