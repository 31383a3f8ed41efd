package app

import "context"

// WatcherJob is a job that is run in turn by the watcher loop.
type WatcherJob struct {
	Name string
	Do   func(ctx context.Context) error
}
