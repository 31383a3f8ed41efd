package svc

import (
	"context"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/go-errors-context"
	"github.com/rs/zerolog/log"
	"time"
)

// WatchJobDelay defines the delay between jobs.
const WatchJobDelay = time.Second

// NewWatcher creates a new instance of the watcher service.
func NewWatcher(jobs []app.WatcherJob) Watcher {
	return Watcher{jobs: jobs, delay: WatchJobDelay}
}

// Watcher is a service that runs the sequences of jobs in a loop.
type Watcher struct {
	jobs  []app.WatcherJob
	delay time.Duration
}

// Watch runs the jobs in turn until the context is cancelled.
func (s Watcher) Watch(ctx context.Context) {
	t := time.NewTimer(s.delay)
	defer t.Stop()
	for {
		for _, j := range s.jobs {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			if ctx.Err() != nil {
				return
			}
			err := j.Do(ctx)
			if err != nil {
				log.Error().Err(errors.WrapContext(err, errors.Context{
					Path:   "svc.Watcher.Watch",
					Params: errors.Params{"job": j.Name},
				})).Send()
			}
			t.Reset(s.delay)
		}
		if len(s.jobs) == 0 {
			<-ctx.Done()
			return
		}
	}
}
