/*
refresher.go - Periodic snapshot reload

PURPOSE:
  Re-reads the Source on an interval so a CSV export or database that is
  updated out of band shows up without a restart. A failed reload is logged
  and the previous snapshot keeps serving.

DESIGN:
  - One background goroutine driven by a time.Ticker
  - Reloads immediately on Start when LoadOnStart is set
  - Stop waits for an in-flight reload to finish

USAGE:
  r := insight.NewRefresher(svc, 15*time.Minute)
  r.Start()
  defer r.Stop()
*/
package insight

import (
	"context"
	"sync"
	"time"
)

// Refresher reloads a Service on a fixed interval.
type Refresher struct {
	Service     *Service
	Interval    time.Duration
	LoadOnStart bool

	// OnReload, when set, is called after every attempt.
	OnReload func(err error)

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRefresher creates a refresher. A non-positive interval disables it.
func NewRefresher(svc *Service, interval time.Duration) *Refresher {
	return &Refresher{Service: svc, Interval: interval}
}

// Start begins periodic reloads.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Interval <= 0 {
		r.Service.log.Info("refresher disabled")
		return
	}
	if r.ticker != nil {
		return
	}

	r.ticker = time.NewTicker(r.Interval)
	r.stop = make(chan struct{})
	r.wg.Add(1)
	go r.run()

	r.Service.log.Info("refresher started", "interval", r.Interval)
}

// Stop halts the refresher and waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	close(r.stop)
	r.wg.Wait()
	r.ticker = nil
	r.Service.log.Info("refresher stopped")
}

func (r *Refresher) run() {
	defer r.wg.Done()

	if r.LoadOnStart {
		r.RunNow()
	}
	for {
		select {
		case <-r.ticker.C:
			r.RunNow()
		case <-r.stop:
			return
		}
	}
}

// RunNow reloads immediately.
func (r *Refresher) RunNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()

	_, err := r.Service.Reload(ctx)
	if err != nil {
		r.Service.log.Warn("snapshot reload failed", "error", err)
	}
	if r.OnReload != nil {
		r.OnReload(err)
	}
	return err
}

func (r *Refresher) timeout() time.Duration {
	if r.Interval > 0 && r.Interval < time.Minute {
		return r.Interval
	}
	return time.Minute
}
