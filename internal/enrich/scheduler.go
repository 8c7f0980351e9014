// Package enrich fetches per-subaccount badges in the background, one
// request per delay step, so the subaccount list can render before the
// slow indicators are known.
package enrich

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saravenpi/switchboard/internal/models"
)

const DefaultDelay = 300 * time.Millisecond

type Fetcher interface {
	FetchBadges(ctx context.Context, sid string) (models.Badges, error)
}

// Result is delivered once per issued fetch.
type Result struct {
	SID    string
	Badges models.Badges
	Err    error
}

type pass struct {
	ctx   context.Context
	order []string
}

// Scheduler runs at most one enrichment pass and one fetch at a time,
// with at least delay between consecutive fetches. Submitting a new pass
// cancels the running one; a fetch already in flight finishes and still
// delivers its result before the next pass starts.
type Scheduler struct {
	fetcher Fetcher
	delay   time.Duration
	log     *zap.Logger

	root    context.Context
	stop    context.CancelFunc
	queue   chan pass
	results chan Result
	worker  sync.WaitGroup

	// lastIssue is owned by the worker goroutine.
	lastIssue time.Time

	mu       sync.Mutex
	cancel   context.CancelFunc
	inflight map[string]struct{}
	enriched map[string]struct{}
	closed   bool
}

func New(fetcher Fetcher, delay time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if delay < 0 {
		delay = 0
	}
	root, stop := context.WithCancel(context.Background())
	s := &Scheduler{
		fetcher:  fetcher,
		delay:    delay,
		log:      log.Named("enrich"),
		root:     root,
		stop:     stop,
		queue:    make(chan pass, 1),
		results:  make(chan Result, 64),
		inflight: make(map[string]struct{}),
		enriched: make(map[string]struct{}),
	}
	s.worker.Add(1)
	go s.run()
	return s
}

// Results streams badge results as they arrive. It is closed by Close.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// Submit starts a new pass over order, cancelling the current one and
// replacing any pass still waiting in the queue.
func (s *Scheduler) Submit(order []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.root)
	s.cancel = cancel

	select {
	case <-s.queue:
	default:
	}
	s.queue <- pass{ctx: ctx, order: append([]string(nil), order...)}
}

// Cancel stops the current pass without starting another.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Reset forgets which subaccounts have been enriched so the next pass
// fetches them again.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enriched = make(map[string]struct{})
}

// Enriched reports whether a successful result for sid has been delivered.
func (s *Scheduler) Enriched(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.enriched[sid]
	return ok
}

// Close stops the worker, aborting any in-flight fetch, and closes Results.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.stop()
	s.worker.Wait()
	close(s.results)
}

func (s *Scheduler) run() {
	defer s.worker.Done()
	for {
		select {
		case <-s.root.Done():
			return
		case p := <-s.queue:
			s.runPass(p)
		}
	}
}

func (s *Scheduler) runPass(p pass) {
	issued := 0
	for _, sid := range p.order {
		if p.ctx.Err() != nil {
			s.log.Debug("pass cancelled", zap.Int("issued", issued))
			return
		}
		if !s.claim(sid) {
			continue
		}

		if !s.wait(p.ctx) {
			s.release(sid)
			s.log.Debug("pass cancelled", zap.Int("issued", issued))
			return
		}

		issued++
		s.fetch(sid)
	}
	s.log.Debug("pass complete", zap.Int("issued", issued))
}

// claim marks sid in flight unless it is already enriched or in flight.
func (s *Scheduler) claim(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enriched[sid]; ok {
		return false
	}
	if _, ok := s.inflight[sid]; ok {
		return false
	}
	s.inflight[sid] = struct{}{}
	return true
}

func (s *Scheduler) release(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sid)
}

// wait blocks until delay has passed since the previous request, whichever
// pass issued it.
func (s *Scheduler) wait(ctx context.Context) bool {
	remaining := time.Duration(0)
	if !s.lastIssue.IsZero() {
		remaining = s.delay - time.Since(s.lastIssue)
	}
	if remaining <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// fetch runs under the scheduler's root context: a cancelled pass still
// waits for its request and delivers the result, but Close aborts it.
func (s *Scheduler) fetch(sid string) {
	s.lastIssue = time.Now()
	badges, err := s.fetcher.FetchBadges(s.root, sid)

	s.mu.Lock()
	delete(s.inflight, sid)
	if err == nil {
		s.enriched[sid] = struct{}{}
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("badge fetch failed", zap.String("sid", sid), zap.Error(err))
	}

	select {
	case s.results <- Result{SID: sid, Badges: badges, Err: err}:
	case <-s.root.Done():
	}
}
