package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/saravenpi/switchboard/internal/models"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []string
	started chan string
	gate    map[string]chan struct{}
	fail    map[string]error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		started: make(chan string, 64),
		gate:    map[string]chan struct{}{},
		fail:    map[string]error{},
	}
}

func (f *fakeFetcher) FetchBadges(ctx context.Context, sid string) (models.Badges, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sid)
	gate := f.gate[sid]
	err := f.fail[sid]
	f.mu.Unlock()

	f.started <- sid
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.Badges{}, ctx.Err()
		}
	}
	if err != nil {
		return models.Badges{}, err
	}
	registered := sid != "ACmissing"
	return models.Badges{AllEmergenciesRegistered: &registered}, nil
}

func (f *fakeFetcher) callsFor(sid string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == sid {
			n++
		}
	}
	return n
}

func (f *fakeFetcher) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func waitStarted(t *testing.T, f *fakeFetcher, want string) {
	t.Helper()
	select {
	case got := <-f.started:
		if got != want {
			t.Fatalf("expected fetch for %s, got %s", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for fetch of %s", want)
	}
}

func nextResult(t *testing.T, s *Scheduler) Result {
	t.Helper()
	select {
	case r := <-s.Results():
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result")
		return Result{}
	}
}

func TestOverlappingPassesFetchOnce(t *testing.T) {
	f := newFakeFetcher()
	gate := make(chan struct{})
	f.gate["AC1"] = gate

	s := New(f, time.Millisecond, zaptest.NewLogger(t))
	defer s.Close()

	s.Submit([]string{"AC1"})
	waitStarted(t, f, "AC1")

	s.Submit([]string{"AC1"})
	s.Submit([]string{"AC1"})
	time.Sleep(20 * time.Millisecond)

	close(gate)
	r := nextResult(t, s)
	if r.SID != "AC1" || r.Err != nil {
		t.Fatalf("unexpected result %+v", r)
	}

	s.Submit([]string{"AC1"})
	time.Sleep(20 * time.Millisecond)

	if n := f.callsFor("AC1"); n != 1 {
		t.Errorf("expected exactly one fetch for AC1, got %d", n)
	}
	if !s.Enriched("AC1") {
		t.Error("expected AC1 to be enriched")
	}
}

func TestCancelStopsNewRequests(t *testing.T) {
	f := newFakeFetcher()
	s := New(f, 200*time.Millisecond, zaptest.NewLogger(t))
	defer s.Close()

	s.Submit([]string{"AC1", "AC2", "AC3"})
	waitStarted(t, f, "AC1")
	r := nextResult(t, s)
	if r.SID != "AC1" || r.Badges.AllEmergenciesRegistered == nil {
		t.Fatalf("unexpected result %+v", r)
	}

	// The pass is now waiting before AC2; a new page supersedes it.
	s.Submit([]string{"AC3"})
	waitStarted(t, f, "AC3")
	nextResult(t, s)

	if n := f.callsFor("AC2"); n != 0 {
		t.Errorf("cancelled pass should not fetch AC2, got %d calls", n)
	}
	if !s.Enriched("AC1") {
		t.Error("cancelling must not lose AC1")
	}

	s.Cancel()
	s.Submit([]string{"AC1", "AC2"})
	waitStarted(t, f, "AC2")
	if n := f.callsFor("AC1"); n != 1 {
		t.Errorf("AC1 should not be refetched, got %d calls", n)
	}
}

func TestInFlightResultSurvivesCancellation(t *testing.T) {
	f := newFakeFetcher()
	gate := make(chan struct{})
	f.gate["AC1"] = gate

	s := New(f, time.Hour, zaptest.NewLogger(t))
	defer s.Close()

	s.Submit([]string{"AC1", "AC2"})
	waitStarted(t, f, "AC1")
	s.Cancel()
	close(gate)

	r := nextResult(t, s)
	if r.SID != "AC1" || r.Err != nil {
		t.Fatalf("expected in-flight AC1 to deliver, got %+v", r)
	}
	if n := f.callsFor("AC2"); n != 0 {
		t.Errorf("expected no fetch for AC2, got %d", n)
	}
}

func TestFailedFetchIsRetriedByNextPass(t *testing.T) {
	f := newFakeFetcher()
	f.fail["AC1"] = errors.New("boom")

	s := New(f, 0, zaptest.NewLogger(t))
	defer s.Close()

	s.Submit([]string{"AC1"})
	r := nextResult(t, s)
	if r.Err == nil {
		t.Fatal("expected error result")
	}
	if s.Enriched("AC1") {
		t.Error("failed fetch must not mark AC1 enriched")
	}

	f.mu.Lock()
	delete(f.fail, "AC1")
	f.mu.Unlock()

	s.Submit([]string{"AC1"})
	r = nextResult(t, s)
	if r.Err != nil || !s.Enriched("AC1") {
		t.Errorf("expected successful retry, got %+v", r)
	}
	if n := f.callsFor("AC1"); n != 2 {
		t.Errorf("expected 2 fetches, got %d", n)
	}
}

func TestPassFollowsSubmittedOrder(t *testing.T) {
	f := newFakeFetcher()
	s := New(f, 20*time.Millisecond, zaptest.NewLogger(t))
	defer s.Close()

	order := []string{"AC3", "AC1", "AC2"}
	s.Submit(order)
	for range order {
		nextResult(t, s)
	}

	got := f.callOrder()
	for i := range order {
		if got[i] != order[i] {
			t.Fatalf("fetch order = %v, want %v", got, order)
		}
	}
}

func TestResetRefetches(t *testing.T) {
	f := newFakeFetcher()
	s := New(f, 0, zaptest.NewLogger(t))
	defer s.Close()

	s.Submit([]string{"AC1"})
	nextResult(t, s)
	s.Reset()
	if s.Enriched("AC1") {
		t.Fatal("Reset should forget AC1")
	}
	s.Submit([]string{"AC1"})
	nextResult(t, s)
	if n := f.callsFor("AC1"); n != 2 {
		t.Errorf("expected 2 fetches after reset, got %d", n)
	}
}

func TestCloseClosesResults(t *testing.T) {
	s := New(newFakeFetcher(), 0, nil)
	s.Close()
	s.Close()

	if _, ok := <-s.Results(); ok {
		t.Error("expected results channel to be closed")
	}
	s.Submit([]string{"AC1"})
}

// timedFetcher holds every fetch for hold and records when each started
// and how many ran at once.
type timedFetcher struct {
	hold time.Duration

	mu      sync.Mutex
	active  int
	peak    int
	started []time.Time
}

func (f *timedFetcher) FetchBadges(ctx context.Context, sid string) (models.Badges, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.started = append(f.started, time.Now())
	f.mu.Unlock()

	select {
	case <-time.After(f.hold):
	case <-ctx.Done():
	}

	f.mu.Lock()
	f.active--
	f.mu.Unlock()
	registered := true
	return models.Badges{AllEmergenciesRegistered: &registered}, nil
}

func (f *timedFetcher) snapshot() (int, []time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak, append([]time.Time(nil), f.started...)
}

func TestSlowFetchesDoNotOverlap(t *testing.T) {
	f := &timedFetcher{hold: 40 * time.Millisecond}
	s := New(f, 5*time.Millisecond, zaptest.NewLogger(t))
	defer s.Close()

	order := []string{"AC1", "AC2", "AC3", "AC4", "AC5"}
	s.Submit(order)
	for range order {
		if r := nextResult(t, s); r.Err != nil {
			t.Fatalf("unexpected error %v", r.Err)
		}
	}

	if peak, _ := f.snapshot(); peak != 1 {
		t.Errorf("expected one fetch at a time, peak was %d", peak)
	}
}

func TestDelayHoldsAcrossPasses(t *testing.T) {
	f := &timedFetcher{}
	delay := 200 * time.Millisecond
	s := New(f, delay, zaptest.NewLogger(t))
	defer s.Close()

	for _, sid := range []string{"AC1", "AC2", "AC3", "AC4", "AC5"} {
		s.Submit([]string{sid})
		time.Sleep(10 * time.Millisecond)
	}
	if _, started := f.snapshot(); len(started) != 1 {
		t.Fatalf("expected a single fetch inside the delay, got %d", len(started))
	}

	r := nextResult(t, s)
	if r.SID != "AC1" {
		t.Fatalf("expected AC1 first, got %s", r.SID)
	}
	r = nextResult(t, s)
	if r.SID != "AC5" {
		t.Fatalf("expected only the latest pass to run, got %s", r.SID)
	}

	_, started := f.snapshot()
	if len(started) != 2 {
		t.Fatalf("expected 2 fetches, got %d", len(started))
	}
	if gap := started[1].Sub(started[0]); gap < delay {
		t.Errorf("fetches %v apart, want at least %v", gap, delay)
	}
}
