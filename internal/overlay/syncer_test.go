package overlay

import (
	"sync"
	"testing"
	"time"

	"github.com/kburke8/poe-watcher-sub000/internal/breakpoint"
	"github.com/kburke8/poe-watcher-sub000/internal/run"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type captureSink struct {
	mu     sync.Mutex
	pushes []Projection
}

func (s *captureSink) PushProjection(p Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushes = append(s.pushes, p)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pushes)
}

func (s *captureSink) at(i int) Projection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushes[i]
}

type mapReference struct {
	pb   map[string]int64
	gold map[string]int64
}

func (m mapReference) PersonalBestMs(name string) (int64, bool) {
	v, ok := m.pb[name]
	return v, ok
}

func (m mapReference) GoldSegmentMs(name string) (int64, bool) {
	v, ok := m.gold[name]
	return v, ok
}

func testSetup(ref run.Reference) (*fakeClock, *run.Controller, *Projector, *captureSink, *Syncer) {
	clk := newFakeClock()
	bps := []breakpoint.Breakpoint{
		{Name: "The Coast", Kind: breakpoint.KindZone, Trigger: breakpoint.Trigger{Zone: "The Coast", Act: 1}, Enabled: true},
		{Name: "The Ledge", Kind: breakpoint.KindZone, Trigger: breakpoint.Trigger{Zone: "The Ledge", Act: 1}, Enabled: true},
		{Name: "Brutus", Kind: breakpoint.KindBoss, Trigger: breakpoint.Trigger{Zone: "Prisoner's Gate", Act: 1}, Enabled: true},
	}
	timer := run.NewController(clk, "any_percent", bps, ref, nil)
	display := DisplayConfig{Opacity: 0.8, Scale: 1.0, ShowSplits: true, ShowUpcoming: true, UpcomingCount: 2}
	proj := NewProjector(timer, ref, func() DisplayConfig { return display })
	sink := &captureSink{}
	syncer := NewSyncer(proj, sink, 2*time.Second)
	return clk, timer, proj, sink, syncer
}

func TestNotifyPushesOnlyOnStructuralChange(t *testing.T) {
	clk, timer, _, sink, syncer := testSetup(nil)

	timer.Start()
	syncer.Notify()
	if sink.count() != 1 {
		t.Fatalf("pushes = %d, want 1", sink.count())
	}

	// Time passing alone is not a meaningful change.
	clk.Advance(30 * time.Second)
	syncer.Notify()
	if sink.count() != 1 {
		t.Fatalf("elapsed-only change triggered a push: %d", sink.count())
	}

	timer.ZoneEntered("The Coast", 1)
	syncer.Notify()
	if sink.count() != 2 {
		t.Fatalf("zone + split change did not push: %d", sink.count())
	}

	timer.Pause()
	syncer.Notify()
	if sink.count() != 3 {
		t.Fatalf("pause toggle did not push: %d", sink.count())
	}
}

func TestHeartbeatRecomputesElapsed(t *testing.T) {
	clk, timer, _, sink, syncer := testSetup(nil)
	timer.Start()

	clk.Advance(10 * time.Second)
	syncer.Heartbeat()
	clk.Advance(10 * time.Second)
	syncer.Heartbeat()

	if sink.count() != 2 {
		t.Fatalf("heartbeats = %d, want 2 (unconditional)", sink.count())
	}
	if got := sink.at(0).ElapsedMs; got != 10000 {
		t.Errorf("first heartbeat elapsed = %d, want 10000", got)
	}
	if got := sink.at(1).ElapsedMs; got != 20000 {
		t.Errorf("second heartbeat elapsed = %d, want 20000", got)
	}
	start := sink.at(0).StartedAtUnixMs
	if start == 0 || sink.at(1).StartedAtUnixMs != start {
		t.Error("start instant must be stable across pushes while running")
	}
}

func TestReadyPushesImmediately(t *testing.T) {
	_, timer, _, sink, syncer := testSetup(nil)
	timer.Start()
	syncer.Notify()
	before := sink.count()

	// Same state; a plain Notify would be suppressed, Ready must not be.
	syncer.Ready()
	if sink.count() != before+1 {
		t.Fatalf("ready signal did not force a push")
	}
}

func TestProjectionAnnotatesUpcoming(t *testing.T) {
	ref := mapReference{
		pb:   map[string]int64{"The Coast": 45000},
		gold: map[string]int64{"The Ledge": 80000},
	}
	_, timer, proj, _, _ := testSetup(ref)
	timer.Start()

	p := proj.Project()
	if len(p.Upcoming) != 2 {
		t.Fatalf("upcoming = %d, want 2 (display count)", len(p.Upcoming))
	}
	if p.Upcoming[0].Name != "The Coast" || p.Upcoming[0].PBTimeMs == nil || *p.Upcoming[0].PBTimeMs != 45000 {
		t.Errorf("upcoming[0] = %+v", p.Upcoming[0])
	}
	if p.Upcoming[1].Name != "The Ledge" || p.Upcoming[1].GoldSegmentMs == nil {
		t.Errorf("upcoming[1] = %+v", p.Upcoming[1])
	}

	timer.ZoneEntered("The Coast", 1)
	p = proj.Project()
	if p.Upcoming[0].Name != "The Ledge" {
		t.Errorf("upcoming window did not advance with the cursor: %+v", p.Upcoming[0])
	}
	if len(p.Splits) != 1 {
		t.Fatalf("splits in projection = %d, want 1", len(p.Splits))
	}
}

func TestProjectionPhaseFlags(t *testing.T) {
	_, timer, proj, _, _ := testSetup(nil)

	p := proj.Project()
	if p.Running || p.Paused || p.Ended {
		t.Fatalf("idle projection has phase flags set: %+v", p)
	}
	if p.StartedAtUnixMs != 0 {
		t.Error("idle projection carries a start instant")
	}

	timer.Start()
	timer.Pause()
	p = proj.Project()
	if !p.Paused || p.Running {
		t.Fatalf("paused projection flags wrong: %+v", p)
	}
}

func TestConcurrentTriggersSerialize(t *testing.T) {
	_, timer, _, sink, syncer := testSetup(nil)
	timer.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			syncer.Heartbeat()
			syncer.Notify()
		}()
	}
	wg.Wait()

	// All sends completed without interleaving; every captured projection
	// is internally complete.
	for i := 0; i < sink.count(); i++ {
		if p := sink.at(i); p.Category != "any_percent" {
			t.Fatalf("push %d incomplete: %+v", i, p)
		}
	}
}
