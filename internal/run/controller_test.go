package run

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kburke8/poe-watcher-sub000/internal/breakpoint"
)

// fakeClock advances only when told to.
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

// memoryRecorder captures recorder calls in memory.
type memoryRecorder struct {
	mu        sync.Mutex
	started   []uuid.UUID
	splits    []SplitTime
	completed []int64
	discarded []uuid.UUID
}

func (r *memoryRecorder) RunStarted(id uuid.UUID, category string, at time.Time, bps []breakpoint.Breakpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, id)
}

func (r *memoryRecorder) SplitRecorded(id uuid.UUID, split SplitTime) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.splits = append(r.splits, split)
}

func (r *memoryRecorder) RunCompleted(id uuid.UUID, totalMs int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, totalMs)
}

func (r *memoryRecorder) RunDiscarded(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discarded = append(r.discarded, id)
}

// mapReference serves PB and gold lookups from maps.
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

func testBreakpoints() []breakpoint.Breakpoint {
	return []breakpoint.Breakpoint{
		{Name: "The Coast", Kind: breakpoint.KindZone, Trigger: breakpoint.Trigger{Zone: "The Coast", Act: 1}, Enabled: true},
		{Name: "The Ledge", Kind: breakpoint.KindZone, Trigger: breakpoint.Trigger{Zone: "The Ledge", Act: 1}, Enabled: true},
		{Name: "Brutus", Kind: breakpoint.KindBoss, Trigger: breakpoint.Trigger{Zone: "Prisoner's Gate", Act: 1}, Enabled: true},
		{Name: "Kitava, the Insatiable", Kind: breakpoint.KindBoss, Trigger: breakpoint.Trigger{BossKill: true, Act: 5, Zone: "Lioneye's Watch", PenaltyMs: 4000}, Enabled: true},
		{Name: "Level 90", Kind: breakpoint.KindLevel, Trigger: breakpoint.Trigger{Level: 90}, Enabled: false},
	}
}

func TestStartPauseResumeElapsed(t *testing.T) {
	clk := newFakeClock()
	c := NewController(clk, "any_percent", testBreakpoints(), nil, nil)

	c.Start()
	clk.Advance(10 * time.Second)
	if got := c.Tick(); got != 10000 {
		t.Fatalf("elapsed while running = %d, want 10000", got)
	}

	c.Pause()
	clk.Advance(5 * time.Second)
	if got := c.Tick(); got != 10000 {
		t.Fatalf("elapsed while paused = %d, want 10000", got)
	}
	c.Pause() // idempotent
	if got := c.Tick(); got != 10000 {
		t.Fatalf("double pause changed elapsed to %d", got)
	}

	c.Start() // resume
	clk.Advance(2 * time.Second)
	if got := c.Tick(); got != 12000 {
		t.Fatalf("elapsed after resume = %d, want 12000", got)
	}
}

func TestCursorMatchingAndOutOfOrderDrop(t *testing.T) {
	clk := newFakeClock()
	rec := &memoryRecorder{}
	c := NewController(clk, "any_percent", testBreakpoints(), nil, rec)
	c.Start()

	// Out-of-order: The Ledge is not the cursor breakpoint yet.
	c.ZoneEntered("The Ledge", 1)
	if st := c.Snapshot(); st.Cursor != 0 || len(st.Splits) != 0 {
		t.Fatalf("out-of-order match mutated state: cursor=%d splits=%d", st.Cursor, len(st.Splits))
	}

	clk.Advance(1 * time.Minute)
	c.ZoneEntered("The Coast", 1)
	clk.Advance(2 * time.Minute)
	c.ZoneEntered("The Ledge", 0) // unknown act hint still matches
	clk.Advance(30 * time.Second)
	c.ZoneEntered("The Coast", 1) // duplicate of a passed breakpoint: dropped

	st := c.Snapshot()
	if st.Cursor != 2 {
		t.Fatalf("cursor = %d, want 2", st.Cursor)
	}
	if len(st.Splits) != 2 {
		t.Fatalf("splits = %d, want 2", len(st.Splits))
	}
	if st.Splits[0].CumulativeMs != 60000 || st.Splits[0].SegmentMs != 60000 {
		t.Errorf("first split = %+v", st.Splits[0])
	}
	if st.Splits[1].CumulativeMs != 180000 || st.Splits[1].SegmentMs != 120000 {
		t.Errorf("second split = %+v", st.Splits[1])
	}
	if len(rec.splits) != 2 {
		t.Errorf("recorder saw %d splits, want 2", len(rec.splits))
	}
}

func TestSegmentArithmeticChain(t *testing.T) {
	clk := newFakeClock()
	c := NewController(clk, "any_percent", testBreakpoints(), nil, nil)
	c.Start()

	clk.Advance(45 * time.Second)
	c.ZoneEntered("The Coast", 1)
	clk.Advance(90 * time.Second)
	c.ZoneEntered("The Ledge", 1)
	clk.Advance(33 * time.Second)
	c.ZoneEntered("Prisoner's Gate", 1)

	st := c.Snapshot()
	if len(st.Splits) != 3 {
		t.Fatalf("splits = %d, want 3", len(st.Splits))
	}
	if st.Splits[0].SegmentMs != st.Splits[0].CumulativeMs {
		t.Errorf("first segment %d != cumulative %d", st.Splits[0].SegmentMs, st.Splits[0].CumulativeMs)
	}
	for i := 1; i < len(st.Splits); i++ {
		want := st.Splits[i].CumulativeMs - st.Splits[i-1].CumulativeMs
		if st.Splits[i].SegmentMs != want {
			t.Errorf("split %d segment = %d, want %d", i, st.Splits[i].SegmentMs, want)
		}
	}
}

func TestPBDeltaAndGoldFlags(t *testing.T) {
	clk := newFakeClock()
	ref := mapReference{
		pb:   map[string]int64{"The Coast": 50000},
		gold: map[string]int64{"The Ledge": 60000},
	}
	c := NewController(clk, "any_percent", testBreakpoints(), ref, nil)
	c.Start()

	clk.Advance(60 * time.Second)
	c.ZoneEntered("The Coast", 1)
	clk.Advance(45 * time.Second)
	c.ZoneEntered("The Ledge", 1)

	st := c.Snapshot()
	first, second := st.Splits[0], st.Splits[1]

	if first.DeltaMs == nil || *first.DeltaMs != 10000 {
		t.Errorf("first delta = %v, want +10000", first.DeltaMs)
	}
	if !first.GoldSegment {
		t.Error("segment with no existing gold must be gold")
	}
	if second.DeltaMs != nil {
		t.Errorf("second delta = %v, want nil (no PB)", *second.DeltaMs)
	}
	if !second.GoldSegment {
		t.Error("45s segment must beat 60s gold")
	}
}

func TestGoldNotBeaten(t *testing.T) {
	clk := newFakeClock()
	ref := mapReference{gold: map[string]int64{"The Coast": 30000}}
	c := NewController(clk, "any_percent", testBreakpoints(), ref, nil)
	c.Start()

	clk.Advance(30 * time.Second)
	c.ZoneEntered("The Coast", 1)

	if st := c.Snapshot(); st.Splits[0].GoldSegment {
		t.Error("equal segment must not count as gold (strictly less required)")
	}
}

func TestTownAndHideoutSubTimers(t *testing.T) {
	clk := newFakeClock()
	c := NewController(clk, "any_percent", testBreakpoints(), nil, nil)
	c.Start()

	c.ZoneEntered("Lioneye's Watch", 1)
	clk.Advance(40 * time.Second)
	c.ZoneEntered("The Coast", 1)
	clk.Advance(10 * time.Second)

	st := c.Snapshot()
	if st.TownMs != 40000 {
		t.Errorf("town accumulator = %d, want 40000", st.TownMs)
	}
	if st.InTown {
		t.Error("town sub-timer still open after leaving")
	}
	if st.HideoutMs != 0 || st.InHideout {
		t.Error("hideout accounting touched by town visit")
	}

	c.ZoneEntered("Celestial Hideout", 0)
	clk.Advance(15 * time.Second)
	st = c.Snapshot()
	if !st.InHideout {
		t.Error("hideout sub-timer not open")
	}
	if st.HideoutMs != 15000 {
		t.Errorf("open hideout accumulator = %d, want 15000", st.HideoutMs)
	}
}

func TestZoneTransitionWhilePaused(t *testing.T) {
	clk := newFakeClock()
	c := NewController(clk, "any_percent", testBreakpoints(), nil, nil)
	c.Start()
	c.Pause()

	c.ZoneEntered("Lioneye's Watch", 1)
	clk.Advance(20 * time.Second)
	c.ZoneEntered("The Coast", 1)

	st := c.Snapshot()
	if st.TownMs != 20000 {
		t.Errorf("paused town accounting = %d, want 20000", st.TownMs)
	}
	// Matching is suspended while paused.
	if len(st.Splits) != 0 {
		t.Errorf("paused matching recorded %d splits", len(st.Splits))
	}
}

func TestBossKillPenaltyAndAutoComplete(t *testing.T) {
	clk := newFakeClock()
	rec := &memoryRecorder{}
	c := NewController(clk, "any_percent", testBreakpoints(), nil, rec)
	c.Start()

	clk.Advance(time.Minute)
	c.ZoneEntered("The Coast", 1)
	c.ZoneEntered("The Ledge", 1)
	c.ZoneEntered("Prisoner's Gate", 1)
	clk.Advance(time.Minute)
	c.BossKilled(5)

	st := c.Snapshot()
	if st.Phase != PhaseEnded {
		t.Fatalf("phase = %v, want ended after final breakpoint", st.Phase)
	}
	last := st.Splits[len(st.Splits)-1]
	if last.CumulativeMs != 120000+4000 {
		t.Errorf("boss split cumulative = %d, want 124000 (penalty applied)", last.CumulativeMs)
	}
	if len(rec.completed) != 1 {
		t.Fatalf("recorder completions = %d, want 1", len(rec.completed))
	}
}

func TestBossKillZoneFallback(t *testing.T) {
	clk := newFakeClock()
	c := NewController(clk, "any_percent", testBreakpoints(), nil, nil)
	c.Start()

	c.ZoneEntered("The Coast", 1)
	c.ZoneEntered("The Ledge", 1)
	c.ZoneEntered("Prisoner's Gate", 1)
	clk.Advance(time.Minute)
	// No explicit defeat event; the post-kill town transition confirms it.
	c.ZoneEntered("Lioneye's Watch", 0)

	st := c.Snapshot()
	last := st.Splits[len(st.Splits)-1]
	if last.Name != "Kitava, the Insatiable" {
		t.Fatalf("last split = %q", last.Name)
	}
	if last.CumulativeMs != 64000 {
		t.Errorf("fallback boss split = %d, want 64000", last.CumulativeMs)
	}
}

func TestBossPenaltyFollowerOnSameTransition(t *testing.T) {
	// The act 5 -> 6 boundary: the penalized Kitava marker and the next
	// town's own breakpoint both confirm on one "Lioneye's Watch" entry.
	bps := []breakpoint.Breakpoint{
		{Name: "Kitava, the Insatiable", Kind: breakpoint.KindBoss, Trigger: breakpoint.Trigger{BossKill: true, Act: 5, Zone: "Lioneye's Watch", PenaltyMs: 4000}, Enabled: true},
		{Name: "Lioneye's Watch", Kind: breakpoint.KindTown, Trigger: breakpoint.Trigger{Zone: "Lioneye's Watch", Act: 6}, Enabled: true},
		{Name: "The Coast", Kind: breakpoint.KindZone, Trigger: breakpoint.Trigger{Zone: "The Coast", Act: 6}, Enabled: true},
	}
	clk := newFakeClock()
	ref := mapReference{gold: map[string]int64{"Lioneye's Watch": 60000}}
	c := NewController(clk, "any_percent", bps, ref, nil)
	c.Start()

	clk.Advance(5 * time.Minute)
	c.ZoneEntered("Lioneye's Watch", 0)

	st := c.Snapshot()
	if len(st.Splits) != 2 {
		t.Fatalf("splits = %d, want 2 from one transition", len(st.Splits))
	}
	boss, town := st.Splits[0], st.Splits[1]
	if boss.CumulativeMs != 304000 {
		t.Errorf("boss cumulative = %d, want 304000 (penalty applied)", boss.CumulativeMs)
	}
	if town.CumulativeMs != boss.CumulativeMs {
		t.Errorf("town cumulative = %d, went backwards from boss %d", town.CumulativeMs, boss.CumulativeMs)
	}
	if town.SegmentMs != 0 {
		t.Errorf("town segment = %d, want 0", town.SegmentMs)
	}
	if town.GoldSegment {
		t.Error("zero-length segment flagged gold")
	}

	// The next segment is measured from the penalized time.
	clk.Advance(time.Minute)
	c.ZoneEntered("The Coast", 6)
	st = c.Snapshot()
	last := st.Splits[2]
	if last.CumulativeMs != 360000 || last.SegmentMs != 56000 {
		t.Errorf("post-boundary split = cum %d seg %d, want 360000/56000", last.CumulativeMs, last.SegmentMs)
	}
}

func TestLevelMilestones(t *testing.T) {
	bps := []breakpoint.Breakpoint{
		{Name: "Level 10", Kind: breakpoint.KindLevel, Trigger: breakpoint.Trigger{Level: 10}, Enabled: true},
		{Name: "Level 20", Kind: breakpoint.KindLevel, Trigger: breakpoint.Trigger{Level: 20}, Enabled: true},
	}
	clk := newFakeClock()
	c := NewController(clk, "any_percent", bps, nil, nil)
	c.Start()

	clk.Advance(time.Minute)
	c.LevelReached(9)
	if st := c.Snapshot(); len(st.Splits) != 0 {
		t.Fatal("level 9 matched a level-10 threshold")
	}
	// A single level-up can clear several thresholds at once.
	c.LevelReached(25)
	st := c.Snapshot()
	if len(st.Splits) != 2 {
		t.Fatalf("splits = %d, want 2", len(st.Splits))
	}
	if st.Level != 25 {
		t.Errorf("tracked level = %d", st.Level)
	}
}

func TestDisabledBreakpointsSkipped(t *testing.T) {
	bps := testBreakpoints()
	clk := newFakeClock()
	c := NewController(clk, "any_percent", bps, nil, nil)
	c.SetBreakpointEnabled(0, false)
	c.Start()

	if st := c.Snapshot(); st.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1 with first breakpoint disabled", st.Cursor)
	}
	c.ZoneEntered("The Coast", 1)
	if st := c.Snapshot(); len(st.Splits) != 0 {
		t.Fatal("disabled breakpoint recorded a split")
	}
}

func TestResetDiscardsRun(t *testing.T) {
	clk := newFakeClock()
	rec := &memoryRecorder{}
	c := NewController(clk, "any_percent", testBreakpoints(), nil, rec)
	c.Start()
	clk.Advance(time.Minute)
	c.ZoneEntered("The Coast", 1)

	c.Reset()
	st := c.Snapshot()
	if st.Phase != PhaseIdle || len(st.Splits) != 0 || st.ElapsedMs != 0 {
		t.Fatalf("reset left state %+v", st)
	}
	if len(rec.discarded) != 1 {
		t.Fatalf("recorder discards = %d, want 1", len(rec.discarded))
	}
}

func TestDeathCounting(t *testing.T) {
	clk := newFakeClock()
	c := NewController(clk, "any_percent", testBreakpoints(), nil, nil)
	c.DeathObserved() // idle: ignored
	c.Start()
	c.DeathObserved()
	c.Pause()
	c.DeathObserved()

	if st := c.Snapshot(); st.Deaths != 2 {
		t.Fatalf("deaths = %d, want 2", st.Deaths)
	}
}
