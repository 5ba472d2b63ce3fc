package run

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kburke8/poe-watcher-sub000/internal/breakpoint"
	"github.com/kburke8/poe-watcher-sub000/internal/clock"
)

// Controller is the single owner of run/timer state. All consumers read
// through Snapshot and mutate through the command methods; nothing else
// touches the fields.
type Controller struct {
	mu  sync.Mutex
	clk clock.Clock

	category    string
	breakpoints []breakpoint.Breakpoint
	ref         Reference
	rec         Recorder

	phase     Phase
	runID     uuid.UUID
	startedAt time.Time
	elapsedMs int64 // authoritative only while not running
	cursor    int
	splits    []SplitTime

	townMs          int64
	hideoutMs       int64
	townOpenedAt    time.Time
	hideoutOpenedAt time.Time

	currentZone string
	level       int
	deaths      int
}

// NewController wires the timer with its generated breakpoint list, the
// category's reference data, and the storage recorder. The breakpoint list
// and category are injected rather than read from shared settings.
func NewController(clk clock.Clock, category string, breakpoints []breakpoint.Breakpoint, ref Reference, rec Recorder) *Controller {
	if clk == nil {
		clk = clock.System{}
	}
	c := &Controller{
		clk:         clk,
		category:    category,
		breakpoints: append([]breakpoint.Breakpoint(nil), breakpoints...),
		ref:         ref,
		rec:         rec,
	}
	c.cursor = c.nextEnabled(0)
	return c
}

// Start begins a new run from Idle, or resumes from Paused. While paused the
// start instant is recomputed as now minus accumulated elapsed so running
// elapsed stays a single subtraction.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clk.Now()
	switch c.phase {
	case PhaseIdle:
		c.runID = uuid.New()
		c.startedAt = now
		c.elapsedMs = 0
		c.cursor = c.nextEnabled(0)
		c.splits = nil
		c.townMs, c.hideoutMs = 0, 0
		c.townOpenedAt, c.hideoutOpenedAt = time.Time{}, time.Time{}
		c.deaths = 0
		c.phase = PhaseRunning
		if c.rec != nil {
			c.rec.RunStarted(c.runID, c.category, now, append([]breakpoint.Breakpoint(nil), c.breakpoints...))
		}
	case PhasePaused:
		c.startedAt = now.Add(-time.Duration(c.elapsedMs) * time.Millisecond)
		c.phase = PhaseRunning
	}
}

// Pause freezes the elapsed time. Idempotent when already paused.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseRunning {
		return
	}
	c.elapsedMs = c.clk.Now().Sub(c.startedAt).Milliseconds()
	c.phase = PhasePaused
}

// Tick recomputes and returns the live elapsed time. Pure read-side refresh:
// it never records splits or mutates other fields.
func (c *Controller) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsedLocked(c.clk.Now())
}

// ZoneEntered handles a zone-entered log event: it updates sub-timers in any
// phase and, while running, matches the zone against the cursor breakpoint.
// actHint 0 means the watcher could not attribute an act.
func (c *Controller) ZoneEntered(zone string, actHint int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transitionLocked(zone, breakpoint.IsTown(zone), isHideout(zone))

	if c.phase != PhaseRunning {
		return
	}

	// A single transition can confirm several consecutive breakpoints (a
	// boss marker followed by the zone's own entry), so keep matching while
	// the cursor agrees.
	now := c.clk.Now()
	for c.cursor < len(c.breakpoints) {
		bp := c.breakpoints[c.cursor]
		if !zoneMatches(bp.Trigger, zone, actHint) {
			break
		}
		c.recordLocked(bp, c.elapsedLocked(now)+bp.Trigger.PenaltyMs)
	}
}

// LevelReached handles a level-up log event.
func (c *Controller) LevelReached(level int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if level > c.level {
		c.level = level
	}
	if c.phase != PhaseRunning {
		return
	}

	now := c.clk.Now()
	for c.cursor < len(c.breakpoints) {
		bp := c.breakpoints[c.cursor]
		if bp.Trigger.Level == 0 || level < bp.Trigger.Level {
			break
		}
		c.recordLocked(bp, c.elapsedLocked(now))
	}
}

// BossKilled handles an explicit final-boss-defeated event for the given
// act. The recorded time includes the trigger's cutscene penalty.
func (c *Controller) BossKilled(act int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseRunning || c.cursor >= len(c.breakpoints) {
		return
	}
	bp := c.breakpoints[c.cursor]
	if !bp.Trigger.BossKill || bp.Trigger.Act != act {
		return
	}
	c.recordLocked(bp, c.elapsedLocked(c.clk.Now())+bp.Trigger.PenaltyMs)
}

// DeathObserved counts a character death onto the live run.
func (c *Controller) DeathObserved() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseRunning || c.phase == PhasePaused {
		c.deaths++
	}
}

// End finalizes the run if its final breakpoint did not already complete it.
func (c *Controller) End() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseRunning && c.phase != PhasePaused {
		return
	}
	c.completeLocked(c.clk.Now())
}

// Reset discards the in-progress run and returns to Idle from any phase.
// Storage writes already in flight are the store's problem: it drops them by
// run identity.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.runID != uuid.Nil && c.phase != PhaseEnded && c.rec != nil {
		c.rec.RunDiscarded(c.runID)
	}
	c.phase = PhaseIdle
	c.runID = uuid.Nil
	c.startedAt = time.Time{}
	c.elapsedMs = 0
	c.cursor = c.nextEnabled(0)
	c.splits = nil
	c.townMs, c.hideoutMs = 0, 0
	c.townOpenedAt, c.hideoutOpenedAt = time.Time{}, time.Time{}
	c.deaths = 0
}

// SetBreakpointEnabled applies a user toggle to one generated breakpoint.
func (c *Controller) SetBreakpointEnabled(index int, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.breakpoints) {
		return
	}
	c.breakpoints[index].Enabled = enabled
	c.cursor = c.nextEnabled(c.cursor)
}

// SetBreakpointCapture applies a user snapshot-capture toggle.
func (c *Controller) SetBreakpointCapture(index int, capture bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.breakpoints) {
		return
	}
	c.breakpoints[index].CaptureSnapshot = capture
}

// Breakpoints returns a copy of the active breakpoint list.
func (c *Controller) Breakpoints() []breakpoint.Breakpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]breakpoint.Breakpoint(nil), c.breakpoints...)
}

// Snapshot returns a consistent copy of the timer state. Sub-timer values
// include the currently open segment.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clk.Now()
	st := State{
		Phase:       c.phase,
		RunID:       c.runID,
		Category:    c.category,
		StartedAt:   c.startedAt,
		ElapsedMs:   c.elapsedLocked(now),
		Cursor:      c.cursor,
		Splits:      append([]SplitTime(nil), c.splits...),
		TownMs:      c.townAccumLocked(now),
		HideoutMs:   c.hideoutAccumLocked(now),
		InTown:      !c.townOpenedAt.IsZero(),
		InHideout:   !c.hideoutOpenedAt.IsZero(),
		CurrentZone: c.currentZone,
		Level:       c.level,
		Deaths:      c.deaths,
	}
	return st
}

func (c *Controller) elapsedLocked(now time.Time) int64 {
	if c.phase == PhaseRunning {
		return now.Sub(c.startedAt).Milliseconds()
	}
	return c.elapsedMs
}

func (c *Controller) townAccumLocked(now time.Time) int64 {
	total := c.townMs
	if !c.townOpenedAt.IsZero() {
		total += now.Sub(c.townOpenedAt).Milliseconds()
	}
	return total
}

func (c *Controller) hideoutAccumLocked(now time.Time) int64 {
	total := c.hideoutMs
	if !c.hideoutOpenedAt.IsZero() {
		total += now.Sub(c.hideoutOpenedAt).Milliseconds()
	}
	return total
}

// transitionLocked closes any open sub-timer and opens whichever the new
// zone implies. Runs in every phase: zone changes arrive from the log
// watcher regardless of timer state.
func (c *Controller) transitionLocked(zone string, isTown, inHideout bool) {
	now := c.clk.Now()
	if !c.townOpenedAt.IsZero() {
		c.townMs += now.Sub(c.townOpenedAt).Milliseconds()
		c.townOpenedAt = time.Time{}
	}
	if !c.hideoutOpenedAt.IsZero() {
		c.hideoutMs += now.Sub(c.hideoutOpenedAt).Milliseconds()
		c.hideoutOpenedAt = time.Time{}
	}
	if isTown {
		c.townOpenedAt = now
	}
	if inHideout {
		c.hideoutOpenedAt = now
	}
	c.currentZone = zone
}

// recordLocked appends the split for the cursor breakpoint at the given
// trigger time and advances the cursor. Completes the run when no enabled
// breakpoint remains.
func (c *Controller) recordLocked(bp breakpoint.Breakpoint, triggerMs int64) {
	now := c.clk.Now()

	prevCumulative := int64(0)
	if n := len(c.splits); n > 0 {
		prevCumulative = c.splits[n-1].CumulativeMs
	}
	// A penalized boss marker recorded on the same transition can put the
	// previous cumulative past the raw trigger time. Cumulative time never
	// goes backwards, so the follower inherits the boss's time.
	if triggerMs < prevCumulative {
		triggerMs = prevCumulative
	}
	segment := triggerMs - prevCumulative

	split := SplitTime{
		Name:            bp.Name,
		Kind:            bp.Kind,
		CumulativeMs:    triggerMs,
		SegmentMs:       segment,
		GoldSegment:     segment > 0,
		TownMs:          c.townAccumLocked(now),
		HideoutMs:       c.hideoutAccumLocked(now),
		CaptureSnapshot: bp.CaptureSnapshot,
	}
	if c.ref != nil {
		if pb, ok := c.ref.PersonalBestMs(bp.Name); ok {
			delta := triggerMs - pb
			split.DeltaMs = &delta
		}
		if gold, ok := c.ref.GoldSegmentMs(bp.Name); ok {
			split.GoldSegment = segment > 0 && segment < gold
		}
	}

	c.splits = append(c.splits, split)
	c.cursor = c.nextEnabled(c.cursor + 1)

	if c.rec != nil {
		c.rec.SplitRecorded(c.runID, split)
	}

	if c.cursor >= len(c.breakpoints) {
		c.completeLocked(now)
	}
}

func (c *Controller) completeLocked(now time.Time) {
	c.elapsedMs = c.elapsedLocked(now)
	c.phase = PhaseEnded
	if c.rec != nil {
		c.rec.RunCompleted(c.runID, c.elapsedMs)
	}
}

// nextEnabled returns the first enabled breakpoint index at or after from.
func (c *Controller) nextEnabled(from int) int {
	for i := from; i < len(c.breakpoints); i++ {
		if c.breakpoints[i].Enabled {
			return i
		}
	}
	return len(c.breakpoints)
}

func zoneMatches(t breakpoint.Trigger, zone string, actHint int) bool {
	if t.Zone == "" || t.Zone != zone {
		return false
	}
	if t.Level != 0 {
		return false
	}
	if actHint != 0 && t.Act != 0 && actHint != t.Act {
		return false
	}
	return true
}

func isHideout(zone string) bool {
	return strings.HasSuffix(zone, " Hideout")
}
