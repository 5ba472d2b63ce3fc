// Package run owns the live timer state for a single leveling run: elapsed
// time, town/hideout sub-timers, and the ordered split history with
// personal-best and gold-segment comparisons.
package run

import (
	"time"

	"github.com/google/uuid"

	"github.com/kburke8/poe-watcher-sub000/internal/breakpoint"
)

// Phase is the timer lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	default:
		return "idle"
	}
}

// SplitTime is the recorded outcome of one matched breakpoint. Created once,
// never mutated afterward.
type SplitTime struct {
	Name            string          `json:"name"`
	Kind            breakpoint.Kind `json:"kind"`
	CumulativeMs    int64           `json:"cumulativeMs"`
	SegmentMs       int64           `json:"segmentMs"`
	DeltaMs         *int64          `json:"deltaMs,omitempty"`
	GoldSegment     bool            `json:"goldSegment"`
	TownMs          int64           `json:"townMs"`
	HideoutMs       int64           `json:"hideoutMs"`
	CaptureSnapshot bool            `json:"captureSnapshot"`
}

// Reference provides read-only historical comparison data for the active
// category. Implementations must not block: the lookups sit on the split
// recording path.
type Reference interface {
	PersonalBestMs(name string) (int64, bool)
	GoldSegmentMs(name string) (int64, bool)
}

// Recorder receives run lifecycle writes. Calls are fire-and-forget from the
// timer's perspective: implementations dispatch asynchronously and a failed
// write never affects in-memory state.
type Recorder interface {
	RunStarted(runID uuid.UUID, category string, startedAt time.Time, breakpoints []breakpoint.Breakpoint)
	SplitRecorded(runID uuid.UUID, split SplitTime)
	RunCompleted(runID uuid.UUID, totalMs int64)
	RunDiscarded(runID uuid.UUID)
}

// State is a consistent snapshot of the timer, safe to read after the
// controller method returns.
type State struct {
	Phase       Phase
	RunID       uuid.UUID
	Category    string
	StartedAt   time.Time
	ElapsedMs   int64
	Cursor      int
	Splits      []SplitTime
	TownMs      int64
	HideoutMs   int64
	InTown      bool
	InHideout   bool
	CurrentZone string
	Level       int
	Deaths      int
}
