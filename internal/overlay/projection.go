// Package overlay keeps the floating overlay surface eventually consistent
// with the authoritative timer state: it flattens timer state into a
// display-ready projection and pushes it on meaningful changes plus a
// low-frequency heartbeat.
package overlay

import (
	"github.com/kburke8/poe-watcher-sub000/internal/run"
)

// DisplayConfig carries the overlay's presentation options. The overlay
// renders them; this side only ships them.
type DisplayConfig struct {
	Opacity       float64 `json:"opacity" yaml:"opacity"`
	Scale         float64 `json:"scale" yaml:"scale"`
	AccentColor   string  `json:"accentColor" yaml:"accent_color"`
	ShowSplits    bool    `json:"showSplits" yaml:"show_splits"`
	ShowSubTimers bool    `json:"showSubTimers" yaml:"show_sub_timers"`
	ShowUpcoming  bool    `json:"showUpcoming" yaml:"show_upcoming"`
	UpcomingCount int     `json:"upcomingCount" yaml:"upcoming_count"`
	Locked        bool    `json:"locked" yaml:"locked"`
	AlwaysOnTop   bool    `json:"alwaysOnTop" yaml:"always_on_top"`
}

// SplitRow is one recorded split flattened for display.
type SplitRow struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	TimeMs      int64  `json:"timeMs"`
	DeltaMs     *int64 `json:"deltaMs,omitempty"`
	GoldSegment bool   `json:"goldSegment"`
}

// Upcoming is one not-yet-matched breakpoint annotated with reference times.
type Upcoming struct {
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	PBTimeMs      *int64 `json:"pbTimeMs,omitempty"`
	GoldSegmentMs *int64 `json:"goldSegmentMs,omitempty"`
}

// Projection is the full display-ready snapshot pushed to the overlay. It is
// regenerated on every push and never persisted. StartedAtUnixMs lets the
// overlay extrapolate its own clock between pushes while running.
type Projection struct {
	Running         bool          `json:"running"`
	Paused          bool          `json:"paused"`
	Ended           bool          `json:"ended"`
	Category        string        `json:"category"`
	ElapsedMs       int64         `json:"elapsedMs"`
	StartedAtUnixMs int64         `json:"startedAtUnixMs,omitempty"`
	CurrentZone     string        `json:"currentZone"`
	Level           int           `json:"level"`
	Deaths          int           `json:"deaths"`
	TownMs          int64         `json:"townMs"`
	HideoutMs       int64         `json:"hideoutMs"`
	Splits          []SplitRow    `json:"splits"`
	Upcoming        []Upcoming    `json:"upcoming"`
	Display         DisplayConfig `json:"display"`
}

// Projector flattens timer state into projections. The breakpoint list and
// reference data are fixed for the life of a run; display config can change
// and is read through the getter on every build.
type Projector struct {
	timer   *run.Controller
	ref     run.Reference
	display func() DisplayConfig
}

// NewProjector builds a projector over the timer. display is consulted on
// every projection so settings edits show up without rewiring.
func NewProjector(timer *run.Controller, ref run.Reference, display func() DisplayConfig) *Projector {
	return &Projector{timer: timer, ref: ref, display: display}
}

// Project builds a fresh projection. Elapsed time is computed at call time
// from the live timer, so every push is self-consistent.
func (p *Projector) Project() Projection {
	st := p.timer.Snapshot()
	cfg := p.display()

	proj := Projection{
		Running:     st.Phase == run.PhaseRunning,
		Paused:      st.Phase == run.PhasePaused,
		Ended:       st.Phase == run.PhaseEnded,
		Category:    st.Category,
		ElapsedMs:   st.ElapsedMs,
		CurrentZone: st.CurrentZone,
		Level:       st.Level,
		Deaths:      st.Deaths,
		TownMs:      st.TownMs,
		HideoutMs:   st.HideoutMs,
		Display:     cfg,
	}
	if st.Phase == run.PhaseRunning {
		proj.StartedAtUnixMs = st.StartedAt.UnixMilli()
	}

	for _, s := range st.Splits {
		proj.Splits = append(proj.Splits, SplitRow{
			Name:        s.Name,
			Kind:        string(s.Kind),
			TimeMs:      s.CumulativeMs,
			DeltaMs:     s.DeltaMs,
			GoldSegment: s.GoldSegment,
		})
	}

	count := cfg.UpcomingCount
	if count <= 0 {
		count = 3
	}
	proj.Upcoming = p.upcoming(st.Cursor, count)
	return proj
}

func (p *Projector) upcoming(cursor, count int) []Upcoming {
	bps := p.timer.Breakpoints()
	if cursor > len(bps) {
		cursor = len(bps)
	}
	var out []Upcoming
	for _, bp := range bps[cursor:] {
		if len(out) == count {
			break
		}
		if !bp.Enabled {
			continue
		}
		u := Upcoming{Name: bp.Name, Kind: string(bp.Kind)}
		if p.ref != nil {
			if pb, ok := p.ref.PersonalBestMs(bp.Name); ok {
				u.PBTimeMs = &pb
			}
			if gold, ok := p.ref.GoldSegmentMs(bp.Name); ok {
				u.GoldSegmentMs = &gold
			}
		}
		out = append(out, u)
	}
	return out
}
