// Package breakpoint compiles run configuration into an ordered list of
// milestone definitions drawn from the static campaign zone graph.
package breakpoint

// Kind classifies a milestone.
type Kind string

const (
	KindZone  Kind = "zone"
	KindBoss  Kind = "boss"
	KindTown  Kind = "town"
	KindLevel Kind = "level"
)

// Verbosity selects how many milestones a generated list includes. Tiers are
// cumulative: every numerically smaller tier is a subset of the larger one.
type Verbosity int

const (
	VerbosityActs Verbosity = iota + 1
	VerbosityBosses
	VerbosityKeyZones
	VerbosityAllZones
)

// String names the tier; run rows store it as the breakpoint preset label.
func (v Verbosity) String() string {
	switch v {
	case VerbosityActs:
		return "acts"
	case VerbosityBosses:
		return "bosses"
	case VerbosityKeyZones:
		return "key_zones"
	default:
		return "all_zones"
	}
}

// SnapshotPolicy controls which generated breakpoints keep their
// snapshot-capture flag.
type SnapshotPolicy string

const (
	SnapshotActsOnly      SnapshotPolicy = "acts_only"
	SnapshotBossesAndActs SnapshotPolicy = "bosses_and_acts"
)

// Route identifies a per-act routing choice. An empty Route means the
// default ordering for that act.
type Route string

const (
	RouteDefault Route = ""

	// Act 1: skip the Ship Graveyard Cave detour.
	RouteSkipGraveyardCave Route = "skip_graveyard_cave"

	// Act 2: clear the Wetlands before the Western Forest side.
	RouteWetlandsFirst Route = "wetlands_first"

	// Act 4: run Daresso's Dream before Kaom's Dream.
	RouteDaressoFirst Route = "daresso_first"

	// Act 6: leave the Prison detour untracked.
	RouteSkipPrison Route = "skip_prison"
)

// Candidate is one generator-internal zone graph entry. MatchZone, BossAct
// and Level are mutually exclusive match keys: an exact zone-name trigger,
// a final-boss-defeat marker for the given act, or a character-level
// threshold.
type Candidate struct {
	Name      string
	MatchZone string
	BossAct   int
	Level     int
	Act       int
	Kind      Kind
	Verbosity Verbosity
	Snapshot  bool
}

// Trigger describes what log event matches a breakpoint. Exactly one of the
// three shapes is populated: Zone (+Act hint), Level, or BossKill (+Act and
// cutscene penalty). BossKill triggers also carry Zone as the transition that
// confirms the kill when no explicit defeat event arrives.
type Trigger struct {
	Zone      string `json:"zone,omitempty"`
	Act       int    `json:"act,omitempty"`
	Level     int    `json:"level,omitempty"`
	BossKill  bool   `json:"bossKill,omitempty"`
	PenaltyMs int64  `json:"penaltyMs,omitempty"`
}

// Breakpoint is one ordered milestone definition consumed by the run timer.
type Breakpoint struct {
	Name            string  `json:"name"`
	Kind            Kind    `json:"kind"`
	Trigger         Trigger `json:"trigger"`
	Enabled         bool    `json:"enabled"`
	CaptureSnapshot bool    `json:"captureSnapshot"`
}

// Config is the full input of Generate. Identical configs always produce
// identical lists.
type Config struct {
	EndAct    int
	RunType   string
	Verbosity Verbosity
	Routes    map[int]Route
	Snapshots SnapshotPolicy
}
