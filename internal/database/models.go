// internal/database/models.go
package database

import "time"

// Run is one attempt, live or finished. Reference runs are imported times
// from external sources and never hold splits recorded by the timer here.
type Run struct {
	ID             string     `json:"id"`
	CharacterName  string     `json:"characterName"`
	AccountName    string     `json:"accountName"`
	Class          string     `json:"class"`
	Ascendancy     string     `json:"ascendancy,omitempty"`
	League         string     `json:"league"`
	Category       string     `json:"category"`
	StartedAt      time.Time  `json:"startedAt"`
	EndedAt        *time.Time `json:"endedAt,omitempty"`
	TotalTimeMs    *int64     `json:"totalTimeMs,omitempty"`
	IsCompleted    bool       `json:"isCompleted"`
	IsPersonalBest bool       `json:"isPersonalBest"`
	IsReference    bool       `json:"isReference"`
	SourceName     string     `json:"sourceName,omitempty"`

	// BreakpointPreset labels the verbosity tier the run was tracked with;
	// EnabledBreakpoints snapshots which milestone names were active at start.
	BreakpointPreset   string   `json:"breakpointPreset,omitempty"`
	EnabledBreakpoints []string `json:"enabledBreakpoints,omitempty"`
}

// Split is one recorded breakpoint time within a run.
type Split struct {
	ID             int64  `json:"id"`
	RunID          string `json:"runId"`
	BreakpointType string `json:"breakpointType"`
	BreakpointName string `json:"breakpointName"`
	SplitTimeMs    int64  `json:"splitTimeMs"`
	DeltaMs        *int64 `json:"deltaMs,omitempty"`
	SegmentTimeMs  int64  `json:"segmentTimeMs"`
	TownTimeMs     int64  `json:"townTimeMs"`
	HideoutTimeMs  int64  `json:"hideoutTimeMs"`
}

// Snapshot is a captured character state at a split: gear, gems, tree and
// derived stats, stored as the JSON the API returned.
type Snapshot struct {
	ID              int64     `json:"id"`
	RunID           string    `json:"runId"`
	SplitID         int64     `json:"splitId"`
	Timestamp       time.Time `json:"timestamp"`
	ElapsedTimeMs   int64     `json:"elapsedTimeMs"`
	CharacterLevel  int       `json:"characterLevel"`
	ItemsJSON       string    `json:"itemsJson"`
	SkillsJSON      string    `json:"skillsJson"`
	PassiveTreeJSON string    `json:"passiveTreeJson"`
	StatsJSON       string    `json:"statsJson"`
	PobCode         string    `json:"pobCode,omitempty"`
}

// PersonalBest is the fastest completed run per (category, class).
type PersonalBest struct {
	ID          int64  `json:"id"`
	Category    string `json:"category"`
	Class       string `json:"class"`
	RunID       string `json:"runId"`
	TotalTimeMs int64  `json:"totalTimeMs"`
}

// GoldSplit is the fastest individual segment per (category, breakpoint)
// across all runs, including incomplete ones.
type GoldSplit struct {
	ID             int64  `json:"id"`
	Category       string `json:"category"`
	BreakpointName string `json:"breakpointName"`
	BestSegmentMs  int64  `json:"bestSegmentMs"`
}

// RunFilters narrows run queries. Nil pointer fields match everything.
type RunFilters struct {
	Class            string `json:"class,omitempty"`
	Ascendancy       string `json:"ascendancy,omitempty"`
	Category         string `json:"category,omitempty"`
	League           string `json:"league,omitempty"`
	Preset           string `json:"preset,omitempty"`
	IsCompleted      *bool  `json:"isCompleted,omitempty"`
	IncludeReference bool   `json:"includeReference,omitempty"`
}

// RunStats aggregates outcomes over a filtered run set.
type RunStats struct {
	TotalRuns     int64  `json:"totalRuns"`
	CompletedRuns int64  `json:"completedRuns"`
	AverageTimeMs *int64 `json:"averageTimeMs,omitempty"`
	BestTimeMs    *int64 `json:"bestTimeMs,omitempty"`
}

// SplitStat aggregates one breakpoint's times across a filtered run set.
type SplitStat struct {
	BreakpointName    string `json:"breakpointName"`
	AverageTimeMs     int64  `json:"averageTimeMs"`
	BestTimeMs        int64  `json:"bestTimeMs"`
	AverageTownTimeMs int64  `json:"averageTownTimeMs"`
	RunCount          int64  `json:"runCount"`
}

// ReferenceSplit is one manually entered split of a reference run.
type ReferenceSplit struct {
	BreakpointName string `json:"breakpointName"`
	BreakpointType string `json:"breakpointType"`
	SplitTimeMs    int64  `json:"splitTimeMs"`
}

// ReferenceRun is an externally sourced run entered for comparison.
type ReferenceRun struct {
	SourceName    string           `json:"sourceName"`
	CharacterName string           `json:"characterName,omitempty"`
	Class         string           `json:"class"`
	Ascendancy    string           `json:"ascendancy,omitempty"`
	Category      string           `json:"category"`
	League        string           `json:"league,omitempty"`
	TotalTimeMs   int64            `json:"totalTimeMs"`
	Splits        []ReferenceSplit `json:"splits"`
}
