// internal/database/db.go
package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

// Database wraps the SQLite database connection
type Database struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path
func Open(path string) (*Database, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	d := &Database{db: db}
	if err := d.init(); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// init creates the database schema
func (d *Database) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		character_name TEXT NOT NULL DEFAULT '',
		account_name TEXT NOT NULL DEFAULT '',
		class TEXT NOT NULL DEFAULT 'Unknown',
		ascendancy TEXT,
		league TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		total_time_ms INTEGER,
		is_completed INTEGER NOT NULL DEFAULT 0,
		is_personal_best INTEGER NOT NULL DEFAULT 0,
		is_reference INTEGER NOT NULL DEFAULT 0,
		source_name TEXT,
		breakpoint_preset TEXT,
		enabled_breakpoints TEXT
	);

	CREATE TABLE IF NOT EXISTS splits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		breakpoint_type TEXT NOT NULL,
		breakpoint_name TEXT NOT NULL,
		split_time_ms INTEGER NOT NULL,
		delta_ms INTEGER,
		segment_time_ms INTEGER NOT NULL,
		town_time_ms INTEGER NOT NULL DEFAULT 0,
		hideout_time_ms INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		split_id INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		elapsed_time_ms INTEGER NOT NULL,
		character_level INTEGER NOT NULL DEFAULT 0,
		items_json TEXT NOT NULL DEFAULT '',
		skills_json TEXT NOT NULL DEFAULT '',
		passive_tree_json TEXT NOT NULL DEFAULT '',
		stats_json TEXT NOT NULL DEFAULT '',
		pob_code TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(id),
		FOREIGN KEY (split_id) REFERENCES splits(id)
	);

	CREATE TABLE IF NOT EXISTS personal_bests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		class TEXT NOT NULL,
		run_id TEXT NOT NULL,
		total_time_ms INTEGER NOT NULL,
		UNIQUE (category, class)
	);

	CREATE TABLE IF NOT EXISTS gold_splits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		breakpoint_name TEXT NOT NULL,
		best_segment_ms INTEGER NOT NULL,
		UNIQUE (category, breakpoint_name)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_splits_run ON splits(run_id);
	CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_category ON runs(category);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// CreateRun inserts a new run row
func (d *Database) CreateRun(run *Run) error {
	var enabled sql.NullString
	if len(run.EnabledBreakpoints) > 0 {
		data, err := json.Marshal(run.EnabledBreakpoints)
		if err != nil {
			return fmt.Errorf("marshal enabled breakpoints: %w", err)
		}
		enabled = sql.NullString{String: string(data), Valid: true}
	}
	_, err := d.db.Exec(`
		INSERT INTO runs
		(id, character_name, account_name, class, ascendancy, league, category, started_at, is_reference, source_name, breakpoint_preset, enabled_breakpoints)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CharacterName, run.AccountName, run.Class, nullString(run.Ascendancy),
		run.League, run.Category, run.StartedAt, run.IsReference, nullString(run.SourceName),
		nullString(run.BreakpointPreset), enabled)
	return err
}

// UpdateRunCharacter fills in character identity once the log reveals it
func (d *Database) UpdateRunCharacter(runID, characterName, class string) error {
	_, err := d.db.Exec(`UPDATE runs SET character_name = ?, class = ? WHERE id = ?`,
		characterName, class, runID)
	return err
}

// CompleteRun marks a run finished and resolves the personal best for its
// category and class. Returns true if the run set a new personal best.
func (d *Database) CompleteRun(runID string, totalTimeMs int64) (bool, error) {
	now := time.Now()
	_, err := d.db.Exec(`
		UPDATE runs SET is_completed = 1, ended_at = ?, total_time_ms = ? WHERE id = ?`,
		now, totalTimeMs, runID)
	if err != nil {
		return false, err
	}

	run, err := d.GetRun(runID)
	if err != nil {
		return false, err
	}

	isPB, err := d.checkPersonalBest(run.Category, run.Class, runID, totalTimeMs)
	if err != nil {
		return false, err
	}
	if isPB {
		if _, err := d.db.Exec(`UPDATE runs SET is_personal_best = 1 WHERE id = ?`, runID); err != nil {
			return false, err
		}
	}
	return isPB, nil
}

// checkPersonalBest records totalTimeMs as the PB for (category, class) if
// it is strictly faster than the stored one, or if none exists yet.
func (d *Database) checkPersonalBest(category, class, runID string, totalTimeMs int64) (bool, error) {
	var existing int64
	err := d.db.QueryRow(`
		SELECT total_time_ms FROM personal_bests WHERE category = ? AND class = ?`,
		category, class).Scan(&existing)

	switch {
	case err == sql.ErrNoRows:
		_, err = d.db.Exec(`
			INSERT INTO personal_bests (category, class, run_id, total_time_ms) VALUES (?, ?, ?, ?)`,
			category, class, runID, totalTimeMs)
		return err == nil, err
	case err != nil:
		return false, err
	case totalTimeMs < existing:
		_, err = d.db.Exec(`
			UPDATE personal_bests SET run_id = ?, total_time_ms = ? WHERE category = ? AND class = ?`,
			runID, totalTimeMs, category, class)
		return err == nil, err
	default:
		return false, nil
	}
}

// DeleteRun removes a run and its splits and snapshots
func (d *Database) DeleteRun(runID string) error {
	if _, err := d.db.Exec(`DELETE FROM snapshots WHERE run_id = ?`, runID); err != nil {
		return err
	}
	if _, err := d.db.Exec(`DELETE FROM splits WHERE run_id = ?`, runID); err != nil {
		return err
	}
	_, err := d.db.Exec(`DELETE FROM runs WHERE id = ?`, runID)
	return err
}

// GetRun retrieves a run by ID
func (d *Database) GetRun(runID string) (*Run, error) {
	row := d.db.QueryRow(`
		SELECT id, character_name, account_name, class, ascendancy, league, category,
		       started_at, ended_at, total_time_ms, is_completed, is_personal_best, is_reference, source_name,
		       breakpoint_preset, enabled_breakpoints
		FROM runs WHERE id = ?`, runID)
	return scanRun(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var ascendancy, sourceName, preset, enabled sql.NullString
	var endedAt sql.NullTime
	var totalTimeMs sql.NullInt64
	err := row.Scan(&run.ID, &run.CharacterName, &run.AccountName, &run.Class, &ascendancy,
		&run.League, &run.Category, &run.StartedAt, &endedAt, &totalTimeMs,
		&run.IsCompleted, &run.IsPersonalBest, &run.IsReference, &sourceName,
		&preset, &enabled)
	if err != nil {
		return nil, err
	}
	run.Ascendancy = ascendancy.String
	run.SourceName = sourceName.String
	run.BreakpointPreset = preset.String
	if enabled.Valid && enabled.String != "" {
		if err := json.Unmarshal([]byte(enabled.String), &run.EnabledBreakpoints); err != nil {
			return nil, fmt.Errorf("decode enabled breakpoints: %w", err)
		}
	}
	if endedAt.Valid {
		run.EndedAt = &endedAt.Time
	}
	if totalTimeMs.Valid {
		run.TotalTimeMs = &totalTimeMs.Int64
	}
	return run, nil
}

// GetRuns retrieves runs matching the given filters, newest first.
// Reference runs are excluded unless the filters ask for them.
func (d *Database) GetRuns(filters RunFilters) ([]*Run, error) {
	query := `
		SELECT id, character_name, account_name, class, ascendancy, league, category,
		       started_at, ended_at, total_time_ms, is_completed, is_personal_best, is_reference, source_name,
		       breakpoint_preset, enabled_breakpoints
		FROM runs WHERE 1=1`
	var args []any

	if filters.Class != "" {
		query += " AND class = ?"
		args = append(args, filters.Class)
	}
	if filters.Ascendancy != "" {
		query += " AND ascendancy = ?"
		args = append(args, filters.Ascendancy)
	}
	if filters.Category != "" {
		query += " AND category = ?"
		args = append(args, filters.Category)
	}
	if filters.League != "" {
		query += " AND league = ?"
		args = append(args, filters.League)
	}
	if filters.Preset != "" {
		query += " AND breakpoint_preset = ?"
		args = append(args, filters.Preset)
	}
	if filters.IsCompleted != nil {
		query += " AND is_completed = ?"
		args = append(args, *filters.IsCompleted)
	}
	if !filters.IncludeReference {
		query += " AND is_reference = 0"
	}
	query += " ORDER BY started_at DESC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunStats aggregates outcomes over the runs matching the filters
func (d *Database) GetRunStats(filters RunFilters) (*RunStats, error) {
	runs, err := d.GetRuns(filters)
	if err != nil {
		return nil, err
	}

	stats := &RunStats{TotalRuns: int64(len(runs))}
	var total, count int64
	for _, run := range runs {
		if !run.IsCompleted {
			continue
		}
		stats.CompletedRuns++
		if run.TotalTimeMs == nil {
			continue
		}
		total += *run.TotalTimeMs
		count++
		if stats.BestTimeMs == nil || *run.TotalTimeMs < *stats.BestTimeMs {
			best := *run.TotalTimeMs
			stats.BestTimeMs = &best
		}
	}
	if count > 0 {
		avg := total / count
		stats.AverageTimeMs = &avg
	}
	return stats, nil
}

// InsertSplit stores a split and updates the category's gold segment table.
// Returns the split's row ID and whether the segment set a new gold.
func (d *Database) InsertSplit(split *Split) (int64, bool, error) {
	res, err := d.db.Exec(`
		INSERT INTO splits
		(run_id, breakpoint_type, breakpoint_name, split_time_ms, delta_ms, segment_time_ms, town_time_ms, hideout_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		split.RunID, split.BreakpointType, split.BreakpointName, split.SplitTimeMs,
		split.DeltaMs, split.SegmentTimeMs, split.TownTimeMs, split.HideoutTimeMs)
	if err != nil {
		return 0, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}

	var category string
	if err := d.db.QueryRow(`SELECT category FROM runs WHERE id = ?`, split.RunID).Scan(&category); err != nil {
		return id, false, fmt.Errorf("resolve run category: %w", err)
	}

	isGold, err := d.updateGoldSplit(category, split.BreakpointName, split.SegmentTimeMs)
	return id, isGold, err
}

// updateGoldSplit records segmentMs as the gold for (category, breakpoint)
// if strictly faster than the stored one, or if none exists yet. Zero-length
// segments come from milestones confirmed by one transition and are never
// meaningful bests.
func (d *Database) updateGoldSplit(category, breakpointName string, segmentMs int64) (bool, error) {
	if segmentMs <= 0 {
		return false, nil
	}
	var existing int64
	err := d.db.QueryRow(`
		SELECT best_segment_ms FROM gold_splits WHERE category = ? AND breakpoint_name = ?`,
		category, breakpointName).Scan(&existing)

	switch {
	case err == sql.ErrNoRows:
		_, err = d.db.Exec(`
			INSERT INTO gold_splits (category, breakpoint_name, best_segment_ms) VALUES (?, ?, ?)`,
			category, breakpointName, segmentMs)
		return err == nil, err
	case err != nil:
		return false, err
	case segmentMs < existing:
		_, err = d.db.Exec(`
			UPDATE gold_splits SET best_segment_ms = ? WHERE category = ? AND breakpoint_name = ?`,
			segmentMs, category, breakpointName)
		return err == nil, err
	default:
		return false, nil
	}
}

// GetSplits retrieves all splits for a run in split-time order
func (d *Database) GetSplits(runID string) ([]*Split, error) {
	rows, err := d.db.Query(`
		SELECT id, run_id, breakpoint_type, breakpoint_name, split_time_ms, delta_ms, segment_time_ms, town_time_ms, hideout_time_ms
		FROM splits WHERE run_id = ? ORDER BY split_time_ms`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		split := &Split{}
		var delta sql.NullInt64
		err := rows.Scan(&split.ID, &split.RunID, &split.BreakpointType, &split.BreakpointName,
			&split.SplitTimeMs, &delta, &split.SegmentTimeMs, &split.TownTimeMs, &split.HideoutTimeMs)
		if err != nil {
			return nil, err
		}
		if delta.Valid {
			split.DeltaMs = &delta.Int64
		}
		splits = append(splits, split)
	}
	return splits, rows.Err()
}

// GetSplitStats aggregates per-breakpoint times over the runs matching the
// filters, sorted by average split time
func (d *Database) GetSplitStats(filters RunFilters) ([]*SplitStat, error) {
	runs, err := d.GetRuns(filters)
	if err != nil {
		return nil, err
	}

	byName := make(map[string][]*Split)
	for _, run := range runs {
		splits, err := d.GetSplits(run.ID)
		if err != nil {
			return nil, err
		}
		for _, split := range splits {
			byName[split.BreakpointName] = append(byName[split.BreakpointName], split)
		}
	}

	var stats []*SplitStat
	for name, splits := range byName {
		count := int64(len(splits))
		var totalTime, totalTown int64
		best := splits[0].SplitTimeMs
		for _, split := range splits {
			totalTime += split.SplitTimeMs
			totalTown += split.TownTimeMs
			if split.SplitTimeMs < best {
				best = split.SplitTimeMs
			}
		}
		stats = append(stats, &SplitStat{
			BreakpointName:    name,
			AverageTimeMs:     totalTime / count,
			BestTimeMs:        best,
			AverageTownTimeMs: totalTown / count,
			RunCount:          count,
		})
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].AverageTimeMs < stats[j].AverageTimeMs })
	return stats, nil
}

// InsertSnapshot stores a captured character snapshot
func (d *Database) InsertSnapshot(snapshot *Snapshot) (int64, error) {
	res, err := d.db.Exec(`
		INSERT INTO snapshots
		(run_id, split_id, timestamp, elapsed_time_ms, character_level, items_json, skills_json, passive_tree_json, stats_json, pob_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snapshot.RunID, snapshot.SplitID, snapshot.Timestamp, snapshot.ElapsedTimeMs,
		snapshot.CharacterLevel, snapshot.ItemsJSON, snapshot.SkillsJSON,
		snapshot.PassiveTreeJSON, snapshot.StatsJSON, nullString(snapshot.PobCode))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetSnapshots retrieves all snapshots for a run in elapsed-time order
func (d *Database) GetSnapshots(runID string) ([]*Snapshot, error) {
	rows, err := d.db.Query(`
		SELECT id, run_id, split_id, timestamp, elapsed_time_ms, character_level, items_json, skills_json, passive_tree_json, stats_json, pob_code
		FROM snapshots WHERE run_id = ? ORDER BY elapsed_time_ms`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		snapshot := &Snapshot{}
		var pobCode sql.NullString
		err := rows.Scan(&snapshot.ID, &snapshot.RunID, &snapshot.SplitID, &snapshot.Timestamp,
			&snapshot.ElapsedTimeMs, &snapshot.CharacterLevel, &snapshot.ItemsJSON,
			&snapshot.SkillsJSON, &snapshot.PassiveTreeJSON, &snapshot.StatsJSON, &pobCode)
		if err != nil {
			return nil, err
		}
		snapshot.PobCode = pobCode.String
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// GetPersonalBests retrieves all stored personal bests
func (d *Database) GetPersonalBests() ([]*PersonalBest, error) {
	rows, err := d.db.Query(`SELECT id, category, class, run_id, total_time_ms FROM personal_bests`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pbs []*PersonalBest
	for rows.Next() {
		pb := &PersonalBest{}
		if err := rows.Scan(&pb.ID, &pb.Category, &pb.Class, &pb.RunID, &pb.TotalTimeMs); err != nil {
			return nil, err
		}
		pbs = append(pbs, pb)
	}
	return pbs, rows.Err()
}

// GetGoldSplits retrieves all stored gold segments
func (d *Database) GetGoldSplits() ([]*GoldSplit, error) {
	rows, err := d.db.Query(`SELECT id, category, breakpoint_name, best_segment_ms FROM gold_splits`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var golds []*GoldSplit
	for rows.Next() {
		gold := &GoldSplit{}
		if err := rows.Scan(&gold.ID, &gold.Category, &gold.BreakpointName, &gold.BestSegmentMs); err != nil {
			return nil, err
		}
		golds = append(golds, gold)
	}
	return golds, rows.Err()
}

// InsertReferenceRun stores an externally sourced run with its splits.
// Returns the generated run ID.
func (d *Database) InsertReferenceRun(runID string, data *ReferenceRun) error {
	league := data.League
	if league == "" {
		league = "Standard"
	}
	now := time.Now()
	_, err := d.db.Exec(`
		INSERT INTO runs
		(id, character_name, account_name, class, ascendancy, league, category, started_at, ended_at, total_time_ms, is_completed, is_reference, source_name)
		VALUES (?, ?, '', ?, ?, ?, ?, ?, ?, ?, 1, 1, ?)`,
		runID, data.CharacterName, data.Class, nullString(data.Ascendancy), league,
		data.Category, now, now, data.TotalTimeMs, data.SourceName)
	if err != nil {
		return err
	}

	prev := int64(0)
	for _, split := range data.Splits {
		_, err := d.db.Exec(`
			INSERT INTO splits (run_id, breakpoint_type, breakpoint_name, split_time_ms, segment_time_ms, town_time_ms, hideout_time_ms)
			VALUES (?, ?, ?, ?, ?, 0, 0)`,
			runID, split.BreakpointType, split.BreakpointName, split.SplitTimeMs, split.SplitTimeMs-prev)
		if err != nil {
			return err
		}
		prev = split.SplitTimeMs
	}
	return nil
}

// GetSetting retrieves a setting value by key, empty string if unset
func (d *Database) GetSetting(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting saves a setting value
func (d *Database) SetSetting(key, value string) error {
	_, err := d.db.Exec(`
		INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		key, value)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
