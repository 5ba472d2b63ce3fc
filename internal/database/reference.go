// internal/database/reference.go
package database

import "database/sql"

// Reference holds a category's comparison times preloaded into memory so
// lookups during a run never touch the database.
type Reference struct {
	pb   map[string]int64
	gold map[string]int64
}

// PersonalBestMs returns the PB run's cumulative time at the named
// breakpoint.
func (r *Reference) PersonalBestMs(name string) (int64, bool) {
	ms, ok := r.pb[name]
	return ms, ok
}

// GoldSegmentMs returns the best recorded segment for the named breakpoint.
func (r *Reference) GoldSegmentMs(name string) (int64, bool) {
	ms, ok := r.gold[name]
	return ms, ok
}

// LoadReference loads the comparison data for a category: the personal best
// run's per-breakpoint cumulative times and the gold segments. Missing data
// yields an empty reference, not an error.
func (d *Database) LoadReference(category string) (*Reference, error) {
	ref := &Reference{
		pb:   make(map[string]int64),
		gold: make(map[string]int64),
	}

	var pbRunID string
	err := d.db.QueryRow(`
		SELECT run_id FROM personal_bests WHERE category = ? ORDER BY total_time_ms LIMIT 1`,
		category).Scan(&pbRunID)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, err
	default:
		splits, err := d.GetSplits(pbRunID)
		if err != nil {
			return nil, err
		}
		for _, split := range splits {
			ref.pb[split.BreakpointName] = split.SplitTimeMs
		}
	}

	rows, err := d.db.Query(`
		SELECT breakpoint_name, best_segment_ms FROM gold_splits WHERE category = ?`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var ms int64
		if err := rows.Scan(&name, &ms); err != nil {
			return nil, err
		}
		ref.gold[name] = ms
	}
	return ref, rows.Err()
}
