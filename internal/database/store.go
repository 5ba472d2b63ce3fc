// internal/database/store.go
package database

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kburke8/poe-watcher-sub000/internal/breakpoint"
	"github.com/kburke8/poe-watcher-sub000/internal/run"
)

// Store persists timer events asynchronously. Writes are queued to a single
// worker goroutine so the timer never waits on the database; a failed write
// is logged and dropped. Events for a discarded run are ignored once the
// discard has been processed.
type Store struct {
	db      *Database
	account string
	league  string
	preset  string

	// OnSplitStored fires after a split row lands, from the worker
	// goroutine. The snapshot capturer hangs off it.
	OnSplitStored func(runID string, splitID int64, split run.SplitTime)
	// OnPersonalBest fires when a completed run sets a new PB.
	OnPersonalBest func(runID string, totalMs int64)
	// OnGoldSegment fires when a stored split sets a new gold segment.
	OnGoldSegment func(runID string, name string, segmentMs int64)

	jobs chan func()
	done chan struct{}

	mu        sync.Mutex
	discarded map[uuid.UUID]struct{}
	closed    bool
}

// NewStore builds a store over the database and starts its worker. Account,
// league and the breakpoint preset label stamp new run rows.
func NewStore(db *Database, account, league, preset string) *Store {
	s := &Store{
		db:        db,
		account:   account,
		league:    league,
		preset:    preset,
		jobs:      make(chan func(), 256),
		done:      make(chan struct{}),
		discarded: make(map[uuid.UUID]struct{}),
	}
	go s.worker()
	return s
}

// Close stops the worker after draining queued writes.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.jobs)
	<-s.done
}

func (s *Store) worker() {
	defer close(s.done)
	for job := range s.jobs {
		job()
	}
}

// enqueue hands the job to the worker. The send happens under the mutex so
// Close cannot close the channel between the closed check and the send.
// Returns false when the job was dropped.
func (s *Store) enqueue(job func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	select {
	case s.jobs <- job:
		return true
	default:
		// Queue full means the database is badly stuck; losing a write
		// beats stalling the timer.
		log.Printf("[store] write queue full, dropping event")
		return false
	}
}

func (s *Store) isDiscarded(runID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.discarded[runID]
	return ok
}

// RunStarted creates the run row with a snapshot of the enabled breakpoint
// set. Character identity is unknown at start and filled in later from log
// events.
func (s *Store) RunStarted(runID uuid.UUID, category string, startedAt time.Time, breakpoints []breakpoint.Breakpoint) {
	var enabled []string
	for _, bp := range breakpoints {
		if bp.Enabled {
			enabled = append(enabled, bp.Name)
		}
	}
	s.enqueue(func() {
		if s.isDiscarded(runID) {
			return
		}
		err := s.db.CreateRun(&Run{
			ID:                 runID.String(),
			AccountName:        s.account,
			Class:              "Unknown",
			League:             s.league,
			Category:           category,
			StartedAt:          startedAt,
			BreakpointPreset:   s.preset,
			EnabledBreakpoints: enabled,
		})
		if err != nil {
			log.Printf("[store] create run %s: %v", runID, err)
		}
	})
}

// SplitRecorded stores the split and updates gold segments.
func (s *Store) SplitRecorded(runID uuid.UUID, split run.SplitTime) {
	s.enqueue(func() {
		if s.isDiscarded(runID) {
			return
		}
		splitID, isGold, err := s.db.InsertSplit(&Split{
			RunID:          runID.String(),
			BreakpointType: string(split.Kind),
			BreakpointName: split.Name,
			SplitTimeMs:    split.CumulativeMs,
			DeltaMs:        split.DeltaMs,
			SegmentTimeMs:  split.SegmentMs,
			TownTimeMs:     split.TownMs,
			HideoutTimeMs:  split.HideoutMs,
		})
		if err != nil {
			log.Printf("[store] insert split %q for run %s: %v", split.Name, runID, err)
			return
		}
		if isGold && s.OnGoldSegment != nil {
			s.OnGoldSegment(runID.String(), split.Name, split.SegmentMs)
		}
		if s.OnSplitStored != nil {
			s.OnSplitStored(runID.String(), splitID, split)
		}
	})
}

// RunCompleted finalizes the run and resolves its personal best.
func (s *Store) RunCompleted(runID uuid.UUID, totalMs int64) {
	s.enqueue(func() {
		if s.isDiscarded(runID) {
			return
		}
		isPB, err := s.db.CompleteRun(runID.String(), totalMs)
		if err != nil {
			log.Printf("[store] complete run %s: %v", runID, err)
			return
		}
		if isPB && s.OnPersonalBest != nil {
			s.OnPersonalBest(runID.String(), totalMs)
		}
	})
}

// RunDiscarded deletes the run and suppresses any of its writes still queued
// behind this one.
func (s *Store) RunDiscarded(runID uuid.UUID) {
	s.mu.Lock()
	s.discarded[runID] = struct{}{}
	s.mu.Unlock()

	s.enqueue(func() {
		if err := s.db.DeleteRun(runID.String()); err != nil {
			log.Printf("[store] discard run %s: %v", runID, err)
		}
	})
}

// UpdateCharacter fills in character identity once the log reveals it.
func (s *Store) UpdateCharacter(runID uuid.UUID, name, class string) {
	s.enqueue(func() {
		if s.isDiscarded(runID) {
			return
		}
		if err := s.db.UpdateRunCharacter(runID.String(), name, class); err != nil {
			log.Printf("[store] update character for run %s: %v", runID, err)
		}
	})
}

// Flush blocks until every write queued before the call has been processed.
// Returns immediately if the sentinel could not be queued, so a full queue
// or a closed store never wedges the caller.
func (s *Store) Flush() {
	done := make(chan struct{})
	if !s.enqueue(func() { close(done) }) {
		return
	}
	<-done
}
