package overlay

import (
	"log"
	"sync"
	"time"
)

// Sink receives serialized projection pushes. Delivery is at-most-once and
// unordered; the heartbeat bounds staleness, so no acknowledgment exists.
type Sink interface {
	PushProjection(p Projection) error
}

// Syncer keeps the overlay surface converging on the timer state. Two
// triggers push a projection: Notify (change-detected, fingerprint-gated)
// and the heartbeat ticker (unconditional). Ready pushes once out-of-band
// when the overlay reports it has initialized.
type Syncer struct {
	projector *Projector
	sink      Sink
	heartbeat time.Duration

	mu      sync.Mutex
	last    fingerprint
	primed  bool
	stopCh  chan struct{}
	started bool
}

// fingerprint covers the non-time-varying projection fields. Elapsed time
// changes on every read, so change detection compares only structure.
type fingerprint struct {
	running, paused, ended bool
	category               string
	zone                   string
	level                  int
	deaths                 int
	splitCount             int
	nextName               string
	display                DisplayConfig
}

func fingerprintOf(p Projection) fingerprint {
	fp := fingerprint{
		running:    p.Running,
		paused:     p.Paused,
		ended:      p.Ended,
		category:   p.Category,
		zone:       p.CurrentZone,
		level:      p.Level,
		deaths:     p.Deaths,
		splitCount: len(p.Splits),
		display:    p.Display,
	}
	if len(p.Upcoming) > 0 {
		fp.nextName = p.Upcoming[0].Name
	}
	return fp
}

// NewSyncer builds a syncer with the given heartbeat interval. Intervals at
// or below zero fall back to two seconds.
func NewSyncer(projector *Projector, sink Sink, heartbeat time.Duration) *Syncer {
	if heartbeat <= 0 {
		heartbeat = 2 * time.Second
	}
	return &Syncer{
		projector: projector,
		sink:      sink,
		heartbeat: heartbeat,
		stopCh:    make(chan struct{}),
	}
}

// Start launches the heartbeat loop.
func (s *Syncer) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.loop()
}

// Stop terminates the heartbeat loop.
func (s *Syncer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	close(s.stopCh)
}

func (s *Syncer) loop() {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Heartbeat()
		}
	}
}

// Notify pushes a fresh projection if its structural fingerprint differs
// from the last pushed one. Call it after any state-changing operation;
// never from the display tick, which changes only elapsed time.
func (s *Syncer) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.projector.Project()
	fp := fingerprintOf(p)
	if s.primed && fp == s.last {
		return
	}
	s.pushLocked(p, fp)
}

// Heartbeat pushes unconditionally so a late-starting or lossy overlay
// converges within one interval.
func (s *Syncer) Heartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.projector.Project()
	s.pushLocked(p, fingerprintOf(p))
}

// Ready handles the overlay's one-time readiness signal with an immediate
// full push, out-of-band from both triggers.
func (s *Syncer) Ready() {
	s.Heartbeat()
}

// pushLocked serializes sends: the caller holds the mutex, so the heartbeat
// and the change detector never interleave partial writes.
func (s *Syncer) pushLocked(p Projection, fp fingerprint) {
	if err := s.sink.PushProjection(p); err != nil {
		// The overlay being unreachable is not an error condition; the
		// next heartbeat retries.
		log.Printf("[overlay] push failed: %v", err)
		return
	}
	s.last = fp
	s.primed = true
}
