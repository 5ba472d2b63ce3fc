package eventhub

import (
	"context"

	"github.com/kburke8/poe-watcher-sub000/internal/logwatch"
	"github.com/kburke8/poe-watcher-sub000/internal/overlay"
	"github.com/kburke8/poe-watcher-sub000/internal/run"
)

// Broadcaster fans an event out to every connected surface
type Broadcaster interface {
	BroadcastEvent(eventType string, payload interface{})
}

// EventHub is the single dispatch point for application events
type EventHub struct {
	ctx         context.Context
	broadcaster Broadcaster
}

// New creates a new EventHub
func New(ctx context.Context) *EventHub {
	return &EventHub{ctx: ctx}
}

// SetBroadcaster wires in the WebSocket broadcaster
func (h *EventHub) SetBroadcaster(b Broadcaster) {
	h.broadcaster = b
}

// emit is the single send path
func (h *EventHub) emit(eventName string, payload interface{}) {
	if h.broadcaster != nil {
		h.broadcaster.BroadcastEvent(eventName, payload)
	}
}

// Emit sends an arbitrary event
func (h *EventHub) Emit(eventName string, payload interface{}) {
	h.emit(eventName, payload)
}

// EmitOverlayState pushes a fresh overlay projection
func (h *EventHub) EmitOverlayState(p overlay.Projection) {
	h.emit("overlay:state", p)
}

// PushProjection implements the overlay sink over the hub. Broadcast never
// reports per-client failures, so the error is always nil.
func (h *EventHub) PushProjection(p overlay.Projection) error {
	h.EmitOverlayState(p)
	return nil
}

// EmitLogEvent forwards a parsed client log event
func (h *EventHub) EmitLogEvent(event logwatch.Event) {
	h.emit("log:event", event)
}

// RunChangedEvent signals a run lifecycle transition
type RunChangedEvent struct {
	RunID    string `json:"runId"`
	Phase    string `json:"phase"` // "running", "paused", "ended", "idle"
	Category string `json:"category"`
}

func (h *EventHub) EmitRunChanged(event RunChangedEvent) {
	h.emit("run:changed", event)
}

// SplitEvent announces a newly recorded split
type SplitEvent struct {
	RunID string        `json:"runId"`
	Split run.SplitTime `json:"split"`
}

func (h *EventHub) EmitSplitRecorded(event SplitEvent) {
	h.emit("run:split", event)
}

// PersonalBestEvent announces a completed run beating the category PB
type PersonalBestEvent struct {
	RunID       string `json:"runId"`
	TotalTimeMs int64  `json:"totalTimeMs"`
}

func (h *EventHub) EmitNewPersonalBest(event PersonalBestEvent) {
	h.emit("pb:new", event)
}

// GoldSegmentEvent announces a new best segment for a breakpoint
type GoldSegmentEvent struct {
	RunID          string `json:"runId"`
	BreakpointName string `json:"breakpointName"`
	SegmentMs      int64  `json:"segmentMs"`
}

func (h *EventHub) EmitNewGoldSegment(event GoldSegmentEvent) {
	h.emit("gold:new", event)
}

// Snapshot capture progress events
type SnapshotEvent struct {
	RunID          string `json:"runId"`
	SplitID        int64  `json:"splitId"`
	BreakpointName string `json:"breakpointName"`
	Error          string `json:"error,omitempty"`
}

func (h *EventHub) EmitSnapshotCapturing(event SnapshotEvent) {
	h.emit("snapshot:capturing", event)
}

func (h *EventHub) EmitSnapshotComplete(event SnapshotEvent) {
	h.emit("snapshot:complete", event)
}

func (h *EventHub) EmitSnapshotFailed(event SnapshotEvent) {
	h.emit("snapshot:failed", event)
}
