package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kburke8/poe-watcher-sub000/internal/breakpoint"
	"github.com/kburke8/poe-watcher-sub000/internal/config"
	"github.com/kburke8/poe-watcher-sub000/internal/database"
	"github.com/kburke8/poe-watcher-sub000/internal/eventhub"
	"github.com/kburke8/poe-watcher-sub000/internal/logwatch"
	"github.com/kburke8/poe-watcher-sub000/internal/overlay"
	"github.com/kburke8/poe-watcher-sub000/internal/poeapi"
	"github.com/kburke8/poe-watcher-sub000/internal/run"
	"github.com/kburke8/poe-watcher-sub000/internal/snapshot"
)

// App wires the timer, the log watcher, storage and the overlay sync loop
// together.
type App struct {
	ctx      context.Context
	cfg      *config.Config
	settings config.Settings

	db         *database.Database
	store      *database.Store
	hub        *eventhub.EventHub
	controller *run.Controller
	projector  *overlay.Projector
	syncer     *overlay.Syncer
	watcher    *logwatch.Watcher
	capturer   *snapshot.Capturer

	mu            sync.RWMutex
	characterName string
	characterSet  bool
}

// NewApp creates a new App
func NewApp() *App {
	return &App{}
}

// Startup loads settings, opens storage and builds the run pipeline. The
// WebSocket server is started separately by main so its broadcaster can be
// wired back in.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	a.settings = settings

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db

	a.hub = eventhub.New(ctx)

	ref, err := db.LoadReference(settings.Run.Category)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}

	preset := breakpoint.Verbosity(settings.Run.Verbosity).String()
	a.store = database.NewStore(db, settings.AccountName, settings.League, preset)
	a.store.OnPersonalBest = func(runID string, totalMs int64) {
		a.hub.EmitNewPersonalBest(eventhub.PersonalBestEvent{RunID: runID, TotalTimeMs: totalMs})
	}
	a.store.OnGoldSegment = func(runID, name string, segmentMs int64) {
		a.hub.EmitNewGoldSegment(eventhub.GoldSegmentEvent{RunID: runID, BreakpointName: name, SegmentMs: segmentMs})
	}
	a.store.OnSplitStored = func(runID string, splitID int64, split run.SplitTime) {
		a.hub.EmitSplitRecorded(eventhub.SplitEvent{RunID: runID, Split: split})
		if split.CaptureSnapshot {
			a.capturer.Capture(runID, splitID, split, a.controller.Snapshot().Level)
		}
	}

	breakpoints := breakpoint.Generate(settings.BreakpointConfig())
	a.controller = run.NewController(nil, settings.Run.Category, breakpoints, ref, a.store)

	a.projector = overlay.NewProjector(a.controller, ref, a.displayConfig)
	a.syncer = overlay.NewSyncer(a.projector, a.hub, heartbeatInterval(settings))
	a.syncer.Start()

	a.capturer = snapshot.New(poeapi.NewClient(), db, a.hub, a.identity, 0)

	if err := a.startLogWatcher(); err != nil {
		// A missing log path only disables automation; commands still work.
		log.Printf("[app] log watcher disabled: %v", err)
	}

	log.Printf("[app] started, category %q with %d breakpoints", settings.Run.Category, len(breakpoints))
	return nil
}

// Shutdown tears the pipeline down in dependency order
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.syncer != nil {
		a.syncer.Stop()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	log.Printf("[app] shutdown complete")
}

// SetBroadcaster wires the WebSocket server into the event hub
func (a *App) SetBroadcaster(b eventhub.Broadcaster) {
	a.hub.SetBroadcaster(b)
}

// Database exposes storage for the HTTP API router
func (a *App) Database() *database.Database {
	return a.db
}

// ServerPort reports the configured listen port, 0 meaning pick one
func (a *App) ServerPort() int {
	return a.settings.ServerPort
}

func heartbeatInterval(settings config.Settings) time.Duration {
	return time.Duration(settings.HeartbeatSeconds) * time.Second
}

func (a *App) displayConfig() overlay.DisplayConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings.Overlay
}

// saveSettings overlays the payload onto the current settings, persists the
// result and swaps it in. The breakpoint list and category keep their values
// until the next start; display options apply immediately.
func (a *App) saveSettings(payload json.RawMessage) error {
	a.mu.RLock()
	next := a.settings
	a.mu.RUnlock()

	if err := json.Unmarshal(payload, &next); err != nil {
		return fmt.Errorf("invalid save_settings payload: %w", err)
	}
	if err := config.SaveSettings(a.cfg.SettingsPath, next); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	// Reloading applies the same normalization a fresh start would.
	saved, err := config.LoadSettings(a.cfg.SettingsPath)
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}

	a.mu.Lock()
	a.settings = saved
	a.mu.Unlock()
	return nil
}

// runSettings reads the run automation settings consistently
func (a *App) runSettings() config.RunSettings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings.Run
}

// identity names the account and character for snapshot capture
func (a *App) identity() (string, string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	character := a.settings.CharacterName
	if a.characterName != "" {
		character = a.characterName
	}
	return a.settings.AccountName, character
}

func (a *App) startLogWatcher() error {
	path := a.settings.ClientLogPath
	if path == "" {
		detected, ok := logwatch.DetectLogPath()
		if !ok {
			return fmt.Errorf("no client log path configured or detected")
		}
		path = detected
	}

	watcher, err := logwatch.New(path, a.handleLogEvent)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		watcher.Close()
		return err
	}
	a.watcher = watcher
	log.Printf("[app] tailing %s", path)
	return nil
}

// handleLogEvent routes parsed client log lines into the timer
func (a *App) handleLogEvent(event logwatch.Event) {
	a.hub.EmitLogEvent(event)
	runCfg := a.runSettings()

	switch event.Type {
	case logwatch.EventZoneEnter:
		if runCfg.AutoStart && a.controller.Snapshot().Phase == run.PhaseIdle {
			a.startRun()
		}
		a.controller.ZoneEntered(event.ZoneName, 0)
		a.syncer.Notify()

	case logwatch.EventLevelUp:
		a.noteCharacter(event.CharacterName, event.CharacterClass)
		a.controller.LevelReached(event.Level)
		a.syncer.Notify()

	case logwatch.EventDeath:
		a.controller.DeathObserved()
		a.syncer.Notify()

	case logwatch.EventLogin:
		if runCfg.AutoPause {
			a.controller.Pause()
			a.emitRunChanged()
			a.syncer.Notify()
		}
	}
}

// noteCharacter stamps the character identity onto the live run the first
// time the log reveals it
func (a *App) noteCharacter(name, class string) {
	a.mu.Lock()
	already := a.characterSet
	a.characterName = name
	a.characterSet = true
	a.mu.Unlock()

	if already {
		return
	}
	st := a.controller.Snapshot()
	if st.Phase == run.PhaseRunning || st.Phase == run.PhasePaused {
		a.store.UpdateCharacter(st.RunID, name, class)
	}
}

func (a *App) startRun() {
	a.mu.Lock()
	a.characterSet = false
	a.characterName = ""
	a.mu.Unlock()

	a.controller.Start()
	a.emitRunChanged()
}

func (a *App) emitRunChanged() {
	st := a.controller.Snapshot()
	a.hub.EmitRunChanged(eventhub.RunChangedEvent{
		RunID:    st.RunID.String(),
		Phase:    st.Phase.String(),
		Category: st.Category,
	})
}

// breakpointCommand is the payload for set_breakpoint and set_capture
type breakpointCommand struct {
	Index   int  `json:"index"`
	Enabled bool `json:"enabled"`
	Capture bool `json:"capture"`
}

// HandleCommand executes a timer control command from a connected surface
func (a *App) HandleCommand(action string, payload json.RawMessage) error {
	switch action {
	case "start":
		a.startRun()
	case "pause":
		a.controller.Pause()
		a.emitRunChanged()
	case "end":
		a.controller.End()
		a.emitRunChanged()
	case "reset":
		a.controller.Reset()
		a.emitRunChanged()
	case "save_settings":
		if err := a.saveSettings(payload); err != nil {
			return err
		}
	case "set_overlay_position":
		var cmd struct {
			X int `json:"x"`
			Y int `json:"y"`
		}
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return fmt.Errorf("invalid set_overlay_position payload: %w", err)
		}
		pos, _ := json.Marshal(cmd)
		if err := a.db.SetSetting("overlay_position", string(pos)); err != nil {
			return fmt.Errorf("store overlay position: %w", err)
		}
	case "boss_kill":
		var cmd struct {
			Act int `json:"act"`
		}
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return fmt.Errorf("invalid boss_kill payload: %w", err)
		}
		a.controller.BossKilled(cmd.Act)
	case "set_breakpoint":
		var cmd breakpointCommand
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return fmt.Errorf("invalid set_breakpoint payload: %w", err)
		}
		a.controller.SetBreakpointEnabled(cmd.Index, cmd.Enabled)
	case "set_capture":
		var cmd breakpointCommand
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return fmt.Errorf("invalid set_capture payload: %w", err)
		}
		a.controller.SetBreakpointCapture(cmd.Index, cmd.Capture)
	default:
		return fmt.Errorf("unknown command: %s", action)
	}

	a.syncer.Notify()
	return nil
}

// HandleReady answers an overlay's readiness signal with an immediate push
func (a *App) HandleReady() {
	a.syncer.Ready()
}
