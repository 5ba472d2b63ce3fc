package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kburke8/poe-watcher-sub000/internal/breakpoint"
	"github.com/kburke8/poe-watcher-sub000/internal/overlay"
)

// RunSettings selects how the breakpoint sequence for a new run is built.
type RunSettings struct {
	Category  string         `yaml:"category"`
	EndAct    int            `yaml:"end_act"`
	RunType   string         `yaml:"run_type"`
	Verbosity int            `yaml:"verbosity"`
	Routes    map[int]string `yaml:"routes,omitempty"`
	Snapshots string         `yaml:"snapshots"`
	AutoStart bool           `yaml:"auto_start"`
	AutoPause bool           `yaml:"auto_pause_on_logout"`
}

// Settings is everything the user can tune, persisted as one YAML file.
type Settings struct {
	ClientLogPath    string                `yaml:"client_log_path"`
	AccountName      string                `yaml:"account_name"`
	CharacterName    string                `yaml:"character_name"`
	League           string                `yaml:"league"`
	Run              RunSettings           `yaml:"run"`
	Overlay          overlay.DisplayConfig `yaml:"overlay"`
	HeartbeatSeconds int                   `yaml:"heartbeat_seconds"`
	ServerPort       int                   `yaml:"server_port"`
}

// DefaultSettings returns the settings used before the user saves anything.
func DefaultSettings() Settings {
	return Settings{
		Run: RunSettings{
			Category:  "any_percent",
			EndAct:    breakpoint.MaxAct,
			Verbosity: int(breakpoint.VerbosityAllZones),
			Snapshots: string(breakpoint.SnapshotActsOnly),
		},
		Overlay: overlay.DisplayConfig{
			Opacity:       0.85,
			Scale:         1.0,
			AccentColor:   "#af6025",
			ShowSplits:    true,
			ShowSubTimers: true,
			ShowUpcoming:  true,
			UpcomingCount: 3,
			AlwaysOnTop:   true,
		},
		HeartbeatSeconds: 2,
	}
}

// LoadSettings reads user settings from YAML.
// If the file does not exist, default settings are returned.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	if err := yaml.Unmarshal(rawData, &settings); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	normalize(&settings)
	return settings, nil
}

// SaveSettings writes user settings to YAML.
func SaveSettings(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// BreakpointConfig converts the persisted run settings into the generator's
// input form.
func (s Settings) BreakpointConfig() breakpoint.Config {
	cfg := breakpoint.Config{
		EndAct:    s.Run.EndAct,
		RunType:   s.Run.RunType,
		Verbosity: breakpoint.Verbosity(s.Run.Verbosity),
		Snapshots: breakpoint.SnapshotPolicy(s.Run.Snapshots),
	}
	if len(s.Run.Routes) > 0 {
		cfg.Routes = make(map[int]breakpoint.Route, len(s.Run.Routes))
		for act, route := range s.Run.Routes {
			cfg.Routes[act] = breakpoint.Route(route)
		}
	}
	return cfg
}

func normalize(s *Settings) {
	if s.Run.Category == "" {
		s.Run.Category = "any_percent"
	}
	if s.Run.EndAct <= 0 || s.Run.EndAct > breakpoint.MaxAct {
		s.Run.EndAct = breakpoint.MaxAct
	}
	if s.Run.Verbosity < int(breakpoint.VerbosityActs) || s.Run.Verbosity > int(breakpoint.VerbosityAllZones) {
		s.Run.Verbosity = int(breakpoint.VerbosityAllZones)
	}
	if s.Run.Snapshots == "" {
		s.Run.Snapshots = string(breakpoint.SnapshotActsOnly)
	}
	if s.HeartbeatSeconds <= 0 {
		s.HeartbeatSeconds = 2
	}
	if s.Overlay.Opacity < 0.1 || s.Overlay.Opacity > 1.0 {
		s.Overlay.Opacity = 0.85
	}
	if s.Overlay.Scale <= 0 {
		s.Overlay.Scale = 1.0
	}
	if s.Overlay.UpcomingCount <= 0 {
		s.Overlay.UpcomingCount = 3
	}
}
