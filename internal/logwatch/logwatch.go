// Package logwatch tails the game client's log file and turns the lines the
// tracker cares about into typed events. Watching starts at the current end
// of the file so old sessions never replay.
package logwatch

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// EventType identifies a parsed log line
type EventType string

const (
	EventZoneEnter       EventType = "zone_enter"
	EventLevelUp         EventType = "level_up"
	EventDeath           EventType = "death"
	EventInstanceDetails EventType = "instance_details"
	EventLogin           EventType = "login"
)

// Event is one parsed log line
type Event struct {
	Type           EventType `json:"eventType"`
	Timestamp      string    `json:"timestamp"`
	ZoneName       string    `json:"zoneName,omitempty"`
	CharacterName  string    `json:"characterName,omitempty"`
	CharacterClass string    `json:"characterClass,omitempty"`
	Level          int       `json:"level,omitempty"`
}

// Watcher tails a single log file and delivers parsed events to a callback
type Watcher struct {
	path     string
	callback func(Event)
	watcher  *fsnotify.Watcher
	done     chan struct{}

	mu       sync.Mutex
	position int64
	started  bool
	closed   bool
}

// New creates a Watcher for the given log file. The file does not need to
// exist yet; tailing begins once it does.
func New(path string, callback func(Event)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the directory, not the file: the client truncates and
	// recreates Client.txt on some updates.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch log directory: %w", err)
	}

	w := &Watcher{
		path:     path,
		callback: callback,
		watcher:  fsw,
		done:     make(chan struct{}),
	}

	// Skip everything already in the file.
	if info, err := os.Stat(path); err == nil {
		w.position = info.Size()
	}

	return w, nil
}

// Start starts tailing for events
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}
	w.started = true

	go w.watch()

	return nil
}

// Close stops tailing and cleans up resources
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.started {
		close(w.done)
	}

	return w.watcher.Close()
}

// watch is the main event loop
func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write:
				w.readNewLines()
			case event.Op&fsnotify.Create == fsnotify.Create:
				// Recreated file, start from its beginning.
				w.mu.Lock()
				w.position = 0
				w.mu.Unlock()
				w.readNewLines()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[logwatch] watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

// readNewLines reads from the stored offset to EOF and dispatches any
// parseable events
func (w *Watcher) readNewLines() {
	w.mu.Lock()
	pos := w.position
	w.mu.Unlock()

	file, err := os.Open(w.path)
	if err != nil {
		return
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil && info.Size() < pos {
		// File shrank under us, the client rotated it.
		pos = 0
	}
	if _, err := file.Seek(pos, io.SeekStart); err != nil {
		return
	}

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			pos += int64(len(line))
			if event, ok := ParseLine(line); ok {
				w.callback(event)
			}
		}
		if err != nil {
			break
		}
	}

	w.mu.Lock()
	w.position = pos
	w.mu.Unlock()
}

// ParseLine parses a single client log line. Returns false for the vast
// majority of lines the tracker does not care about.
func ParseLine(line string) (Event, bool) {
	if caps := zoneEnterRe.FindStringSubmatch(line); caps != nil {
		return Event{Type: EventZoneEnter, Timestamp: caps[1], ZoneName: caps[2]}, true
	}
	if caps := levelUpRe.FindStringSubmatch(line); caps != nil {
		level, err := strconv.Atoi(caps[4])
		if err != nil {
			level = 1
		}
		return Event{
			Type:           EventLevelUp,
			Timestamp:      caps[1],
			CharacterName:  caps[2],
			CharacterClass: caps[3],
			Level:          level,
		}, true
	}
	if caps := deathRe.FindStringSubmatch(line); caps != nil {
		return Event{Type: EventDeath, Timestamp: caps[1], CharacterName: caps[2]}, true
	}
	if caps := instanceDetailsRe.FindStringSubmatch(line); caps != nil {
		return Event{Type: EventInstanceDetails, Timestamp: caps[1]}, true
	}
	if caps := loginRe.FindStringSubmatch(line); caps != nil {
		return Event{Type: EventLogin, Timestamp: caps[1]}, true
	}
	return Event{}, false
}

// DetectLogPath checks the usual install locations for Client.txt
func DetectLogPath() (string, bool) {
	possiblePaths := []string{
		// Steam
		`C:\Program Files (x86)\Steam\steamapps\common\Path of Exile\logs\Client.txt`,
		// Standalone
		`C:\Program Files (x86)\Grinding Gear Games\Path of Exile\logs\Client.txt`,
		// Epic Games
		`C:\Program Files\Epic Games\PathOfExile\logs\Client.txt`,
		// Common custom Steam library locations
		`D:\Steam\steamapps\common\Path of Exile\logs\Client.txt`,
		`D:\SteamLibrary\steamapps\common\Path of Exile\logs\Client.txt`,
		`E:\Steam\steamapps\common\Path of Exile\logs\Client.txt`,
		`E:\SteamLibrary\steamapps\common\Path of Exile\logs\Client.txt`,
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
