// Package snapshot captures character state from the public API when a
// snapshot-flagged split lands. Capture is fire-and-forget: the timer and
// the storage path never wait on it, and a failed capture only emits an
// event.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/kburke8/poe-watcher-sub000/internal/database"
	"github.com/kburke8/poe-watcher-sub000/internal/eventhub"
	"github.com/kburke8/poe-watcher-sub000/internal/pob"
	"github.com/kburke8/poe-watcher-sub000/internal/poeapi"
	"github.com/kburke8/poe-watcher-sub000/internal/run"
)

// Fetcher is the slice of the API client the capturer needs.
type Fetcher interface {
	GetItems(ctx context.Context, account, character string) (*poeapi.CharacterItems, error)
	GetPassiveSkills(ctx context.Context, account, character string) (*poeapi.PassiveSkills, error)
}

// Identity names the account and character to snapshot. Consulted at capture
// time because the character is unknown until the log reveals it.
type Identity func() (account, character string)

// Capturer fetches and stores character snapshots.
type Capturer struct {
	api      Fetcher
	db       *database.Database
	hub      *eventhub.EventHub
	identity Identity
	timeout  time.Duration
}

// New builds a capturer. timeout bounds one whole capture, zero means 30s.
func New(api Fetcher, db *database.Database, hub *eventhub.EventHub, identity Identity, timeout time.Duration) *Capturer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Capturer{api: api, db: db, hub: hub, identity: identity, timeout: timeout}
}

// Capture starts an asynchronous capture for a stored split. level is the
// character level at the time the split was recorded.
func (c *Capturer) Capture(runID string, splitID int64, split run.SplitTime, level int) {
	go c.capture(runID, splitID, split, level)
}

func (c *Capturer) capture(runID string, splitID int64, split run.SplitTime, level int) {
	event := eventhub.SnapshotEvent{RunID: runID, SplitID: splitID, BreakpointName: split.Name}
	c.hub.EmitSnapshotCapturing(event)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	account, character := c.identity()
	if account == "" || character == "" {
		c.fail(event, "account or character not configured")
		return
	}

	items, err := c.api.GetItems(ctx, account, character)
	if err != nil {
		c.fail(event, "fetch items: "+err.Error())
		return
	}
	passives, err := c.api.GetPassiveSkills(ctx, account, character)
	if err != nil {
		c.fail(event, "fetch passives: "+err.Error())
		return
	}

	itemsJSON, _ := json.Marshal(items.Items)
	passivesJSON, _ := json.Marshal(passives)
	skills := extractGems(items.Items)
	skillsJSON, _ := json.Marshal(skills)

	code, err := pob.Encode(buildFor(items, passives, skills, level))
	if err != nil {
		// A snapshot without a build code is still worth keeping.
		log.Printf("[snapshot] pob encode for %q: %v", split.Name, err)
		code = ""
	}

	_, err = c.db.InsertSnapshot(&database.Snapshot{
		RunID:           runID,
		SplitID:         splitID,
		Timestamp:       time.Now(),
		ElapsedTimeMs:   split.CumulativeMs,
		CharacterLevel:  level,
		ItemsJSON:       string(itemsJSON),
		SkillsJSON:      string(skillsJSON),
		PassiveTreeJSON: string(passivesJSON),
		StatsJSON:       "{}",
		PobCode:         code,
	})
	if err != nil {
		c.fail(event, "store snapshot: "+err.Error())
		return
	}

	c.hub.EmitSnapshotComplete(event)
}

func (c *Capturer) fail(event eventhub.SnapshotEvent, msg string) {
	log.Printf("[snapshot] capture %q failed: %s", event.BreakpointName, msg)
	event.Error = msg
	c.hub.EmitSnapshotFailed(event)
}

// extractGems flattens socketed gems out of the equipped items.
func extractGems(items []poeapi.Item) []pob.Gem {
	var gems []pob.Gem
	for _, item := range items {
		for _, socketed := range item.SocketedItems {
			if socketed.FrameType != 4 {
				continue
			}
			gems = append(gems, pob.Gem{
				Name:  socketed.TypeLine,
				Level: gemLevel(socketed),
			})
		}
	}
	return gems
}

// gemLevel digs the level out of the gem's display properties.
func gemLevel(gem poeapi.Item) int {
	for _, prop := range gem.Properties {
		if prop.Name != "Level" || len(prop.Values) == 0 || len(prop.Values[0]) == 0 {
			continue
		}
		var raw string
		if err := json.Unmarshal(prop.Values[0][0], &raw); err != nil {
			continue
		}
		var level int
		// Values arrive like "18" or "20 (Max)".
		if _, err := fmt.Sscanf(raw, "%d", &level); err == nil {
			return level
		}
	}
	return 1
}

func buildFor(items *poeapi.CharacterItems, passives *poeapi.PassiveSkills, skills []pob.Gem, level int) pob.Build {
	build := pob.Build{
		Character: pob.Character{
			Level: level,
			Class: items.Character.Class,
		},
		Skills:   skills,
		Passives: passives.Hashes,
	}
	for _, item := range items.Items {
		sockets := make([]pob.Socket, len(item.Sockets))
		for i, s := range item.Sockets {
			sockets[i] = pob.Socket{Group: s.Group, Attr: s.Attr}
		}
		build.Items = append(build.Items, pob.Item{
			Name:         item.Name,
			TypeLine:     item.TypeLine,
			FrameType:    item.FrameType,
			ItemLevel:    item.ItemLevel,
			Sockets:      sockets,
			ImplicitMods: item.ImplicitMods,
			ExplicitMods: item.ExplicitMods,
		})
	}
	return build
}
