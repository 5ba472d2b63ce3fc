package poeapi

import (
	"encoding/json"
	"errors"
)

var (
	ErrRateLimited    = errors.New("poe api rate limited")
	ErrProfilePrivate = errors.New("poe profile is private")
	ErrNotFound       = errors.New("poe account or character not found")
)

// Character is one entry from get-characters
type Character struct {
	Name            string `json:"name"`
	League          string `json:"league"`
	ClassID         int    `json:"classId"`
	AscendancyClass int    `json:"ascendancyClass"`
	Class           string `json:"class"`
	Level           int    `json:"level"`
	Experience      uint64 `json:"experience"`
}

// CharacterItems is the get-items response
type CharacterItems struct {
	Items     []Item    `json:"items"`
	Character Character `json:"character"`
}

// Item is one equipped or socketed item
type Item struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	TypeLine      string         `json:"typeLine"`
	Icon          string         `json:"icon"`
	InventoryID   string         `json:"inventoryId"`
	SocketedItems []Item         `json:"socketedItems"`
	Sockets       []Socket       `json:"sockets"`
	ExplicitMods  []string       `json:"explicitMods"`
	ImplicitMods  []string       `json:"implicitMods"`
	FrameType     int            `json:"frameType"`
	ItemLevel     int            `json:"ilvl"`
	Properties    []ItemProperty `json:"properties"`
}

// ItemProperty is a display property like gem level or quality. The API
// sends values as [value, displayMode] pairs with mixed types, kept raw.
type ItemProperty struct {
	Name   string              `json:"name"`
	Values [][]json.RawMessage `json:"values"`
}

// Socket is one socket on an item
type Socket struct {
	Group int    `json:"group"`
	Attr  string `json:"attr"`
}

// PassiveSkills is the get-passive-skills response
type PassiveSkills struct {
	Hashes         []int          `json:"hashes"`
	HashesEx       []int          `json:"hashes_ex"`
	MasteryEffects map[string]int `json:"mastery_effects"`
}
