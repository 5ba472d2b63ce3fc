// Package pob turns captured character snapshots into Path of Building
// import codes: the build XML, zlib-compressed at maximum level and encoded
// with URL-safe base64.
package pob

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Character identifies the build's class and level.
type Character struct {
	Level      int    `json:"level"`
	Class      string `json:"class"`
	Ascendancy string `json:"ascendancy,omitempty"`
}

// Socket is one socket on an item.
type Socket struct {
	Group int    `json:"group"`
	Attr  string `json:"attr"`
}

// Item is one equipped item in the snapshot.
type Item struct {
	Name         string   `json:"name,omitempty"`
	TypeLine     string   `json:"typeLine"`
	FrameType    int      `json:"frameType"`
	ItemLevel    int      `json:"ilvl,omitempty"`
	Sockets      []Socket `json:"sockets,omitempty"`
	ImplicitMods []string `json:"implicitMods,omitempty"`
	ExplicitMods []string `json:"explicitMods,omitempty"`
}

// Gem is one socketed skill gem.
type Gem struct {
	Name    string `json:"name"`
	Level   int    `json:"level"`
	Quality int    `json:"quality"`
}

// Build is everything needed to produce an import code.
type Build struct {
	Character Character `json:"character"`
	Items     []Item    `json:"items"`
	Skills    []Gem     `json:"skills"`
	Passives  []int     `json:"passives"`
}

// Encode produces the import code for the build.
func Encode(build Build) (string, error) {
	xml := buildXML(build)

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return "", fmt.Errorf("init compressor: %w", err)
	}
	if _, err := zw.Write([]byte(xml)); err != nil {
		return "", fmt.Errorf("compress build xml: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("flush compressor: %w", err)
	}

	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reverses Encode and returns the embedded build XML.
func Decode(code string) (string, error) {
	compressed, err := base64.URLEncoding.DecodeString(code)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", fmt.Errorf("open compressed stream: %w", err)
	}
	defer zr.Close()

	xml, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("decompress build xml: %w", err)
	}
	return string(xml), nil
}

func buildXML(build Build) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString("<PathOfBuilding>\n")

	class := build.Character.Class
	if class == "" {
		class = "Scion"
	}
	ascendancy := build.Character.Ascendancy
	if ascendancy == "" {
		ascendancy = "None"
	}
	level := build.Character.Level
	if level < 1 {
		level = 1
	}
	fmt.Fprintf(&sb, "    <Build level=\"%d\" className=%q ascendClassName=%q>\n    </Build>\n",
		level, class, ascendancy)

	sb.WriteString("    <Items>\n")
	for i, item := range build.Items {
		fmt.Fprintf(&sb, "<Item id=\"%d\">\n%s\n</Item>", i+1, formatItem(item))
	}
	sb.WriteString("\n    </Items>\n")

	sb.WriteString("    <Skills>\n        <SkillSet>\n")
	for _, gem := range build.Skills {
		fmt.Fprintf(&sb, "<Gem nameSpec=%q level=\"%d\" quality=\"%d\"/>", gem.Name, gem.Level, gem.Quality)
	}
	sb.WriteString("\n        </SkillSet>\n    </Skills>\n")

	hashes := make([]string, len(build.Passives))
	for i, node := range build.Passives {
		hashes[i] = fmt.Sprint(node)
	}
	sb.WriteString("    <Tree activeSpec=\"1\">\n")
	fmt.Fprintf(&sb, "        <Spec treeVersion=\"3_24\" nodes=%q>\n        </Spec>\n", strings.Join(hashes, ","))
	sb.WriteString("    </Tree>\n")

	sb.WriteString("</PathOfBuilding>")
	return sb.String()
}

var rarities = []string{"Normal", "Magic", "Rare", "Unique", "Gem"}

// formatItem renders an item as the text block Path of Building imports.
func formatItem(item Item) string {
	var lines []string

	frameType := item.FrameType
	if frameType >= len(rarities) {
		frameType = len(rarities) - 1
	}
	if frameType < 0 {
		frameType = 0
	}
	lines = append(lines, "Rarity: "+rarities[frameType])

	if item.Name != "" {
		lines = append(lines, item.Name)
	}
	typeLine := item.TypeLine
	if typeLine == "" {
		typeLine = "Unknown Item"
	}
	lines = append(lines, typeLine)

	if item.ItemLevel > 0 {
		lines = append(lines, fmt.Sprintf("Item Level: %d", item.ItemLevel))
	}
	if len(item.Sockets) > 0 {
		lines = append(lines, "Sockets: "+formatSockets(item.Sockets))
	}

	lines = append(lines, item.ImplicitMods...)
	if len(item.ImplicitMods) > 0 && len(item.ExplicitMods) > 0 {
		lines = append(lines, "--------")
	}
	lines = append(lines, item.ExplicitMods...)

	return strings.Join(lines, "\n")
}

// attribute requirement to socket color
var socketColors = map[string]string{
	"S": "R", "D": "G", "I": "B", "G": "W", "A": "A", "DV": "W",
}

func formatSockets(sockets []Socket) string {
	groups := make(map[int][]string)
	for _, socket := range sockets {
		color, ok := socketColors[socket.Attr]
		if !ok {
			color = "W"
		}
		groups[socket.Group] = append(groups[socket.Group], color)
	}

	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	linked := make([]string, len(ids))
	for i, id := range ids {
		linked[i] = strings.Join(groups[id], "-")
	}
	return strings.Join(linked, " ")
}
