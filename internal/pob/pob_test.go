package pob

import (
	"strings"
	"testing"
)

func testBuild() Build {
	return Build{
		Character: Character{Level: 68, Class: "Witch", Ascendancy: "Necromancer"},
		Items: []Item{
			{
				Name:      "Tabula Rasa",
				TypeLine:  "Simple Robe",
				FrameType: 3,
				ItemLevel: 20,
				Sockets: []Socket{
					{Group: 0, Attr: "G"}, {Group: 0, Attr: "G"}, {Group: 0, Attr: "G"},
					{Group: 0, Attr: "G"}, {Group: 0, Attr: "G"}, {Group: 0, Attr: "G"},
				},
			},
			{
				TypeLine:     "Iron Ring",
				FrameType:    1,
				ImplicitMods: []string{"Adds 1 to 4 Physical Damage to Attacks"},
				ExplicitMods: []string{"+20 to maximum Life"},
			},
		},
		Skills: []Gem{
			{Name: "Summon Raging Spirit", Level: 18, Quality: 10},
			{Name: "Minion Damage Support", Level: 17},
		},
		Passives: []int{1234, 5678, 9012},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	code, err := Encode(testBuild())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if code == "" {
		t.Fatal("empty code")
	}
	// Import codes travel in URLs; only the URL-safe alphabet is allowed.
	if strings.ContainsAny(code, "+/") {
		t.Errorf("code uses standard base64 alphabet: %q", code)
	}

	xml, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for _, want := range []string{
		`className="Witch"`,
		`ascendClassName="Necromancer"`,
		`level="68"`,
		"Tabula Rasa",
		`nameSpec="Summon Raging Spirit" level="18" quality="10"`,
		`nodes="1234,5678,9012"`,
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("decoded xml missing %q", want)
		}
	}
}

func TestEncodeDefaultsEmptyCharacter(t *testing.T) {
	code, err := Encode(Build{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	xml, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !strings.Contains(xml, `className="Scion"`) || !strings.Contains(xml, `level="1"`) {
		t.Errorf("defaults not applied: %s", xml)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("not!!base64"); err == nil {
		t.Error("invalid base64 should fail")
	}
	// Valid base64, not a zlib stream.
	if _, err := Decode("aGVsbG8gd29ybGQ="); err == nil {
		t.Error("non-zlib payload should fail")
	}
}

func TestFormatItemSeparatesModBlocks(t *testing.T) {
	item := Item{
		TypeLine:     "Iron Ring",
		FrameType:    2,
		ImplicitMods: []string{"implicit"},
		ExplicitMods: []string{"explicit"},
	}
	text := formatItem(item)
	lines := strings.Split(text, "\n")
	want := []string{"Rarity: Rare", "Iron Ring", "implicit", "--------", "explicit"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestFormatSocketsGroupsLinks(t *testing.T) {
	sockets := []Socket{
		{Group: 0, Attr: "S"}, {Group: 0, Attr: "D"},
		{Group: 1, Attr: "I"},
		{Group: 2, Attr: "X"}, // unknown attr becomes white
	}
	got := formatSockets(sockets)
	if got != "R-G B W" {
		t.Errorf("sockets = %q, want %q", got, "R-G B W")
	}
}
