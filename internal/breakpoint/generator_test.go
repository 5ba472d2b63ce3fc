package breakpoint

import (
	"reflect"
	"testing"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := Config{
		EndAct:    10,
		RunType:   "any_percent",
		Verbosity: VerbosityAllZones,
		Routes:    map[int]Route{2: RouteWetlandsFirst, 4: RouteDaressoFirst},
		Snapshots: SnapshotBossesAndActs,
	}

	first := Generate(cfg)
	for i := 0; i < 5; i++ {
		if got := Generate(cfg); !reflect.DeepEqual(got, first) {
			t.Fatalf("generation %d differs from first", i)
		}
	}
}

func TestGenerate_ActsOnlyEndAct5(t *testing.T) {
	list := Generate(Config{EndAct: 5, RunType: "any_percent", Verbosity: VerbosityActs})

	wantNames := []string{
		"The Forest Encampment",
		"The Sarn Encampment",
		"Highgate",
		"Overseer's Tower",
		"Kitava, the Insatiable",
		"Level 10", "Level 20", "Level 30", "Level 40", "Level 50",
		"Level 60", "Level 70", "Level 80", "Level 90",
	}
	if len(list) != len(wantNames) {
		t.Fatalf("got %d breakpoints, want %d: %+v", len(list), len(wantNames), names(list))
	}
	for i, want := range wantNames {
		if list[i].Name != want {
			t.Errorf("breakpoint %d = %q, want %q", i, list[i].Name, want)
		}
	}

	for _, bp := range list {
		if bp.Kind == KindLevel {
			if bp.Enabled {
				t.Errorf("level milestone %s enabled by default", bp.Name)
			}
			continue
		}
		if !bp.Enabled {
			t.Errorf("breakpoint %s disabled by default", bp.Name)
		}
		if bp.Trigger.Act > 6 {
			t.Errorf("breakpoint %s references act %d beyond end act", bp.Name, bp.Trigger.Act)
		}
	}
}

func TestGenerate_VerbosityMonotonic(t *testing.T) {
	ranks := []Verbosity{VerbosityActs, VerbosityBosses, VerbosityKeyZones, VerbosityAllZones}

	var prev map[string]bool
	for _, rank := range ranks {
		list := Generate(Config{EndAct: 10, Verbosity: rank})
		// Names repeat across acts (two Sarn Encampments), so compare
		// (name, trigger zone, kind) identity rather than position.
		set := triggerSet(list)
		if prev != nil {
			for key := range prev {
				if !set[key] {
					t.Errorf("rank %d lost breakpoint %q present at coarser rank", rank, key)
				}
			}
		}
		prev = set
	}
}

func TestGenerate_RouteChangeIsolatedToAct(t *testing.T) {
	base := Generate(Config{EndAct: 10, Verbosity: VerbosityAllZones})
	routed := Generate(Config{
		EndAct:    10,
		Verbosity: VerbosityAllZones,
		Routes:    map[int]Route{4: RouteDaressoFirst},
	})

	if reflect.DeepEqual(actSlice(base, 4), actSlice(routed, 4)) {
		t.Fatal("act 4 route change had no effect on act 4")
	}
	for act := 1; act <= 10; act++ {
		if act == 4 {
			continue
		}
		if !reflect.DeepEqual(actSlice(base, act), actSlice(routed, act)) {
			t.Errorf("act %d changed when only act 4 route differs", act)
		}
	}
}

func TestGenerate_DaressoFirstMovesKillMarkers(t *testing.T) {
	list := Generate(Config{
		EndAct:    4,
		Verbosity: VerbosityBosses,
		Routes:    map[int]Route{4: RouteDaressoFirst},
	})

	var daresso, kaom *Breakpoint
	for i := range list {
		switch list[i].Name {
		case "Daresso":
			daresso = &list[i]
		case "Kaom":
			kaom = &list[i]
		}
	}
	if daresso == nil || kaom == nil {
		t.Fatal("missing dream boss breakpoints")
	}
	if daresso.Trigger.Zone != "Kaom's Dream" {
		t.Errorf("Daresso kill marker on %q, want Kaom's Dream", daresso.Trigger.Zone)
	}
	if kaom.Trigger.Zone != "The Belly of the Beast Level 1" {
		t.Errorf("Kaom kill marker on %q, want The Belly of the Beast Level 1", kaom.Trigger.Zone)
	}
	for i := range list {
		if list[i].Name == "Daresso" {
			for j := i + 1; j < len(list); j++ {
				if list[j].Name == "Kaom" {
					return
				}
			}
			t.Fatal("Kaom does not follow Daresso under daresso_first")
		}
	}
}

func TestGenerate_UnknownRouteIsNoop(t *testing.T) {
	base := Generate(Config{EndAct: 3, Verbosity: VerbosityAllZones})
	got := Generate(Config{
		EndAct:    3,
		Verbosity: VerbosityAllZones,
		Routes:    map[int]Route{2: Route("no_such_route")},
	})
	if !reflect.DeepEqual(base, got) {
		t.Fatal("unknown route choice altered generation")
	}
}

func TestGenerate_MissingTransformTargetIsNoop(t *testing.T) {
	list := []Candidate{{Name: "A"}, {Name: "B"}}
	got := moveBlockAfter("X", "Y", "B")(list)
	if !reflect.DeepEqual(got, list) {
		t.Fatal("transform with absent targets must be a no-op")
	}
	got = removeCandidates("X")(list)
	if !reflect.DeepEqual(got, list) {
		t.Fatal("removal of absent candidate must be a no-op")
	}
}

func TestGenerate_BossPenalties(t *testing.T) {
	list := Generate(Config{EndAct: 10, Verbosity: VerbosityActs})
	var act5, act10 bool
	for _, bp := range list {
		if !bp.Trigger.BossKill {
			continue
		}
		switch bp.Trigger.Act {
		case 5:
			act5 = true
			if bp.Trigger.PenaltyMs != KitavaAct5PenaltyMs {
				t.Errorf("act 5 penalty = %d", bp.Trigger.PenaltyMs)
			}
		case 10:
			act10 = true
			if bp.Trigger.PenaltyMs != KitavaAct10PenaltyMs {
				t.Errorf("act 10 penalty = %d", bp.Trigger.PenaltyMs)
			}
		}
	}
	if !act5 || !act10 {
		t.Fatalf("missing boss-kill breakpoints: act5=%v act10=%v", act5, act10)
	}
}

func TestGenerate_SnapshotPolicy(t *testing.T) {
	actsOnly := Generate(Config{EndAct: 10, Verbosity: VerbosityAllZones, Snapshots: SnapshotActsOnly})
	for _, bp := range actsOnly {
		if bp.CaptureSnapshot && bp.Kind == KindBoss && !bp.Trigger.BossKill {
			t.Errorf("acts-only policy kept capture on mid-act boss %s", bp.Name)
		}
	}

	withBosses := Generate(Config{EndAct: 10, Verbosity: VerbosityAllZones, Snapshots: SnapshotBossesAndActs})
	var bossCaptures int
	for _, bp := range withBosses {
		if bp.CaptureSnapshot && bp.Kind == KindBoss {
			bossCaptures++
		}
	}
	if bossCaptures == 0 {
		t.Fatal("bosses_and_acts policy kept no boss captures")
	}
}

func names(list []Breakpoint) []string {
	out := make([]string, len(list))
	for i, bp := range list {
		out[i] = bp.Name
	}
	return out
}

func triggerSet(list []Breakpoint) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, bp := range list {
		set[bp.Name+"|"+bp.Trigger.Zone+"|"+string(bp.Kind)] = true
	}
	return set
}

func actSlice(list []Breakpoint, act int) []Breakpoint {
	var out []Breakpoint
	for _, bp := range list {
		if bp.Trigger.Act == act || (bp.Trigger.BossKill && bp.Trigger.Act == act) {
			out = append(out, bp)
		}
	}
	return out
}
