package breakpoint

// A transform is a pure candidate-list rewrite for one act. Transforms must
// tolerate missing targets: a name that is not present (for example because
// an earlier rewrite removed it) makes the transform a no-op for that step,
// never an error.
type transform func([]Candidate) []Candidate

// variants registers the known community routes per act.
var variants = map[int]map[Route]transform{
	1: {
		RouteSkipGraveyardCave: removeCandidates("The Ship Graveyard Cave"),
	},
	2: {
		RouteWetlandsFirst: moveBlockAfter("The Western Forest", "The Weaver's Chambers", "The Wetlands"),
	},
	4: {
		RouteDaressoFirst: daressoFirst,
	},
	6: {
		RouteSkipPrison: removeCandidates("The Lower Prison", "Shavronne's Tower"),
	},
}

func indexOf(list []Candidate, name string) int {
	for i, c := range list {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// removeCandidates deletes the named candidates. Missing names are skipped.
func removeCandidates(names ...string) transform {
	return func(list []Candidate) []Candidate {
		out := list
		for _, name := range names {
			i := indexOf(out, name)
			if i < 0 {
				continue
			}
			trimmed := make([]Candidate, 0, len(out)-1)
			trimmed = append(trimmed, out[:i]...)
			trimmed = append(trimmed, out[i+1:]...)
			out = trimmed
		}
		return out
	}
}

// moveBlockAfter relocates the contiguous block [first..last] so it follows
// the candidate named after. No-op if any of the three names is absent or
// the block is not contiguous in the expected order.
func moveBlockAfter(first, last, after string) transform {
	return func(list []Candidate) []Candidate {
		lo := indexOf(list, first)
		hi := indexOf(list, last)
		if lo < 0 || hi < lo {
			return list
		}
		block := make([]Candidate, hi-lo+1)
		copy(block, list[lo:hi+1])

		rest := make([]Candidate, 0, len(list)-len(block))
		rest = append(rest, list[:lo]...)
		rest = append(rest, list[hi+1:]...)

		at := indexOf(rest, after)
		if at < 0 {
			return list
		}
		out := make([]Candidate, 0, len(list))
		out = append(out, rest[:at+1]...)
		out = append(out, block...)
		out = append(out, rest[at+1:]...)
		return out
	}
}

// daressoFirst rewrites act 4 so Daresso's Dream is cleared before Kaom's.
// Each dream boss is detected by the first zone entered after the kill, so
// swapping the blocks also moves which transition carries each kill marker:
// Daresso's kill is now confirmed by entering Kaom's Dream, and Kaom's by
// entering the Belly.
func daressoFirst(list []Candidate) []Candidate {
	start := indexOf(list, "Kaom's Dream")
	end := indexOf(list, "Daresso")
	if start < 0 || end < start {
		return list
	}

	replacement := []Candidate{
		{Name: "Daresso's Dream", MatchZone: "Daresso's Dream", Act: 4, Kind: KindZone, Verbosity: VerbosityAllZones},
		{Name: "The Grand Arena", MatchZone: "The Grand Arena", Act: 4, Kind: KindZone, Verbosity: VerbosityKeyZones},
		{Name: "Daresso", MatchZone: "Kaom's Dream", Act: 4, Kind: KindBoss, Verbosity: VerbosityBosses, Snapshot: true},
		{Name: "Kaom's Dream", MatchZone: "Kaom's Dream", Act: 4, Kind: KindZone, Verbosity: VerbosityAllZones},
		{Name: "Kaom's Stronghold", MatchZone: "Kaom's Stronghold", Act: 4, Kind: KindZone, Verbosity: VerbosityAllZones},
		{Name: "Kaom", MatchZone: "The Belly of the Beast Level 1", Act: 4, Kind: KindBoss, Verbosity: VerbosityBosses, Snapshot: true},
	}

	out := make([]Candidate, 0, len(list)-(end-start+1)+len(replacement))
	out = append(out, list[:start]...)
	out = append(out, replacement...)
	out = append(out, list[end+1:]...)
	return out
}
