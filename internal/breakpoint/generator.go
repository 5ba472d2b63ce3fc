package breakpoint

import "strconv"

// Generate compiles a configuration into the ordered breakpoint list. The
// function is pure: it reads only its input and the static graph tables, so
// identical configs always yield identical lists and it is safe to call from
// any goroutine.
func Generate(cfg Config) []Breakpoint {
	endAct := cfg.EndAct
	if endAct < 1 {
		endAct = MaxAct
	}
	if endAct > MaxAct {
		endAct = MaxAct
	}
	verbosity := cfg.Verbosity
	if verbosity == 0 {
		verbosity = VerbosityAllZones
	}

	var out []Breakpoint
	for act := 1; act <= endAct; act++ {
		for _, cand := range actCandidates(act, cfg.Routes[act]) {
			if cand.Verbosity > verbosity {
				continue
			}
			out = append(out, toBreakpoint(cand, cfg.Snapshots))
		}
	}

	for _, lvl := range levelMilestones {
		out = append(out, Breakpoint{
			Name:    levelName(lvl),
			Kind:    KindLevel,
			Trigger: Trigger{Level: lvl},
			Enabled: false,
		})
	}
	return out
}

// actCandidates returns the act's candidate list with its routing transform
// applied. Acts are independent: a route choice for one act never touches
// another act's list.
func actCandidates(act int, route Route) []Candidate {
	list := actGraph[act]
	if route == RouteDefault {
		return list
	}
	tr, ok := variants[act][route]
	if !ok {
		return list
	}
	return tr(list)
}

func toBreakpoint(cand Candidate, policy SnapshotPolicy) Breakpoint {
	bp := Breakpoint{
		Name:            cand.Name,
		Kind:            cand.Kind,
		Enabled:         true,
		CaptureSnapshot: snapshotAllowed(cand, policy),
	}
	switch {
	case cand.BossAct != 0:
		bp.Trigger = Trigger{
			BossKill:  true,
			Act:       cand.BossAct,
			Zone:      cand.MatchZone,
			PenaltyMs: bossPenaltyMs(cand.BossAct),
		}
	case cand.Level != 0:
		bp.Trigger = Trigger{Level: cand.Level}
	default:
		bp.Trigger = Trigger{Zone: cand.MatchZone, Act: cand.Act}
	}
	return bp
}

func snapshotAllowed(cand Candidate, policy SnapshotPolicy) bool {
	if !cand.Snapshot {
		return false
	}
	switch policy {
	case SnapshotBossesAndActs:
		return cand.Verbosity == VerbosityActs || cand.Kind == KindBoss || cand.Kind == KindTown
	default:
		// Acts-only is the conservative default.
		return cand.Verbosity == VerbosityActs
	}
}

func bossPenaltyMs(act int) int64 {
	switch act {
	case 5:
		return KitavaAct5PenaltyMs
	case 10:
		return KitavaAct10PenaltyMs
	default:
		return 0
	}
}

func levelName(lvl int) string {
	return "Level " + strconv.Itoa(lvl)
}
