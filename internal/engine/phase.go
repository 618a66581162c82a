package engine

import (
	"time"

	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
)

// Timings defines the wall-clock shape of a match. Every phase computation
// derives from the match start time and these durations alone, so any client
// holding the same start time computes the same phase.
type Timings struct {
	Cooldown  time.Duration `json:"cooldown"`
	Selection time.Duration `json:"selection"`
	Battle    time.Duration `json:"battle"`
}

// DefaultTimings returns the production round shape: 5s cooldown, then five
// rounds of 5s selection + 3s battle (45s total).
func DefaultTimings() Timings {
	return Timings{
		Cooldown:  5 * time.Second,
		Selection: 5 * time.Second,
		Battle:    3 * time.Second,
	}
}

// RoundTotal is the length of one selection+battle cycle.
func (t Timings) RoundTotal() time.Duration { return t.Selection + t.Battle }

// MatchTotal is the full match length including the initial cooldown.
func (t Timings) MatchTotal() time.Duration {
	return t.Cooldown + game.TotalRounds*t.RoundTotal()
}

// PhaseInfo is the result of a phase computation: current phase, round index
// and whole seconds remaining in the phase (rounded up). RemainingMS is the
// exact remainder backing RemainingSeconds; schedulers use it, clients get
// the rounded value.
type PhaseInfo struct {
	Phase            game.Phase `json:"phase"`
	Round            int        `json:"round"`
	RemainingSeconds int        `json:"remaining_seconds"`
	RemainingMS      int64      `json:"-"`
}

// ceilSeconds converts a millisecond remainder to whole seconds, rounding up.
func ceilSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}

// PhaseAt maps (startTimeMS, nowMS) to the current phase. Pure and
// idempotent: the same input pair always yields the same result. A timestamp
// exactly on a boundary resolves to the later phase (elapsed == Cooldown is
// SELECTION, not COOLDOWN).
func (t Timings) PhaseAt(startTimeMS, nowMS int64) PhaseInfo {
	elapsed := nowMS - startTimeMS
	if elapsed < 0 {
		// Tolerate small clock skew by pinning to the match start.
		elapsed = 0
	}

	cooldownMS := t.Cooldown.Milliseconds()
	selectionMS := t.Selection.Milliseconds()
	roundMS := t.RoundTotal().Milliseconds()
	matchMS := t.MatchTotal().Milliseconds()

	if elapsed >= matchMS {
		return PhaseInfo{Phase: game.PhaseFinished, Round: game.TotalRounds - 1}
	}
	if elapsed < cooldownMS {
		return PhaseInfo{
			Phase:            game.PhaseCooldown,
			Round:            0,
			RemainingSeconds: ceilSeconds(cooldownMS - elapsed),
			RemainingMS:      cooldownMS - elapsed,
		}
	}

	post := elapsed - cooldownMS
	round := int(post / roundMS)
	if round > game.TotalRounds-1 {
		round = game.TotalRounds - 1
	}
	roundTime := post % roundMS

	if roundTime < selectionMS {
		return PhaseInfo{
			Phase:            game.PhaseSelection,
			Round:            round,
			RemainingSeconds: ceilSeconds(selectionMS - roundTime),
			RemainingMS:      selectionMS - roundTime,
		}
	}
	return PhaseInfo{
		Phase:            game.PhaseBattle,
		Round:            round,
		RemainingSeconds: ceilSeconds(roundMS - roundTime),
		RemainingMS:      roundMS - roundTime,
	}
}
