package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clashwarriors/clash-warriors-sub000/internal/engine"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
)

// matchView assembles the API shape of a match: the persisted record plus a
// server-computed phase snapshot and the round-local selection state. Clients
// never compute phases themselves; they render this.
func (h *MatchHandler) matchView(rec *game.MatchRecord) gin.H {
	nowMS := time.Now().UnixMilli()
	info := h.ctrl.Timings().PhaseAt(rec.StartTimeMS, nowMS)
	if rec.Cancelled {
		info = engine.PhaseInfo{Phase: game.PhaseCancelled, Round: info.Round}
	}
	rounds, totals := h.store.Snapshot(rec.MatchID)

	view := gin.H{
		"match_id":          rec.MatchID,
		"mode":              rec.Mode,
		"start_time_ms":     rec.StartTimeMS,
		"server_time_ms":    nowMS,
		"phase":             info.Phase,
		"round":             info.Round,
		"remaining_seconds": info.RemainingSeconds,
		"total_rounds":      game.TotalRounds,
		"player_deck":       rec.PlayerDeck,
		"opponent":          botView(rec),
		"rounds":            rounds,
		"totals":            totals,
	}
	if info.Phase == game.PhaseFinished {
		view["result"] = finalView(totals, h.ctrl.Rewards(), rec)
	}
	return view
}

// finalView recomputes the verdict for display. The reward shown matches
// what the lifecycle controller credited (or will credit) on the FINISHED
// edge; tutorial matches always display zero.
func finalView(totals engine.Totals, rw engine.Rewards, rec *game.MatchRecord) engine.FinalResult {
	res := engine.Finalize(totals, rw, rec.AdRewardEligible)
	if rec.Mode == game.ModeTutorial {
		res.Reward = 0
	}
	return res
}

// botView hides the bot's future cards: clients only ever see the bot deck
// size, not its contents.
func botView(rec *game.MatchRecord) gin.H {
	return gin.H{"deck_size": len(rec.OpponentDeck)}
}
