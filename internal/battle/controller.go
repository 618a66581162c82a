package battle

import (
	"sync"
	"time"

	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
	"github.com/clashwarriors/clash-warriors-sub000/internal/engine"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
	"github.com/clashwarriors/clash-warriors-sub000/internal/logging"
)

// ControllerConfig bundles the timing knobs of the lifecycle controller.
// Zero values fall back to production defaults; tests compress them.
type ControllerConfig struct {
	Timings     engine.Timings
	Rewards     engine.Rewards
	TickEvery   time.Duration
	FinishGrace time.Duration
	CancelGrace time.Duration
	Feedback    Feedback
}

// Controller drives match lifecycles. Phases are derived, never commanded:
// each tick recomputes the phase from the immutable start time and the
// controller reacts only to phase changes. One watcher goroutine runs per
// active match, keyed by matchID.
type Controller struct {
	store *Store
	bots  *Scheduler
	repo  Repo

	timings     engine.Timings
	rewards     engine.Rewards
	tickEvery   time.Duration
	finishGrace time.Duration
	cancelGrace time.Duration
	feedback    Feedback

	mu       sync.Mutex
	watchers map[string]chan struct{}
}

// NewController wires the round store, bot scheduler and persistence
// together.
func NewController(store *Store, bots *Scheduler, repo Repo, cfg ControllerConfig) *Controller {
	if cfg.TickEvery <= 0 {
		cfg.TickEvery = time.Second
	}
	if cfg.FinishGrace <= 0 {
		cfg.FinishGrace = 10 * time.Second
	}
	if cfg.CancelGrace <= 0 {
		cfg.CancelGrace = 1500 * time.Millisecond
	}
	if cfg.Feedback == nil {
		cfg.Feedback = NopFeedback{}
	}
	if cfg.Timings == (engine.Timings{}) {
		cfg.Timings = engine.DefaultTimings()
	}
	if cfg.Rewards == (engine.Rewards{}) {
		cfg.Rewards = engine.DefaultRewards()
	}
	return &Controller{
		store:       store,
		bots:        bots,
		repo:        repo,
		timings:     cfg.Timings,
		rewards:     cfg.Rewards,
		tickEvery:   cfg.TickEvery,
		finishGrace: cfg.FinishGrace,
		cancelGrace: cfg.CancelGrace,
		feedback:    cfg.Feedback,
	}
}

// Timings exposes the controller's clock shape for API phase snapshots.
func (c *Controller) Timings() engine.Timings { return c.timings }

// Rewards exposes the configured reward tiers.
func (c *Controller) Rewards() engine.Rewards { return c.rewards }

// Watch starts the tick loop for a match. Watching an already-watched or
// cancelled match is a no-op.
func (c *Controller) Watch(rec *game.MatchRecord) {
	if rec == nil || rec.Cancelled {
		return
	}
	c.mu.Lock()
	if _, exists := c.watchers[rec.MatchID]; exists {
		c.mu.Unlock()
		return
	}
	if c.watchers == nil {
		c.watchers = make(map[string]chan struct{})
	}
	stop := make(chan struct{})
	c.watchers[rec.MatchID] = stop
	c.mu.Unlock()

	go c.run(rec, stop)
}

// Watching reports whether a watcher goroutine is active for the match.
func (c *Controller) Watching(matchID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.watchers[matchID]
	return ok
}

func (c *Controller) run(rec *game.MatchRecord, stop chan struct{}) {
	ticker := time.NewTicker(c.tickEvery)
	defer ticker.Stop()

	var last engine.PhaseInfo
	first := true
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			info := c.timings.PhaseAt(rec.StartTimeMS, now.UnixMilli())
			if first || info.Phase != last.Phase || info.Round != last.Round {
				c.enterPhase(rec, info)
			}
			last, first = info, false
			if info.Phase == game.PhaseFinished {
				c.finalize(rec)
				c.forget(rec.MatchID)
				return
			}
		}
	}
}

// enterPhase runs the one-time effects of a phase edge.
func (c *Controller) enterPhase(rec *game.MatchRecord, info engine.PhaseInfo) {
	switch info.Phase {
	case game.PhaseSelection:
		c.feedback.PlaySound(SoundRoundStart)
		// The edge can be observed up to a tick late, so the bot delay is
		// capped to what is actually left of the selection phase.
		window := time.Duration(info.RemainingMS) * time.Millisecond
		c.bots.ScheduleBotMove(rec.MatchID, info.Round, rec.OpponentDeck, window)
		c.bots.ScheduleBotAbility(rec.MatchID, info.Round, window)
	case game.PhaseBattle:
		// Per-round comparison drives animation direction only; scoring is
		// purely cumulative and settled at FINISHED.
		outcome := c.store.RoundOutcome(rec.MatchID, info.Round)
		c.feedback.PlaySound(SoundBattleClash)
		c.feedback.HapticPulse(HapticImpact)
		logging.Info("round battle", logging.Fields{
			constants.LogFieldMatchID: rec.MatchID,
			constants.LogFieldRound:   info.Round,
			constants.LogFieldOutcome: string(outcome),
		})
	}
}

// finalize runs the FINISHED-edge effects exactly once: settle cumulative
// synergy, credit the reward, then schedule record cleanup after the grace
// window. Persistence failures are logged and do not roll back the
// in-memory result.
func (c *Controller) finalize(rec *game.MatchRecord) {
	if !c.store.MarkFinished(rec.MatchID) {
		return
	}
	totals := c.store.Totals(rec.MatchID)
	result := engine.Finalize(totals, c.rewards, rec.AdRewardEligible)
	if rec.Mode == game.ModeTutorial {
		result.Reward = 0
	}

	switch result.Outcome {
	case engine.OutcomeUser:
		c.feedback.PlaySound(SoundVictory)
	case engine.OutcomeBot:
		c.feedback.PlaySound(SoundDefeat)
	}
	c.feedback.HapticPulse(HapticNotification)

	if rec.Mode == game.ModeRanked {
		won := result.Outcome == engine.OutcomeUser
		if err := c.repo.CreditMatchResult(rec.TelegramID, result.Reward, won); err != nil {
			logging.Error("failed to credit match result", err, logging.Fields{
				constants.LogFieldMatchID: rec.MatchID,
				constants.LogFieldReward:  result.Reward,
			})
		}
	}
	rec.RewardPaid = true
	if err := c.repo.UpdateMatch(rec); err != nil {
		logging.Error("failed to persist finished match", err, logging.Fields{
			constants.LogFieldMatchID: rec.MatchID,
		})
	}
	logging.Info("match finished", logging.Fields{
		constants.LogFieldMatchID: rec.MatchID,
		constants.LogFieldMode:    string(rec.Mode),
		constants.LogFieldOutcome: string(result.Outcome),
		constants.LogFieldReward:  result.Reward,
	})

	matchID := rec.MatchID
	time.AfterFunc(c.finishGrace, func() {
		if err := c.repo.DeleteMatch(matchID); err != nil {
			logging.Error("failed to remove finished match record", err, logging.Fields{
				constants.LogFieldMatchID: matchID,
			})
		}
		c.store.Release(matchID)
	})
}

// Cancel terminates a match early: the tick loop stops, all pending bot
// timers are invalidated synchronously, the cancellation flag is persisted,
// and after a short delay the record and store entry are removed.
// Cancelling an already-cancelled match is a no-op, and a match whose clock
// already reached FINISHED can no longer be cancelled: the reward edge owns
// it from there.
func (c *Controller) Cancel(rec *game.MatchRecord) {
	if rec == nil || rec.Cancelled {
		return
	}
	if c.timings.PhaseAt(rec.StartTimeMS, time.Now().UnixMilli()).Phase == game.PhaseFinished {
		return
	}
	c.forget(rec.MatchID)
	c.store.MarkCancelled(rec.MatchID)

	now := time.Now()
	rec.Cancelled = true
	rec.CancelledAt = &now
	if err := c.repo.UpdateMatch(rec); err != nil {
		logging.Error("failed to persist match cancellation", err, logging.Fields{
			constants.LogFieldMatchID: rec.MatchID,
		})
	}
	logging.Info("match cancelled", logging.Fields{
		constants.LogFieldMatchID: rec.MatchID,
	})

	matchID := rec.MatchID
	time.AfterFunc(c.cancelGrace, func() {
		if err := c.repo.DeleteMatch(matchID); err != nil {
			logging.Error("failed to remove cancelled match record", err, logging.Fields{
				constants.LogFieldMatchID: matchID,
			})
		}
		c.store.Release(matchID)
	})
}

func (c *Controller) forget(matchID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if stop, ok := c.watchers[matchID]; ok {
		close(stop)
		delete(c.watchers, matchID)
	}
}
