package service

import (
	"time"

	"github.com/clashwarriors/clash-warriors-sub000/internal/battle"
	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
	"github.com/clashwarriors/clash-warriors-sub000/internal/engine"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
	"github.com/clashwarriors/clash-warriors-sub000/internal/logging"
)

// CancelMatch aborts a running match on behalf of its owner. Cancelling an
// already cancelled match is a no-op, a match whose clock has reached
// FINISHED can no longer be cancelled, and the caller is told where to send
// the player afterwards.
func CancelMatch(repo MatchRepo, ctrl *battle.Controller, matchID string, telegramID int64) (string, error) {
	rec, err := repo.GetMatchByID(matchID)
	if err != nil || rec == nil {
		return "", ErrMatchNotFound
	}
	if rec.TelegramID != telegramID {
		return "", ErrMatchNotOwned
	}
	info := ctrl.Timings().PhaseAt(rec.StartTimeMS, time.Now().UnixMilli())
	if info.Phase == game.PhaseFinished {
		return "", ErrMatchOver
	}
	ctrl.Cancel(rec)
	return constants.RedirectLobby, nil
}

// ListRepo is the read surface the startup resume and the sweeper need.
type ListRepo interface {
	ListActiveMatches() ([]game.MatchRecord, error)
	ListMatches() ([]game.MatchRecord, error)
	DeleteMatch(matchID string) error
}

// ResumeActiveMatches re-attaches lifecycle watchers to matches that were
// running when the process stopped. Matches whose clock already ran out are
// left for the sweeper rather than re-finalized here, except that unpaid
// finished matches still get a watcher so the reward edge fires.
func ResumeActiveMatches(repo ListRepo, ctrl *battle.Controller) error {
	recs, err := repo.ListActiveMatches()
	if err != nil {
		return err
	}
	nowMS := time.Now().UnixMilli()
	resumed := 0
	for i := range recs {
		rec := recs[i]
		info := ctrl.Timings().PhaseAt(rec.StartTimeMS, nowMS)
		if info.Phase == game.PhaseFinished && rec.RewardPaid {
			continue
		}
		ctrl.Watch(&rec)
		resumed++
	}
	if resumed > 0 {
		logging.Info("resumed active matches", logging.Fields{"count": resumed})
	}
	return nil
}

// SweepStaleMatches deletes match records that are past their end plus the
// grace window. It exists for rows the in-process cleanup never reached,
// typically after a crash or restart.
func SweepStaleMatches(repo ListRepo, t engine.Timings, grace time.Duration) {
	recs, err := repo.ListMatches()
	if err != nil {
		logging.Error("stale match sweep failed to list matches", err, nil)
		return
	}
	nowMS := time.Now().UnixMilli()
	for i := range recs {
		rec := recs[i]
		endMS := rec.StartTimeMS + t.MatchTotal().Milliseconds()
		if nowMS < endMS+grace.Milliseconds() {
			continue
		}
		if !rec.RewardPaid && !rec.Cancelled && rec.Mode == game.ModeRanked {
			// Reward edge never fired for this row; leave it to a watcher.
			continue
		}
		if err := repo.DeleteMatch(rec.MatchID); err != nil {
			logging.Error("failed to delete stale match", err, logging.Fields{
				constants.LogFieldMatchID: rec.MatchID,
			})
			continue
		}
		logging.Info("stale match removed", logging.Fields{
			constants.LogFieldMatchID: rec.MatchID,
		})
	}
}

// StartSweeper runs SweepStaleMatches on a fixed interval until stop is
// closed.
func StartSweeper(repo ListRepo, t engine.Timings, grace, every time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				SweepStaleMatches(repo, t, grace)
			case <-stop:
				return
			}
		}
	}()
}
