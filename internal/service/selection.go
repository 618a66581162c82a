package service

import (
	"errors"
	"time"

	"github.com/clashwarriors/clash-warriors-sub000/internal/battle"
	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
	"github.com/clashwarriors/clash-warriors-sub000/internal/engine"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
	"github.com/clashwarriors/clash-warriors-sub000/internal/logging"
)

var (
	ErrNotInSelectionPhase  = errors.New("match is not in a selection phase")
	ErrRoundIndexOutOfRange = errors.New("round index is out of range")
	ErrRoundMismatch        = errors.New("round index does not match the current round")
	ErrCardNotInDeck        = errors.New("card is not part of the player's deck")
	ErrUnknownAbility       = errors.New("ability key is not configured")
)

// SelectCard commits the player's card for the given round. Fatal conditions
// (wrong phase, wrong round, card outside the deck) come back as errors;
// a store rejection, such as a card already used this match, is reported as
// accepted == false so callers can treat it as a soft failure.
func SelectCard(store *battle.Store, t engine.Timings, rec *game.MatchRecord, round int, cardID string) (bool, error) {
	if round < 0 || round >= game.TotalRounds {
		return false, ErrRoundIndexOutOfRange
	}
	info := t.PhaseAt(rec.StartTimeMS, time.Now().UnixMilli())
	if info.Phase != game.PhaseSelection {
		return false, ErrNotInSelectionPhase
	}
	if info.Round != round {
		return false, ErrRoundMismatch
	}
	card, ok := rec.PlayerDeck.Find(cardID)
	if !ok {
		return false, ErrCardNotInDeck
	}

	accepted := store.CommitSelection(rec.MatchID, round, game.ActorUser, card)
	if !accepted {
		logging.Info("card selection rejected", logging.Fields{
			constants.LogFieldMatchID: rec.MatchID,
			constants.LogFieldRound:   round,
			constants.LogFieldCardID:  cardID,
			constants.LogFieldActor:   string(game.ActorUser),
		})
	}
	return accepted, nil
}

// SelectAbility commits the player's ability for the given round. Commits are
// idempotent voids: repeats and out-of-window calls change nothing, and the
// only fatal condition is an unconfigured ability key.
func SelectAbility(store *battle.Store, t engine.Timings, rec *game.MatchRecord, round int, abilityKey string) error {
	if round < 0 || round >= game.TotalRounds {
		return ErrRoundIndexOutOfRange
	}
	if _, ok := store.Ability(abilityKey); !ok {
		return ErrUnknownAbility
	}
	info := t.PhaseAt(rec.StartTimeMS, time.Now().UnixMilli())
	if info.Phase != game.PhaseSelection || info.Round != round {
		// Late or early ability taps are ignored, not failed.
		return nil
	}
	store.CommitAbility(rec.MatchID, round, game.ActorUser, abilityKey)
	return nil
}

// EndRound marks the player done with the given round and reports whether
// the round can resolve early, which requires both sides to have a card
// committed regardless of end flags.
func EndRound(store *battle.Store, rec *game.MatchRecord, round int) (bool, error) {
	if round < 0 || round >= game.TotalRounds {
		return false, ErrRoundIndexOutOfRange
	}
	ready := store.MarkRoundEnded(rec.MatchID, round, game.ActorUser)
	return ready, nil
}
