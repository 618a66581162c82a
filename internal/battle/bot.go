package battle

import (
	"math/rand"
	"time"

	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
	"github.com/clashwarriors/clash-warriors-sub000/internal/logging"
)

// Scheduler defers simulated opponent moves. Each round gets at most one
// card timer and one ability timer; the jittered delay keeps bot and human
// selections from resolving in a fixed order while staying inside the
// selection window.
type Scheduler struct {
	store       *Store
	minDelay    time.Duration
	maxDelay    time.Duration
	abilityPool []game.Ability
}

// NewScheduler builds a Scheduler over the store's ability catalog. The bot
// picks abilities only from the given kind.
func NewScheduler(store *Store, minDelay, maxDelay time.Duration, kind game.AbilityKind) *Scheduler {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	pool := make([]game.Ability, 0, len(store.abilities))
	for _, a := range store.abilities {
		if a.Kind == kind {
			pool = append(pool, a)
		}
	}
	return &Scheduler{store: store, minDelay: minDelay, maxDelay: maxDelay, abilityPool: pool}
}

// jitter draws the bot's thinking delay. A positive window caps the delay so
// a schedule call made partway into the selection phase still commits before
// the phase runs out.
func (b *Scheduler) jitter(window time.Duration) time.Duration {
	delay := b.minDelay
	if spread := b.maxDelay - b.minDelay; spread > 0 {
		delay += time.Duration(rand.Int63n(int64(spread)))
	}
	if window > 0 && delay > window {
		delay = window
	}
	return delay
}

// ScheduleBotMove schedules the bot's card selection for one round. A second
// call for the same (match, round) is a no-op. window bounds the delay to the
// time left in the selection phase (zero means unbounded). matchID, round and
// deck are captured by value at schedule time; the callback never closes over
// mutable outer state.
func (b *Scheduler) ScheduleBotMove(matchID string, round int, deck game.Deck, window time.Duration) {
	if round < 0 || round >= game.TotalRounds {
		return
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	ms := b.store.ensureLocked(matchID)
	if ms.cancelled || ms.finished {
		return
	}
	if _, exists := ms.botCardTimers[round]; exists {
		return
	}
	ms.botCardTimers[round] = time.AfterFunc(b.jitter(window), func() {
		b.playCard(matchID, round, deck)
	})
}

// ScheduleBotAbility schedules the bot's ability selection for one round,
// idempotent like ScheduleBotMove.
func (b *Scheduler) ScheduleBotAbility(matchID string, round int, window time.Duration) {
	if round < 0 || round >= game.TotalRounds {
		return
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	ms := b.store.ensureLocked(matchID)
	if ms.cancelled || ms.finished {
		return
	}
	if _, exists := ms.botAbilityTimers[round]; exists {
		return
	}
	ms.botAbilityTimers[round] = time.AfterFunc(b.jitter(window), func() {
		b.playAbility(matchID, round)
	})
}

// playCard runs on timer expiry. The draw happens over the not-yet-used
// subset of the deck, so a draw can never collide with the global used-card
// set; an exhausted subset means the bot sits the round out.
func (b *Scheduler) playCard(matchID string, round int, deck game.Deck) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	ms, ok := b.store.matches[matchID]
	if !ok || ms.cancelled || ms.finished {
		return
	}
	delete(ms.botCardTimers, round)

	avail := make([]game.Card, 0, len(deck))
	for _, c := range deck {
		if _, used := ms.usedGlobal[c.CardID]; !used {
			avail = append(avail, c)
		}
	}
	if len(avail) == 0 {
		logging.Warn("bot deck exhausted, skipping round", logging.Fields{
			constants.LogFieldMatchID: matchID,
			constants.LogFieldRound:   round,
			constants.LogFieldActor:   string(game.ActorBot),
		})
		return
	}
	card := avail[rand.Intn(len(avail))]
	if !b.store.commitSelectionLocked(matchID, round, game.ActorBot, card) {
		logging.Warn("bot card commit rejected", logging.Fields{
			constants.LogFieldMatchID: matchID,
			constants.LogFieldRound:   round,
			constants.LogFieldCardID:  card.CardID,
			constants.LogFieldActor:   string(game.ActorBot),
		})
	}
}

func (b *Scheduler) playAbility(matchID string, round int) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	ms, ok := b.store.matches[matchID]
	if !ok || ms.cancelled || ms.finished {
		return
	}
	delete(ms.botAbilityTimers, round)
	if len(b.abilityPool) == 0 {
		return
	}
	ability := b.abilityPool[rand.Intn(len(b.abilityPool))]
	b.store.commitAbilityLocked(matchID, round, game.ActorBot, ability.Key)
}
