package battle

import (
	"sync"
	"time"

	"github.com/clashwarriors/clash-warriors-sub000/internal/engine"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
)

// roundState is the ephemeral per-round record. Cards and abilities are set
// at most once per actor; used tracks the card IDs committed in this round.
type roundState struct {
	userCard    *game.Card
	botCard     *game.Card
	userAbility string
	botAbility  string
	userEnded   bool
	botEnded    bool
	used        map[string]struct{}
}

// matchState owns all round-local and match-global battle state for one
// matchID, including the handles of pending bot timers so cancellation can
// invalidate them synchronously.
type matchState struct {
	rounds           [game.TotalRounds]*roundState
	usedGlobal       map[string]struct{}
	totals           engine.Totals
	botCardTimers    map[int]*time.Timer
	botAbilityTimers map[int]*time.Timer
	cancelled        bool
	finished         bool
}

// Store is the process-local round store keyed by matchID. All mutation
// entry points run as synchronous critical sections under one mutex; nothing
// suspends mid-mutation, so logically concurrent actors (user input, bot
// timers, lifecycle ticks) always observe a consistent state.
type Store struct {
	mu        sync.Mutex
	matches   map[string]*matchState
	abilities map[string]game.Ability
}

// NewStore creates a Store with the given ability catalog. Ability synergy
// lookups resolve against this catalog.
func NewStore(catalog []game.Ability) *Store {
	byKey := make(map[string]game.Ability, len(catalog))
	for _, a := range catalog {
		byKey[a.Key] = a
	}
	return &Store{
		matches:   make(map[string]*matchState),
		abilities: byKey,
	}
}

// Ability returns the catalog entry for a key.
func (s *Store) Ability(key string) (game.Ability, bool) {
	a, ok := s.abilities[key]
	return a, ok
}

func (s *Store) ensureLocked(matchID string) *matchState {
	ms, ok := s.matches[matchID]
	if !ok {
		ms = &matchState{
			usedGlobal:       make(map[string]struct{}),
			botCardTimers:    make(map[int]*time.Timer),
			botAbilityTimers: make(map[int]*time.Timer),
		}
		s.matches[matchID] = ms
	}
	return ms
}

// rounds are created lazily the first time any actor touches them.
func (ms *matchState) roundLocked(idx int) *roundState {
	r := ms.rounds[idx]
	if r == nil {
		r = &roundState{used: make(map[string]struct{})}
		ms.rounds[idx] = r
	}
	return r
}

// CommitSelection validates and commits a card selection for one actor.
// It fails without mutation when the card was already used anywhere in the
// match, when the actor already committed a card this round, or when the
// match is no longer accepting commits.
func (s *Store) CommitSelection(matchID string, round int, actor game.Actor, card game.Card) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitSelectionLocked(matchID, round, actor, card)
}

func (s *Store) commitSelectionLocked(matchID string, round int, actor game.Actor, card game.Card) bool {
	if round < 0 || round >= game.TotalRounds {
		return false
	}
	ms := s.ensureLocked(matchID)
	if ms.cancelled || ms.finished {
		return false
	}
	if _, used := ms.usedGlobal[card.CardID]; used {
		return false
	}
	r := ms.roundLocked(round)
	if actor == game.ActorUser && r.userCard != nil {
		return false
	}
	if actor == game.ActorBot && r.botCard != nil {
		return false
	}

	c := card
	if actor == game.ActorUser {
		r.userCard = &c
		ms.totals.User += c.Synergy()
	} else {
		r.botCard = &c
		ms.totals.Bot += c.Synergy()
	}
	r.used[c.CardID] = struct{}{}
	ms.usedGlobal[c.CardID] = struct{}{}
	return true
}

// CommitAbility commits an ability for one actor in one round. Idempotent:
// once an actor has an ability for the round, later calls are no-ops.
// Unknown keys are ignored.
func (s *Store) CommitAbility(matchID string, round int, actor game.Actor, abilityKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitAbilityLocked(matchID, round, actor, abilityKey)
}

func (s *Store) commitAbilityLocked(matchID string, round int, actor game.Actor, abilityKey string) {
	if round < 0 || round >= game.TotalRounds {
		return
	}
	ability, ok := s.abilities[abilityKey]
	if !ok {
		return
	}
	ms := s.ensureLocked(matchID)
	if ms.cancelled || ms.finished {
		return
	}
	r := ms.roundLocked(round)
	if actor == game.ActorUser {
		if r.userAbility != "" {
			return
		}
		r.userAbility = ability.Key
		ms.totals.User += ability.Synergy()
	} else {
		if r.botAbility != "" {
			return
		}
		r.botAbility = ability.Key
		ms.totals.Bot += ability.Synergy()
	}
}

// MarkRoundEnded records an actor's explicit "ready to battle" signal and
// reports whether the battle visuals may start early. The signal to advance
// is card presence on both sides, not both end flags; the flags are tracked
// but do not gate the transition. The authoritative phase stays clock-driven
// either way.
func (s *Store) MarkRoundEnded(matchID string, round int, actor game.Actor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if round < 0 || round >= game.TotalRounds {
		return false
	}
	ms := s.ensureLocked(matchID)
	if ms.cancelled || ms.finished {
		return false
	}
	r := ms.roundLocked(round)
	if actor == game.ActorUser {
		r.userEnded = true
	} else {
		r.botEnded = true
	}
	return r.userCard != nil && r.botCard != nil
}

// RoundOutcome compares the committed cards of one round.
func (s *Store) RoundOutcome(matchID string, round int) engine.RoundOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if round < 0 || round >= game.TotalRounds {
		return engine.OutcomeNone
	}
	ms, ok := s.matches[matchID]
	if !ok {
		return engine.OutcomeNone
	}
	r := ms.rounds[round]
	if r == nil {
		return engine.OutcomeNone
	}
	return engine.CompareCards(r.userCard, r.botCard)
}

// Totals returns the cumulative synergy per side.
func (s *Store) Totals(matchID string) engine.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ms, ok := s.matches[matchID]; ok {
		return ms.totals
	}
	return engine.Totals{}
}

// UsedCardCount returns the size of the match-global used-card set.
func (s *Store) UsedCardCount(matchID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ms, ok := s.matches[matchID]; ok {
		return len(ms.usedGlobal)
	}
	return 0
}

// MarkFinished flips the match into its terminal finished state and reports
// whether this call performed the transition. The first caller (and only the
// first) runs the FINISHED-edge effects; a cancelled match never finishes.
func (s *Store) MarkFinished(matchID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.ensureLocked(matchID)
	if ms.cancelled || ms.finished {
		return false
	}
	ms.finished = true
	return true
}

// MarkCancelled flips the match into its terminal cancelled state and stops
// every pending bot timer synchronously, so a timer scheduled earlier can
// never write into the store after this call returns. A match that already
// reached its finished state stays finished; the two terminal states are
// mutually exclusive.
func (s *Store) MarkCancelled(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.matches[matchID]
	if !ok || ms.finished {
		return
	}
	ms.cancelled = true
	ms.stopTimersLocked()
}

func (ms *matchState) stopTimersLocked() {
	for r, t := range ms.botCardTimers {
		t.Stop()
		delete(ms.botCardTimers, r)
	}
	for r, t := range ms.botAbilityTimers {
		t.Stop()
		delete(ms.botAbilityTimers, r)
	}
}

// Release tears the match entry down: timers stopped, state dropped. Any
// late timer callback holding this matchID finds no entry and no-ops.
func (s *Store) Release(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ms, ok := s.matches[matchID]; ok {
		ms.stopTimersLocked()
		delete(s.matches, matchID)
	}
}

// RoundView is a read-only snapshot of one round for API responses.
type RoundView struct {
	UserCard    *game.Card          `json:"user_card,omitempty"`
	BotCard     *game.Card          `json:"bot_card,omitempty"`
	UserAbility string              `json:"user_ability,omitempty"`
	BotAbility  string              `json:"bot_ability,omitempty"`
	UserEnded   bool                `json:"user_ended"`
	BotEnded    bool                `json:"bot_ended"`
	Outcome     engine.RoundOutcome `json:"outcome,omitempty"`
}

// Snapshot copies the current round records and totals for one match.
func (s *Store) Snapshot(matchID string) ([game.TotalRounds]RoundView, engine.Totals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var views [game.TotalRounds]RoundView
	ms, ok := s.matches[matchID]
	if !ok {
		return views, engine.Totals{}
	}
	for i, r := range ms.rounds {
		if r == nil {
			continue
		}
		views[i] = RoundView{
			UserCard:    cloneCard(r.userCard),
			BotCard:     cloneCard(r.botCard),
			UserAbility: r.userAbility,
			BotAbility:  r.botAbility,
			UserEnded:   r.userEnded,
			BotEnded:    r.botEnded,
			Outcome:     engine.CompareCards(r.userCard, r.botCard),
		}
	}
	return views, ms.totals
}

func cloneCard(c *game.Card) *game.Card {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
