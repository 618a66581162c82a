package battle

import (
	"testing"

	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
)

func testCatalog() []game.Ability {
	return []game.Ability{
		{Key: "fury", Kind: game.AbilityAttack, Weights: game.Stats{Attack: 6, Powers: 4}},
		{Key: "bulwark", Kind: game.AbilityDefense, Weights: game.Stats{Armor: 5, Vitality: 2}},
	}
}

func testCard(id string, synergy int) game.Card {
	return game.Card{CardID: id, Stats: game.Stats{Attack: synergy}}
}

func testDeck(prefix string, synergy int) game.Deck {
	d := make(game.Deck, 0, game.DeckSize)
	for i := 0; i < game.DeckSize; i++ {
		d = append(d, testCard(prefix+string(rune('0'+i)), synergy))
	}
	return d
}

func TestCommitSelection_GlobalCardUniqueness(t *testing.T) {
	s := NewStore(testCatalog())
	c := testCard("c1", 100)

	if !s.CommitSelection("m1", 0, game.ActorUser, c) {
		t.Fatal("first commit should succeed")
	}
	// Same card in a different round of the same match must fail.
	if s.CommitSelection("m1", 1, game.ActorUser, c) {
		t.Fatal("second commit of the same card must fail")
	}
	// Same card by the other actor must fail too.
	if s.CommitSelection("m1", 2, game.ActorBot, c) {
		t.Fatal("commit of a used card by the other actor must fail")
	}
	if got := s.UsedCardCount("m1"); got != 1 {
		t.Fatalf("expected 1 used card, got %d", got)
	}
	// A different match is an independent namespace.
	if !s.CommitSelection("m2", 0, game.ActorUser, c) {
		t.Fatal("commit in another match should succeed")
	}
}

func TestCommitSelection_OneCardPerActorPerRound(t *testing.T) {
	s := NewStore(testCatalog())
	if !s.CommitSelection("m1", 0, game.ActorUser, testCard("a", 10)) {
		t.Fatal("first commit should succeed")
	}
	if s.CommitSelection("m1", 0, game.ActorUser, testCard("b", 10)) {
		t.Fatal("double-select within a round must fail")
	}
	// The bot still gets its own slot in the round.
	if !s.CommitSelection("m1", 0, game.ActorBot, testCard("b", 10)) {
		t.Fatal("bot commit should succeed")
	}
}

func TestCommitSelection_RoundIndexBounds(t *testing.T) {
	s := NewStore(testCatalog())
	if s.CommitSelection("m1", -1, game.ActorUser, testCard("a", 10)) {
		t.Fatal("negative round must fail")
	}
	if s.CommitSelection("m1", game.TotalRounds, game.ActorUser, testCard("a", 10)) {
		t.Fatal("round past the last must fail")
	}
}

func TestCommitAbility_IdempotentTotals(t *testing.T) {
	s := NewStore(testCatalog())
	s.CommitAbility("m1", 0, game.ActorUser, "fury")
	s.CommitAbility("m1", 0, game.ActorUser, "fury")
	s.CommitAbility("m1", 0, game.ActorUser, "bulwark") // slot already taken
	if got := s.Totals("m1").User; got != 10 {
		t.Fatalf("expected ability weight-sum 10 counted once, got %d", got)
	}
	// Unknown keys are ignored without mutation.
	s.CommitAbility("m1", 1, game.ActorBot, "no-such-ability")
	if got := s.Totals("m1").Bot; got != 0 {
		t.Fatalf("expected no bot synergy, got %d", got)
	}
}

func TestTotals_Aggregation(t *testing.T) {
	s := NewStore(testCatalog())
	s.CommitSelection("m1", 0, game.ActorUser, testCard("u0", 100))
	s.CommitSelection("m1", 1, game.ActorUser, testCard("u1", 40))
	s.CommitAbility("m1", 0, game.ActorUser, "fury") // +10
	s.CommitSelection("m1", 0, game.ActorBot, testCard("b0", 50))
	s.CommitAbility("m1", 1, game.ActorBot, "bulwark") // +7

	totals := s.Totals("m1")
	if totals.User != 150 {
		t.Fatalf("expected user total 150, got %d", totals.User)
	}
	if totals.Bot != 57 {
		t.Fatalf("expected bot total 57, got %d", totals.Bot)
	}
}

func TestMarkRoundEnded_GatedByCardPresence(t *testing.T) {
	s := NewStore(testCatalog())
	// End flags alone never signal readiness; only card presence does.
	if s.MarkRoundEnded("m1", 0, game.ActorUser) {
		t.Fatal("no cards committed: must not be ready")
	}
	if s.MarkRoundEnded("m1", 0, game.ActorBot) {
		t.Fatal("both end flags but no cards: must not be ready")
	}
	s.CommitSelection("m1", 0, game.ActorUser, testCard("a", 10))
	if s.MarkRoundEnded("m1", 0, game.ActorUser) {
		t.Fatal("one card committed: must not be ready")
	}
	s.CommitSelection("m1", 0, game.ActorBot, testCard("b", 10))
	if !s.MarkRoundEnded("m1", 0, game.ActorUser) {
		t.Fatal("both cards committed: must signal ready")
	}
}

func TestMarkFinished_EdgeTriggeredOnce(t *testing.T) {
	s := NewStore(testCatalog())
	if !s.MarkFinished("m1") {
		t.Fatal("first finish must perform the transition")
	}
	if s.MarkFinished("m1") {
		t.Fatal("second finish must be a no-op")
	}
	// Finished matches accept no further commits.
	if s.CommitSelection("m1", 0, game.ActorUser, testCard("a", 10)) {
		t.Fatal("commit after finish must fail")
	}
}

func TestMarkCancelled_Terminal(t *testing.T) {
	s := NewStore(testCatalog())
	s.CommitSelection("m1", 0, game.ActorUser, testCard("a", 10))
	s.MarkCancelled("m1")
	if s.CommitSelection("m1", 1, game.ActorUser, testCard("b", 10)) {
		t.Fatal("commit after cancellation must fail")
	}
	if s.MarkFinished("m1") {
		t.Fatal("a cancelled match never finishes")
	}
}

func TestMarkCancelled_NoopAfterFinish(t *testing.T) {
	s := NewStore(testCatalog())
	if !s.MarkFinished("m1") {
		t.Fatal("first finish must perform the transition")
	}
	s.MarkCancelled("m1")

	s.mu.Lock()
	ms := s.matches["m1"]
	s.mu.Unlock()
	if ms.cancelled {
		t.Fatal("a finished match must not flip to cancelled")
	}
	if !ms.finished {
		t.Fatal("finished flag must survive a late cancel")
	}
}

func TestSnapshot(t *testing.T) {
	s := NewStore(testCatalog())
	s.CommitSelection("m1", 0, game.ActorUser, testCard("u", 100))
	s.CommitSelection("m1", 0, game.ActorBot, testCard("b", 50))
	s.CommitAbility("m1", 0, game.ActorUser, "fury")

	views, totals := s.Snapshot("m1")
	r := views[0]
	if r.UserCard == nil || r.UserCard.CardID != "u" {
		t.Fatal("snapshot missing user card")
	}
	if r.Outcome != "user" {
		t.Fatalf("expected user round outcome, got %q", r.Outcome)
	}
	if r.UserAbility != "fury" {
		t.Fatalf("expected fury ability, got %q", r.UserAbility)
	}
	if totals.User != 110 || totals.Bot != 50 {
		t.Fatalf("unexpected totals %+v", totals)
	}
	// Snapshot is a copy: mutating it must not leak into the store.
	r.UserCard.CardID = "mutated"
	views2, _ := s.Snapshot("m1")
	if views2[0].UserCard.CardID != "u" {
		t.Fatal("snapshot must not alias store state")
	}
}

func TestRelease_DropsState(t *testing.T) {
	s := NewStore(testCatalog())
	s.CommitSelection("m1", 0, game.ActorUser, testCard("a", 10))
	s.Release("m1")
	if got := s.UsedCardCount("m1"); got != 0 {
		t.Fatalf("expected released match to report 0 used cards, got %d", got)
	}
}
