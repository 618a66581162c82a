package engine

import (
	"testing"

	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
)

func card(id string, attack int) game.Card {
	return game.Card{CardID: id, Stats: game.Stats{Attack: attack}}
}

func TestCompareCards(t *testing.T) {
	strong := card("c1", 100)
	weak := card("c2", 50)
	equal := card("c3", 100)

	if got := CompareCards(nil, &weak); got != OutcomeNone {
		t.Fatalf("expected no outcome with missing user card, got %q", got)
	}
	if got := CompareCards(&strong, nil); got != OutcomeNone {
		t.Fatalf("expected no outcome with missing bot card, got %q", got)
	}
	if got := CompareCards(&strong, &weak); got != OutcomeUser {
		t.Fatalf("expected user outcome, got %q", got)
	}
	if got := CompareCards(&weak, &strong); got != OutcomeBot {
		t.Fatalf("expected bot outcome, got %q", got)
	}
	if got := CompareCards(&strong, &equal); got != OutcomeTie {
		t.Fatalf("expected tie, got %q", got)
	}
}

func TestFinalize_RewardTiers(t *testing.T) {
	rw := DefaultRewards()

	win := Finalize(Totals{User: 100, Bot: 50}, rw, false)
	if win.Outcome != OutcomeUser || win.Reward != 10000 {
		t.Fatalf("expected user win with 10000, got %q / %d", win.Outcome, win.Reward)
	}

	adWin := Finalize(Totals{User: 100, Bot: 50}, rw, true)
	if adWin.Reward != 30000 {
		t.Fatalf("expected ad-eligible win reward 30000, got %d", adWin.Reward)
	}

	loss := Finalize(Totals{User: 10, Bot: 50}, rw, true)
	if loss.Outcome != OutcomeBot || loss.Reward != 0 {
		t.Fatalf("expected bot win with no reward, got %q / %d", loss.Outcome, loss.Reward)
	}

	tie := Finalize(Totals{User: 50, Bot: 50}, rw, false)
	if tie.Outcome != OutcomeTie || tie.Reward != 5000 {
		t.Fatalf("expected tie with 5000, got %q / %d", tie.Outcome, tie.Reward)
	}
}

func TestStatsSum(t *testing.T) {
	s := game.Stats{Attack: 1, Armor: 2, Agility: 3, Intelligence: 4, Powers: 5, Vitality: 6}
	if s.Sum() != 21 {
		t.Fatalf("expected 21, got %d", s.Sum())
	}
	a := game.Ability{Key: "rage", Kind: game.AbilityAttack, Weights: game.Stats{Attack: 7, Powers: 3}}
	if a.Synergy() != 10 {
		t.Fatalf("expected ability synergy 10, got %d", a.Synergy())
	}
}
