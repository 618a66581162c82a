package engine

import "github.com/clashwarriors/clash-warriors-sub000/internal/game"

// RoundOutcome is the result of comparing two committed cards, or of the
// match-final synergy comparison.
type RoundOutcome string

const (
	// OutcomeNone means at least one side has no committed card yet.
	OutcomeNone RoundOutcome = ""
	OutcomeUser RoundOutcome = "user"
	OutcomeBot  RoundOutcome = "bot"
	OutcomeTie  RoundOutcome = "tie"
)

// CompareCards resolves one round for animation direction: strictly greater
// card synergy wins, equal is a tie. Ability synergy is deliberately absent
// here; it feeds only the cumulative totals.
func CompareCards(userCard, botCard *game.Card) RoundOutcome {
	if userCard == nil || botCard == nil {
		return OutcomeNone
	}
	us, bs := userCard.Synergy(), botCard.Synergy()
	switch {
	case us > bs:
		return OutcomeUser
	case bs > us:
		return OutcomeBot
	default:
		return OutcomeTie
	}
}

// Totals is the running cumulative synergy per side: committed card synergy
// plus committed ability weight-sums.
type Totals struct {
	User int `json:"user"`
	Bot  int `json:"bot"`
}

// Rewards holds the configurable coin reward tiers.
type Rewards struct {
	Win       int64 `json:"win"`
	WinWithAd int64 `json:"win_with_ad"`
	Tie       int64 `json:"tie"`
}

// DefaultRewards returns the production reward tiers.
func DefaultRewards() Rewards {
	return Rewards{Win: 10000, WinWithAd: 30000, Tie: 5000}
}

// FinalResult is the match-final verdict produced exactly once on the
// FINISHED edge.
type FinalResult struct {
	Outcome     RoundOutcome `json:"outcome"`
	UserSynergy int          `json:"user_synergy"`
	BotSynergy  int          `json:"bot_synergy"`
	Reward      int64        `json:"reward"`
}

// Finalize compares cumulative totals and assigns the reward tier. A bot win
// pays nothing; ties pay the tie tier; user wins pay the standard or the
// ad-eligible tier.
func Finalize(totals Totals, rw Rewards, adEligible bool) FinalResult {
	res := FinalResult{UserSynergy: totals.User, BotSynergy: totals.Bot}
	switch {
	case totals.User > totals.Bot:
		res.Outcome = OutcomeUser
		res.Reward = rw.Win
		if adEligible {
			res.Reward = rw.WinWithAd
		}
	case totals.Bot > totals.User:
		res.Outcome = OutcomeBot
	default:
		res.Outcome = OutcomeTie
		res.Reward = rw.Tie
	}
	return res
}
