package game

import (
	"time"

	"gorm.io/gorm"
)

// Actor identifies which side of a match performed an action.
type Actor string

const (
	ActorUser Actor = "user"
	ActorBot  Actor = "bot"
)

// Phase is the clock-derived stage of a match. COOLDOWN, SELECTION and
// BATTLE are recomputed every tick from the immutable start time;
// FINISHED and CANCELLED are terminal.
type Phase string

const (
	PhaseCooldown  Phase = "cooldown"
	PhaseSelection Phase = "selection"
	PhaseBattle    Phase = "battle"
	PhaseFinished  Phase = "finished"
	PhaseCancelled Phase = "cancelled"
)

// TotalRounds is the fixed number of selection+battle cycles per match.
const TotalRounds = 5

// Mode selects reward tier and opponent-deck sourcing. The phase, selection
// and evaluation core is shared between both modes.
type Mode string

const (
	ModeRanked   Mode = "ranked"
	ModeTutorial Mode = "tutorial"
)

// MatchRecord is the durable match row. StartTimeMS marks when the cooldown
// of round 0 began and is immutable once set; every phase computation derives
// from it. Decks are serialized JSON columns since cards are config
// snapshots, not relational data.
type MatchRecord struct {
	gorm.Model
	MatchID      string `json:"match_id" gorm:"uniqueIndex;size:36"`
	TelegramID   int64  `json:"telegram_id" gorm:"index"`
	Mode         Mode   `json:"mode"`
	StartTimeMS  int64  `json:"start_time_ms"`
	PlayerDeck   Deck   `json:"player_deck" gorm:"serializer:json"`
	OpponentDeck Deck   `json:"opponent_deck" gorm:"serializer:json"`
	// Cancelled is set at most once and is terminal.
	Cancelled   bool       `json:"cancelled"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	// AdRewardEligible selects the boosted win reward tier used by the
	// ad-reward battle variant.
	AdRewardEligible bool `json:"ad_reward_eligible"`
	// RewardPaid guards the FINISHED-edge coin credit so re-entering a
	// finished match never pays twice.
	RewardPaid bool `json:"-"`
}

func (MatchRecord) TableName() string { return "match_records" }

// User stores the player profile and aggregate stats. Coins is the balance
// the battle core credits exactly once per finished match.
type User struct {
	gorm.Model
	TelegramID  int64  `json:"telegram_id" gorm:"uniqueIndex"`
	Username    string `json:"username"`
	Coins       int64  `json:"coins"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
}

func (User) TableName() string { return "player_profiles" }
