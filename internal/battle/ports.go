package battle

import "github.com/clashwarriors/clash-warriors-sub000/internal/game"

// Repo is the narrow persistence surface the lifecycle controller needs.
// The storage package's Repository satisfies it.
type Repo interface {
	UpdateMatch(rec *game.MatchRecord) error
	DeleteMatch(matchID string) error
	// CreditMatchResult applies the finished-match reward and stat bump to
	// the player profile in one write.
	CreditMatchResult(telegramID int64, reward int64, won bool) error
}

// Feedback is the fire-and-forget UI feedback collaborator (sounds,
// haptics). The core never consumes a return value from it.
type Feedback interface {
	PlaySound(effect string)
	HapticPulse(kind string)
}

// NopFeedback is used when no UI layer is attached (tests, headless runs).
type NopFeedback struct{}

func (NopFeedback) PlaySound(string)   {}
func (NopFeedback) HapticPulse(string) {}

// Sound effect keys consumed by the UI collaborator.
const (
	SoundRoundStart  = "round_start"
	SoundBattleClash = "battle_clash"
	SoundVictory     = "victory"
	SoundDefeat      = "defeat"
)

// Haptic kinds, matching the Telegram WebApp haptic API split between
// impact and notification pulses.
const (
	HapticImpact       = "impact"
	HapticNotification = "notification"
)
