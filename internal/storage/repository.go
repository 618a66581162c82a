package storage

import "github.com/clashwarriors/clash-warriors-sub000/internal/game"

// Repository is the durable store behind the battle core: match records
// keyed by matchID plus player profiles keyed by Telegram ID.
type Repository interface {
	CreateMatch(rec *game.MatchRecord) error
	GetMatchByID(matchID string) (*game.MatchRecord, error)
	// FindMatchesByPlayer returns the player's not-yet-cancelled matches,
	// newest first.
	FindMatchesByPlayer(telegramID int64) ([]game.MatchRecord, error)
	// ListActiveMatches returns every persisted match that has not been
	// cancelled; used to resume lifecycle watchers after a restart.
	ListActiveMatches() ([]game.MatchRecord, error)
	// ListMatches returns every persisted match, cancelled included; used
	// by the stale-row sweeper.
	ListMatches() ([]game.MatchRecord, error)
	UpdateMatch(rec *game.MatchRecord) error
	DeleteMatch(matchID string) error

	UpsertUser(telegramID int64, username string) error
	GetUserByTelegramID(telegramID int64) (*game.User, error)
	// CreditMatchResult adds the reward to the player's coin balance and
	// bumps the aggregate stats in a single transaction.
	CreditMatchResult(telegramID int64, reward int64, won bool) error
	// Leaderboard
	GetTopPlayers(limit int) ([]game.User, error)
}
