package constants

// Centralized constants for env keys, routes, JSON keys and error strings.
const (
	// Environment variable keys
	EnvConfigPath       = "CLASH_CONFIG"
	EnvDBPath           = "CLASH_DB"
	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	EnvAuthDisabled     = "CLASH_AUTH_DISABLED"

	// HTTP headers
	HeaderTelegramInitData = "X-Telegram-Init-Data"
)

// Routes used by the backend router
const (
	RouteAPIPrefix     = "/api"
	RouteCards         = "/cards"
	RouteAbilities     = "/abilities"
	RouteLeaderboard   = "/leaderboard"
	RouteProfile       = "/profile"
	RouteMatches       = "/matches"
	RouteMatchByID     = "/matches/:matchID"
	RouteMatchSelect   = "/matches/:matchID/select"
	RouteMatchAbility  = "/matches/:matchID/ability"
	RouteMatchEndRound = "/matches/:matchID/end-round"
	RouteMatchCancel   = "/matches/:matchID/cancel"
	RouteMatchStream   = "/matches/:matchID/ws"
	RouteVersion       = "/version"
)

// Common JSON response keys
const (
	JSONKeyError    = "error"
	JSONKeyMessage  = "message"
	JSONKeyRedirect = "redirect"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest       = "Invalid request"
	ErrInvalidMatchID       = "Invalid match ID"
	ErrMatchNotFound        = "Match not found"
	ErrMatchAlreadyOver     = "Match is already over"
	ErrSelectionRejected    = "Selection rejected"
	ErrNotInSelectionPhase  = "Not in the selection phase"
	ErrRoundIndexOutOfRange = "Round index out of range"
	ErrUnknownCard          = "Unknown card"
	ErrUnknownAbility       = "Unknown ability"
	ErrCardNotInDeck        = "Card is not part of the player deck"
	ErrFailedCreateMatch    = "Failed to create match"
	ErrFailedCancelMatch    = "Failed to cancel match"
	ErrFailedFetchProfile   = "Failed to fetch profile"
	ErrFailedFetchBoard     = "Failed to fetch leaderboard"

	ErrAuthRequired    = "Authentication required"
	ErrInvalidInitData = "Invalid Telegram init data"

	// Hint returned alongside a missing-match error so clients route back
	// to the tournament lobby instead of treating it as a hard failure.
	RedirectLobby = "lobby"
)

// Logging field names
const (
	LogFieldMatchID    = "match_id"
	LogFieldRound      = "round"
	LogFieldActor      = "actor"
	LogFieldCardID     = "card_id"
	LogFieldTelegramID = "telegram_id"
	LogFieldMode       = "mode"
	LogFieldOutcome    = "outcome"
	LogFieldReward     = "reward"
	LogFieldDeckKey    = "deck_key"
	LogFieldAddr       = "addr"
)
