package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
)

// GetMatch returns the match with a server-computed phase snapshot. A match
// that was already cleaned up sends the client back to the lobby.
func (h *MatchHandler) GetMatch(c *gin.Context) {
	matchID := c.Param("matchID")
	if matchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchID})
		return
	}
	rec, err := h.repo.GetMatchByID(matchID)
	if err != nil || rec == nil {
		c.JSON(http.StatusNotFound, gin.H{
			constants.JSONKeyError:    constants.ErrMatchNotFound,
			constants.JSONKeyRedirect: constants.RedirectLobby,
		})
		return
	}
	telegramID, _ := sessionIdentity(c)
	if rec.TelegramID != telegramID {
		c.JSON(http.StatusNotFound, gin.H{
			constants.JSONKeyError:    constants.ErrMatchNotFound,
			constants.JSONKeyRedirect: constants.RedirectLobby,
		})
		return
	}
	c.JSON(http.StatusOK, h.matchView(rec))
}

// Cards returns the configured card catalog.
func (h *MatchHandler) Cards(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cards": h.cards})
}

// Abilities returns the configured ability catalog.
func (h *MatchHandler) Abilities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"abilities": h.abilities})
}

// Profile returns the caller's persisted profile. A player who never
// finished a match gets an empty profile rather than an error.
func (h *MatchHandler) Profile(c *gin.Context) {
	telegramID, username := sessionIdentity(c)
	user, err := h.repo.GetUserByTelegramID(telegramID)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusOK, gin.H{
			"telegram_id":  telegramID,
			"username":     username,
			"coins":        0,
			"games_played": 0,
			"wins":         0,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchProfile})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"telegram_id":  user.TelegramID,
		"username":     user.Username,
		"coins":        user.Coins,
		"games_played": user.GamesPlayed,
		"wins":         user.Wins,
	})
}

const leaderboardSize = 50

// Leaderboard returns the top players by coin balance.
func (h *MatchHandler) Leaderboard(c *gin.Context) {
	users, err := h.repo.GetTopPlayers(leaderboardSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchBoard})
		return
	}
	entries := make([]gin.H, 0, len(users))
	for i, u := range users {
		entries = append(entries, gin.H{
			"rank":        i + 1,
			"telegram_id": u.TelegramID,
			"username":    u.Username,
			"coins":       u.Coins,
			"wins":        u.Wins,
		})
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
