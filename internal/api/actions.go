package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
	"github.com/clashwarriors/clash-warriors-sub000/internal/service"
)

type SelectCardPayload struct {
	Round  int    `json:"round"`
	CardID string `json:"card_id"`
}

type SelectAbilityPayload struct {
	Round      int    `json:"round"`
	AbilityKey string `json:"ability_key"`
}

type EndRoundPayload struct {
	Round int `json:"round"`
}

// loadOwnMatch fetches the match and enforces ownership. Returns nil after
// writing the error response when the match cannot be served.
func (h *MatchHandler) loadOwnMatch(c *gin.Context) *game.MatchRecord {
	rec, err := h.repo.GetMatchByID(c.Param("matchID"))
	if err != nil || rec == nil {
		c.JSON(http.StatusNotFound, gin.H{
			constants.JSONKeyError:    constants.ErrMatchNotFound,
			constants.JSONKeyRedirect: constants.RedirectLobby,
		})
		return nil
	}
	telegramID, _ := sessionIdentity(c)
	if rec.TelegramID != telegramID {
		c.JSON(http.StatusNotFound, gin.H{
			constants.JSONKeyError:    constants.ErrMatchNotFound,
			constants.JSONKeyRedirect: constants.RedirectLobby,
		})
		return nil
	}
	return rec
}

// SelectCard commits the player's card for the current round. A rejection
// (card already used, slot already filled) is a 200 with accepted=false so
// the client re-renders from the snapshot instead of surfacing an error.
func (h *MatchHandler) SelectCard(c *gin.Context) {
	var req SelectCardPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	rec := h.loadOwnMatch(c)
	if rec == nil {
		return
	}

	accepted, err := service.SelectCard(h.store, h.ctrl.Timings(), rec, req.Round, req.CardID)
	switch err {
	case nil:
	case service.ErrRoundIndexOutOfRange:
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrRoundIndexOutOfRange})
		return
	case service.ErrNotInSelectionPhase, service.ErrRoundMismatch:
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrNotInSelectionPhase})
		return
	case service.ErrCardNotInDeck:
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrCardNotInDeck})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	body := gin.H{
		"accepted": accepted,
		"match":    h.matchView(rec),
	}
	if !accepted {
		body[constants.JSONKeyMessage] = constants.ErrSelectionRejected
	}
	c.JSON(http.StatusOK, body)
}

// SelectAbility commits the player's ability for the current round. Late or
// repeated taps are acknowledged without effect.
func (h *MatchHandler) SelectAbility(c *gin.Context) {
	var req SelectAbilityPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	rec := h.loadOwnMatch(c)
	if rec == nil {
		return
	}

	err := service.SelectAbility(h.store, h.ctrl.Timings(), rec, req.Round, req.AbilityKey)
	switch err {
	case nil:
	case service.ErrRoundIndexOutOfRange:
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrRoundIndexOutOfRange})
		return
	case service.ErrUnknownAbility:
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrUnknownAbility})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	c.JSON(http.StatusOK, gin.H{"match": h.matchView(rec)})
}

// EndRound records the player's early-finish signal and reports whether the
// battle visuals may start before the clock boundary.
func (h *MatchHandler) EndRound(c *gin.Context) {
	var req EndRoundPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	rec := h.loadOwnMatch(c)
	if rec == nil {
		return
	}

	ready, err := service.EndRound(h.store, rec, req.Round)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrRoundIndexOutOfRange})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"battle_ready": ready,
		"match":        h.matchView(rec),
	})
}
