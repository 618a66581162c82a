package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
	"github.com/clashwarriors/clash-warriors-sub000/internal/logging"
	"github.com/clashwarriors/clash-warriors-sub000/internal/service"
)

type CreateMatchPayload struct {
	CardIDs  []string `json:"card_ids"`
	Mode     string   `json:"mode"`
	AdReward bool     `json:"ad_reward"`
}

// CreateMatch validates the submitted deck, creates a match anchored at the
// server clock and returns the initial phase snapshot.
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req CreateMatchPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	telegramID, username := sessionIdentity(c)

	mode := game.Mode(req.Mode)
	switch mode {
	case "", game.ModeRanked, game.ModeTutorial:
	default:
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	rec, err := service.CreateMatch(h.repo, h.ctrl, h.cards, service.CreateMatchParams{
		TelegramID: telegramID,
		Username:   username,
		CardIDs:    req.CardIDs,
		Mode:       mode,
		AdReward:   req.AdReward,
	})
	switch err {
	case nil:
	case service.ErrIncompleteDeck, service.ErrDuplicateCard:
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
		return
	case service.ErrUnknownCard:
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrUnknownCard})
		return
	default:
		logging.Error("failed to create match", err, logging.Fields{
			constants.LogFieldTelegramID: telegramID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCreateMatch})
		return
	}

	c.JSON(http.StatusCreated, h.matchView(rec))
}

// CancelMatch aborts the caller's running match and tells the client where
// to navigate next.
func (h *MatchHandler) CancelMatch(c *gin.Context) {
	matchID := c.Param("matchID")
	telegramID, _ := sessionIdentity(c)

	redirect, err := service.CancelMatch(h.repo, h.ctrl, matchID, telegramID)
	switch err {
	case nil:
	case service.ErrMatchNotFound:
		c.JSON(http.StatusNotFound, gin.H{
			constants.JSONKeyError:    constants.ErrMatchNotFound,
			constants.JSONKeyRedirect: constants.RedirectLobby,
		})
		return
	case service.ErrMatchNotOwned:
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
		return
	case service.ErrMatchOver:
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMatchAlreadyOver})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCancelMatch})
		return
	}

	c.JSON(http.StatusOK, gin.H{constants.JSONKeyRedirect: redirect})
}
