package api

import (
	"github.com/clashwarriors/clash-warriors-sub000/internal/battle"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
	"github.com/clashwarriors/clash-warriors-sub000/internal/storage"
)

// MatchHandler groups all match-related HTTP handlers.
type MatchHandler struct {
	repo      storage.Repository
	store     *battle.Store
	ctrl      *battle.Controller
	cards     []game.Card
	abilities []game.Ability
}

// NewMatchHandler creates a MatchHandler over the repository, the in-memory
// round store and the lifecycle controller, plus the configured catalogs.
func NewMatchHandler(repo storage.Repository, store *battle.Store, ctrl *battle.Controller, cards []game.Card, abilities []game.Ability) *MatchHandler {
	return &MatchHandler{
		repo:      repo,
		store:     store,
		ctrl:      ctrl,
		cards:     cards,
		abilities: abilities,
	}
}
