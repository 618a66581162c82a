package service

import (
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/clashwarriors/clash-warriors-sub000/internal/battle"
	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
	"github.com/clashwarriors/clash-warriors-sub000/internal/dedupe"
	"github.com/clashwarriors/clash-warriors-sub000/internal/engine"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
	"github.com/clashwarriors/clash-warriors-sub000/internal/keys"
	"github.com/clashwarriors/clash-warriors-sub000/internal/logging"
)

var (
	ErrIncompleteDeck = errors.New("deck must contain exactly 10 cards")
	ErrUnknownCard    = errors.New("card is not in the configured card list")
	ErrDuplicateCard  = errors.New("deck contains a duplicated card")
	ErrMatchNotFound  = errors.New("match not found")
	ErrMatchNotOwned  = errors.New("match belongs to another player")
	ErrMatchOver      = errors.New("match is already over")
)

// MatchRepo is the persistence surface match use-cases need.
type MatchRepo interface {
	CreateMatch(rec *game.MatchRecord) error
	GetMatchByID(matchID string) (*game.MatchRecord, error)
	FindMatchesByPlayer(telegramID int64) ([]game.MatchRecord, error)
	UpdateMatch(rec *game.MatchRecord) error
	UpsertUser(telegramID int64, username string) error
}

// CreateMatchParams carries a validated-enough create request into the
// use-case. CardIDs is the player's chosen deck; AdReward marks the match for
// the boosted win payout.
type CreateMatchParams struct {
	TelegramID int64
	Username   string
	CardIDs    []string
	Mode       game.Mode
	AdReward   bool
}

// CreateMatch validates the player's deck against the card catalog, persists
// a new match record anchored at the current wall clock, and hands it to the
// lifecycle controller. Concurrent create requests from the same player are
// collapsed via singleflight, and a player who already has a running match
// gets that match back instead of a second one.
func CreateMatch(repo MatchRepo, ctrl *battle.Controller, catalog []game.Card, p CreateMatchParams) (*game.MatchRecord, error) {
	deck, err := buildDeck(catalog, p.CardIDs)
	if err != nil {
		return nil, err
	}
	if p.Mode == "" {
		p.Mode = game.ModeRanked
	}

	key := strconv.FormatInt(p.TelegramID, 10)
	v, err, _ := dedupe.MatchGroup.Do(key, func() (interface{}, error) {
		if existing := findRunningMatch(repo, ctrl.Timings(), p.TelegramID); existing != nil {
			logging.Info("returning already running match", logging.Fields{
				constants.LogFieldMatchID:    existing.MatchID,
				constants.LogFieldTelegramID: p.TelegramID,
			})
			return existing, nil
		}

		if err := repo.UpsertUser(p.TelegramID, p.Username); err != nil {
			return nil, err
		}

		rec := &game.MatchRecord{
			MatchID:          uuid.NewString(),
			TelegramID:       p.TelegramID,
			Mode:             p.Mode,
			StartTimeMS:      time.Now().UnixMilli(),
			PlayerDeck:       deck,
			OpponentDeck:     opponentDeck(catalog, deck, p.Mode),
			AdRewardEligible: p.AdReward,
		}
		if err := repo.CreateMatch(rec); err != nil {
			return nil, err
		}
		logging.Info("match created", logging.Fields{
			constants.LogFieldMatchID:    rec.MatchID,
			constants.LogFieldTelegramID: p.TelegramID,
			constants.LogFieldDeckKey:    keys.DeckKeyFromCardIDs(p.CardIDs),
			constants.LogFieldMode:       string(rec.Mode),
		})
		ctrl.Watch(rec)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*game.MatchRecord), nil
}

// buildDeck resolves card IDs against the catalog, enforcing deck size and
// uniqueness. Any unknown ID is fatal rather than silently skipped.
func buildDeck(catalog []game.Card, cardIDs []string) (game.Deck, error) {
	if len(cardIDs) != game.DeckSize {
		return nil, ErrIncompleteDeck
	}
	byID := make(map[string]game.Card, len(catalog))
	for _, c := range catalog {
		byID[c.CardID] = c
	}
	seen := make(map[string]bool, len(cardIDs))
	deck := make(game.Deck, 0, game.DeckSize)
	for _, id := range cardIDs {
		c, ok := byID[id]
		if !ok {
			return nil, ErrUnknownCard
		}
		if seen[id] {
			return nil, ErrDuplicateCard
		}
		seen[id] = true
		deck = append(deck, c)
	}
	return deck, nil
}

// opponentDeck builds the bot's deck. Ranked matches draw a shuffled hand,
// preferring cards outside the player's deck; tutorial matches take the
// catalog in config order so the scripted opponent stays predictable.
func opponentDeck(catalog []game.Card, player game.Deck, mode game.Mode) game.Deck {
	if mode == game.ModeTutorial {
		n := game.DeckSize
		if len(catalog) < n {
			n = len(catalog)
		}
		return append(game.Deck{}, catalog[:n]...)
	}

	var fresh, taken []game.Card
	for _, c := range catalog {
		if player.Contains(c.CardID) {
			taken = append(taken, c)
		} else {
			fresh = append(fresh, c)
		}
	}
	rand.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })
	deck := append(game.Deck{}, fresh...)
	if len(deck) > game.DeckSize {
		deck = deck[:game.DeckSize]
	}
	// Small catalogs fall back to sharing cards with the player.
	for i := 0; len(deck) < game.DeckSize && i < len(taken); i++ {
		deck = append(deck, taken[i])
	}
	return deck
}

func findRunningMatch(repo MatchRepo, t engine.Timings, telegramID int64) *game.MatchRecord {
	recs, err := repo.FindMatchesByPlayer(telegramID)
	if err != nil {
		return nil
	}
	nowMS := time.Now().UnixMilli()
	for i := range recs {
		rec := &recs[i]
		if rec.Cancelled {
			continue
		}
		if t.PhaseAt(rec.StartTimeMS, nowMS).Phase != game.PhaseFinished {
			return rec
		}
	}
	return nil
}
