package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clashwarriors/clash-warriors-sub000/internal/battle"
	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
)

// stubRepo is an in-memory storage.Repository for handler tests.
type stubRepo struct {
	matches map[string]*game.MatchRecord
}

func newStubRepo() *stubRepo {
	return &stubRepo{matches: make(map[string]*game.MatchRecord)}
}

func (r *stubRepo) CreateMatch(rec *game.MatchRecord) error {
	r.matches[rec.MatchID] = rec
	return nil
}

func (r *stubRepo) GetMatchByID(matchID string) (*game.MatchRecord, error) {
	return r.matches[matchID], nil
}

func (r *stubRepo) FindMatchesByPlayer(telegramID int64) ([]game.MatchRecord, error) {
	var out []game.MatchRecord
	for _, rec := range r.matches {
		if rec.TelegramID == telegramID && !rec.Cancelled {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *stubRepo) ListActiveMatches() ([]game.MatchRecord, error) { return nil, nil }
func (r *stubRepo) ListMatches() ([]game.MatchRecord, error)       { return nil, nil }

func (r *stubRepo) UpdateMatch(rec *game.MatchRecord) error {
	r.matches[rec.MatchID] = rec
	return nil
}

func (r *stubRepo) DeleteMatch(matchID string) error {
	delete(r.matches, matchID)
	return nil
}

func (r *stubRepo) UpsertUser(telegramID int64, username string) error { return nil }
func (r *stubRepo) GetUserByTelegramID(telegramID int64) (*game.User, error) {
	return &game.User{TelegramID: telegramID}, nil
}
func (r *stubRepo) CreditMatchResult(telegramID int64, reward int64, won bool) error { return nil }
func (r *stubRepo) GetTopPlayers(limit int) ([]game.User, error)                     { return nil, nil }

func statCard(id string, attack int) game.Card {
	return game.Card{CardID: id, Name: id, Stats: game.Stats{Attack: attack}}
}

// newTestRouter wires a MatchHandler over a stub repository with a fixed
// session identity, mirroring the production route layout.
func newTestRouter(repo *stubRepo, telegramID int64) (*gin.Engine, *battle.Store) {
	gin.SetMode(gin.TestMode)
	store := battle.NewStore(nil)
	bots := battle.NewScheduler(store, time.Hour, time.Hour, game.AbilityAttack)
	ctrl := battle.NewController(store, bots, repo, battle.ControllerConfig{
		TickEvery:   time.Hour,
		FinishGrace: time.Hour,
		CancelGrace: time.Hour,
	})
	h := NewMatchHandler(repo, store, ctrl, nil, nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ctxKeyTelegramID, telegramID)
		c.Set(ctxKeyUsername, "ash")
	})
	router.POST(constants.RouteMatchSelect, h.SelectCard)
	router.POST(constants.RouteMatchCancel, h.CancelMatch)
	return router, store
}

func TestCancelMatchHandler_FinishedMatchConflicts(t *testing.T) {
	repo := newStubRepo()
	rec := &game.MatchRecord{
		MatchID:     "m-over",
		TelegramID:  42,
		Mode:        game.ModeRanked,
		StartTimeMS: time.Now().UnixMilli() - 10*60*1000,
	}
	repo.matches[rec.MatchID] = rec
	router, _ := newTestRouter(repo, 42)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/matches/m-over/cancel", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status %d, want %d", w.Code, http.StatusConflict)
	}
	if !strings.Contains(w.Body.String(), constants.ErrMatchAlreadyOver) {
		t.Fatalf("body %s missing conflict message", w.Body.String())
	}
	if rec.Cancelled {
		t.Fatal("finished match must not flip to cancelled")
	}
}

func TestSelectCardHandler_RejectionCarriesMessage(t *testing.T) {
	repo := newStubRepo()
	// Clock sits inside round 0's selection window.
	rec := &game.MatchRecord{
		MatchID:     "m-sel",
		TelegramID:  42,
		Mode:        game.ModeRanked,
		StartTimeMS: time.Now().UnixMilli() - 6000,
		PlayerDeck:  game.Deck{statCard("c1", 10), statCard("c2", 20)},
	}
	repo.matches[rec.MatchID] = rec
	router, store := newTestRouter(repo, 42)

	// The round 0 slot is already taken, so a second card is rejected.
	store.CommitSelection(rec.MatchID, 0, game.ActorUser, rec.PlayerDeck[0])

	w := httptest.NewRecorder()
	body := fmt.Sprintf(`{"round":0,"card_id":%q}`, "c2")
	req := httptest.NewRequest(http.MethodPost, "/matches/m-sel/select", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if string(resp["accepted"]) != "false" {
		t.Fatalf("accepted = %s, want false", resp["accepted"])
	}
	var msg string
	if err := json.Unmarshal(resp[constants.JSONKeyMessage], &msg); err != nil || msg != constants.ErrSelectionRejected {
		t.Fatalf("message = %q, want %q", msg, constants.ErrSelectionRejected)
	}
}
