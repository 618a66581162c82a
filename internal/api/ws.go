package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
	"github.com/clashwarriors/clash-warriors-sub000/internal/game"
	"github.com/clashwarriors/clash-warriors-sub000/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The mini-app is served from a Telegram webview origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsPushEvery    = time.Second
	wsWriteTimeout = 5 * time.Second
)

// StreamMatch upgrades to a websocket and pushes the phase snapshot once per
// second so the client renders the countdown without polling. The stream ends
// a few snapshots after the match reaches a terminal phase.
func (h *MatchHandler) StreamMatch(c *gin.Context) {
	rec := h.loadOwnMatch(c)
	if rec == nil {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", err, logging.Fields{
			constants.LogFieldMatchID: rec.MatchID,
		})
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPushEvery)
	defer ticker.Stop()

	lingering := 0
	for {
		view := h.matchView(rec)
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(view); err != nil {
			return
		}
		if phase, ok := view["phase"].(game.Phase); ok {
			if phase == game.PhaseFinished || phase == game.PhaseCancelled {
				// A couple of terminal snapshots let slow clients catch the
				// result before the stream closes.
				lingering++
				if lingering >= 3 {
					conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
		<-ticker.C

		// The record is re-read each tick so a cancel lands in the stream.
		fresh, err := h.repo.GetMatchByID(rec.MatchID)
		if err != nil || fresh == nil {
			return
		}
		rec = fresh
	}
}
