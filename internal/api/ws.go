package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/simmer-app/simmer-backend/internal/store"
)

var stateFeedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin from the frontend dev server;
	// CORS enforcement happens at the HTTP middleware layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamState upgrades the request to a websocket and pushes the full store
// state on every transition, local or remote. Bursts of transitions coalesce
// into a single push of the latest snapshot.
func (h *UIHandler) StreamState(c *gin.Context) {
	conn, err := stateFeedUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	defer func() { _ = conn.Close() }()

	signal := make(chan struct{}, 1)
	unsubscribe := h.store.Subscribe(func(store.State) {
		select {
		case signal <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	// The read loop only exists to detect the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(h.store.State()); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-signal:
			if err := conn.WriteJSON(h.store.State()); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("[StateFeed] write failed: %v", err)
				}
				return
			}
		}
	}
}
