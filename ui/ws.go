package ui

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameHostOrigin,
}

// sameHostOrigin only allows upgrades from the host that served the
// page. Non-browser clients without an Origin header pass through.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// handleMonitorSocket streams monitoring snapshots to the Monitoring
// page on a fixed tick. The connection closes when the client leaves
// the page or a write fails.
func (a *App) handleMonitorSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[handleMonitorSocket] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(a.monitorTick)
	defer ticker.Stop()

	for {
		payload, err := a.snapshot(r.Context())
		if err != nil {
			payload = map[string]interface{}{"error": uploadPrompt}
		}

		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("[handleMonitorSocket] Write failed, closing: %v", err)
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
