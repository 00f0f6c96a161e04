package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"placegallery/backend/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket subscribes an authenticated client to gallery events.
func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if realtimeHub == nil {
		sendErrorResponse(w, "Realtime disabled", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	client := &ws.Client{
		Hub:    realtimeHub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: CurrentUserID(r),
	}

	if !realtimeHub.Add(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump()
}
