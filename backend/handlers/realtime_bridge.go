package handlers

import "placegallery/backend/ws"

var realtimeHub *ws.Hub

// Call this once at startup after creating the hub.
func SetHub(h *ws.Hub) { realtimeHub = h }

// Emit publishes a server-side event to every websocket client.
func Emit(eventType string, data any) {
	if realtimeHub == nil {
		return
	}
	realtimeHub.Publish(eventType, data)
}
