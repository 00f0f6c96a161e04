package ws

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"placegallery/backend/models"
)

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

// Hub fans server events out to every connected websocket client.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client

	log  logrus.FieldLogger
	quit chan struct{}
	done chan struct{}
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		log:        log,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
			h.log.WithField("user_id", client.UserID).Debug("websocket client registered")

		case client := <-h.Unregister:
			h.drop(client)

		case message := <-h.Broadcast:
			for client := range h.Clients {
				select {
				case client.Send <- message:
				default:
					h.log.WithField("user_id", client.UserID).Warn("websocket client too slow, dropping")
					h.drop(client)
				}
			}

		case <-h.quit:
			for client := range h.Clients {
				h.drop(client)
			}
			return
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.Clients[client]; ok {
		delete(h.Clients, client)
		close(client.Send)
	}
}

// Add registers client with the running hub. It reports false once the hub
// has been stopped.
func (h *Hub) Add(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Stop closes every client's send queue and waits for Run to return.
func (h *Hub) Stop() {
	close(h.quit)
	<-h.done
}

// Publish queues an event of the given type for all clients.
func (h *Hub) Publish(eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.log.WithError(err).WithField("type", eventType).Error("marshal event payload")
		return
	}
	msg, err := json.Marshal(models.Event{Type: eventType, Data: payload})
	if err != nil {
		h.log.WithError(err).WithField("type", eventType).Error("marshal event")
		return
	}
	select {
	case h.Broadcast <- msg:
	case <-h.quit:
	}
}
