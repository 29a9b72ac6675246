package websocket

import (
	"log"
	"sync"
)

// Delivery carries a payload bound for every connection subscribed to a
// channel. Channels are logical per-recipient keys, not broadcast topics.
type Delivery struct {
	Channel string
	Payload []byte
}

// Hub maintains the set of active clients, keyed by channel.
// Delivery through the hub is advisory: a full buffer or an absent
// recipient drops the payload and the authoritative message history
// stays in the store.
type Hub struct {
	// Registered clients. Maps channel key to a set of active connections.
	clients map[string]map[*Client]bool

	// Channel for delivering payloads to a specific channel key.
	Deliver chan *Delivery

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Deliver:    make(chan *Delivery),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket Hub started.")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.clients[client.Channel]; !ok {
				h.clients[client.Channel] = make(map[*Client]bool)
			}
			h.clients[client.Channel][client] = true
			log.Printf("WebSocket client registered on channel %s. Connections: %d",
				client.Channel, len(h.clients[client.Channel]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if channelClients, ok := h.clients[client.Channel]; ok {
				if _, clientOk := channelClients[client]; clientOk {
					delete(channelClients, client)
					if len(channelClients) == 0 {
						delete(h.clients, client.Channel)
					}
					log.Printf("WebSocket client unregistered from channel %s. Remaining: %d",
						client.Channel, len(channelClients))
				}
			}
			h.mu.Unlock()

		case delivery := <-h.Deliver:
			h.mu.RLock()
			if channelClients, ok := h.clients[delivery.Channel]; ok {
				for client := range channelClients {
					select {
					case client.Send <- delivery.Payload:
					default:
						log.Printf("Send buffer full on channel %s. Payload dropped for this client.", delivery.Channel)
					}
				}
			} else {
				log.Printf("No subscribers on channel %s, payload dropped.", delivery.Channel)
			}
			h.mu.RUnlock()
		}
	}
}

// Subscribers reports how many connections are registered on a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[channel])
}
