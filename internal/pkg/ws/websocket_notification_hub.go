package ws

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Listener is the write side of a websocket connection.
type Listener interface {
	WriteJSON(v any) error
}

type WebSocketNotificationHub struct {
	mutex     sync.Mutex
	listeners map[string][]Listener
}

func NewNotificationHub() *WebSocketNotificationHub {
	return &WebSocketNotificationHub{
		listeners: make(map[string][]Listener),
	}
}

func (hub *WebSocketNotificationHub) RegisterListener(topic string, conn Listener) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	hub.listeners[topic] = append(hub.listeners[topic], conn)
}

func (hub *WebSocketNotificationHub) UnregisterListener(topic string, conn Listener) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	listeners := hub.listeners[topic]
	for i, listener := range listeners {
		if listener == conn {
			listeners = append(listeners[:i], listeners[i+1:]...)
			break
		}
	}

	if len(listeners) == 0 {
		delete(hub.listeners, topic)
		return
	}
	hub.listeners[topic] = listeners
}

func (hub *WebSocketNotificationHub) HasListeners(topic string) bool {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	return len(hub.listeners[topic]) > 0
}

// Publish writes event to every listener of targetTopic. Writes happen under
// the hub lock since a connection allows one writer at a time.
func (hub *WebSocketNotificationHub) Publish(targetTopic string, event any) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for _, listener := range hub.listeners[targetTopic] {
		if err := listener.WriteJSON(event); err != nil {
			log.Debug().Err(err).Str("topic", targetTopic).Msg("Could not write ws event")
		}
	}
}
