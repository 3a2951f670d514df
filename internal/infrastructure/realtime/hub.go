// Package realtime fans chat messages out to live websocket subscribers.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/kyzmat/marketplace/internal/api/metrics"
	"github.com/kyzmat/marketplace/internal/core/domain"
)

const (
	subscriberBuffer = 32
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
)

// Subscription receives the messages published to one conversation.
type Subscription struct {
	hub            *Hub
	conversationID string
	ch             chan *domain.Message
	once           sync.Once
}

// C is closed when the subscription is closed.
func (s *Subscription) C() <-chan *domain.Message { return s.ch }

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub is an in-process publish/subscribe registry keyed by conversation id.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
	log  zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{}), log: log}
}

// Subscribe registers a new subscriber for conversationID.
func (h *Hub) Subscribe(conversationID string) *Subscription {
	s := &Subscription{hub: h, conversationID: conversationID, ch: make(chan *domain.Message, subscriberBuffer)}

	h.mu.Lock()
	set, ok := h.subs[conversationID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[conversationID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	metrics.ChatSubscribers.Inc()
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	if set, ok := h.subs[s.conversationID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.conversationID)
		}
	}
	h.mu.Unlock()

	close(s.ch)
	metrics.ChatSubscribers.Dec()
}

// Subscribers returns the number of live subscribers of conversationID.
func (h *Hub) Subscribers(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[conversationID])
}

// Publish delivers msg to every subscriber of conversationID. Subscribers
// whose buffer is full miss the message rather than block the sender.
func (h *Hub) Publish(conversationID string, msg *domain.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs[conversationID] {
		select {
		case s.ch <- msg:
		default:
			h.log.Warn().Str("conversation_id", conversationID).Msg("slow chat subscriber, message skipped")
		}
	}
}

// Serve streams the conversation to conn until ctx is done, the peer goes
// away or a write fails. conn is closed on return.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, conversationID string) {
	sub := h.Subscribe(conversationID)
	defer sub.Close()
	defer conn.Close()

	// Reader: only needed to process control frames and notice disconnects.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			conn.Close()
			<-gone
			return
		case <-gone:
			return
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Str("conversation_id", conversationID).Msg("websocket write failed")
				conn.Close()
				<-gone
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				<-gone
				return
			}
		}
	}
}
