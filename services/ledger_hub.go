package services

import (
	"sync"

	"github.com/gorilla/websocket"
)

// FeedClient is one WebSocket consumer of a live today feed.
type FeedClient struct {
	UserID uint
	Conn   *websocket.Conn
	Feed   *TodayFeed
}

// LedgerHub tracks the active feed clients per user so shutdown can
// release every standing subscription.
type LedgerHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*FeedClient]struct{}
}

func NewLedgerHub() *LedgerHub {
	return &LedgerHub{clients: make(map[uint]map[*FeedClient]struct{})}
}

func (h *LedgerHub) Register(c *FeedClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*FeedClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

// Unregister stops the client's feed, releasing its auth watch and any
// live query, and closes the connection.
func (h *LedgerHub) Unregister(c *FeedClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()

	c.Feed.Stop()
	_ = c.Conn.Close()
}

// CloseAll releases every client; used on shutdown.
func (h *LedgerHub) CloseAll() {
	h.mu.Lock()
	all := make([]*FeedClient, 0)
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.clients = make(map[uint]map[*FeedClient]struct{})
	h.mu.Unlock()

	for _, c := range all {
		c.Feed.Stop()
		_ = c.Conn.Close()
	}
}
