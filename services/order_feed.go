package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/n11047500/Capstone-2024-sub000/models"
)

const (
	feedWriteWait = 10 * time.Second
	// orders queued per client before it is considered stalled
	feedSendBuffer = 32
)

// OrderFeed pushes newly placed orders to connected employee dashboards
type OrderFeed struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*feedClient]struct{}
}

// feedClient owns one connection; only its writer goroutine writes to conn
type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

var orderFeedInstance *OrderFeed

// InitOrderFeed initializes the order feed.
// checkOrigin may be nil to accept every origin.
func InitOrderFeed(checkOrigin func(r *http.Request) bool) *OrderFeed {
	orderFeedInstance = NewOrderFeed(checkOrigin)
	return orderFeedInstance
}

// NewOrderFeed creates an order feed with no clients
func NewOrderFeed(checkOrigin func(r *http.Request) bool) *OrderFeed {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &OrderFeed{
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		clients:  make(map[*feedClient]struct{}),
	}
}

// GetOrderFeed returns the initialized order feed instance
func GetOrderFeed() *OrderFeed {
	return orderFeedInstance
}

// SetOrderFeed sets the order feed instance (primarily for testing)
func SetOrderFeed(feed *OrderFeed) {
	orderFeedInstance = feed
}

// Serve upgrades the request and blocks until the client disconnects.
// Incoming messages are discarded.
func (f *OrderFeed) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &feedClient{conn: conn, send: make(chan []byte, feedSendBuffer)}
	f.mu.Lock()
	f.clients[client] = struct{}{}
	f.mu.Unlock()

	go client.writeLoop()
	defer f.remove(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// Broadcast queues order as JSON for every connected client and never
// waits on the network. A client whose queue is full is dropped.
func (f *OrderFeed) Broadcast(order *models.Order) {
	data, err := json.Marshal(order)
	if err != nil {
		log.Printf("Failed to encode order %d for feed: %v", order.ID, err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for client := range f.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("Dropping order feed client that stopped reading")
			f.removeLocked(client)
		}
	}
}

// ClientCount returns the number of connected clients
func (f *OrderFeed) ClientCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func (f *OrderFeed) remove(client *feedClient) {
	f.mu.Lock()
	f.removeLocked(client)
	f.mu.Unlock()
}

// removeLocked closes the send queue once; the writer then closes the connection
func (f *OrderFeed) removeLocked(client *feedClient) {
	if _, ok := f.clients[client]; !ok {
		return
	}
	delete(f.clients, client)
	close(client.send)
}

func (c *feedClient) writeLoop() {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Order feed write failed: %v", err)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
}
