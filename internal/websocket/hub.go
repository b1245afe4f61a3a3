package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"backend/internal/model"
	"backend/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for dev simplicity
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	// EventProfileUpdated notifies a session that its profile record changed
	// remotely (administrator edits included).
	EventProfileUpdated = "profile.updated"

	// EventProfileSnapshot carries the merged profile a connection's session
	// store settled on after applying an update.
	EventProfileSnapshot = "profile.snapshot"
)

// Event is one profile-change notification. AccountID selects the receiving
// sessions; an empty AccountID fans out to everyone (org-data reloads).
// Snapshot events additionally carry the merged profile.
type Event struct {
	Type      string             `json:"type"`
	AccountID string             `json:"account_id,omitempty"`
	Profile   *model.UserProfile `json:"profile,omitempty"`
}

// Client represents a single connected WebSocket client. Each authenticated
// connection owns a session store that tracks the account's profile for as
// long as the socket stays open.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	AccountID string

	session *session.Store
}

// Hub maintains the set of active clients and routes profile events to the
// sessions of the affected account. In-process subscribers (the session
// store's profile watcher) attach through Subscribe and get the same events
// as remote clients.
type Hub struct {
	clients    map[*Client]bool
	Events     chan Event
	register   chan *Client
	unregister chan *Client

	mu          sync.Mutex
	subscribers map[string]map[int]func(Event)
	nextSubID   int
}

// NewHub initializes a new Hub instance
func NewHub() *Hub {
	return &Hub{
		Events:      make(chan Event, 16),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		subscribers: make(map[string]map[int]func(Event)),
	}
}

// Run starts the core dispatch loop for profile events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Println("New WebSocket client connected for account", client.AccountID)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Println("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case event := <-h.Events:
			h.dispatch(event)
		}
	}
}

// Publish delivers an event to in-process subscribers synchronously (so
// profile watchers observe changes in publish order) and queues it for
// connected websocket clients.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	var fns []func(Event)
	for accountID, subs := range h.subscribers {
		if event.AccountID == "" || event.AccountID == accountID {
			for _, fn := range subs {
				fns = append(fns, fn)
			}
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}

	select {
	case h.Events <- event:
	default:
		log.Println("WebSocket event queue full, dropping", event.Type)
	}
}

// Subscribe registers an in-process listener for one account's events. The
// returned cancel func detaches it; a cancelled subscriber never fires again.
func (h *Hub) Subscribe(accountID string, fn func(Event)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextSubID++
	id := h.nextSubID
	if h.subscribers[accountID] == nil {
		h.subscribers[accountID] = make(map[int]func(Event))
	}
	h.subscribers[accountID][id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.subscribers[accountID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(h.subscribers, accountID)
			}
		}
	}
}

// dispatch fans an event out to the websocket clients it addresses.
func (h *Hub) dispatch(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Println("Failed to marshal event:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if event.AccountID != "" && client.AccountID != event.AccountID {
			continue
		}
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for message := range c.Send {
		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		_, _ = w.Write(message)

		// Fast track writing queued messages
		n := len(c.Send)
		for i := 0; i < n; i++ {
			_, _ = w.Write([]byte{'\n'})
			_, _ = w.Write(<-c.Send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		if c.session != nil {
			c.session.Logout()
		}
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()
	for {
		// Just reading to keep connection alive or handle client messages if necessary
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
	}
}

// StoreFactory builds the session store owned by one authenticated
// connection.
type StoreFactory func() *session.Store

// ServeWs handles websocket requests from the peer
func ServeWs(hub *Hub, c *gin.Context, secret []byte, newStore StoreFactory) {
	// 1. Authenticate via token query param
	tokenString := c.Query("token")
	if tokenString == "" {
		log.Println("WebSocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})

	if err != nil || !token.Valid {
		log.Println("WebSocket connection rejected: invalid token:", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		log.Println("WebSocket connection rejected: invalid claims")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	accountID, _ := claims["sub"].(string)
	if accountID == "" {
		log.Println("WebSocket connection rejected: missing subject")
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	email, _ := claims["email"].(string)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 256), AccountID: accountID}

	if newStore != nil {
		store := newStore()
		if err := store.SignIn(c.Request.Context(), accountID, email); err != nil {
			log.Println("WebSocket session sign-in failed for", accountID, ":", err)
		} else {
			client.session = store
			attachSession(client, store)
		}
	}

	client.Hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}

// attachSession streams merged profile snapshots to the client whenever its
// session store applies an update, so the peer never has to re-fetch after a
// change notification.
func attachSession(client *Client, store *session.Store) {
	store.OnProfileChanged(func(p model.UserProfile) {
		message, err := json.Marshal(Event{Type: EventProfileSnapshot, AccountID: p.AccountID, Profile: &p})
		if err != nil {
			log.Println("Failed to marshal profile snapshot:", err)
			return
		}
		select {
		case client.Send <- message:
		default:
		}
	})
}
