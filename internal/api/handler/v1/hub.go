package v1

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
	broadcastQueue = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Scoreboards are opened from other origins on the local network.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var leaderboardUpdate, _ = json.Marshal(map[string]string{"type": "update_leaderboard"})

type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	eventID uint
}

// LeaderboardHub pushes "update_leaderboard" frames to the scoreboards of an
// event whenever its teams change.
type LeaderboardHub struct {
	events EventService

	clients      map[*Client]struct{}
	clientsMutex sync.RWMutex
	broadcast    chan uint
	register     chan *Client
	unregister   chan *Client
	done         chan struct{}
	stopOnce     sync.Once
}

func NewLeaderboardHub(events EventService) *LeaderboardHub {
	return &LeaderboardHub{
		events:     events,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan uint, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until Stop is called.
func (h *LeaderboardHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMutex.Lock()
			h.clients[client] = struct{}{}
			h.clientsMutex.Unlock()
		case client := <-h.unregister:
			h.clientsMutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMutex.Unlock()
		case eventID := <-h.broadcast:
			h.clientsMutex.Lock()
			for client := range h.clients {
				if client.eventID != eventID {
					continue
				}
				select {
				case client.send <- leaderboardUpdate:
				default:
					// the client is not keeping up, it reloads on reconnect
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.clientsMutex.Unlock()
		case <-h.done:
			h.clientsMutex.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.clientsMutex.Unlock()
			return
		}
	}
}

func (h *LeaderboardHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// NotifyLeaderboard queues an update for eventID. It never blocks the caller.
func (h *LeaderboardHub) NotifyLeaderboard(eventID uint) {
	select {
	case h.broadcast <- eventID:
	default:
		zap.L().Warn("leaderboard notification dropped, queue full", zap.Uint("eventID", eventID))
	}
}

func (h *LeaderboardHub) clientCount() int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket godoc
// @Summary      Leaderboard updates
// @Description  Upgrades to a websocket that receives {"type":"update_leaderboard"} whenever a team of the active event changes.
// @Tags         shotcounter
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      404  {object}  response.Err
// @Router       /shotcounter/ws [get]
func (h *LeaderboardHub) HandleWebSocket(ctx *gin.Context) {
	event, err := h.events.RequireActiveEvent(ctx.Request.Context(), false, true)
	if err != nil {
		renderServiceErr(ctx, "HandleWebSocket -> h.events.RequireActiveEvent", err)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		eventID: event.ID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the client going away; scoreboards never send.
func (c *Client) readPump(h *LeaderboardHub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("websocket closed", zap.Error(err))
			}
			return
		}
	}
}
