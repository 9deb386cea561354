// Package ws pushes transaction events to connected WebSocket clients.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"aimpact/internal/domain/entity"
	"aimpact/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// sendBuffer is the per-client outbound queue. A client that cannot
	// drain it in time is dropped rather than blocking the hub.
	sendBuffer = 16
)

// greeting is sent to every client right after the upgrade.
var greeting = []byte(`{"message":"Connected to WebSocket"}`)

// transactionEvent is the wire shape of a broadcast transaction update.
type transactionEvent struct {
	Type        string  `json:"type"`
	Transaction payload `json:"transaction"`
}

type payload struct {
	ID          string    `json:"id"`
	Type        string    `json:"type,omitempty"`
	TxHash      string    `json:"txHash,omitempty"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category,omitempty"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Hub fans broadcast messages out to every connected client. It implements
// usecase.TransactionNotifier.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
}

// Params holds dependencies for the hub, injected by Fx.
type Params struct {
	fx.In
	fx.Lifecycle

	Logger *slog.Logger
}

// ProvideHub creates the hub and ties its run loop to the Fx lifecycle.
func ProvideHub(params Params) *Hub {
	hub := NewHub(params.Logger)

	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			hub.Start()

			return nil
		},
		OnStop: func(context.Context) error {
			hub.Stop()

			return nil
		},
	})

	return hub
}

// NewHub creates an idle hub. Call Start before accepting connections.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser client may be served from another origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
	}
}

// Start launches the hub's event loop.
func (h *Hub) Start() {
	go h.run()
}

// Stop shuts the event loop down and disconnects every client. Safe to call
// more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// NewNotifier exposes the hub as the use case notifier interface.
func NewNotifier(hub *Hub) usecase.TransactionNotifier {
	return hub
}

// run is the hub's single event loop. All client set mutations happen here.
func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}

			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				close(c.send)
				delete(h.clients, c)
			}
		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Slow consumer; drop it.
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// NotifyTransaction broadcasts a transaction update to all connected clients.
func (h *Hub) NotifyTransaction(record *entity.WalletTransaction) {
	event := transactionEvent{
		Type: "transactionUpdate",
		Transaction: payload{
			ID:          record.ID.String(),
			Type:        record.Type,
			TxHash:      record.TxHash,
			From:        record.FromAddress,
			To:          record.ToAddress,
			Amount:      record.Amount,
			Currency:    record.Currency,
			Category:    record.Category,
			Status:      record.Status,
			Description: record.Description,
			CreatedAt:   record.CreatedAt,
		},
	}

	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal transaction event", slog.Any("error", err))

		return
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// HandleWS upgrades the HTTP request and attaches the client to the hub.
func (h *Hub) HandleWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return nil
	}

	cl := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}

	// Queue the greeting before registering. Once registered the hub owns
	// the send channel and a concurrent Stop may close it.
	cl.send <- greeting

	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()

		return nil
	}

	go cl.writePump()
	go cl.readPump()

	return nil
}

// client is one WebSocket connection managed by the hub.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump drains inbound frames. The protocol is push-only; inbound text is
// logged and discarded.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.hub.logger.Debug("WebSocket message received", slog.String("message", string(message)))
	}
}

// writePump forwards hub messages to the connection and keeps it alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
