package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aimpact/internal/domain/entity"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()

	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Start()
	t.Cleanup(hub.Stop)

	e := echo.New()
	e.GET("/ws", hub.HandleWS)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(message, &decoded))

	return decoded
}

func TestHub_GreetsOnConnect(t *testing.T) {
	_, url := startHub(t)
	conn := dial(t, url)

	greeting := readJSON(t, conn)
	assert.Equal(t, "Connected to WebSocket", greeting["message"])
}

func TestHub_BroadcastsTransactionUpdates(t *testing.T) {
	hub, url := startHub(t)

	first := dial(t, url)
	second := dial(t, url)
	readJSON(t, first)
	readJSON(t, second)

	record := &entity.WalletTransaction{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Type:      "Deposit",
		Amount:    12.5,
		Currency:  "XRS",
		Status:    entity.TransactionStatusPending,
		CreatedAt: time.Now(),
	}
	hub.NotifyTransaction(record)

	for _, conn := range []*websocket.Conn{first, second} {
		event := readJSON(t, conn)
		assert.Equal(t, "transactionUpdate", event["type"])

		tx, ok := event["transaction"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, record.ID.String(), tx["id"])
		assert.Equal(t, 12.5, tx["amount"])
		assert.Equal(t, "XRS", tx["currency"])
		assert.Equal(t, entity.TransactionStatusPending, tx["status"])
	}
}

func TestHub_DisconnectedClientDoesNotBlockBroadcast(t *testing.T) {
	hub, url := startHub(t)

	gone := dial(t, url)
	readJSON(t, gone)
	gone.Close()

	stays := dial(t, url)
	readJSON(t, stays)

	hub.NotifyTransaction(&entity.WalletTransaction{
		ID:       uuid.New(),
		Amount:   1,
		Currency: "XRS",
		Status:   entity.TransactionStatusConfirmed,
	})

	event := readJSON(t, stays)
	assert.Equal(t, "transactionUpdate", event["type"])
}

func TestHub_StopClosesConnections(t *testing.T) {
	hub, url := startHub(t)

	conn := dial(t, url)
	assert.Equal(t, "Connected to WebSocket", readJSON(t, conn)["message"])

	hub.Stop()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// A connection arriving after shutdown is turned away cleanly.
	late := dial(t, url)
	late.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
}
