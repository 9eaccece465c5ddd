package sui

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lantern-fi/suipool/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings to the peer at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// RawEventHandler is called for every protocol event pushed on a subscription.
type RawEventHandler func(domain.RawEvent)

// WSClient subscribes to fullnode event streams over the JSON-RPC
// websocket endpoint (suix_subscribeEvent). One subscription per event
// type tag; every pushed event is dispatched to the registered handlers.
type WSClient struct {
	wsURL string
	conn  *websocket.Conn

	mu     sync.Mutex
	closed bool
	nextID int

	// Event type tags to restore on reconnect.
	subscriptions []string

	handlerMu sync.RWMutex
	handlers  []RawEventHandler

	// disconnected is closed by the read loop when the current connection
	// drops. Recreated on every Connect.
	disconnected chan struct{}

	done chan struct{}
}

// NewWSClient creates a websocket client for the given fullnode endpoint,
// e.g. "wss://fullnode.mainnet.example.io:443".
func NewWSClient(wsURL string) *WSClient {
	return &WSClient{
		wsURL:  wsURL,
		nextID: 1,
		done:   make(chan struct{}),
	}
}

// Connect establishes the websocket connection and starts the read and
// ping loops. Previously registered subscriptions are replayed.
func (w *WSClient) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("sui/ws: %w", domain.ErrWSDisconnect)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("sui/ws: connect: %w", err)
	}
	w.conn = conn
	w.disconnected = make(chan struct{})

	w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go w.readLoop(conn, w.disconnected)
	go w.pingLoop(conn)

	for _, tag := range w.subscriptions {
		if err := w.sendSubscribe(tag); err != nil {
			return fmt.Errorf("sui/ws: restore subscription %s: %w", tag, err)
		}
	}
	return nil
}

// SubscribeEvents subscribes to every given event type tag. Subscriptions
// survive reconnects.
func (w *WSClient) SubscribeEvents(ctx context.Context, eventTypes []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return fmt.Errorf("sui/ws: not connected")
	}
	for _, tag := range eventTypes {
		if err := w.sendSubscribe(tag); err != nil {
			return fmt.Errorf("sui/ws: subscribe %s: %w", tag, err)
		}
		w.subscriptions = append(w.subscriptions, tag)
	}
	return nil
}

// Disconnected returns a channel closed when the current connection drops.
// Owners select on it to drive reconnection. Nil before the first Connect.
func (w *WSClient) Disconnected() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.disconnected
}

// OnEvent registers a handler invoked for every pushed event.
func (w *WSClient) OnEvent(handler RawEventHandler) {
	w.handlerMu.Lock()
	defer w.handlerMu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Close shuts the connection down and stops the loops.
func (w *WSClient) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)

	if w.conn != nil {
		_ = w.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		return w.conn.Close()
	}
	return nil
}

// sendSubscribe writes one suix_subscribeEvent request. Caller must hold w.mu.
func (w *WSClient) sendSubscribe(eventType string) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      w.nextID,
		Method:  "suix_subscribeEvent",
		Params: []any{
			map[string]any{"MoveEventType": eventType},
		},
	}
	w.nextID++

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal subscribe: %w", err)
	}
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *WSClient) readLoop(conn *websocket.Conn, disconnected chan struct{}) {
	defer conn.Close()

	for {
		select {
		case <-w.done:
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-w.done:
			default:
				// Signal the owner so it can reconnect.
				w.mu.Lock()
				if w.conn == conn {
					w.conn = nil
				}
				w.mu.Unlock()
				close(disconnected)
			}
			return
		}
		w.handleMessage(message)
	}
}

func (w *WSClient) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage routes one websocket frame. Subscription confirmations and
// unparseable frames are dropped; event notifications reach the handlers.
func (w *WSClient) handleMessage(raw []byte) {
	var notification struct {
		Method string `json:"method"`
		Params struct {
			Subscription int64           `json:"subscription"`
			Result       json.RawMessage `json:"result"`
		} `json:"params"`
	}
	if err := json.Unmarshal(raw, &notification); err != nil {
		return
	}
	if notification.Method != "suix_subscribeEvent" || len(notification.Params.Result) == 0 {
		return
	}

	var entry eventEntry
	if err := json.Unmarshal(notification.Params.Result, &entry); err != nil {
		return
	}
	ev, err := decodeEvent(entry)
	if err != nil {
		return
	}

	w.handlerMu.RLock()
	handlers := w.handlers
	w.handlerMu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
}
