package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mahaj/room-relay/pkg/model"
	"github.com/mahaj/room-relay/pkg/relay"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size: a full 5000-char draft plus envelope
	// overhead fits comfortably.
	maxFrameSize = 8192

	// Outbound frames buffered per connection before the client is
	// considered too slow and dropped.
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin policy belongs to the proxy in front of us
	},
}

// Client is the middleman between one websocket connection and the relay
// core. It implements relay.Outbox.
type Client struct {
	conn *websocket.Conn
	rly  *relay.Relay
	sess *relay.Session
	log  *zap.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// Send queues one outbound event frame. A client that cannot keep up is cut
// loose rather than allowed to stall its room.
func (c *Client) Send(event string, payload any) {
	frame, err := model.EncodeEnvelope(event, payload)
	if err != nil {
		c.log.Error("encode outbound frame", zap.String("event", event), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		c.log.Warn("slow consumer, dropping connection", zap.String("session", c.sess.Handle()))
		c.closed = true
		close(c.send)
	}
}

// readPump pumps frames from the websocket connection into the relay.
func (c *Client) readPump() {
	defer func() {
		c.rly.Disconnect(context.Background(), c.sess)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("read error", zap.String("session", c.sess.Handle()), zap.Error(err))
			}
			break
		}
		c.rly.Dispatch(context.Background(), c.sess, frame)
	}
}

// writePump pumps queued frames to the websocket connection, one websocket
// message per frame so the client always sees whole envelopes.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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

// serveWs upgrades the request and hands the connection to the relay. The
// client declares its identity with a join frame; nothing is trusted beyond
// what it claims.
func serveWs(rly *relay.Relay, log *zap.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade failed", zap.Error(err))
		return
	}

	c := &Client{
		conn: conn,
		rly:  rly,
		log:  log,
		send: make(chan []byte, sendBuffer),
	}
	c.sess = relay.NewSession(c)
	log.Info("client connected", zap.String("session", c.sess.Handle()))

	go c.writePump()
	go c.readPump()
}
