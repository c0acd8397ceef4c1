package websocket

import (
	"encoding/json"
	"time"

	"carpool/internal/matching"
	"carpool/internal/models"
	"carpool/internal/utils"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Config controls connection buffer sizes, keepalive timing and the
// origins allowed to open a connection.
type Config struct {
	ReadBufferSize  int
	WriteBufferSize int
	PingInterval    time.Duration
	PongTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxMessageSize  int64
	SendBufferSize  int
	AllowedOrigins  []string
}

func DefaultConfig() *Config {
	return &Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		PingInterval:    54 * time.Second,
		PongTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		MaxMessageSize:  4096,
		SendBufferSize:  256,
		AllowedOrigins:  []string{"*"},
	}
}

// Actions a client may send.
const (
	ActionSubscribe = "subscribe"
	ActionSOS       = "sos"
)

// Message types the server pushes.
const (
	TypeRidesAvailable  = "rides_available"
	TypeError           = "error"
	TypeSOSAcknowledged = "sos_acknowledged"
)

// ClientMessage is the single inbound message shape; Action selects
// which fields matter.
type ClientMessage struct {
	Action      string          `json:"action"`
	Token       string          `json:"token"`
	Pickup      models.Location `json:"pickup_location"`
	Dropoff     models.Location `json:"dropoff_location"`
	Preferences map[string]bool `json:"preferences"`
}

type ServerMessage struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID primitive.ObjectID
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.config.SendBufferSize),
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.hub.config.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Warn("WebSocket read failed")
			}
			break
		}

		if !c.handleMessage(message) {
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes one inbound message. It returns false when
// the connection must close, which happens on any credential failure.
func (c *Client) handleMessage(message []byte) bool {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.hub.logger.WithError(err).Warn("Dropping malformed subscriber message")
		return true
	}

	switch msg.Action {
	case ActionSubscribe:
		_, userID, err := utils.ValidateToken(msg.Token, c.hub.jwtSecret)
		if err != nil {
			c.sendMessage(ServerMessage{Type: TypeError, Message: "Invalid token"})
			return false
		}
		c.userID = userID

		profile := &matching.SearchProfile{
			Pickup:      msg.Pickup,
			Dropoff:     msg.Dropoff,
			Preferences: msg.Preferences,
		}
		c.hub.subscribe(c, profile)

		// The subscriber gets its first personalized list right away.
		ranked := matching.Rank(profile, c.hub.index.Snapshot())
		c.sendMessage(ServerMessage{Type: TypeRidesAvailable, Data: ranked})

	case ActionSOS:
		_, _, err := utils.ValidateToken(msg.Token, c.hub.jwtSecret)
		if err != nil {
			c.sendMessage(ServerMessage{Type: TypeError, Message: "Invalid token"})
			return false
		}
		c.sendMessage(ServerMessage{Type: TypeSOSAcknowledged, Message: "SOS request sent successfully"})

	default:
		c.sendMessage(ServerMessage{Type: TypeError, Message: "Unknown action"})
	}

	return true
}

func (c *Client) sendMessage(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.WithError(err).Error("Failed to marshal server message")
		return
	}

	select {
	case c.send <- data:
	default:
		// Slow consumer: dropping is the contract, the next broadcast
		// carries a full consistent list anyway.
		c.hub.logger.Warn("Subscriber send buffer full, dropping message")
	}
}
