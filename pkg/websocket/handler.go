package websocket

import (
	"net/http"

	"carpool/internal/matching"
	"carpool/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewHandler(index *matching.ActiveRideIndex, jwtSecret string, config *Config, log *logger.Logger) *Handler {
	hub := NewHub(index, jwtSecret, config, log)
	go hub.Run()

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  hub.config.ReadBufferSize,
			WriteBufferSize: hub.config.WriteBufferSize,
			CheckOrigin:     originChecker(hub.config.AllowedOrigins),
		},
	}
}

// originChecker allows requests without an Origin header, any origin
// when "*" is configured, and otherwise only exact matches.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket upgrades the connection. Identity is not checked at
// upgrade time; every subscribe/sos message carries its own credential.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (h *Handler) GetHub() *Hub {
	return h.hub
}
