package ws

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/medidesk/medidesk/internal/platform/auth"
)

const sendBuffer = 256

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the HTTP layer.
	},
}

// Handler upgrades HTTP connections and pumps messages between the socket
// and the hub.
type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes registers the WebSocket endpoint. The route sits behind the
// bearer middleware, so the connecting identity is already on the context.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", h.HandleConnect)
}

func (h *Handler) HandleConnect(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	username := ""
	if ident := auth.FromContext(c.Request().Context()); ident != nil {
		username = ident.Username
	}

	client := &Client{
		ID:       uuid.New().String(),
		Username: username,
		Send:     make(chan []byte, sendBuffer),
	}
	h.hub.Register(client)

	go h.writePump(client, conn)
	go h.readPump(client, conn)

	return nil
}

func (h *Handler) readPump(client *Client, conn *gorillaws.Conn) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var frame clientFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			continue // Ignore malformed frames.
		}
		h.hub.relay(client, frame)
	}
}

func (h *Handler) writePump(client *Client, conn *gorillaws.Conn) {
	defer conn.Close()

	for message := range client.Send {
		if err := conn.WriteMessage(gorillaws.TextMessage, message); err != nil {
			break
		}
	}
}
