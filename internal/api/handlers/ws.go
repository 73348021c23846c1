package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	ws "go-task-organizer/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Subscribe upgrades the request to a websocket that receives change
// notifications until the client disconnects.
func (h *Handler) Subscribe(c *gin.Context) {
	if h.ws == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "change feed disabled"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := &ws.Client{Conn: conn}
	h.ws.RegisterClient(client)
	defer h.ws.UnregisterClient(client)

	// Drain reads so close frames are processed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
