package routes

import (
	"github.com/gin-gonic/gin"

	ws "medihelp/pkg/websocket"
)

// SetupWebSocketRoutes sets up the realtime session endpoint
func SetupWebSocketRoutes(r *gin.Engine, wsHandler *ws.Handler) {
	r.GET("/ws", wsHandler.HandleWebSocket)
}
