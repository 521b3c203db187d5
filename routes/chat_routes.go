package routes

import (
	"github.com/gin-gonic/gin"

	"medihelp/internal/handlers"
)

// SetupChatRoutes sets up routes for conversations and messages
func SetupChatRoutes(r *gin.RouterGroup, chatHandler *handlers.ChatHandler, authRequired gin.HandlerFunc) {
	conversations := r.Group("/conversations")
	conversations.Use(authRequired)
	{
		conversations.GET("", chatHandler.GetConversations)
		conversations.POST("", chatHandler.CreateConversation)
		conversations.GET("/:id", chatHandler.GetConversation)
		conversations.GET("/:id/messages", chatHandler.GetMessages)
		conversations.POST("/:id/messages", chatHandler.SendMessage)
		conversations.POST("/:id/read", chatHandler.MarkRead)
		conversations.GET("/:id/search", chatHandler.SearchMessages)
	}
}
