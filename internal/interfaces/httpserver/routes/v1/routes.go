package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/support-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register attaches all v1 routes under /api/v1. protected guards everything except auth.
func (r *Routes) Register(engine *gin.Engine, protected gin.HandlerFunc) {
	group := engine.Group("/api/v1")
	registerAuthRoutes(group.Group("/auth"), r.handlers.Auth)

	secured := group.Group("")
	secured.Use(protected)
	registerChatRoutes(secured, r.handlers.Chat, r.handlers.History)
}

func registerAuthRoutes(router gin.IRoutes, handler *handlers.AuthHandler) {
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)
}

func registerChatRoutes(router gin.IRoutes, chat *handlers.ChatHandler, history *handlers.HistoryHandler) {
	router.POST("/ask", chat.Ask)
	router.GET("/history", history.GetHistory)
	router.GET("/conversations", history.ListConversations)
}
