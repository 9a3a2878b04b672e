// Package api maps the HTTP surface onto the service contracts. Handlers stay
// thin: bind, delegate, map errors. All access decisions live in the services.
package api

import (
	"log/slog"

	"messenger/errors"
	"messenger/services"

	"github.com/gin-gonic/gin"
)

type Server struct {
	authService    services.IAuthService
	chatService    services.IChatService
	messageService services.IMessageService
	attachments    services.IAttachmentService
	log            *slog.Logger
}

func NewServer(
	authService services.IAuthService,
	chatService services.IChatService,
	messageService services.IMessageService,
	attachments services.IAttachmentService,
	log *slog.Logger,
) *Server {
	return &Server{
		authService:    authService,
		chatService:    chatService,
		messageService: messageService,
		attachments:    attachments,
		log:            log,
	}
}

// Router wires one endpoint per lifecycle operation. Everything below the
// auth middleware requires a bearer token.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Welcome to Messenger API"})
	})
	r.GET("/health", s.Health)
	r.POST("/register", s.Register)
	r.POST("/login", s.Login)

	// File retrieval is deliberately outside the auth group: the observed
	// system applies no access control here.
	r.GET("/files/:filename", s.FetchFile)

	protected := r.Group("/")
	protected.Use(s.RequireAuth())
	{
		protected.POST("/logout", s.Logout)
		protected.GET("/me", s.Me)
		protected.GET("/users", s.ListUsers)

		protected.POST("/chats", s.CreateChat)
		protected.GET("/chats", s.ListChats)
		protected.GET("/chats/:id", s.GetChat)

		protected.POST("/messages", s.SendMessage)
		protected.GET("/messages/:chatId", s.ListMessages)
		protected.PUT("/messages/:id", s.EditMessage)
		protected.DELETE("/messages/:id", s.DeleteMessage)
	}

	return r
}

// fail converts a service error into the uniform error envelope.
func (s *Server) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.log.Error("Request failed", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
