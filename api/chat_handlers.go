package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"messenger/domain"
)

// CreateChat opens a two-party chat with the given recipient.
func (s *Server) CreateChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient_id"})
		return
	}

	chat, err := s.chatService.Create(currentUser(c).ID, recipientID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toChatResponse(chat))
}

// ListChats returns the caller's chats.
func (s *Server) ListChats(c *gin.Context) {
	chats, err := s.chatService.List(currentUser(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(chats, func(chat domain.Chat, _ int) chatResponse {
		return toChatResponse(chat)
	}))
}

// GetChat returns one chat, or 404 for non-members and unknown IDs alike.
func (s *Server) GetChat(c *gin.Context) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	chat, err := s.chatService.Get(currentUser(c).ID, chatID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toChatResponse(chat))
}
