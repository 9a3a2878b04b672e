package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"messenger/domain"
	"messenger/services"
)

// SendMessage accepts a multipart form: content, chat_id and optional files.
func (s *Server) SendMessage(c *gin.Context) {
	content := c.PostForm("content")
	chatID, err := uuid.Parse(c.PostForm("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var uploads []services.Upload
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			s.fail(c, err)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			s.fail(c, err)
			return
		}
		uploads = append(uploads, services.Upload{
			Name: fh.Filename,
			Size: fh.Size,
			Data: data,
		})
	}

	message, err := s.messageService.Send(currentUser(c).ID, chatID, content, uploads)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(message))
}

// ListMessages returns a chat's history in ascending creation order.
func (s *Server) ListMessages(c *gin.Context) {
	chatID, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	messages, err := s.messageService.List(chatID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return toMessageResponse(m)
	}))
}

// EditMessage replaces a message's content; sender only.
func (s *Server) EditMessage(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := s.messageService.Edit(currentUser(c).ID, messageID, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toMessageResponse(message))
}

// DeleteMessage permanently removes a message; sender only.
func (s *Server) DeleteMessage(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := s.messageService.Delete(currentUser(c).ID, messageID); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
