package api

import (
	"time"

	"messenger/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type createChatRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type chatResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Members   []string  `json:"members"`
}

type messageResponse struct {
	ID        string           `json:"id"`
	ChatID    string           `json:"chat_id"`
	SenderID  string           `json:"sender_id"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
	Files     []domain.FileRef `json:"files,omitempty"`
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func toChatResponse(chat domain.Chat) chatResponse {
	return chatResponse{
		ID:        chat.ID.String(),
		Name:      chat.Name,
		CreatedAt: chat.CreatedAt,
		Members: lo.Map(chat.Members, func(id uuid.UUID, _ int) string {
			return id.String()
		}),
	}
}

func toMessageResponse(message domain.Message) messageResponse {
	return messageResponse{
		ID:        message.ID.String(),
		ChatID:    message.ChatID.String(),
		SenderID:  message.SenderID.String(),
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
		UpdatedAt: message.UpdatedAt,
		Files:     message.Files,
	}
}
