package services

import (
	"fmt"
	"time"

	"messenger/domain"
	"messenger/errors"
	"messenger/repositories"

	"github.com/google/uuid"
)

type IChatService interface {
	Create(requesterID, recipientID uuid.UUID) (domain.Chat, error)
	List(requesterID uuid.UUID) ([]domain.Chat, error)
	Get(requesterID, chatID uuid.UUID) (domain.Chat, error)
}

type ChatService struct {
	chatRepository repositories.IChatRepository
	userRepository repositories.IUserRepository
}

func NewChatService(chats repositories.IChatRepository, users repositories.IUserRepository) IChatService {
	return &ChatService{chatRepository: chats, userRepository: users}
}

// Create opens a chat between the requester and the recipient. The recipient
// must exist and must not be the requester. The chat name is the deterministic
// concatenation of both usernames. Chat row and memberships land in one
// atomic write; nothing prevents two racing calls from creating two chats for
// the same pair.
func (s *ChatService) Create(requesterID, recipientID uuid.UUID) (domain.Chat, error) {
	recipient, err := s.userRepository.GetByID(recipientID)
	if err != nil {
		return domain.Chat{}, fmt.Errorf("recipient: %w", errors.ErrNotFound)
	}
	if recipientID == requesterID {
		return domain.Chat{}, fmt.Errorf("cannot create chat with yourself: %w", errors.ErrInvalidOperation)
	}

	requester, err := s.userRepository.GetByID(requesterID)
	if err != nil {
		return domain.Chat{}, err
	}

	chat := domain.Chat{
		ID:        uuid.New(),
		Name:      fmt.Sprintf("%s and %s", requester.Username, recipient.Username),
		CreatedAt: time.Now().UTC(),
		Members:   []uuid.UUID{requesterID, recipientID},
	}

	if err = s.chatRepository.Create(chat); err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

// List returns every chat the requester belongs to, in no particular order.
// With no intervening writes, repeated calls return the same set.
func (s *ChatService) List(requesterID uuid.UUID) ([]domain.Chat, error) {
	return s.chatRepository.ListByUser(requesterID)
}

// Get returns the chat only for its members; everyone else sees ErrNotFound
// whether the chat exists or not.
func (s *ChatService) Get(requesterID, chatID uuid.UUID) (domain.Chat, error) {
	return s.chatRepository.GetForUser(chatID, requesterID)
}
