package services

import (
	"fmt"
	"log/slog"
	"time"

	"messenger/domain"
	"messenger/errors"
	"messenger/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageService interface {
	Send(requesterID, chatID uuid.UUID, content string, uploads []Upload) (domain.Message, error)
	List(chatID uuid.UUID) ([]domain.Message, error)
	Edit(requesterID, messageID uuid.UUID, content string) (domain.Message, error)
	Delete(requesterID, messageID uuid.UUID) error
}

type MessageService struct {
	messageRepository repositories.IMessageRepository
	chatRepository    repositories.IChatRepository
	attachments       IAttachmentService
	log               *slog.Logger
}

func NewMessageService(
	messages repositories.IMessageRepository,
	chats repositories.IChatRepository,
	attachments IAttachmentService,
	log *slog.Logger,
) IMessageService {
	return &MessageService{
		messageRepository: messages,
		chatRepository:    chats,
		attachments:       attachments,
		log:               log,
	}
}

// Send stores the attachments first, then persists the message with the
// resulting refs in upload order. Non-members get ErrNotFound, the same answer
// as for a chat that does not exist.
func (s *MessageService) Send(requesterID, chatID uuid.UUID, content string, uploads []Upload) (domain.Message, error) {
	member, err := s.chatRepository.IsMember(requesterID, chatID)
	if err != nil {
		return domain.Message{}, err
	}
	if !member {
		return domain.Message{}, fmt.Errorf("chat: %w", errors.ErrNotFound)
	}

	var refs []domain.FileRef
	if len(uploads) > 0 {
		if refs, err = s.attachments.Store(uploads); err != nil {
			return domain.Message{}, err
		}
	}

	message := domain.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  requesterID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Files:     refs,
	}

	if err = s.messageRepository.Store(message); err != nil {
		return domain.Message{}, err
	}

	s.log.Debug("Message sent", "chat", chatID, "sender", requesterID, "files", len(refs))
	return message, nil
}

// List returns the chat's messages in ascending CreatedAt order, ties in
// insertion order. It performs no membership check: any authenticated caller
// who knows a chat ID can read its history. Inherited from the observed
// system and deliberately left as is.
func (s *MessageService) List(chatID uuid.UUID) ([]domain.Message, error) {
	return s.messageRepository.ListByChat(chatID)
}

// Edit replaces the content and stamps UpdatedAt. Only the sender may edit;
// concurrent edits race at the storage layer, last write commits.
func (s *MessageService) Edit(requesterID, messageID uuid.UUID, content string) (domain.Message, error) {
	message, err := s.messageRepository.Get(messageID)
	if err != nil {
		return domain.Message{}, err
	}
	if message.SenderID != requesterID {
		return domain.Message{}, errors.ErrForbidden
	}

	message.Content = content
	message.UpdatedAt = lo.ToPtr(time.Now().UTC())

	if err = s.messageRepository.Update(message); err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// Delete permanently removes the message. Attachments on disk are not cleaned
// up. Same ownership rule as Edit.
func (s *MessageService) Delete(requesterID, messageID uuid.UUID) error {
	message, err := s.messageRepository.Get(messageID)
	if err != nil {
		return err
	}
	if message.SenderID != requesterID {
		return errors.ErrForbidden
	}
	return s.messageRepository.Delete(messageID)
}
