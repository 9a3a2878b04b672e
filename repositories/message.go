//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"messenger/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	ListByChat(chatID uuid.UUID) ([]domain.Message, error)
	Get(id uuid.UUID) (domain.Message, error)
	Update(message domain.Message) error
	Delete(id uuid.UUID) error
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	seq atomic.Uint64
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

// Key layout:
//
//	msg:{chat_id}:{timestamp_padded}:{seq_padded} -> messageRecord (JSON)
//	msgid:{message_id}                            -> chronological key
//
// The 19-digit zero-padded UnixNano makes a prefix scan return messages in
// chronological order. The process-local sequence breaks same-nanosecond ties
// in insertion order. The msgid pointer gives edit/delete O(1) access by ID
// without losing the message's position in the timeline.
type messageRecord struct {
	ID        string           `json:"id"`
	ChatID    string           `json:"chat_id"`
	SenderID  string           `json:"sender_id"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
	Files     []domain.FileRef `json:"files,omitempty"`
}

func messageIDKey(id string) []byte { return []byte("msgid:" + id) }

func (m *MessageRepository) chronoKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%012d",
		message.ChatID,
		message.CreatedAt.UnixNano(),
		m.seq.Add(1),
	))
}

// Store persists the message and its ID pointer in one txn.
func (m *MessageRepository) Store(message domain.Message) error {
	data, err := json.Marshal(fromMessage(message))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	key := m.chronoKey(message)
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(messageIDKey(message.ID.String()), key)
	})
}

// ListByChat returns the chat's messages ordered by CreatedAt ascending, ties
// in insertion order. The ordering falls out of the key layout, no sort pass.
func (m *MessageRepository) ListByChat(chatID uuid.UUID) ([]domain.Message, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(fmt.Sprintf("msg:%s:", chatID))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), val...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	for _, b := range byteMessages {
		var record messageRecord
		if err = json.Unmarshal(b, &record); err != nil {
			return nil, err
		}
		message, err := toMessage(record)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	m.log.Debug("Messages listed", "chat", chatID, "count", len(messages))
	return messages, nil
}

// Get resolves a message by ID through the msgid pointer.
func (m *MessageRepository) Get(id uuid.UUID) (domain.Message, error) {
	var record messageRecord
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(messageIDKey(id.String()))
		if err != nil {
			return err
		}
		var key []byte
		if err = item.Value(func(val []byte) error {
			key = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}
		item, err = txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return domain.Message{}, mapBadgerErr(err)
	}
	return toMessage(record)
}

// Update rewrites the record at its original chronological key, so an edit
// never moves the message in the timeline. Last write commits; there is no
// version check.
func (m *MessageRepository) Update(message domain.Message) error {
	data, err := json.Marshal(fromMessage(message))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return m.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(messageIDKey(message.ID.String()))
		if err != nil {
			return mapBadgerErr(err)
		}
		var key []byte
		if err = item.Value(func(val []byte) error {
			key = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete removes the record and its pointer in one txn. Deletion is permanent;
// files referenced by the message stay on disk.
func (m *MessageRepository) Delete(id uuid.UUID) error {
	return m.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(messageIDKey(id.String()))
		if err != nil {
			return mapBadgerErr(err)
		}
		var key []byte
		if err = item.Value(func(val []byte) error {
			key = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}
		if err = txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIDKey(id.String()))
	})
}

func fromMessage(message domain.Message) messageRecord {
	return messageRecord{
		ID:        message.ID.String(),
		ChatID:    message.ChatID.String(),
		SenderID:  message.SenderID.String(),
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
		UpdatedAt: message.UpdatedAt,
		Files:     message.Files,
	}
}

func toMessage(record messageRecord) (domain.Message, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, err
	}
	chatID, err := uuid.Parse(record.ChatID)
	if err != nil {
		return domain.Message{}, err
	}
	senderID, err := uuid.Parse(record.SenderID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        id,
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   record.Content,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		Files:     record.Files,
	}, nil
}
