//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"messenger/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IChatRepository interface {
	Create(chat domain.Chat) error
	GetForUser(chatID, userID uuid.UUID) (domain.Chat, error)
	ListByUser(userID uuid.UUID) ([]domain.Chat, error)
	IsMember(userID, chatID uuid.UUID) (bool, error)
}

type ChatRepository struct {
	db *badger.DB
}

func NewChatRepository(db *badger.DB) IChatRepository {
	return &ChatRepository{db: db}
}

// Key layout:
//
//	chat:{chat_id}                 -> chatRecord (JSON)
//	member:{chat_id}:{user_id}     -> chat ID (membership, composite-unique by key)
//	userchat:{user_id}:{chat_id}   -> chat ID (reverse index for ListByUser)
type chatRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Members   []string  `json:"members"`
}

func chatKey(id string) []byte { return []byte("chat:" + id) }

func memberKey(chatID, userID string) []byte {
	return []byte(fmt.Sprintf("member:%s:%s", chatID, userID))
}

func userChatKey(userID, chatID string) []byte {
	return []byte(fmt.Sprintf("userchat:%s:%s", userID, chatID))
}

// Create writes the chat row, both membership keys and both reverse-index keys
// in a single Update txn. A chat row without its memberships is never
// observable to other operations.
func (c ChatRepository) Create(chat domain.Chat) error {
	record := chatRecord{
		ID:        chat.ID.String(),
		Name:      chat.Name,
		CreatedAt: chat.CreatedAt,
	}
	for _, m := range chat.Members {
		record.Members = append(record.Members, m.String())
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(chatKey(record.ID), data); err != nil {
			return err
		}
		for _, m := range record.Members {
			if err := txn.Set(memberKey(record.ID, m), []byte(record.ID)); err != nil {
				return err
			}
			if err := txn.Set(userChatKey(m, record.ID), []byte(record.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetForUser returns the chat only when the user is a member. A missing chat
// and a membership miss are the same ErrNotFound, so existence never leaks.
func (c ChatRepository) GetForUser(chatID, userID uuid.UUID) (domain.Chat, error) {
	var record chatRecord
	err := c.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(memberKey(chatID.String(), userID.String())); err != nil {
			return err
		}
		item, err := txn.Get(chatKey(chatID.String()))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return domain.Chat{}, mapBadgerErr(err)
	}
	return toChat(record)
}

// ListByUser scans the reverse index, then resolves each chat row. Order is
// not part of the contract.
func (c ChatRepository) ListByUser(userID uuid.UUID) ([]domain.Chat, error) {
	var chatIDs []string
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("userchat:" + userID.String() + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				chatIDs = append(chatIDs, string(val))
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

	var chats []domain.Chat
	err = c.db.View(func(txn *badger.Txn) error {
		for _, id := range chatIDs {
			item, err := txn.Get(chatKey(id))
			if err != nil {
				return err
			}
			var record chatRecord
			if err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			chat, err := toChat(record)
			if err != nil {
				return err
			}
			chats = append(chats, chat)
		}
		return nil
	})
	return chats, err
}

// IsMember is the membership gate used by every chat-scoped operation.
func (c ChatRepository) IsMember(userID, chatID uuid.UUID) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(memberKey(chatID.String(), userID.String()))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func toChat(record chatRecord) (domain.Chat, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Chat{}, err
	}
	chat := domain.Chat{
		ID:        id,
		Name:      record.Name,
		CreatedAt: record.CreatedAt,
	}
	for _, m := range record.Members {
		memberID, err := uuid.Parse(m)
		if err != nil {
			return domain.Chat{}, err
		}
		chat.Members = append(chat.Members, memberID)
	}
	return chat, nil
}
