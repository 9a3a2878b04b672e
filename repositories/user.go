//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"messenger/domain"
	"messenger/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, email, hashedPassword string) (domain.User, error)
	GetByUsername(username string) (domain.User, error)
	GetByID(id uuid.UUID) (domain.User, error)
	ListOthers(excludeID uuid.UUID) ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// Key layout:
//
//	user:id:{uuid}        -> userRecord (JSON)
//	user:name:{username}  -> user ID
//	user:email:{email}    -> user ID
//
// The two index keys enforce uniqueness: their presence inside the Update txn
// is the authoritative conflict signal, there is no pre-check outside it.
type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func userKey(id string) []byte { return []byte("user:id:" + id) }

func usernameKey(name string) []byte { return []byte("user:name:" + name) }

func emailKey(email string) []byte { return []byte("user:email:" + email) }

// CreateUser persists the user plus both uniqueness index keys in one txn.
// The email is checked before the username, matching the registration contract.
func (u UserRepository) CreateUser(username, email, hashedPassword string) (domain.User, error) {
	newID := uuid.New()
	record := userRecord{
		ID:           newID.String(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrEmailTaken
		}
		if _, err := txn.Get(usernameKey(username)); err == nil {
			return errors.ErrUsernameTaken
		}
		if err := txn.Set(userKey(record.ID), data); err != nil {
			return err
		}
		if err := txn.Set(usernameKey(username), []byte(record.ID)); err != nil {
			return err
		}
		return txn.Set(emailKey(email), []byte(record.ID))
	})
	if err != nil {
		return domain.User{}, err
	}

	return toUser(record)
}

func (u UserRepository) GetByUsername(username string) (domain.User, error) {
	var id string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return domain.User{}, mapBadgerErr(err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.User{}, err
	}
	return u.GetByID(parsed)
}

func (u UserRepository) GetByID(id uuid.UUID) (domain.User, error) {
	var record userRecord
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id.String()))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return domain.User{}, mapBadgerErr(err)
	}
	return toUser(record)
}

// ListOthers scans the user keyspace and returns every user except the caller.
func (u UserRepository) ListOthers(excludeID uuid.UUID) ([]domain.User, error) {
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("user:id:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record userRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			if record.ID == excludeID.String() {
				continue
			}
			user, err := toUser(record)
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		return nil
	})
	return users, err
}

func toUser(record userRecord) (domain.User, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:           id,
		Username:     record.Username,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}, nil
}

func mapBadgerErr(err error) error {
	if err == badger.ErrKeyNotFound {
		return errors.ErrNotFound
	}
	return err
}
