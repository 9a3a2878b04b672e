package repositories

import (
	"testing"
	"time"

	"messenger/domain"
	"messenger/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestChat(members ...uuid.UUID) domain.Chat {
	return domain.Chat{
		ID:        uuid.New(),
		Name:      "alice and bob",
		CreatedAt: time.Now().UTC(),
		Members:   members,
	}
}

func Test_CreateChat_MembershipIsAtomic(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))

	alice, bob := uuid.New(), uuid.New()
	chat := newTestChat(alice, bob)
	req.NoError(repository.Create(chat))

	// Both members see the chat immediately after Create returns
	for _, member := range []uuid.UUID{alice, bob} {
		ok, err := repository.IsMember(member, chat.ID)
		req.NoError(err)
		req.True(ok)

		fetched, err := repository.GetForUser(chat.ID, member)
		req.NoError(err)
		req.Equal(chat.ID, fetched.ID)
		req.Equal(chat.Name, fetched.Name)
		req.ElementsMatch(chat.Members, fetched.Members)
	}
}

func Test_GetForUser_NonMember_NotFound(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))

	chat := newTestChat(uuid.New(), uuid.New())
	req.NoError(repository.Create(chat))

	stranger := uuid.New()
	_, err := repository.GetForUser(chat.ID, stranger)
	req.ErrorIs(err, errors.ErrNotFound)

	// Unknown chat yields the same error as lacking access
	_, err = repository.GetForUser(uuid.New(), stranger)
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_ListByUser_ReturnsOnlyOwnChats(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))

	alice, bob, clara := uuid.New(), uuid.New(), uuid.New()
	aliceBob := newTestChat(alice, bob)
	aliceClara := newTestChat(alice, clara)
	bobClara := newTestChat(bob, clara)
	for _, chat := range []domain.Chat{aliceBob, aliceClara, bobClara} {
		req.NoError(repository.Create(chat))
	}

	chats, err := repository.ListByUser(alice)
	req.NoError(err)
	req.Len(chats, 2)

	// Repeated reads with no writes in between return the same set
	again, err := repository.ListByUser(alice)
	req.NoError(err)
	req.ElementsMatch(chats, again)
}
