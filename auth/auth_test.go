package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "correct horse battery staple"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrong password", hash)
	req.NoError(err)
	req.False(match)
}

func TestComparePassword_RejectsMalformedHash(t *testing.T) {
	req := require.New(t)
	_, err := ComparePassword("whatever", "not-an-encoded-hash")
	req.Error(err)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test-secret", 30*time.Minute)

	token, err := manager.Generate("user-123", "alice")
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := manager.Validate(token)
	req.NoError(err)
	req.Equal("user-123", claims.UserID)
	req.Equal("alice", claims.Username)
	req.Equal("alice", claims.Subject)
	req.WithinDuration(time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test-secret", -1*time.Minute)

	token, err := manager.Generate("user-123", "alice")
	req.NoError(err)

	_, err = manager.Validate(token)
	req.Error(err)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenManager("secret-a", 30*time.Minute)
	verifier := NewTokenManager("secret-b", 30*time.Minute)

	token, err := issuer.Generate("user-123", "alice")
	req.NoError(err)

	_, err = verifier.Validate(token)
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"alice", "alice@example.com", "longenoughpw"}, false},
		{"Invalid email", RegisterRequest{"alice", "notanemail", "longenoughpw"}, true},
		{"Missing username", RegisterRequest{"", "alice@example.com", "longenoughpw"}, true},
		{"Username too short", RegisterRequest{"al", "alice@example.com", "longenoughpw"}, true},
		{"Short password accepted", RegisterRequest{"alice", "alice@example.com", "pw1"}, false},
		{"Missing password", RegisterRequest{"alice", "alice@example.com", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("a-plausibly-long-user-password")
	}
}
