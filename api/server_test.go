package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"messenger/auth"
	"messenger/repositories"
	"messenger/services"
	"messenger/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t      *testing.T
	router *gin.Engine
	cfg    testConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := loadTestConfig()
	require.NoError(t, err)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromString("error")
	userRepository := repositories.NewUserRepository(db)
	chatRepository := repositories.NewChatRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log)
	blobStore, err := storage.NewDiskStore(t.TempDir(), log)
	require.NoError(t, err)

	tokens := auth.NewTokenManager("test-secret", 30*time.Minute)
	authService := services.NewAuthService(userRepository, tokens)
	chatService := services.NewChatService(chatRepository, userRepository)
	attachmentService := services.NewAttachmentService(blobStore)
	messageService := services.NewMessageService(messageRepository, chatRepository, attachmentService, log)

	server := NewServer(authService, chatService, messageService, attachmentService, log)
	return &fixture{t: t, router: server.Router(), cfg: cfg}
}

func (f *fixture) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	f.t.Helper()
	httpReq := httptest.NewRequest(method, path, body)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httpReq)
	if f.cfg.DebugBodies {
		f.t.Logf("%s %s -> %d %s", method, path, rec.Code, rec.Body.String())
	}
	return rec
}

func (f *fixture) doJSON(method, path, token string, payload any) *httptest.ResponseRecorder {
	f.t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(f.t, err)
	return f.do(method, path, token, bytes.NewReader(data), "application/json")
}

func (f *fixture) register(username, email, password string) map[string]any {
	f.t.Helper()
	rec := f.doJSON(http.MethodPost, "/register", "", gin.H{
		"username": username, "email": email, "password": password,
	})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(f.t, rec)
}

func (f *fixture) login(username, password string) string {
	f.t.Helper()
	rec := f.doJSON(http.MethodPost, "/login", "", gin.H{
		"username": username, "password": password,
	})
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(f.t, rec)["access_token"].(string)
}

func (f *fixture) sendMessage(token, chatID, content string, files map[string][]byte) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(f.t, w.WriteField("content", content))
	require.NoError(f.t, w.WriteField("chat_id", chatID))
	for name, data := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(f.t, err)
		_, err = fw.Write(data)
		require.NoError(f.t, err)
	}
	require.NoError(f.t, w.Close())
	return f.do(http.MethodPost, "/messages", token, &buf, w.FormDataContentType())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var payload []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

// The full lifecycle: register both users, login, open a chat, send, edit,
// fail a foreign delete, delete, list.
func Test_Scenario_FullMessageLifecycle(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.register("alice", "a@x.com", "password-a1")
	bob := f.register("bob", "b@x.com", "password-b1")

	aliceToken := f.login("alice", "password-a1")
	bobToken := f.login("bob", "password-b1")

	// CreateChat(alice, bob)
	rec := f.doJSON(http.MethodPost, "/chats", aliceToken, gin.H{"recipient_id": bob["id"]})
	req.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	chat := decode(t, rec)
	req.Equal("alice and bob", chat["name"])
	chatID := chat["id"].(string)

	// SendMessage(alice, C, "hi") -> updated_at absent
	rec = f.sendMessage(aliceToken, chatID, "hi", nil)
	req.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	message := decode(t, rec)
	req.Equal("hi", message["content"])
	req.NotContains(message, "updated_at")
	messageID := message["id"].(string)

	// EditMessage(alice, M, "hi!") -> updated_at set
	rec = f.doJSON(http.MethodPut, "/messages/"+messageID, aliceToken, gin.H{"content": "hi!"})
	req.Equal(http.StatusOK, rec.Code, rec.Body.String())
	edited := decode(t, rec)
	req.Equal("hi!", edited["content"])
	req.Contains(edited, "updated_at")

	// DeleteMessage(bob, M) -> Forbidden
	rec = f.do(http.MethodDelete, "/messages/"+messageID, bobToken, nil, "")
	req.Equal(http.StatusForbidden, rec.Code)

	// DeleteMessage(alice, M) -> success
	rec = f.do(http.MethodDelete, "/messages/"+messageID, aliceToken, nil, "")
	req.Equal(http.StatusOK, rec.Code)

	// ListMessages(C) excludes M
	rec = f.do(http.MethodGet, "/messages/"+chatID, aliceToken, nil, "")
	req.Equal(http.StatusOK, rec.Code)
	req.Empty(decodeList(t, rec))
}

func Test_Register_DuplicateEmail_Conflicts(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.register("alice", "a@x.com", "password-a1")

	// Different username, same email
	rec := f.doJSON(http.MethodPost, "/register", "", gin.H{
		"username": "alice2", "email": "a@x.com", "password": "password-a2",
	})
	req.Equal(http.StatusConflict, rec.Code, rec.Body.String())
}

func Test_CreateChat_Errors(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	alice := f.register("alice", "a@x.com", "password-a1")
	token := f.login("alice", "password-a1")

	t.Run("self-chat is rejected", func(t *testing.T) {
		rec := f.doJSON(http.MethodPost, "/chats", token, gin.H{"recipient_id": alice["id"]})
		req.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("unknown recipient yields 404", func(t *testing.T) {
		rec := f.doJSON(http.MethodPost, "/chats", token, gin.H{
			"recipient_id": "00000000-0000-0000-0000-000000000001",
		})
		req.Equal(http.StatusNotFound, rec.Code, rec.Body.String())
	})
}

func Test_GetChat_NonMember_SeesNotFound(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.register("alice", "a@x.com", "password-a1")
	bob := f.register("bob", "b@x.com", "password-b1")
	f.register("clara", "c@x.com", "password-c1")

	aliceToken := f.login("alice", "password-a1")
	claraToken := f.login("clara", "password-c1")

	rec := f.doJSON(http.MethodPost, "/chats", aliceToken, gin.H{"recipient_id": bob["id"]})
	req.Equal(http.StatusCreated, rec.Code)
	chatID := decode(t, rec)["id"].(string)

	// A member sees the chat, a non-member sees the same 404 as for a
	// chat that does not exist.
	rec = f.do(http.MethodGet, "/chats/"+chatID, aliceToken, nil, "")
	req.Equal(http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/chats/"+chatID, claraToken, nil, "")
	req.Equal(http.StatusNotFound, rec.Code)
}

func Test_ListMessages_Ordering_RoundTrip(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.register("alice", "a@x.com", "password-a1")
	bob := f.register("bob", "b@x.com", "password-b1")
	aliceToken := f.login("alice", "password-a1")
	bobToken := f.login("bob", "password-b1")

	rec := f.doJSON(http.MethodPost, "/chats", aliceToken, gin.H{"recipient_id": bob["id"]})
	chatID := decode(t, rec)["id"].(string)

	// Interleaved sends from both parties
	tokens := []string{aliceToken, bobToken, aliceToken, bobToken, aliceToken}
	for i, token := range tokens {
		rec = f.sendMessage(token, chatID, fmt.Sprintf("msg-%d", i), nil)
		req.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = f.do(http.MethodGet, "/messages/"+chatID, aliceToken, nil, "")
	req.Equal(http.StatusOK, rec.Code)
	messages := decodeList(t, rec)
	req.Len(messages, len(tokens))
	for i, message := range messages {
		req.Equal(fmt.Sprintf("msg-%d", i), message["content"])
	}
}

func Test_SendMessage_WithAttachment_And_Fetch(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.register("alice", "a@x.com", "password-a1")
	bob := f.register("bob", "b@x.com", "password-b1")
	aliceToken := f.login("alice", "password-a1")

	rec := f.doJSON(http.MethodPost, "/chats", aliceToken, gin.H{"recipient_id": bob["id"]})
	chatID := decode(t, rec)["id"].(string)

	rec = f.sendMessage(aliceToken, chatID, "see attached", map[string][]byte{
		"note.txt": []byte("attachment body"),
	})
	req.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	message := decode(t, rec)
	files := message["files"].([]any)
	req.Len(files, 1)
	ref := files[0].(map[string]any)
	req.Equal("note.txt", ref["name"])
	req.Equal("/files/note.txt", ref["url"])

	// Retrieval needs no token: inherited behavior, pinned here.
	rec = f.do(http.MethodGet, "/files/note.txt", "", nil, "")
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("attachment body", rec.Body.String())

	rec = f.do(http.MethodGet, "/files/ghost.txt", "", nil, "")
	req.Equal(http.StatusNotFound, rec.Code)
}

func Test_SendMessage_RejectedAttachment_Persists_Nothing(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.register("alice", "a@x.com", "password-a1")
	bob := f.register("bob", "b@x.com", "password-b1")
	aliceToken := f.login("alice", "password-a1")

	rec := f.doJSON(http.MethodPost, "/chats", aliceToken, gin.H{"recipient_id": bob["id"]})
	chatID := decode(t, rec)["id"].(string)

	rec = f.sendMessage(aliceToken, chatID, "smuggle", map[string][]byte{
		"payload.exe": []byte("mz"),
	})
	req.Equal(http.StatusUnsupportedMediaType, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/messages/"+chatID, aliceToken, nil, "")
	req.Empty(decodeList(t, rec))
}

func Test_Protected_Endpoints_Require_Token(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/me"},
		{http.MethodGet, "/users"},
		{http.MethodGet, "/chats"},
		{http.MethodPost, "/chats"},
		{http.MethodGet, "/messages/00000000-0000-0000-0000-000000000001"},
	}
	for _, p := range paths {
		rec := f.do(p.method, p.path, "", nil, "")
		req.Equal(http.StatusUnauthorized, rec.Code, p.path)
	}

	// A syntactically valid but forged token fails the same way
	rec := f.do(http.MethodGet, "/me", "forged.token.value", nil, "")
	req.Equal(http.StatusUnauthorized, rec.Code)
}

func Test_Me_And_ListUsers(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.register("alice", "a@x.com", "password-a1")
	f.register("bob", "b@x.com", "password-b1")
	token := f.login("alice", "password-a1")

	rec := f.do(http.MethodGet, "/me", token, nil, "")
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("alice", decode(t, rec)["username"])

	rec = f.do(http.MethodGet, "/users", token, nil, "")
	req.Equal(http.StatusOK, rec.Code)
	users := decodeList(t, rec)
	req.Len(users, 1)
	req.Equal("bob", users[0]["username"])
}

func Test_ListChats_Idempotent(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.register("alice", "a@x.com", "password-a1")
	bob := f.register("bob", "b@x.com", "password-b1")
	token := f.login("alice", "password-a1")

	rec := f.doJSON(http.MethodPost, "/chats", token, gin.H{"recipient_id": bob["id"]})
	req.Equal(http.StatusCreated, rec.Code)

	first := decodeList(t, f.do(http.MethodGet, "/chats", token, nil, ""))
	second := decodeList(t, f.do(http.MethodGet, "/chats", token, nil, ""))
	req.Equal(first, second)
	req.Len(first, 1)
}
