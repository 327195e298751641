package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"turingtest-be/internal/bootstrap"
	"turingtest-be/internal/config"
	"turingtest-be/internal/model"
	"turingtest-be/internal/pkg/logger"
	"turingtest-be/internal/pkg/password"
	"turingtest-be/pkg/database"
	"turingtest-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:               "turingtest-test",
			Port:               "0",
			Environment:        "test",
			CorsAllowedOrigins: "http://localhost:5173",
			BodyLimitBytes:     64 * 1024,
			RateLimitMax:       10000,
			RateLimitWindow:    time.Minute,
		},
		Auth: config.AuthConfig{JwtSecret: "test-secret", TokenTTL: 10 * time.Hour},
		Llm:  config.LLMConfig{Provider: "simulated"},
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.NewSQLiteMemory()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	ctx, cancel := context.WithCancel(context.Background())
	generator := llm.GeneratorFunc(func(_ context.Context, req llm.ReplyRequest) (*llm.Reply, error) {
		return &llm.Reply{Provider: "simulated-llm", Message: "You said: " + req.Prompt, DelayMs: 1000}, nil
	})
	container, err := bootstrap.NewContainer(ctx, db, testConfig(),
		bootstrap.WithLogger(logger.NewNopLogger()),
		bootstrap.WithReplyGenerator(generator),
		bootstrap.WithPasswordHasher(password.NewArgon2Hasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})),
	)
	require.NoError(t, err)
	require.NoError(t, container.Start(ctx))

	t.Cleanup(func() {
		cancel()
		_ = container.Close()
		_ = database.Close(db)
	})
	return New(testConfig(), container).GetApp()
}

type call struct {
	method  string
	path    string
	body    interface{}
	raw     string
	token   string
	headers map[string]string
}

func do(t *testing.T, app *fiber.App, c call, out interface{}) int {
	t.Helper()
	var reader io.Reader
	switch {
	case c.raw != "":
		reader = strings.NewReader(c.raw)
	case c.body != nil:
		payload, err := json.Marshal(c.body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(c.method, c.path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out), string(data))
	}
	return resp.StatusCode
}

type authBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    struct {
		Id    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type chatBody struct {
	Id            string    `json:"id"`
	Title         string    `json:"title"`
	User          string    `json:"user"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

type messageBody struct {
	Id      string `json:"id"`
	Chat    string `json:"chat"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

type exchangeBody struct {
	Status   int           `json:"status"`
	Message  string        `json:"message"`
	Chat     chatBody      `json:"chat"`
	Messages []messageBody `json:"messages"`
	Metadata *struct {
		DelayMs int64 `json:"delayMs"`
	} `json:"metadata"`
}

type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func register(t *testing.T, app *fiber.App, email string) authBody {
	t.Helper()
	var out authBody
	status := do(t, app, call{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{"email": email, "password": "Passw0rd!"}}, &out)
	require.Equal(t, http.StatusCreated, status)
	return out
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	var out errorBody
	assert.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/health"}, &out))
	assert.Equal(t, errorBody{Status: 200, Message: "OK"}, out)
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	registered := register(t, app, "Bob@Example.com")
	assert.Equal(t, "Account created", registered.Message)
	assert.Equal(t, "bob@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.Token)

	var dup errorBody
	status := do(t, app, call{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{"email": "bob@example.com", "password": "Passw0rd!"}}, &dup)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, errorBody{Status: 409, Message: "Email already registered"}, dup)

	var bad errorBody
	status = do(t, app, call{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{"email": "bob@example.com", "password": "wrong-pass"}}, &bad)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", bad.Message)

	var login authBody
	status = do(t, app, call{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{"email": "bob@example.com", "password": "Passw0rd!"}}, &login)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Logged in", login.Message)
	assert.Equal(t, registered.User.Id, login.User.Id)

	var me authBody
	status = do(t, app, call{method: http.MethodGet, path: "/api/auth/me", token: login.Token}, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, registered.User.Id, me.User.Id)

	status = do(t, app, call{method: http.MethodGet, path: "/api/auth/me", headers: map[string]string{"access_token": login.Token}}, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRequestValidation(t *testing.T) {
	app := newTestApp(t)
	tok := register(t, app, "bob@example.com").Token

	tests := []struct {
		name    string
		call    call
		message string
	}{
		{"missing password", call{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{"email": "a@b.io"}}, `"password" is required`},
		{"invalid json", call{method: http.MethodPost, path: "/api/auth/login", raw: "{not json"}, "Request body must be valid JSON"},
		{"short chat id", call{method: http.MethodGet, path: "/api/chats/abc/messages", token: tok}, `"chatId" length must be 24 characters long`},
		{"empty content", call{method: http.MethodPost, path: "/api/chats/665a4d99285fddae50a0d5b1/messages", token: tok, body: map[string]string{"content": "   "}}, `"content" is required`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out errorBody
			assert.Equal(t, http.StatusBadRequest, do(t, app, tt.call, &out))
			assert.Equal(t, tt.message, out.Message)
			assert.Equal(t, 400, out.Status)
		})
	}
}

func TestChatsRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, tok := range []string{"", "not-a-token"} {
		var out errorBody
		assert.Equal(t, http.StatusUnauthorized, do(t, app, call{method: http.MethodGet, path: "/api/chats", token: tok}, &out))
		assert.Equal(t, "Unauthorized", out.Message)
	}
}

func TestChatExchange(t *testing.T) {
	app := newTestApp(t)
	tok := register(t, app, "bob@example.com").Token

	var created exchangeBody
	status := do(t, app, call{method: http.MethodPost, path: "/api/chats", token: tok, body: map[string]string{"message": "Hello there"}}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Chat created", created.Message)
	assert.Equal(t, "New Chat", created.Chat.Title)
	require.Len(t, created.Messages, 2)
	assert.Equal(t, "You said: Hello there", created.Messages[1].Content)
	require.NotNil(t, created.Metadata)
	assert.Equal(t, int64(1000), created.Metadata.DelayMs)

	// Ids are accepted in any case.
	path := "/api/chats/" + strings.ToUpper(created.Chat.Id) + "/messages"
	var posted exchangeBody
	status = do(t, app, call{method: http.MethodPost, path: path, token: tok, body: map[string]string{"content": "  again  "}}, &posted)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Reply generated", posted.Message)
	require.Len(t, posted.Messages, 2)
	assert.Equal(t, "again", posted.Messages[0].Content)
	assert.Equal(t, created.Chat.Id, posted.Messages[0].Chat)

	var transcript exchangeBody
	status = do(t, app, call{method: http.MethodGet, path: "/api/chats/" + created.Chat.Id + "/messages", token: tok}, &transcript)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, transcript.Messages, 4)
	assert.Equal(t, []string{"user", "assistant", "user", "assistant"}, []string{
		transcript.Messages[0].Role, transcript.Messages[1].Role, transcript.Messages[2].Role, transcript.Messages[3].Role,
	})

	var list struct {
		Status int        `json:"status"`
		Chats  []chatBody `json:"chats"`
	}
	status = do(t, app, call{method: http.MethodGet, path: "/api/chats", token: tok}, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Chats, 1)
	assert.Equal(t, created.Chat.Id, list.Chats[0].Id)
}

func TestForeignChatIsHidden(t *testing.T) {
	app := newTestApp(t)
	owner := register(t, app, "bob@example.com").Token
	intruder := register(t, app, "eve@example.com").Token

	var created exchangeBody
	require.Equal(t, http.StatusCreated, do(t, app, call{method: http.MethodPost, path: "/api/chats", token: owner, body: map[string]string{"title": "Private"}}, &created))

	var out errorBody
	status := do(t, app, call{method: http.MethodGet, path: "/api/chats/" + created.Chat.Id + "/messages", token: intruder}, &out)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Chat not found", out.Message)

	status = do(t, app, call{method: http.MethodPost, path: "/api/chats/" + created.Chat.Id + "/messages", token: intruder, body: map[string]string{"content": "hi"}}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	app := newTestApp(t)
	tok := register(t, app, "bob@example.com").Token

	assert.Equal(t, http.StatusUnauthorized, do(t, app, call{method: http.MethodGet, path: "/api/ws/chats"}, nil))
	assert.Equal(t, http.StatusUpgradeRequired, do(t, app, call{method: http.MethodGet, path: "/api/ws/chats?token=" + tok}, nil))
}
