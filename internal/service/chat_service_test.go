package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"turingtest-be/internal/dto"
	"turingtest-be/internal/pkg/apperror"
	"turingtest-be/internal/repository/memory"
	"turingtest-be/internal/repository/specification"
	"turingtest-be/internal/repository/unitofwork"
	"turingtest-be/pkg/events"
	"turingtest-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type chatFixture struct {
	svc     IChatService
	factory unitofwork.RepositoryFactory
	events  *recorder
}

func echoGenerator() llm.ReplyGenerator {
	return llm.GeneratorFunc(func(_ context.Context, req llm.ReplyRequest) (*llm.Reply, error) {
		return &llm.Reply{Provider: "test-llm", Message: "echo: " + req.Prompt, DelayMs: 2000}, nil
	})
}

func newChatFixture(t *testing.T, generator llm.ReplyGenerator) *chatFixture {
	t.Helper()
	factory := newFactory(t)
	rec := &recorder{}
	svc := NewChatService(factory, generator, memory.NewChatLockRepository(time.Minute, time.Minute), rec, nopLogger)
	svc.(*chatService).now = newStepClock().Now
	return &chatFixture{svc: svc, factory: factory, events: rec}
}

func (f *chatFixture) messageCount(t *testing.T, chatId string) int64 {
	t.Helper()
	ctx := context.Background()
	n, err := f.factory.NewUnitOfWork(ctx).ChatMessageRepository().Count(ctx, specification.ByChatID{ChatID: chatId})
	require.NoError(t, err)
	return n
}

func TestCreateChatWithoutSeed(t *testing.T) {
	f := newChatFixture(t, echoGenerator())
	userId := bson.NewObjectID().Hex()

	resp, err := f.svc.CreateChat(context.Background(), userId, "bob@example.com", &dto.CreateChatRequest{Title: "   "})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "Chat created", resp.Message)
	assert.Equal(t, "New Chat", resp.Chat.Title)
	assert.Equal(t, userId, resp.Chat.User)
	assert.Empty(t, resp.Messages)
	assert.NotNil(t, resp.Messages)
	assert.Nil(t, resp.Metadata)
	assert.Equal(t, []string{events.ChatCreated}, f.events.types())
}

func TestCreateChatWithSeed(t *testing.T) {
	f := newChatFixture(t, echoGenerator())
	userId := bson.NewObjectID().Hex()

	resp, err := f.svc.CreateChat(context.Background(), userId, "bob@example.com", &dto.CreateChatRequest{
		Title:   " Trip ideas ",
		Message: "  where to go in march?  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Trip ideas", resp.Chat.Title)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "where to go in march?", resp.Messages[0].Content)
	assert.Equal(t, "assistant", resp.Messages[1].Role)
	assert.Equal(t, "echo: where to go in march?", resp.Messages[1].Content)
	assert.False(t, resp.Messages[1].CreatedAt.Before(resp.Messages[0].CreatedAt))

	require.NotNil(t, resp.Metadata)
	assert.Equal(t, int64(2000), resp.Metadata.DelayMs)
	assert.True(t, resp.Chat.LastMessageAt.Equal(resp.Messages[1].CreatedAt))
	assert.True(t, resp.Chat.UpdatedAt.Equal(resp.Messages[1].CreatedAt))

	assert.Equal(t, int64(2), f.messageCount(t, resp.Chat.Id))
	assert.Equal(t, []string{events.ChatCreated, events.ChatExchangeCompleted}, f.events.types())
}

func TestPostMessageAppendsExchange(t *testing.T) {
	f := newChatFixture(t, echoGenerator())
	ctx := context.Background()
	userId := bson.NewObjectID().Hex()

	created, err := f.svc.CreateChat(ctx, userId, "bob@example.com", &dto.CreateChatRequest{Message: "first"})
	require.NoError(t, err)

	resp, err := f.svc.PostMessage(ctx, userId, "bob@example.com", created.Chat.Id, &dto.PostMessageRequest{Content: " second "})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "Reply generated", resp.Message)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "second", resp.Messages[0].Content)
	assert.Equal(t, int64(2000), resp.Metadata.DelayMs)
	assert.True(t, resp.Chat.LastMessageAt.After(created.Chat.LastMessageAt))

	transcript, err := f.svc.GetChatMessages(ctx, userId, created.Chat.Id)
	require.NoError(t, err)
	require.Len(t, transcript.Messages, 4)
	var contents []string
	for _, m := range transcript.Messages {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"first", "echo: first", "second", "echo: second"}, contents)
}

func TestPostMessageRejectsBlankContent(t *testing.T) {
	f := newChatFixture(t, echoGenerator())
	userId := bson.NewObjectID().Hex()

	created, err := f.svc.CreateChat(context.Background(), userId, "", &dto.CreateChatRequest{})
	require.NoError(t, err)

	_, err = f.svc.PostMessage(context.Background(), userId, "", created.Chat.Id, &dto.PostMessageRequest{Content: " \n\t "})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Zero(t, f.messageCount(t, created.Chat.Id))
}

func TestForeignChatIsNotFound(t *testing.T) {
	f := newChatFixture(t, echoGenerator())
	ctx := context.Background()
	owner, intruder := bson.NewObjectID().Hex(), bson.NewObjectID().Hex()

	created, err := f.svc.CreateChat(ctx, owner, "", &dto.CreateChatRequest{Message: "private"})
	require.NoError(t, err)

	_, err = f.svc.GetChatMessages(ctx, intruder, created.Chat.Id)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = f.svc.PostMessage(ctx, intruder, "", created.Chat.Id, &dto.PostMessageRequest{Content: "hi"})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	assert.Equal(t, "Chat not found", apperror.From(err).Message)

	_, err = f.svc.GetChatMessages(ctx, owner, bson.NewObjectID().Hex())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	list, err := f.svc.ListChats(ctx, intruder)
	require.NoError(t, err)
	assert.Empty(t, list.Chats)
	assert.Equal(t, int64(2), f.messageCount(t, created.Chat.Id))
}

func TestGeneratorFailureStoresNothing(t *testing.T) {
	failing := llm.GeneratorFunc(func(context.Context, llm.ReplyRequest) (*llm.Reply, error) {
		return nil, errors.New("model unavailable")
	})
	f := newChatFixture(t, failing)
	ctx := context.Background()
	userId := bson.NewObjectID().Hex()

	created, err := f.svc.CreateChat(ctx, userId, "", &dto.CreateChatRequest{})
	require.NoError(t, err)

	_, err = f.svc.PostMessage(ctx, userId, "", created.Chat.Id, &dto.PostMessageRequest{Content: "hello"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.From(err).Kind)
	assert.Zero(t, f.messageCount(t, created.Chat.Id))

	transcript, err := f.svc.GetChatMessages(ctx, userId, created.Chat.Id)
	require.NoError(t, err)
	assert.True(t, transcript.Chat.LastMessageAt.Equal(created.Chat.LastMessageAt))
	assert.NotContains(t, f.events.types(), events.ChatExchangeCompleted)
}

func TestConcurrentPostsAreSerialized(t *testing.T) {
	var inFlight, maxInFlight int32
	slow := llm.GeneratorFunc(func(_ context.Context, req llm.ReplyRequest) (*llm.Reply, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return &llm.Reply{Provider: "test-llm", Message: "re: " + req.Prompt}, nil
	})
	f := newChatFixture(t, slow)
	ctx := context.Background()
	userId := bson.NewObjectID().Hex()

	created, err := f.svc.CreateChat(ctx, userId, "", &dto.CreateChatRequest{})
	require.NoError(t, err)

	const posts = 5
	var wg sync.WaitGroup
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.PostMessage(ctx, userId, "", created.Chat.Id, &dto.PostMessageRequest{Content: fmt.Sprintf("msg %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))

	transcript, err := f.svc.GetChatMessages(ctx, userId, created.Chat.Id)
	require.NoError(t, err)
	require.Len(t, transcript.Messages, 2*posts)
	for i := 0; i < len(transcript.Messages); i += 2 {
		user, reply := transcript.Messages[i], transcript.Messages[i+1]
		assert.Equal(t, "user", user.Role)
		assert.Equal(t, "assistant", reply.Role)
		assert.Equal(t, "re: "+user.Content, reply.Content)
	}
}

func TestListChatsByRecentActivity(t *testing.T) {
	f := newChatFixture(t, echoGenerator())
	ctx := context.Background()
	userId := bson.NewObjectID().Hex()

	older, err := f.svc.CreateChat(ctx, userId, "", &dto.CreateChatRequest{Title: "older"})
	require.NoError(t, err)
	_, err = f.svc.CreateChat(ctx, userId, "", &dto.CreateChatRequest{Title: "newer"})
	require.NoError(t, err)

	list, err := f.svc.ListChats(ctx, userId)
	require.NoError(t, err)
	require.Len(t, list.Chats, 2)
	assert.Equal(t, "newer", list.Chats[0].Title)

	_, err = f.svc.PostMessage(ctx, userId, "", older.Chat.Id, &dto.PostMessageRequest{Content: "bump"})
	require.NoError(t, err)

	list, err = f.svc.ListChats(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, "older", list.Chats[0].Title)
	assert.Equal(t, http.StatusOK, list.Status)
}
