package memory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// chatLock is a one-slot semaphore so waiters can give up on ctx.
type chatLock struct {
	slot chan struct{}
}

// ChatLockRepository hands out one lock per chat id. Idle locks expire
// after idleTTL; an entry is refreshed on every acquire.
type ChatLockRepository struct {
	mu      sync.Mutex
	cache   *cache.Cache
	idleTTL time.Duration
}

func NewChatLockRepository(idleTTL, cleanupInterval time.Duration) *ChatLockRepository {
	return &ChatLockRepository{
		cache:   cache.New(idleTTL, cleanupInterval),
		idleTTL: idleTTL,
	}
}

func (r *ChatLockRepository) lockFor(chatId string) *chatLock {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(chatId); found {
		l := x.(*chatLock)
		r.cache.Set(chatId, l, r.idleTTL)
		return l
	}
	l := &chatLock{slot: make(chan struct{}, 1)}
	r.cache.Set(chatId, l, r.idleTTL)
	return l
}

// Acquire blocks until the chat's lock is free or ctx ends. The returned
// release func must be called exactly once.
func (r *ChatLockRepository) Acquire(ctx context.Context, chatId string) (func(), error) {
	l := r.lockFor(chatId)

	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.slot
		})
	}, nil
}

// Len reports how many chat locks are currently tracked.
func (r *ChatLockRepository) Len() int {
	return r.cache.ItemCount()
}
