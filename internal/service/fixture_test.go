package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"turingtest-be/internal/model"
	"turingtest-be/internal/pkg/logger"
	"turingtest-be/internal/pkg/password"
	"turingtest-be/internal/pkg/token"
	"turingtest-be/internal/repository/unitofwork"
	"turingtest-be/pkg/database"
	"turingtest-be/pkg/events"

	"github.com/stretchr/testify/require"
)

var cheapArgon2 = password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func newFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	db, err := database.NewSQLiteMemory()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() { _ = database.Close(db) })
	return unitofwork.NewRepositoryFactory(db)
}

var nopLogger logger.ILogger = logger.NewNopLogger()

func newTokens() token.ITokenService {
	return token.NewJWTService("test-secret", 10*time.Hour)
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

// stepClock advances one millisecond per reading.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newStepClock() *stepClock {
	return &stepClock{cur: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Millisecond)
	return c.cur
}
