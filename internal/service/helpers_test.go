package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/cart"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/db"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository/dao"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []uint
}

func (n *recordingNotifier) NotifyLeaderboard(eventID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventID)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type recordingPublisher struct {
	mu        sync.Mutex
	orderLogs []domain.OrderLog
	shotLogs  []domain.ShotLog
}

func (p *recordingPublisher) PublishOrderLog(_ context.Context, log domain.OrderLog) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orderLogs = append(p.orderLogs, log)
}

func (p *recordingPublisher) PublishShotLog(_ context.Context, log domain.ShotLog) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shotLogs = append(p.shotLogs, log)
}

// testEnv wires every service against a private in-memory database.
type testEnv struct {
	db        *gorm.DB
	store     cart.Store
	notifier  *recordingNotifier
	publisher *recordingPublisher

	events   *EventService
	carts    *CartService
	checkout *CheckoutService
	scoring  *ScoringService
	stats    *StatsService
	audit    *AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithStore(t, cart.NewMemoryStore())
}

func newTestEnvWithStore(t *testing.T, store cart.Store) *testEnv {
	t.Helper()

	env, err := openTestEnvWithStore(store)
	require.NoError(t, err)
	t.Cleanup(env.close)

	return env
}

func openTestEnv() (*testEnv, error) {
	return openTestEnvWithStore(cart.NewMemoryStore())
}

func openTestEnvWithStore(store cart.Store) (*testEnv, error) {
	gdb, err := db.OpenSQLiteMemory(uuid.NewString())
	if err != nil {
		return nil, err
	}

	env := &testEnv{
		db:        gdb,
		store:     store,
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
	}

	teams := repository.NewTeamRepository(dao.NewTeamDAO(gdb))
	env.events = NewEventService(repository.NewEventRepository(dao.NewEventDAO(gdb)))
	env.carts = NewCartService(env.store)
	env.checkout = NewCheckoutService(repository.NewOrderRepository(dao.NewOrderDAO(gdb)), env.store, env.publisher)
	env.scoring = NewScoringService(teams, env.notifier, env.publisher)
	env.stats = NewStatsService(repository.NewStatsRepository(dao.NewStatsDAO(gdb)), teams)
	env.audit = NewAuditService(repository.NewAuditRepository(dao.NewAuditDAO(gdb)))

	return env, nil
}

// cartStores returns one store per backend, the redis one on miniredis.
func cartStores(t *testing.T) map[string]cart.Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]cart.Store{
		"memory": cart.NewMemoryStore(),
		"redis":  cart.NewRedisStore(client, time.Hour),
	}
}

func (e *testEnv) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// activeEvent creates and activates an event with the default catalog and
// both subsystems enabled.
func (e *testEnv) activeEvent(t *testing.T, name string) domain.Event {
	t.Helper()

	ctx := context.Background()
	event, err := e.events.CreateEvent(ctx, domain.Event{
		Name:                name,
		KassensystemEnabled: true,
		ShotcounterEnabled:  true,
	})
	require.NoError(t, err)

	event, err = e.events.ActivateEvent(ctx, event.ID)
	require.NoError(t, err)

	return event
}

func (e *testEnv) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()

	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)

	return n
}

func ptr[T any](v T) *T { return &v }
