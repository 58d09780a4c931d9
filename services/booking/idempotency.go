package booking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"chelmassage/models"

	"github.com/go-redis/redis/v8"
)

const idempotencyPrefix = "booking:idem:"

// IdempotencyStore remembers completed bookings by client-supplied key so a
// retried POST does not create a second calendar event.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*models.BookingConfirmation, bool, error)
	Put(ctx context.Context, key string, conf models.BookingConfirmation) error
}

type storedConfirmation struct {
	Message   string `json:"message"`
	EventLink string `json:"eventLink"`
	EventID   string `json:"eventId"`
}

func toStored(c models.BookingConfirmation) storedConfirmation {
	return storedConfirmation{Message: c.Message, EventLink: c.EventLink, EventID: c.EventID}
}

func (s storedConfirmation) confirmation() *models.BookingConfirmation {
	return &models.BookingConfirmation{Message: s.Message, EventLink: s.EventLink, EventID: s.EventID}
}

// RedisIdempotencyStore keeps keys in Redis with a TTL.
type RedisIdempotencyStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{Client: client, TTL: ttl}
}

func (r *RedisIdempotencyStore) Get(ctx context.Context, key string) (*models.BookingConfirmation, bool, error) {
	raw, err := r.Client.Get(ctx, idempotencyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var stored storedConfirmation
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, err
	}
	return stored.confirmation(), true, nil
}

func (r *RedisIdempotencyStore) Put(ctx context.Context, key string, conf models.BookingConfirmation) error {
	raw, err := json.Marshal(toStored(conf))
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, idempotencyPrefix+key, raw, r.TTL).Err()
}

type memoryEntry struct {
	stored    storedConfirmation
	expiresAt time.Time
}

// MemoryIdempotencyStore is the single-process fallback when Redis is not configured.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryIdempotencyStore) Get(_ context.Context, key string) (*models.BookingConfirmation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.stored.confirmation(), true, nil
}

func (m *MemoryIdempotencyStore) Put(_ context.Context, key string, conf models.BookingConfirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = memoryEntry{stored: toStored(conf), expiresAt: now.Add(m.ttl)}
	return nil
}
