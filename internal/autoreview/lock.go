package autoreview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Unlock releases a held lock. It is safe to call after the lock has expired.
type Unlock func(ctx context.Context) error

// Locker grants an exclusive, expiring lease on a key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (Unlock, bool, error)
}

// releaseScript deletes the key only while it still holds our token, so an
// expired lease never removes a lock taken over by another instance.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker takes leases with SET NX PX so overlapping sweeps across
// instances are impossible.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client, prefix: "casework:lock:"}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Unlock, bool, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}, true, nil
}

// MemoryLocker is the single-process locker used without Redis.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]memoryLease
	now    func() time.Time
}

type memoryLease struct {
	token     string
	expiresAt time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{leases: make(map[string]memoryLease), now: time.Now}
}

func (l *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (Unlock, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if lease, held := l.leases[key]; held && now.Before(lease.expiresAt) {
		return nil, false, nil
	}
	token := uuid.NewString()
	l.leases[key] = memoryLease{token: token, expiresAt: now.Add(ttl)}
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if lease, held := l.leases[key]; held && lease.token == token {
			delete(l.leases, key)
		}
		return nil
	}, true, nil
}
