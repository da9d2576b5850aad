package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript удаляет ключ, только если он принадлежит владельцу токена
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker короткоживущие блокировки по ключу поверх Redis (SET NX PX)
// Используется, чтобы сериализовать бронирования одного автомобиля между инстансами
type Locker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewLocker создает Locker. ttl ограничивает время жизни блокировки, если владелец упал
func NewLocker(client *redis.Client, prefix string, ttl time.Duration) *Locker {
	return &Locker{client: client, prefix: prefix, ttl: ttl}
}

// Lock захваченная блокировка
type Lock struct {
	locker *Locker
	key    string
	token  string
}

// Acquire пытается захватить блокировку ключа без ожидания
func (l *Locker) Acquire(ctx context.Context, key string) (*Lock, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire %s: %v", ErrLock, fullKey, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return &Lock{locker: l, key: fullKey, token: token}, nil
}

// Release освобождает блокировку, если она все еще принадлежит нам
func (lk *Lock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, lk.locker.client, []string{lk.key}, lk.token).Err(); err != nil {
		return fmt.Errorf("%w: release %s: %v", ErrLock, lk.key, err)
	}
	return nil
}

// WithLock выполняет fn под блокировкой ключа
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lock, err := l.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		// освобождаем даже при отмененном контексте запроса
		_ = lock.Release(context.WithoutCancel(ctx))
	}()

	return fn(ctx)
}
