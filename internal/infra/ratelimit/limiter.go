package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLimiter возвращается при ошибке обращения к Redis
var ErrLimiter = errors.New("ratelimit: redis error")

// Limiter счетчик попыток в фиксированном окне, общий для всех инстансов сервиса
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewLimiter создает ограничитель: не больше limit попыток за window на ключ
func NewLimiter(client *redis.Client, prefix string, limit int64, window time.Duration) *Limiter {
	return &Limiter{client: client, prefix: prefix, limit: limit, window: window}
}

// allowScript увеличивает счетчик и выставляет окно одной операцией.
// Ключ без TTL получает окно при следующей попытке
var allowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Allow увеличивает счетчик ключа и сообщает, укладывается ли попытка в лимит
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	fullKey := l.prefix + key

	count, err := allowScript.Run(ctx, l.client, []string{fullKey}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: incr %s: %v", ErrLimiter, fullKey, err)
	}

	return count <= l.limit, nil
}
