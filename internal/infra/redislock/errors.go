package redislock

import "errors"

var (
	// ErrLockHeld возвращается, когда блокировка уже захвачена другим запросом
	ErrLockHeld = errors.New("redislock: lock is held by another owner")

	// ErrLock возвращается при ошибке обращения к Redis
	ErrLock = errors.New("redislock: redis error")
)
