package middleware

import (
	"net/http"
	"strconv"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers"
)

const msgRateLimited = "too many attempts, try again later"

// KeyFunc ключ счетчика для запроса
type KeyFunc func(r *http.Request) string

// ByActorOrIP ключ по пользователю, для анонимных запросов по адресу
func ByActorOrIP(r *http.Request) string {
	if actor, ok := ActorFromContext(r.Context()); ok {
		return "user:" + strconv.FormatInt(actor.UserID, 10)
	}
	return "ip:" + ClientIP(r)
}

// RateLimit ограничивает число попыток для ключа запроса
// При недоступности Redis запрос пропускается
func RateLimit(limiter Limiter, scope string, key KeyFunc, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := scope + ":" + key(r)
			allowed, err := limiter.Allow(r.Context(), k)
			if err != nil {
				logger.Warn("RateLimit - limiter unavailable for %s: %v", k, err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				logger.Warn("RateLimit - %s %s throttled: key=%s", r.Method, r.URL.Path, k)
				handlers.RespondTooManyRequests(w, msgRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
