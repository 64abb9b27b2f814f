package middleware

import (
	"log"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"todo_app/internal/common"
)

// RateLimit caps requests per client IP with a fixed Redis window, used on
// the auth endpoints against credential stuffing. The limiter fails open:
// a nil client or a Redis error never blocks a request, it only disables
// the cap.
func RateLimit(rdb *redis.Client, limit int64, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rdb == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr // RealIP middleware strips the port
			}
			key := "ratelimit:auth:" + ip

			ctx := r.Context()
			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				log.Printf("WARN: rate limiter unavailable: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := rdb.Expire(ctx, key, window).Err(); err != nil {
					log.Printf("WARN: rate limiter expire failed: %v", err)
				}
			}
			if count > limit {
				common.RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
