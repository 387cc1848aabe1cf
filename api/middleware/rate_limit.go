package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/stockbill-backend/api/responses"
	"github.com/angelmondragon/stockbill-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
	"github.com/angelmondragon/stockbill-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// PostingRateLimit throttles posting traffic per organization. Posting holds
// row-level work inside a transaction, so one tenant hammering /post must not
// be able to starve the others.
func PostingRateLimit(cfg config.RateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.PostingWindow <= 0 || cfg.PostingLimit <= 0 || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			orgID := OrgIDFromContext(ctx)
			if orgID == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, count, err := store.FixedWindowAllow(ctx, "posting:"+orgID, int64(cfg.PostingLimit), cfg.PostingWindow)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !allowed {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"attempts":       count,
						"limit":          cfg.PostingLimit,
						"window_seconds": int(cfg.PostingWindow.Seconds()),
					})
					logg.Warn(logCtx, "posting.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "posting rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
