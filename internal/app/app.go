// Package app provides the HTTP handlers for the social media service.
package app

import (
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/middleware"
	"github.com/thapelomagqazana/social-media-2/internal/sdk/mongodb"
	"github.com/thapelomagqazana/social-media-2/internal/services/hash"
	"github.com/thapelomagqazana/social-media-2/internal/services/jwt"
	"github.com/thapelomagqazana/social-media-2/internal/services/mailer"
	"github.com/thapelomagqazana/social-media-2/internal/services/sentry"
	"github.com/thapelomagqazana/social-media-2/internal/services/storage"
)

type App struct {
	db           mongodb.Service
	hash         *hash.HashService
	jwt          *jwt.TokenService
	mailer       mailer.Service
	storage      *storage.StorageService
	sentry       *sentry.SentryService
	resetLimiter *middleware.RateLimiter
}

func NewApp(
	db mongodb.Service,
	hash *hash.HashService,
	jwt *jwt.TokenService,
	mailer mailer.Service,
	storage *storage.StorageService,
	sentry *sentry.SentryService,
) *App {
	// The reset limiter lives for the process lifetime, owned here rather
	// than as package-global state.
	count := 3
	if v, err := strconv.Atoi(os.Getenv("RESET_RATE_LIMIT")); err == nil && v > 0 {
		count = v
	}

	return &App{
		db:           db,
		hash:         hash,
		jwt:          jwt,
		mailer:       mailer,
		storage:      storage,
		sentry:       sentry,
		resetLimiter: middleware.NewRateLimiter(count, time.Minute),
	}
}

func (a *App) toSentry(c *gin.Context, handler, errType string, level sentry.Level, err error) {
	a.sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("handler", handler)
		scope.SetExtra("error_type", errType)
		scope.SetLevel(level)
		if reqID := c.GetHeader("X-Request-ID"); reqID != "" {
			scope.SetTag("request_id", reqID)
		}
		a.sentry.CaptureException(err)
	})
}
