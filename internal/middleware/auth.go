package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/donelist/backend/domain"
)

// SessionResolver validates a bearer token against live session state and
// renews the session as a side effect.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

const (
	// UserIDHeader carries the resolved caller identity to handlers.
	UserIDHeader = "X-User-ID"
	// TokenHeader carries the raw token forward for sign-out.
	TokenHeader = "X-Session-Token"

	cookieName     = "donelist_session"
	resolveTimeout = 5 * time.Second
)

// SessionAuth gates every task route: no handler behind it runs without a
// resolved user id.
func SessionAuth(resolver SessionResolver, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := extractToken(ctx)
			if token == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
			defer cancel()

			session, err := resolver.Resolve(stdCtx, token)
			if err != nil {
				if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Error("session resolution failed", zap.Error(err))
				}
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			ctx.Request.Header.Set(UserIDHeader, session.UserID)
			ctx.Request.Header.Set(TokenHeader, token)
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if header != "" {
		return header
	}
	return string(ctx.Request.Header.Cookie(cookieName))
}
