package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/donelist/backend/domain"
)

type fakeResolver struct {
	session *domain.Session
	err     error
	token   string
}

func (f *fakeResolver) Resolve(_ context.Context, token string) (*domain.Session, error) {
	f.token = token
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func runMiddleware(resolver SessionResolver, decorate func(*fasthttp.RequestCtx)) (*fasthttp.RequestCtx, bool) {
	var reached bool
	handler := SessionAuth(resolver, nil)(func(ctx *fasthttp.RequestCtx) {
		reached = true
	})

	ctx := &fasthttp.RequestCtx{}
	if decorate != nil {
		decorate(ctx)
	}
	handler(ctx)
	return ctx, reached
}

func TestSessionAuth_MissingTokenIsRejected(t *testing.T) {
	resolver := &fakeResolver{}
	ctx, reached := runMiddleware(resolver, nil)

	assert.False(t, reached)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Empty(t, resolver.token)
}

func TestSessionAuth_InvalidSessionIsRejected(t *testing.T) {
	resolver := &fakeResolver{err: domain.ErrUnauthenticated}
	ctx, reached := runMiddleware(resolver, func(ctx *fasthttp.RequestCtx) {
		ctx.Request.Header.Set("Authorization", "Bearer bogus")
	})

	assert.False(t, reached)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Equal(t, "bogus", resolver.token)
}

func TestSessionAuth_InjectsResolvedUser(t *testing.T) {
	resolver := &fakeResolver{session: &domain.Session{ID: "sess-1", UserID: "user-9"}}
	ctx, reached := runMiddleware(resolver, func(ctx *fasthttp.RequestCtx) {
		ctx.Request.Header.Set("Authorization", "Bearer good-token")
	})

	assert.True(t, reached)
	assert.Equal(t, "user-9", string(ctx.Request.Header.Peek(UserIDHeader)))
	assert.Equal(t, "good-token", string(ctx.Request.Header.Peek(TokenHeader)))
}

func TestSessionAuth_AcceptsCookieToken(t *testing.T) {
	resolver := &fakeResolver{session: &domain.Session{ID: "sess-1", UserID: "user-9"}}
	_, reached := runMiddleware(resolver, func(ctx *fasthttp.RequestCtx) {
		ctx.Request.Header.SetCookie(cookieName, "cookie-token")
	})

	assert.True(t, reached)
	assert.Equal(t, "cookie-token", resolver.token)
}
