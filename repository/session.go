package repository

import (
	"context"
	"time"

	"github.com/donelist/backend/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error

	// Extend pushes the session expiry forward; validation renews sessions
	// as a side effect, so this runs on every authenticated request.
	Extend(ctx context.Context, id string, ttl time.Duration) (*domain.Session, error)
}
