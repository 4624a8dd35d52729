package repository

import (
	"context"
	"time"

	"github.com/donelist/backend/domain"
)

// TaskQuery narrows a task listing to one owner's tasks, optionally matched
// against a full-text search term over the title.
type TaskQuery struct {
	OwnerID string
	Term    string
	Limit   int
}

// OverdueQuery selects active tasks due strictly before Now.
type OverdueQuery struct {
	OwnerID string
	Limit   int
	Now     time.Time
}

// Page is one bounded slice of a paginated listing. Cursor is opaque to
// callers; HasMore reports whether another page exists.
type Page struct {
	Items   []domain.Task `json:"items"`
	Cursor  string        `json:"cursor,omitempty"`
	HasMore bool          `json:"has_more"`
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id string) error

	// SetCompletedAt patches the completion timestamp; nil clears it.
	SetCompletedAt(ctx context.Context, id string, completedAt *int64) error
	// SetEmbedding patches the embedding vector written by the enrichment worker.
	SetEmbedding(ctx context.Context, id string, embedding []float32) error

	ListActive(ctx context.Context, q TaskQuery) ([]domain.Task, error)
	ListActivePage(ctx context.Context, q TaskQuery, cursor string) (*Page, error)
	ListCompleted(ctx context.Context, q TaskQuery) ([]domain.Task, error)
	ListCompletedPage(ctx context.Context, q TaskQuery, cursor string) (*Page, error)
	ListOverdue(ctx context.Context, q OverdueQuery) ([]domain.Task, error)

	CountActive(ctx context.Context, ownerID string) (int, error)
	CountCompleted(ctx context.Context, ownerID string) (int, error)
	CountOverdue(ctx context.Context, ownerID string, now time.Time) (int, error)
}
