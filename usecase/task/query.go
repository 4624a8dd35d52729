package task

import (
	"context"

	"github.com/donelist/backend/domain"
	"github.com/donelist/backend/repository"
)

// Counts aggregates per-bucket cardinalities for one owner.
type Counts struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

func (uc *UseCase) ListActive(ctx context.Context, ownerID, term string, limit int) ([]domain.Task, error) {
	return uc.tasks.ListActive(ctx, repository.TaskQuery{OwnerID: ownerID, Term: term, Limit: limit})
}

func (uc *UseCase) ListActivePage(ctx context.Context, ownerID, term, cursor string) (*repository.Page, error) {
	return uc.tasks.ListActivePage(ctx, repository.TaskQuery{OwnerID: ownerID, Term: term}, cursor)
}

func (uc *UseCase) ListCompleted(ctx context.Context, ownerID, term string, limit int) ([]domain.Task, error) {
	return uc.tasks.ListCompleted(ctx, repository.TaskQuery{OwnerID: ownerID, Term: term, Limit: limit})
}

func (uc *UseCase) ListCompletedPage(ctx context.Context, ownerID, term, cursor string) (*repository.Page, error) {
	return uc.tasks.ListCompletedPage(ctx, repository.TaskQuery{OwnerID: ownerID, Term: term}, cursor)
}

// ListOverdue returns active tasks due before now. A non-empty search term
// switches to the title search over all active tasks and drops the due-date
// filter entirely; searching within overdue tasks only is not supported.
func (uc *UseCase) ListOverdue(ctx context.Context, ownerID, term string, limit int) ([]domain.Task, error) {
	if term != "" {
		return uc.ListActive(ctx, ownerID, term, limit)
	}
	return uc.tasks.ListOverdue(ctx, repository.OverdueQuery{OwnerID: ownerID, Limit: limit, Now: uc.now()})
}

func (uc *UseCase) CountActive(ctx context.Context, ownerID string) (int, error) {
	return uc.tasks.CountActive(ctx, ownerID)
}

func (uc *UseCase) CountCompleted(ctx context.Context, ownerID string) (int, error) {
	return uc.tasks.CountCompleted(ctx, ownerID)
}

func (uc *UseCase) CountOverdue(ctx context.Context, ownerID string) (int, error) {
	return uc.tasks.CountOverdue(ctx, ownerID, uc.now())
}

// CountAll bundles the three bucket counts for the tab badges.
func (uc *UseCase) CountAll(ctx context.Context, ownerID string) (*Counts, error) {
	active, err := uc.CountActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	completed, err := uc.CountCompleted(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	overdue, err := uc.CountOverdue(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &Counts{Active: active, Completed: completed, Overdue: overdue}, nil
}
