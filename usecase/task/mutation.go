package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/donelist/backend/domain"
	"github.com/donelist/backend/repository"
	"github.com/donelist/backend/usecase"
)

type UseCase struct {
	tasks  repository.TaskRepository
	queue  usecase.EnrichmentQueue
	logger *zap.Logger
	now    func() time.Time
}

func New(tasks repository.TaskRepository, queue usecase.EnrichmentQueue, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
}

type AddTaskInput struct {
	Title       string
	Description string
	DueDate     string
	DueDateNum  int64
	Categories  []string
}

// AddTask inserts a new active task for the caller and schedules embedding
// enrichment for it. Enrichment is fire-and-forget: a failed enqueue is
// logged and the creation stands.
func (uc *UseCase) AddTask(ctx context.Context, ownerID string, in AddTaskInput) (string, error) {
	if err := domain.ValidateTitle(in.Title); err != nil {
		return "", err
	}

	created, err := uc.tasks.Create(ctx, &domain.Task{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		DueDateNum:  in.DueDateNum,
		Categories:  in.Categories,
	})
	if err != nil {
		return "", err
	}

	if uc.queue != nil {
		if err := uc.queue.EnqueueEnrichment(ctx, created.ID, enrichmentText(created)); err != nil {
			uc.logger.Warn("failed to enqueue embedding enrichment",
				zap.String("task_id", created.ID), zap.Error(err))
		}
	}

	return created.ID, nil
}

// CompleteTask toggles the completion timestamp. Completing requires the
// caller to own an active task; clearing the timestamp only requires that the
// task is currently completed, with no ownership check. Missing tasks and
// inapplicable transitions are skipped, not errors.
func (uc *UseCase) CompleteTask(ctx context.Context, callerID, id string, completed bool) (domain.Outcome, error) {
	t, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.Skipped(domain.SkipNotFound), nil
		}
		return domain.Outcome{}, err
	}

	if completed {
		if t.CompletedAt != nil {
			return domain.Skipped(domain.SkipAlreadyCompleted), nil
		}
		if t.OwnerID != callerID {
			return domain.Skipped(domain.SkipNotOwner), nil
		}
		now := uc.now().UnixMilli()
		if err := uc.tasks.SetCompletedAt(ctx, id, &now); err != nil {
			return domain.Outcome{}, err
		}
		return domain.Applied(), nil
	}

	if t.CompletedAt == nil {
		return domain.Skipped(domain.SkipNotCompleted), nil
	}
	if err := uc.tasks.SetCompletedAt(ctx, id, nil); err != nil {
		return domain.Outcome{}, err
	}
	return domain.Applied(), nil
}

// RemoveTask deletes the task when the caller owns it. Absent tasks and
// ownership mismatches produce the same skipped outcome so callers cannot
// tell the two apart.
func (uc *UseCase) RemoveTask(ctx context.Context, callerID, id string) (domain.Outcome, error) {
	t, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.Skipped(domain.SkipNotFound), nil
		}
		return domain.Outcome{}, err
	}

	if t.OwnerID != callerID {
		return domain.Skipped(domain.SkipNotOwner), nil
	}

	if err := uc.tasks.Delete(ctx, id); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.Skipped(domain.SkipNotFound), nil
		}
		return domain.Outcome{}, err
	}
	return domain.Applied(), nil
}

func enrichmentText(t *domain.Task) string {
	if t.Description == "" {
		return t.Title
	}
	return strings.Join([]string{t.Title, t.Description}, "\n\n")
}
