package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/donelist/backend/domain"
	"github.com/donelist/backend/repository"
)

const taskColumns = `id, owner_id, title, description, due_date, due_date_num, completed_at, categories, embedding, created_at`

type taskRepository struct {
	pool     *pgxpool.Pool
	pageSize int
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
// pageSize bounds each page of the paginated listings.
func NewTaskRepository(pool *pgxpool.Pool, pageSize int) repository.TaskRepository {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &taskRepository{pool: pool, pageSize: pageSize}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, owner_id, title, description, due_date, due_date_num, completed_at, categories)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		task.DueDate,
		task.DueDateNum,
		task.CompletedAt,
		task.Categories,
	).Scan(&task.CreatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) SetCompletedAt(ctx context.Context, id string, completedAt *int64) error {
	const query = `UPDATE tasks SET completed_at = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	const query = `UPDATE tasks SET embedding = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, embedding)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) ListActive(ctx context.Context, q repository.TaskQuery) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE owner_id = $1
	  AND completed_at IS NULL
	  AND ($2 = '' OR to_tsvector('simple', title) @@ plainto_tsquery('simple', $2))
	ORDER BY created_at DESC, id DESC
	LIMIT NULLIF($3, 0)
	`
	return r.list(ctx, query, q.OwnerID, q.Term, clampLimit(q.Limit))
}

func (r *taskRepository) ListCompleted(ctx context.Context, q repository.TaskQuery) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE owner_id = $1
	  AND completed_at IS NOT NULL
	  AND ($2 = '' OR to_tsvector('simple', title) @@ plainto_tsquery('simple', $2))
	ORDER BY created_at DESC, id DESC
	LIMIT NULLIF($3, 0)
	`
	return r.list(ctx, query, q.OwnerID, q.Term, clampLimit(q.Limit))
}

func (r *taskRepository) ListOverdue(ctx context.Context, q repository.OverdueQuery) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE owner_id = $1
	  AND completed_at IS NULL
	  AND due_date_num < $2
	ORDER BY due_date_num ASC, id DESC
	LIMIT NULLIF($3, 0)
	`
	return r.list(ctx, query, q.OwnerID, q.Now.UnixMilli(), clampLimit(q.Limit))
}

func (r *taskRepository) ListActivePage(ctx context.Context, q repository.TaskQuery, cursor string) (*repository.Page, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE owner_id = $1
	  AND completed_at IS NULL
	  AND ($2 = '' OR to_tsvector('simple', title) @@ plainto_tsquery('simple', $2))
	  AND ($3::timestamptz IS NULL OR (created_at, id) < ($3::timestamptz, $4::text))
	ORDER BY created_at DESC, id DESC
	LIMIT $5
	`
	return r.page(ctx, query, q.OwnerID, q.Term, cursor)
}

func (r *taskRepository) ListCompletedPage(ctx context.Context, q repository.TaskQuery, cursor string) (*repository.Page, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE owner_id = $1
	  AND completed_at IS NOT NULL
	  AND ($2 = '' OR to_tsvector('simple', title) @@ plainto_tsquery('simple', $2))
	  AND ($3::timestamptz IS NULL OR (created_at, id) < ($3::timestamptz, $4::text))
	ORDER BY created_at DESC, id DESC
	LIMIT $5
	`
	return r.page(ctx, query, q.OwnerID, q.Term, cursor)
}

func (r *taskRepository) CountActive(ctx context.Context, ownerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM tasks WHERE owner_id = $1 AND completed_at IS NULL`
	return r.count(ctx, query, ownerID)
}

func (r *taskRepository) CountCompleted(ctx context.Context, ownerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM tasks WHERE owner_id = $1 AND completed_at IS NOT NULL`
	return r.count(ctx, query, ownerID)
}

func (r *taskRepository) CountOverdue(ctx context.Context, ownerID string, now time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM tasks WHERE owner_id = $1 AND completed_at IS NULL AND due_date_num < $2`
	return r.count(ctx, query, ownerID, now.UnixMilli())
}

func (r *taskRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// page fetches one extra row past the page size to decide whether another
// page exists, then trims it before building the continuation cursor.
func (r *taskRepository) page(ctx context.Context, query, ownerID, term, cursor string) (*repository.Page, error) {
	after, err := repository.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	var afterCreated interface{}
	var afterID interface{}
	if after != nil {
		afterCreated = after.CreatedAt
		afterID = after.ID
	}

	tasks, err := r.list(ctx, query, ownerID, term, afterCreated, afterID, r.pageSize+1)
	if err != nil {
		return nil, err
	}

	page := &repository.Page{Items: tasks}
	if len(tasks) > r.pageSize {
		page.Items = tasks[:r.pageSize]
		last := page.Items[len(page.Items)-1]
		page.Cursor = repository.EncodeCursor(repository.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.HasMore = true
	}
	return page, nil
}

func (r *taskRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.DueDateNum,
		&task.CompletedAt,
		&task.Categories,
		&task.Embedding,
		&task.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func clampLimit(limit int) int {
	if limit < 0 || limit > 500 {
		return 500
	}
	return limit
}
