package domain

import (
	"time"
	"unicode/utf8"
)

// Task is a user-owned to-do item. Completion state is modeled by the
// presence of CompletedAt: nil means active, non-nil means completed.
type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     string    `json:"due_date"`
	DueDateNum  int64     `json:"due_date_num"`
	CompletedAt *int64    `json:"completed_at,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	Embedding   []float32 `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.CompletedAt != nil
}

// IsOverdue reports whether the task is still active and due strictly before
// the reference time.
func (t *Task) IsOverdue(reference time.Time) bool {
	if t == nil || t.CompletedAt != nil {
		return false
	}
	return t.DueDateNum < reference.UnixMilli()
}

const (
	TitleMinLen = 2
	TitleMaxLen = 50
)

// ValidateTitle enforces the title length bounds, counted in runes so
// multibyte titles are measured the way users see them. Clients validate
// before submitting; the mutation service re-checks on every create.
func ValidateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n < TitleMinLen || n > TitleMaxLen {
		return ErrInvalidTitle
	}
	return nil
}
