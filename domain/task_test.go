package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateTitle(t *testing.T) {
	cases := []struct {
		name  string
		title string
		valid bool
	}{
		{"minimum length", "ab", true},
		{"maximum length", strings.Repeat("x", TitleMaxLen), true},
		{"too short", "a", false},
		{"empty", "", false},
		{"too long", strings.Repeat("x", TitleMaxLen+1), false},
		// Bounds count characters, not bytes.
		{"multibyte within bounds", strings.Repeat("歯", 20) + "医者の予約", true},
		{"multibyte too short", "あ", false},
		{"multibyte too long", strings.Repeat("あ", TitleMaxLen+1), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTitle(tc.title)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTitle)
			}
		})
	}
}

func TestTask_IsCompleted(t *testing.T) {
	done := time.Now().UnixMilli()

	assert.False(t, (&Task{}).IsCompleted())
	assert.True(t, (&Task{CompletedAt: &done}).IsCompleted())

	var nilTask *Task
	assert.False(t, nilTask.IsCompleted())
}

func TestTask_IsOverdue(t *testing.T) {
	reference := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	refMillis := reference.UnixMilli()
	done := refMillis - 1000

	cases := []struct {
		name    string
		task    Task
		overdue bool
	}{
		{"due in the past", Task{DueDateNum: refMillis - 1}, true},
		{"due exactly now", Task{DueDateNum: refMillis}, false},
		{"due in the future", Task{DueDateNum: refMillis + 1}, false},
		{"past due but completed", Task{DueDateNum: refMillis - 1, CompletedAt: &done}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overdue, tc.task.IsOverdue(reference))
		})
	}
}
