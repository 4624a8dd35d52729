package queue

import (
	"time"

	"github.com/google/uuid"
)

// Job is one pending enrichment: the task to patch and the text to embed.
type Job struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Text      string    `json:"text"`
	Attempts  int       `json:"attempts"`
	Timestamp time.Time `json:"timestamp"`

	storeKey []byte
}

func (j *Job) normalize() {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Timestamp.IsZero() {
		j.Timestamp = time.Now()
	}
}
