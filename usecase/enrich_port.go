package usecase

import "context"

// EnrichmentQueue decouples task creation from the embedding side effect.
// Implementations persist the job and return immediately; a background worker
// performs the actual embedding call.
type EnrichmentQueue interface {
	EnqueueEnrichment(ctx context.Context, taskID, text string) error
}
