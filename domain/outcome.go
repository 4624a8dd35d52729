package domain

// SkipReason explains why a mutation was not applied.
type SkipReason string

const (
	SkipNotFound         SkipReason = "not_found"
	SkipNotOwner         SkipReason = "not_owner"
	SkipAlreadyCompleted SkipReason = "already_completed"
	SkipNotCompleted     SkipReason = "not_completed"
)

// Outcome reports whether a mutation changed state. Not-found and not-owner
// conditions are deliberately no-ops rather than errors, so callers cannot
// probe for the existence of other users' tasks. Reason stays server-side
// for the same reason: over the wire every skip looks identical.
type Outcome struct {
	Applied bool       `json:"applied"`
	Reason  SkipReason `json:"-"`
}

func Applied() Outcome {
	return Outcome{Applied: true}
}

func Skipped(reason SkipReason) Outcome {
	return Outcome{Reason: reason}
}
