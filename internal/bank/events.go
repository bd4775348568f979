package bank

// Phase marks where in the refill lifecycle an event was emitted.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseEnd   Phase = "end"
	PhaseError Phase = "error"
	PhaseRetry Phase = "retry"
)

// Refill sources reported on end events.
const (
	SourceLocal         = "local"
	SourceLocalCooldown = "local-cooldown"
	SourceLocalFallback = "local-fallback"
	SourceGenerated     = "openrouter"
)

// Event is a one-way refill lifecycle notification. Presentation layers
// subscribe for user feedback; the bank never waits on them.
type Event struct {
	Category Category `json:"category"`
	Phase    Phase    `json:"phase"`
	Source   string   `json:"source,omitempty"`
	Model    string   `json:"model,omitempty"`
	Attempt  int      `json:"attempt,omitempty"`
	Total    int      `json:"total,omitempty"`
	Cooldown bool     `json:"cooldown,omitempty"`
	Err      string   `json:"error,omitempty"`
}
