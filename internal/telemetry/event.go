package telemetry

import (
	"context"
	"time"
)

// Event is a single product or authorization event emitted to the event
// stream. Authorization denials carry the reason code so operators can
// distinguish "no org selected" from "role denied" in dashboards.
type Event struct {
	OrgID      string    `json:"org_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	EventType  string    `json:"event_type"`
	Source     string    `json:"source"`
	ReasonCode string    `json:"reason_code,omitempty"`
	Metadata   string    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventEmitter emits events to the stream. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
