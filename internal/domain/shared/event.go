package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by an aggregate. Every event in this service
// is scoped to one tenant and one branch.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	TenantID() uuid.UUID
	BranchID() uuid.UUID
}

// BaseDomainEvent carries the envelope fields shared by all events
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	At        time.Time `json:"occurred_at"`
	Aggregate uuid.UUID `json:"aggregate_id"`
	Tenant    uuid.UUID `json:"tenant_id"`
	Branch    uuid.UUID `json:"branch_id"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID { return e.ID }
func (e *BaseDomainEvent) EventType() string { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Aggregate }
func (e *BaseDomainEvent) TenantID() uuid.UUID { return e.Tenant }
func (e *BaseDomainEvent) BranchID() uuid.UUID { return e.Branch }

// NewBaseDomainEvent stamps a new envelope
func NewBaseDomainEvent(eventType string, aggregateID, tenantID, branchID uuid.UUID, at time.Time) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		At:        at,
		Aggregate: aggregateID,
		Tenant:    tenantID,
		Branch:    branchID,
	}
}

// EventHandler reacts to published events. An empty EventTypes result
// subscribes the handler to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is what application services depend on
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is the in-process dispatcher wired at startup
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
