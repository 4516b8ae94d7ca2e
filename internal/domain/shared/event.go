package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by a posting. The coordinator publishes it
// only after the posting's transaction commits.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// BaseDomainEvent is embedded by every concrete event.
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Aggregate string    `json:"aggregate_type"`
	SubjectID uuid.UUID `json:"aggregate_id"`
	RaisedAt  time.Time `json:"occurred_at"`
}

// NewBaseDomainEvent stamps an event of eventType about the aggregate
// identified by aggType and aggID.
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Aggregate: aggType,
		SubjectID: aggID,
		RaisedAt:  time.Now(),
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) AggregateType() string  { return e.Aggregate }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.SubjectID }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.RaisedAt }

// EventHandler reacts to committed events. An empty EventTypes subscribes
// to every type.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is what the coordinator needs to hand off committed events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is a publisher with a subscription list and a lifecycle.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
