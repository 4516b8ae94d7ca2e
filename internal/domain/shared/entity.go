package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and audit stamps shared by every stored
// record.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh identity.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch marks the record as modified now.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// BaseAggregateRoot is an entity that is locked, mutated and saved as one
// unit. Version counts accepted mutations. Events raised by a mutation are
// queued until the posting commits; the caller drains them afterwards.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot starts a new aggregate at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// IncrementVersion records one accepted mutation.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues e for publication after commit.
func (a *BaseAggregateRoot) AddDomainEvent(e DomainEvent) {
	a.pending = append(a.pending, e)
}

// GetDomainEvents returns the queued events in the order they were raised.
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

// ClearDomainEvents empties the queue.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}
