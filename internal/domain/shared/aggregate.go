package shared

// BaseAggregateRoot is embedded by the roots that publish events (product,
// cart, order, payment, shipment, user). Version counts mutations; pending
// events are drained by the application layer after a successful save.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`

	pending []DomainEvent
}

// NewBaseAggregateRoot starts at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// Touch stamps UpdatedAt and bumps Version.
func (a *BaseAggregateRoot) Touch() {
	a.BaseEntity.Touch()
	a.Version++
}

// AddDomainEvent queues e for publication.
func (a *BaseAggregateRoot) AddDomainEvent(e DomainEvent) {
	a.pending = append(a.pending, e)
}

// GetDomainEvents returns the queued events in the order they were raised.
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

// ClearDomainEvents drops the queue.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}
