// Package events defines the moderation/audit events published to the event
// bus when records change state.
package events

import "time"

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// Source identifies this service on the event bus.
const Source = "bookcrawl.backend"

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// BookshopCreated is raised when a new bookshop record enters moderation.
type BookshopCreated struct {
	BaseEvent
	Name    string `json:"name"`
	Creator string `json:"creator"`
}

// NewBookshopCreated creates a BookshopCreated event
func NewBookshopCreated(id, name, creator string, at time.Time) BookshopCreated {
	return BookshopCreated{
		BaseEvent: BaseEvent{AggregateID: id, EventType: "bookshop.created", Timestamp: at},
		Name:      name,
		Creator:   creator,
	}
}

// BookshopApproved is raised on the pending -> approved moderation transition.
type BookshopApproved struct {
	BaseEvent
	Approved bool   `json:"approved"`
	Actor    string `json:"actor"`
}

// NewBookshopApproved creates a BookshopApproved event
func NewBookshopApproved(id string, approved bool, actor string, at time.Time) BookshopApproved {
	return BookshopApproved{
		BaseEvent: BaseEvent{AggregateID: id, EventType: "bookshop.approved", Timestamp: at},
		Approved:  approved,
		Actor:     actor,
	}
}

// BookshopDeleted is raised on soft delete. The record is retained in the
// table; this event is the audit trail.
type BookshopDeleted struct {
	BaseEvent
	Actor string `json:"actor"`
}

// NewBookshopDeleted creates a BookshopDeleted event
func NewBookshopDeleted(id, actor string, at time.Time) BookshopDeleted {
	return BookshopDeleted{
		BaseEvent: BaseEvent{AggregateID: id, EventType: "bookshop.deleted", Timestamp: at},
		Actor:     actor,
	}
}
