package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditKind discriminates the kinds of entries in an appointment's audit trail
type AuditKind string

const (
	AuditKindTransition     AuditKind = "transition"
	AuditKindComment        AuditKind = "comment"
	AuditKindCapacityChange AuditKind = "capacity_change"
)

// AuditEntry is one record in the append-only interaction history of an
// appointment. Entries share a common id/actor/timestamp envelope; Action
// carries the kind-specific payload (transition name, comment reference,
// capacity field description).
type AuditEntry struct {
	ID        uuid.UUID
	Kind      AuditKind
	Action    string
	ActorID   int64
	ActorName string
	Reason    *string
	CreatedAt time.Time
}

// NewTransitionEntry builds an audit entry for a state transition
func NewTransitionEntry(action string, actor Actor, reason *string, at time.Time) AuditEntry {
	return AuditEntry{
		ID:        uuid.New(),
		Kind:      AuditKindTransition,
		Action:    action,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Reason:    reason,
		CreatedAt: at,
	}
}

// NewCommentEntry builds an audit entry recording that a comment was added
func NewCommentEntry(actor Actor, at time.Time) AuditEntry {
	return AuditEntry{
		ID:        uuid.New(),
		Kind:      AuditKindComment,
		Action:    "comment_added",
		ActorID:   actor.ID,
		ActorName: actor.Name,
		CreatedAt: at,
	}
}

// Comment is a staff note attached to an appointment. Comments are
// append-only and never edited or removed.
type Comment struct {
	ID         uuid.UUID
	AuthorID   int64
	AuthorName string
	Body       string
	CreatedAt  time.Time
}

// NewComment builds a comment authored by actor
func NewComment(actor Actor, body string, at time.Time) Comment {
	return Comment{
		ID:         uuid.New(),
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Body:       body,
		CreatedAt:  at,
	}
}
