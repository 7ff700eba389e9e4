package common

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the embedded identity/timestamp pair shared by every
// persisted aggregate in the operator. Unlike the multi-tenant visibility
// model this is distilled from, pool entities have no audience/ownership
// axis: every row belongs to exactly one pool operator.
type BaseEntity struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Entity interface {
	GetID() uuid.UUID
}

func (b BaseEntity) GetID() uuid.UUID {
	return b.ID
}

func NewEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
