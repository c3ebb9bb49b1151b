package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Ref is a minimal reference to another record, used by the read
// projections that join display names onto appointments.
type Ref struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
