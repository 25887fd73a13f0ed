package entity

import (
	"time"

	"github.com/google/uuid"
)

type Base struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Versioned rows are updated with "WHERE id = ? AND version = ?"
type Versioned struct {
	Version int64 `db:"version"`
}
