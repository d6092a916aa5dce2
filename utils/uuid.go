package utils

import (
	"github.com/google/uuid"
)

// NewLedgerID returns a time-ordered identifier for append-only records,
// falling back to a random UUID if one cannot be generated
func NewLedgerID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
