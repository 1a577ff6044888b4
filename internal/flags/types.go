package flags

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("flag not found")

// Flag is a boolean switch persisted in redis under the jupiter namespace.
type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OperationKey returns the flag key gating a gateway operation.
func OperationKey(op string) string {
	return "op." + op + ".enabled"
}
