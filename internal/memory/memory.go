// Package memory keeps the bounded per-user conversation history.
//
// Get and Append are each safe for concurrent use, but a Get followed by an
// Append is not atomic: two turns for the same user that interleave will lose
// one turn's contribution.
package memory

import (
	"context"
	"errors"
)

// DefaultMaxTurns keeps five exchanges
const DefaultMaxTurns = 10

// Role is the author of a turn
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ErrInvalidUserID is returned for an empty user id
var ErrInvalidUserID = errors.New("user id cannot be empty")

// Turn is one history entry
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Store holds conversation histories keyed by user id
type Store interface {
	// Get returns the history for userID, oldest first. Unknown ids yield an empty slice.
	Get(ctx context.Context, userID string) ([]Turn, error)
	// Append adds turns and drops the oldest entries beyond the cap
	Append(ctx context.Context, userID string, turns ...Turn) error
}

// truncate keeps the last max turns
func truncate(turns []Turn, max int) []Turn {
	if max > 0 && len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
