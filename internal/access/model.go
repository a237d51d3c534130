// Package access implements the shared-access authorization core: who may
// use the product at all (ApprovalList), which delegates an owner has
// granted access to (Registry), how a pending grant becomes a live one at
// the delegate's first login (Resolver), and whose data any given request
// operates on (Gate).
package access

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Level is the ordered access level attached to a grant.
type Level string

const (
	LevelRead  Level = "read"
	LevelWrite Level = "write"
	LevelAdmin Level = "admin"
)

// Rank returns the ordering of the level: read < write < admin.
// Unknown levels rank below read.
func (l Level) Rank() int {
	switch l {
	case LevelRead:
		return 1
	case LevelWrite:
		return 2
	case LevelAdmin:
		return 3
	default:
		return 0
	}
}

// Allows reports whether a grant at level l satisfies a check requiring
// the given level.
func (l Level) Allows(required Level) bool {
	return l.Rank() >= required.Rank()
}

// ParseLevel validates a level string. The empty string defaults to read.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case "":
		return LevelRead, nil
	case LevelRead, LevelWrite, LevelAdmin:
		return Level(s), nil
	default:
		return "", fmt.Errorf("invalid access level %q", s)
	}
}

// Grant represents a row in the access_grants table: one delegate's
// permission on one owner's data. PrincipalID stays nil from the moment
// the owner grants by email until the delegate's first login resolves it.
type Grant struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	PrincipalID *uuid.UUID
	Email       string
	Level       Level
	GrantedAt   time.Time
	UpdatedAt   time.Time
}

// Resolved reports whether the grant's delegate has logged in at least once.
func (g *Grant) Resolved() bool {
	return g.PrincipalID != nil
}
