package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents a row in the profiles table. One exists per principal
// that has ever been granted access, logged in, or saved a preference;
// rows are created lazily and never explicitly destroyed.
type Profile struct {
	PrincipalID uuid.UUID
	Email       string
	// Preferences is the free-form preference bag. Authorization state
	// does not live here; grants and the delegation pointer have their
	// own columns and tables.
	Preferences map[string]any
	// SharedAccessTo points at the owner this delegate currently reads
	// as. Nil for owners and for delegates whose grant was revoked.
	SharedAccessTo *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
