package sharing

import "github.com/google/uuid"

// Caller identifies the requesting member as established by the auth
// boundary. A zero Caller is an unauthenticated (public) request.
type Caller struct {
	MemberID      uuid.UUID
	TeamID        uuid.UUID
	EmailVerified bool

	// Admin marks an externally granted administrative override, which
	// permits revoking and modifying other members' links.
	Admin bool

	Authenticated bool
}
