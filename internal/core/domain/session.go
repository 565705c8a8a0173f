package domain

// Snapshot is a point-in-time copy of the process Session.
//
// InFlight overlays either state while a mutating operation is pending; it is
// never an authorization state of its own.
type Snapshot struct {
	Identity *Identity `json:"user"`
	InFlight bool      `json:"in_flight"`
	Error    string    `json:"error,omitempty"`
}

// IsAuthenticated is true exactly when an Identity is present.
func (s Snapshot) IsAuthenticated() bool {
	return s.Identity != nil
}
