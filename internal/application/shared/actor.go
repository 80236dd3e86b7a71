package shared

import "github.com/google/uuid"

// Actor is the caller of an application operation
type Actor struct {
	// UserID is nil for guests
	UserID    *uuid.UUID
	SessionID string
	// IsStaff grants access to every customer's records
	IsStaff bool
}

// CanAccess reports whether the actor may read a record owned by ownerID
func (a Actor) CanAccess(ownerID *uuid.UUID) bool {
	if a.IsStaff {
		return true
	}
	return a.UserID != nil && ownerID != nil && *a.UserID == *ownerID
}

// OwnerFilter returns the user id list queries must be restricted to,
// or nil for staff.
func (a Actor) OwnerFilter() *uuid.UUID {
	if a.IsStaff {
		return nil
	}
	if a.UserID == nil {
		id := uuid.Nil
		return &id
	}
	return a.UserID
}
