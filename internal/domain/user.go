package domain

import "time"

// User is a registered storefront account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	IsActive     bool      `json:"isActive"`
	IsStaff      bool      `json:"isStaff"`
	IsSuperuser  bool      `json:"isSuperuser"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID      string
	IsStaff     bool
	IsSuperuser bool
}

// PrincipalFor builds the Principal of u.
func PrincipalFor(u User) Principal {
	return Principal{UserID: u.ID, IsStaff: u.IsStaff, IsSuperuser: u.IsSuperuser}
}

// IsPrivileged reports whether p may act on resources it does not own.
func IsPrivileged(p Principal) bool {
	return p.IsStaff || p.IsSuperuser
}

// IsOwner reports whether p owns a resource held by ownerID.
func IsOwner(p Principal, ownerID string) bool {
	return p.UserID != "" && p.UserID == ownerID
}

// CanView reports whether p may read a resource held by ownerID.
func CanView(p Principal, ownerID string) bool {
	return IsOwner(p, ownerID) || IsPrivileged(p)
}

// CanMutate reports whether p may modify a resource held by ownerID.
func CanMutate(p Principal, ownerID string) bool {
	return IsOwner(p, ownerID) || IsPrivileged(p)
}
