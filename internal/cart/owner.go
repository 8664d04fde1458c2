// Package cart implements cart ownership, line item persistence and the
// guest-to-user cart merge.
package cart

import "errors"

// ErrNoIdentity means a request carried neither an authenticated user
// nor a session id. Callers are expected to mint a session id (the
// session middleware does) before touching the cart.
var ErrNoIdentity = errors.New("no user or session identity")

// OwnerKey identifies who a cart row belongs to: either a user id or a
// guest session id, never both. The zero value is no identity at all.
type OwnerKey struct {
	userID    string
	sessionID string
}

// UserOwner returns the owner key for an authenticated user.
func UserOwner(userID string) OwnerKey {
	return OwnerKey{userID: userID}
}

// GuestOwner returns the owner key for an anonymous session.
func GuestOwner(sessionID string) OwnerKey {
	return OwnerKey{sessionID: sessionID}
}

// ResolveOwner picks the single owner key for a request. An
// authenticated user always wins, even when a session id is also
// present; otherwise the session id is used; otherwise ErrNoIdentity.
// Pure function of its inputs.
func ResolveOwner(userID, sessionID string) (OwnerKey, error) {
	if userID != "" {
		return UserOwner(userID), nil
	}
	if sessionID != "" {
		return GuestOwner(sessionID), nil
	}
	return OwnerKey{}, ErrNoIdentity
}

// IsUser reports whether the key identifies an authenticated user.
func (k OwnerKey) IsUser() bool {
	return k.userID != ""
}

// IsZero reports whether the key carries no identity.
func (k OwnerKey) IsZero() bool {
	return k.userID == "" && k.sessionID == ""
}

// column is the cart_items column this key is stored in.
func (k OwnerKey) column() string {
	if k.IsUser() {
		return "user_id"
	}
	return "session_id"
}

// value is the identifier stored in column.
func (k OwnerKey) value() string {
	if k.IsUser() {
		return k.userID
	}
	return k.sessionID
}

// lockKey names this owner in the keyed mutex. The prefix keeps a user
// id and a session id with the same spelling apart.
func (k OwnerKey) lockKey() string {
	return k.column() + ":" + k.value()
}
