package cart

import (
	"errors"
	"testing"
)

func TestResolveOwner(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		sessionID string
		wantUser  bool
		wantKey   string
		wantErr   error
	}{
		{
			name:     "authenticated user",
			userID:   "u1",
			wantUser: true,
			wantKey:  "u1",
		},
		{
			name:      "user wins over session",
			userID:    "u1",
			sessionID: "s1",
			wantUser:  true,
			wantKey:   "u1",
		},
		{
			name:      "guest session",
			sessionID: "s1",
			wantUser:  false,
			wantKey:   "s1",
		},
		{
			name:    "no identity",
			wantErr: ErrNoIdentity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, err := ResolveOwner(tt.userID, tt.sessionID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				if !owner.IsZero() {
					t.Error("Expected zero owner key on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveOwner failed: %v", err)
			}
			if owner.IsUser() != tt.wantUser {
				t.Errorf("IsUser: got %v, want %v", owner.IsUser(), tt.wantUser)
			}
			if owner.value() != tt.wantKey {
				t.Errorf("value: got %q, want %q", owner.value(), tt.wantKey)
			}
		})
	}
}

func TestOwnerLockKeysAreDistinct(t *testing.T) {
	// A user id and a session id with the same spelling must not share a
	// lock or a column.
	user := UserOwner("abc")
	guest := GuestOwner("abc")
	if user.lockKey() == guest.lockKey() {
		t.Error("Expected distinct lock keys for user and guest with equal ids")
	}
	if user.column() == guest.column() {
		t.Error("Expected distinct owner columns")
	}
}
