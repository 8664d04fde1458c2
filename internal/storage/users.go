package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minhngo/storefront/internal/models"
)

// UserStore persists user accounts and their profiles through the
// gateway.
type UserStore struct {
	gw Gateway
}

// NewUserStore creates a UserStore backed by the given gateway.
func NewUserStore(gw Gateway) *UserStore {
	return &UserStore{gw: gw}
}

// CreateUser inserts a new user. The user's ID and timestamps are filled
// in on return.
func (s *UserStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	row := Row{
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"created_at":    Nanos(now),
		"updated_at":    Nanos(now),
		"last_login":    nil,
	}
	if user.ID != "" {
		row["id"] = user.ID
	}

	stored, err := s.gw.Insert(ctx, Users, row)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = stored.String("id")
	return nil
}

// GetUserByEmail retrieves a user by their email address.
// Returns (nil, nil) when no such user exists.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	rows, err := s.gw.Select(ctx, Users, Eq("email", email), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil // User not found
	}
	return userFromRow(rows[0]), nil
}

// GetUserByID retrieves a user by their ID.
// Returns (nil, nil) when no such user exists.
func (s *UserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	rows, err := s.gw.Select(ctx, Users, Eq("id", id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil // User not found
	}
	return userFromRow(rows[0]), nil
}

// TouchLastLogin records a successful login for the user.
func (s *UserStore) TouchLastLogin(ctx context.Context, userID string) error {
	_, err := s.gw.Update(ctx, Users, Eq("id", userID), Row{
		"last_login": Nanos(time.Now().UTC()),
	})
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// SaveProfile stores the user's profile row, replacing any previous one.
func (s *UserStore) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	if _, err := s.gw.Delete(ctx, UserProfiles, Eq("user_id", profile.UserID)); err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	_, err := s.gw.Insert(ctx, UserProfiles, Row{
		"user_id": profile.UserID,
		"phone":   profile.Phone,
	})
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile retrieves the user's profile row.
// Returns (nil, nil) when the user has no profile.
func (s *UserStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	rows, err := s.gw.Select(ctx, UserProfiles, Eq("user_id", userID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &models.UserProfile{
		UserID: rows[0].String("user_id"),
		Phone:  rows[0].String("phone"),
	}, nil
}

func userFromRow(r Row) *models.User {
	return &models.User{
		ID:           r.String("id"),
		Name:         r.String("name"),
		Email:        r.String("email"),
		PasswordHash: r.String("password_hash"),
		CreatedAt:    r.Time("created_at"),
		UpdatedAt:    r.Time("updated_at"),
		LastLogin:    r.TimePtr("last_login"),
	}
}
