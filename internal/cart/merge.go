package cart

import (
	"context"
	"errors"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrMissingSessionID = errors.New("session id is required")
)

// Merger folds a guest cart into a user cart after login. It goes
// through the Repository for every row operation; it never talks to the
// store directly.
type Merger struct {
	repo *Repository
}

// NewMerger creates a merge engine over the given repository.
func NewMerger(repo *Repository) *Merger {
	return &Merger{repo: repo}
}

// Merge moves every line of the guest session's cart into the user's
// cart. Lines for a (product, variant) the user already has add their
// quantities together; the rest are copied over with the quantity and
// price captured in the guest cart. An unknown or empty guest session is
// a no-op.
//
// Each guest row is deleted as soon as it has been folded in, so a merge
// that fails partway leaves only the rows that were never processed; a
// retry picks those up without double-counting the ones already merged.
// There is no cross-item transaction.
func (m *Merger) Merge(ctx context.Context, userID, guestSessionID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if guestSessionID == "" {
		return ErrMissingSessionID
	}

	user := UserOwner(userID)
	guest := GuestOwner(guestSessionID)

	unlock := m.repo.locks.lock(user.lockKey())
	defer unlock()

	guestItems, err := m.repo.itemsFor(ctx, guest)
	if err != nil {
		return err
	}
	if len(guestItems) == 0 {
		return nil
	}

	for _, g := range guestItems {
		existing, err := m.repo.findItem(ctx, user, g.ProductID, g.VariantID)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := m.repo.setQuantity(ctx, existing.ID, existing.Quantity+g.Quantity); err != nil {
				return err
			}
		} else {
			if _, err := m.repo.insertItem(ctx, user, g.ProductID, g.VariantID, g.Quantity, g.Price); err != nil {
				return err
			}
		}
		if err := m.repo.deleteByID(ctx, g.ID); err != nil {
			return err
		}
	}

	// Sweep any guest rows that appeared between the listing above and
	// now.
	return m.repo.Clear(ctx, guest)
}
