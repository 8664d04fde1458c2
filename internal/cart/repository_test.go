package cart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/minhngo/storefront/internal/storage"
	"github.com/minhngo/storefront/internal/storage/sqlstore"
)

// newTestRepo spins up a temp SQLite store seeded with two products and
// one variant.
func newTestRepo(t *testing.T) (*Repository, storage.Gateway) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "storefront-cart-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlstore.New(sqlstore.DriverSQLite, filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	seed := []storage.Row{
		{"id": "p1", "name": "Plain Tee", "price": 100.0, "created_at": storage.Nanos(time.Now())},
		{"id": "p2", "name": "Hoodie", "price": 50.0, "sale_price": 40.0, "created_at": storage.Nanos(time.Now())},
	}
	for _, row := range seed {
		if _, err := store.Insert(ctx, storage.Products, row); err != nil {
			t.Fatalf("Failed to seed product: %v", err)
		}
	}
	if _, err := store.Insert(ctx, storage.ProductVariants, storage.Row{
		"id": "v1", "product_id": "p1", "name": "Large", "sku": "TEE-L",
	}); err != nil {
		t.Fatalf("Failed to seed variant: %v", err)
	}

	return NewRepository(store), store
}

func TestAddOrIncrement(t *testing.T) {
	repo, gw := newTestRepo(t)
	ctx := context.Background()
	owner := GuestOwner("sess-1")

	t.Run("first add inserts a row", func(t *testing.T) {
		item, err := repo.AddOrIncrement(ctx, owner, "p1", "", 2)
		if err != nil {
			t.Fatalf("AddOrIncrement failed: %v", err)
		}
		if item.Quantity != 2 {
			t.Errorf("Expected quantity 2, got %d", item.Quantity)
		}
		if item.Price != 100.0 {
			t.Errorf("Expected list price 100, got %v", item.Price)
		}
		if item.SessionID != "sess-1" || item.UserID != "" {
			t.Errorf("Expected session ownership, got user=%q session=%q", item.UserID, item.SessionID)
		}
	})

	t.Run("second add increments instead of inserting", func(t *testing.T) {
		item, err := repo.AddOrIncrement(ctx, owner, "p1", "", 1)
		if err != nil {
			t.Fatalf("AddOrIncrement failed: %v", err)
		}
		if item.Quantity != 3 {
			t.Errorf("Expected quantity 3, got %d", item.Quantity)
		}

		rows, err := gw.Select(ctx, storage.CartItems, storage.Eq("session_id", "sess-1").And("product_id", "p1"), nil)
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("Expected a single row after repeated adds, got %d", len(rows))
		}
	})

	t.Run("variant gets its own row", func(t *testing.T) {
		item, err := repo.AddOrIncrement(ctx, owner, "p1", "v1", 1)
		if err != nil {
			t.Fatalf("AddOrIncrement failed: %v", err)
		}
		if item.Quantity != 1 {
			t.Errorf("Expected quantity 1 on the variant row, got %d", item.Quantity)
		}

		rows, err := gw.Select(ctx, storage.CartItems, storage.Eq("session_id", "sess-1"), nil)
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("Expected 2 rows (base + variant), got %d", len(rows))
		}
	})

	t.Run("sale price is captured when set", func(t *testing.T) {
		item, err := repo.AddOrIncrement(ctx, owner, "p2", "", 1)
		if err != nil {
			t.Fatalf("AddOrIncrement failed: %v", err)
		}
		if item.Price != 40.0 {
			t.Errorf("Expected sale price 40, got %v", item.Price)
		}
	})

	t.Run("quantity below 1 defaults to 1", func(t *testing.T) {
		item, err := repo.AddOrIncrement(ctx, GuestOwner("sess-other"), "p1", "", 0)
		if err != nil {
			t.Fatalf("AddOrIncrement failed: %v", err)
		}
		if item.Quantity != 1 {
			t.Errorf("Expected default quantity 1, got %d", item.Quantity)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := repo.AddOrIncrement(ctx, owner, "nope", "", 1)
		if !errors.Is(err, ErrProductNotFound) {
			t.Fatalf("Expected ErrProductNotFound, got %v", err)
		}
	})
}

func TestOwnerExclusivity(t *testing.T) {
	repo, gw := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.AddOrIncrement(ctx, GuestOwner("sess-1"), "p1", "", 1); err != nil {
		t.Fatalf("AddOrIncrement failed: %v", err)
	}
	if _, err := repo.AddOrIncrement(ctx, UserOwner("user-1"), "p1", "", 1); err != nil {
		t.Fatalf("AddOrIncrement failed: %v", err)
	}

	rows, err := gw.Select(ctx, storage.CartItems, storage.Where{}, nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	for _, row := range rows {
		userSet := !row.Null("user_id")
		sessionSet := !row.Null("session_id")
		if userSet == sessionSet {
			t.Errorf("Row %s violates owner exclusivity: user_id set=%v session_id set=%v",
				row.String("id"), userSet, sessionSet)
		}
	}
}

func TestUpdateQuantity(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	owner := GuestOwner("sess-1")

	item, err := repo.AddOrIncrement(ctx, owner, "p1", "", 2)
	if err != nil {
		t.Fatalf("AddOrIncrement failed: %v", err)
	}

	t.Run("sets the quantity", func(t *testing.T) {
		updated, err := repo.UpdateQuantity(ctx, owner, item.ID, 5)
		if err != nil {
			t.Fatalf("UpdateQuantity failed: %v", err)
		}
		if updated.Quantity != 5 {
			t.Errorf("Expected quantity 5, got %d", updated.Quantity)
		}
	})

	t.Run("rejects quantity below 1", func(t *testing.T) {
		_, err := repo.UpdateQuantity(ctx, owner, item.ID, 0)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("Expected ErrInvalidQuantity, got %v", err)
		}

		// Row must be untouched.
		current, err := repo.findItem(ctx, owner, "p1", "")
		if err != nil {
			t.Fatalf("findItem failed: %v", err)
		}
		if current.Quantity != 5 {
			t.Errorf("Expected quantity unchanged at 5, got %d", current.Quantity)
		}
	})

	t.Run("another owner cannot touch the row", func(t *testing.T) {
		_, err := repo.UpdateQuantity(ctx, UserOwner("intruder"), item.ID, 9)
		if !errors.Is(err, ErrItemNotFound) {
			t.Fatalf("Expected ErrItemNotFound, got %v", err)
		}

		current, err := repo.findItem(ctx, owner, "p1", "")
		if err != nil {
			t.Fatalf("findItem failed: %v", err)
		}
		if current.Quantity != 5 {
			t.Errorf("Expected quantity unchanged at 5, got %d", current.Quantity)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.UpdateQuantity(ctx, owner, "missing", 2)
		if !errors.Is(err, ErrItemNotFound) {
			t.Fatalf("Expected ErrItemNotFound, got %v", err)
		}
	})
}

func TestRemoveAndClear(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	owner := GuestOwner("sess-1")

	item, err := repo.AddOrIncrement(ctx, owner, "p1", "", 1)
	if err != nil {
		t.Fatalf("AddOrIncrement failed: %v", err)
	}
	if _, err := repo.AddOrIncrement(ctx, owner, "p2", "", 1); err != nil {
		t.Fatalf("AddOrIncrement failed: %v", err)
	}

	t.Run("remove under the wrong owner succeeds without deleting", func(t *testing.T) {
		if err := repo.Remove(ctx, UserOwner("intruder"), item.ID); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		current, err := repo.findItem(ctx, owner, "p1", "")
		if err != nil {
			t.Fatalf("findItem failed: %v", err)
		}
		if current == nil {
			t.Fatal("Expected row to survive a foreign remove")
		}
	})

	t.Run("remove deletes the owner's row", func(t *testing.T) {
		if err := repo.Remove(ctx, owner, item.ID); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		current, err := repo.findItem(ctx, owner, "p1", "")
		if err != nil {
			t.Fatalf("findItem failed: %v", err)
		}
		if current != nil {
			t.Fatal("Expected row to be gone")
		}
	})

	t.Run("clear empties the cart", func(t *testing.T) {
		if err := repo.Clear(ctx, owner); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		items, err := repo.List(ctx, owner)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("Expected empty cart, got %d items", len(items))
		}
	})
}

func TestList(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	owner := GuestOwner("sess-1")

	t.Run("zero owner yields empty list", func(t *testing.T) {
		items, err := repo.List(ctx, OwnerKey{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("Expected empty list, got %d items", len(items))
		}
	})

	if _, err := repo.AddOrIncrement(ctx, owner, "p1", "v1", 1); err != nil {
		t.Fatalf("AddOrIncrement failed: %v", err)
	}
	time.Sleep(time.Millisecond) // distinct created_at for ordering
	if _, err := repo.AddOrIncrement(ctx, owner, "p2", "", 1); err != nil {
		t.Fatalf("AddOrIncrement failed: %v", err)
	}

	t.Run("newest first with display data", func(t *testing.T) {
		items, err := repo.List(ctx, owner)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("Expected 2 items, got %d", len(items))
		}
		if items[0].ProductID != "p2" {
			t.Errorf("Expected newest item first, got %s", items[0].ProductID)
		}
		for _, it := range items {
			if it.Product == nil {
				t.Errorf("Item %s missing product display data", it.ID)
			}
		}
		if items[1].Variant == nil || items[1].Variant.SKU != "TEE-L" {
			t.Error("Expected variant display data on the variant line")
		}
	})
}

// Concurrent adds for the same (owner, product, variant) must coalesce
// into a single row; the keyed lock serializes the check-then-write.
func TestConcurrentAddOrIncrement(t *testing.T) {
	repo, gw := newTestRepo(t)
	ctx := context.Background()
	owner := GuestOwner("sess-racy")

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AddOrIncrement(ctx, owner, "p1", "", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Concurrent AddOrIncrement failed: %v", err)
	}

	rows, err := gw.Select(ctx, storage.CartItems, storage.Eq("session_id", "sess-racy"), nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row after %d concurrent adds, got %d", n, len(rows))
	}
	if got := rows[0].Int("quantity"); got != n {
		t.Errorf("Expected quantity %d, got %d", n, got)
	}
}
