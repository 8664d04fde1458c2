package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minhngo/storefront/internal/models"
	"github.com/minhngo/storefront/internal/storage"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Repository owns the lifecycle of cart_items rows. All operations are
// scoped to a resolved OwnerKey; nothing here can touch another owner's
// rows.
type Repository struct {
	gw    storage.Gateway
	locks *keyedMutex
}

// NewRepository creates a cart repository over the given gateway.
func NewRepository(gw storage.Gateway) *Repository {
	return &Repository{
		gw:    gw,
		locks: newKeyedMutex(),
	}
}

// List returns the owner's cart lines, newest first, each joined with
// current product and variant display data. A zero owner key (no user,
// no session) yields an empty slice, not an error.
func (r *Repository) List(ctx context.Context, owner OwnerKey) ([]*models.CartItem, error) {
	if owner.IsZero() {
		return []*models.CartItem{}, nil
	}

	items, err := r.itemsFor(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []*models.CartItem{}, nil
	}
	if err := r.attachDisplayData(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddOrIncrement adds a product to the owner's cart. If a line for
// (owner, product, variant) already exists its quantity is incremented;
// otherwise a new line is inserted with the product's effective price
// captured now. A qty below 1 defaults to 1. Returns ErrProductNotFound
// for an unknown product.
func (r *Repository) AddOrIncrement(ctx context.Context, owner OwnerKey, productID, variantID string, qty int64) (*models.CartItem, error) {
	if qty < 1 {
		qty = 1
	}

	unlock := r.locks.lock(owner.lockKey())
	defer unlock()

	price, err := r.effectivePrice(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing, err := r.findItem(ctx, owner, productID, variantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Price deliberately stays as captured at first add.
		if err := r.setQuantity(ctx, existing.ID, existing.Quantity+qty); err != nil {
			return nil, err
		}
		existing.Quantity += qty
		existing.UpdatedAt = time.Now().UTC()
		return existing, nil
	}

	return r.insertItem(ctx, owner, productID, variantID, qty, price)
}

// UpdateQuantity sets the quantity of the owner's cart line. Returns
// ErrInvalidQuantity below 1 and ErrItemNotFound when no line matches
// both the id and the owner — a wrong owner looks identical to a wrong
// id.
func (r *Repository) UpdateQuantity(ctx context.Context, owner OwnerKey, itemID string, qty int64) (*models.CartItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	where := storage.Eq("id", itemID).And(owner.column(), owner.value())
	rows, err := r.gw.Update(ctx, storage.CartItems, where, storage.Row{
		"quantity":   qty,
		"updated_at": storage.Nanos(time.Now().UTC()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrItemNotFound
	}
	return itemFromRow(rows[0]), nil
}

// Remove deletes the owner's cart line. Removing an id that does not
// exist, or that belongs to someone else, succeeds the same way.
func (r *Repository) Remove(ctx context.Context, owner OwnerKey, itemID string) error {
	where := storage.Eq("id", itemID).And(owner.column(), owner.value())
	if _, err := r.gw.Delete(ctx, storage.CartItems, where); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// Clear deletes every cart line belonging to the owner.
func (r *Repository) Clear(ctx context.Context, owner OwnerKey) error {
	if _, err := r.gw.Delete(ctx, storage.CartItems, r.ownerWhere(owner)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *Repository) ownerWhere(owner OwnerKey) storage.Where {
	return storage.Eq(owner.column(), owner.value())
}

// effectivePrice looks up the product and returns its sale price when
// set, list price otherwise.
func (r *Repository) effectivePrice(ctx context.Context, productID string) (float64, error) {
	rows, err := r.gw.Select(ctx, storage.Products, storage.Eq("id", productID), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to look up product: %w", err)
	}
	if len(rows) == 0 {
		return 0, ErrProductNotFound
	}
	return productFromRow(rows[0]).EffectivePrice(), nil
}

// itemsFor returns the owner's raw cart rows, newest first, without
// display data.
func (r *Repository) itemsFor(ctx context.Context, owner OwnerKey) ([]*models.CartItem, error) {
	rows, err := r.gw.Select(ctx, storage.CartItems, r.ownerWhere(owner),
		&storage.Order{Column: "created_at", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	items := make([]*models.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromRow(row))
	}
	return items, nil
}

// findItem fetches the owner's line for (productID, variantID), nil when
// absent. An empty variantID matches rows with a NULL variant column.
func (r *Repository) findItem(ctx context.Context, owner OwnerKey, productID, variantID string) (*models.CartItem, error) {
	where := r.ownerWhere(owner).
		And("product_id", productID).
		And("variant_id", variantValue(variantID))
	rows, err := r.gw.Select(ctx, storage.CartItems, where, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return itemFromRow(rows[0]), nil
}

func (r *Repository) insertItem(ctx context.Context, owner OwnerKey, productID, variantID string, qty int64, price float64) (*models.CartItem, error) {
	now := time.Now().UTC()
	row := storage.Row{
		"user_id":    nil,
		"session_id": nil,
		"product_id": productID,
		"variant_id": variantValue(variantID),
		"quantity":   qty,
		"price":      price,
		"created_at": storage.Nanos(now),
		"updated_at": storage.Nanos(now),
	}
	row[owner.column()] = owner.value()

	stored, err := r.gw.Insert(ctx, storage.CartItems, row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert cart item: %w", err)
	}
	return itemFromRow(stored), nil
}

func (r *Repository) setQuantity(ctx context.Context, itemID string, qty int64) error {
	_, err := r.gw.Update(ctx, storage.CartItems, storage.Eq("id", itemID), storage.Row{
		"quantity":   qty,
		"updated_at": storage.Nanos(time.Now().UTC()),
	})
	if err != nil {
		return fmt.Errorf("failed to set quantity: %w", err)
	}
	return nil
}

func (r *Repository) deleteByID(ctx context.Context, itemID string) error {
	if _, err := r.gw.Delete(ctx, storage.CartItems, storage.Eq("id", itemID)); err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}

// attachDisplayData batch-fetches the products and variants referenced
// by items and hangs them off each line, exercising the gateway's OR
// filter instead of one query per row.
func (r *Repository) attachDisplayData(ctx context.Context, items []*models.CartItem) error {
	var productConds, variantConds []storage.Cond
	seenProducts := make(map[string]bool)
	seenVariants := make(map[string]bool)
	for _, it := range items {
		if !seenProducts[it.ProductID] {
			seenProducts[it.ProductID] = true
			productConds = append(productConds, storage.Cond{Column: "id", Value: it.ProductID})
		}
		if it.VariantID != "" && !seenVariants[it.VariantID] {
			seenVariants[it.VariantID] = true
			variantConds = append(variantConds, storage.Cond{Column: "id", Value: it.VariantID})
		}
	}

	products := make(map[string]*models.Product)
	if len(productConds) > 0 {
		rows, err := r.gw.Select(ctx, storage.Products, storage.Where{Any: productConds}, nil)
		if err != nil {
			return fmt.Errorf("failed to load cart products: %w", err)
		}
		for _, row := range rows {
			p := productFromRow(row)
			products[p.ID] = p
		}
	}

	variants := make(map[string]*models.ProductVariant)
	if len(variantConds) > 0 {
		rows, err := r.gw.Select(ctx, storage.ProductVariants, storage.Where{Any: variantConds}, nil)
		if err != nil {
			return fmt.Errorf("failed to load cart variants: %w", err)
		}
		for _, row := range rows {
			v := variantFromRow(row)
			variants[v.ID] = v
		}
	}

	for _, it := range items {
		it.Product = products[it.ProductID]
		if it.VariantID != "" {
			it.Variant = variants[it.VariantID]
		}
	}
	return nil
}

// variantValue maps the optional variant id to its stored form: NULL for
// "no variant".
func variantValue(variantID string) any {
	if variantID == "" {
		return nil
	}
	return variantID
}

func itemFromRow(row storage.Row) *models.CartItem {
	return &models.CartItem{
		ID:        row.String("id"),
		UserID:    row.String("user_id"),
		SessionID: row.String("session_id"),
		ProductID: row.String("product_id"),
		VariantID: row.String("variant_id"),
		Quantity:  row.Int("quantity"),
		Price:     row.Float("price"),
		CreatedAt: row.Time("created_at"),
		UpdatedAt: row.Time("updated_at"),
	}
}

func productFromRow(row storage.Row) *models.Product {
	p := &models.Product{
		ID:        row.String("id"),
		BrandID:   row.String("brand_id"),
		Name:      row.String("name"),
		Price:     row.Float("price"),
		CreatedAt: row.Time("created_at"),
	}
	if !row.Null("sale_price") {
		sale := row.Float("sale_price")
		p.SalePrice = &sale
	}
	return p
}

func variantFromRow(row storage.Row) *models.ProductVariant {
	return &models.ProductVariant{
		ID:        row.String("id"),
		ProductID: row.String("product_id"),
		Name:      row.String("name"),
		SKU:       row.String("sku"),
	}
}
