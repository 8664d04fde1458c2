// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"
)

// Collection names known to the gateway. Every query names one of these.
const (
	Users           = "users"
	UserProfiles    = "user_profiles"
	Products        = "products"
	ProductVariants = "product_variants"
	Brands          = "brands"
	CartItems       = "cart_items"
)

// Cond is a single equality predicate. A nil Value matches NULL.
type Cond struct {
	Column string
	Value  any
}

// Where describes a filter: the conjunction of every predicate in All,
// plus the disjunction of the predicates in Any when it is non-empty.
type Where struct {
	All []Cond
	Any []Cond
}

// Eq builds a Where with a single equality predicate.
func Eq(column string, value any) Where {
	return Where{All: []Cond{{Column: column, Value: value}}}
}

// And returns a copy of w with an extra equality predicate.
func (w Where) And(column string, value any) Where {
	all := make([]Cond, len(w.All), len(w.All)+1)
	copy(all, w.All)
	return Where{All: append(all, Cond{Column: column, Value: value}), Any: w.Any}
}

// Order describes result ordering for Select.
type Order struct {
	Column string
	Desc   bool
}

// Row is a single stored record, keyed by column name. Values are the
// driver-native scalars: string, int64, float64, []byte or nil.
type Row map[string]any

// String returns the named column as a string ("" for NULL or absent).
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Int returns the named column as an int64 (0 for NULL or absent).
func (r Row) Int(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Float returns the named column as a float64 (0 for NULL or absent).
func (r Row) Float(column string) float64 {
	switch v := r[column].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// Null reports whether the named column is NULL or absent.
func (r Row) Null(column string) bool {
	return r[column] == nil
}

// Time decodes the named column from integer nanoseconds since the
// epoch, the wire format all timestamps use in the store.
func (r Row) Time(column string) time.Time {
	return time.Unix(0, r.Int(column)).UTC()
}

// TimePtr is like Time but yields nil for NULL columns.
func (r Row) TimePtr(column string) *time.Time {
	if r.Null(column) {
		return nil
	}
	t := r.Time(column)
	return &t
}

// Nanos encodes a time.Time the way timestamp columns are stored.
func Nanos(t time.Time) int64 {
	return t.UnixNano()
}

// Gateway is the narrow interface the rest of the system uses to talk to
// the backing store. It exposes exactly four operations over named
// collections; filters support equality and OR-composition of equality
// predicates. This keeps all store-specific query syntax behind a single
// concrete adapter.
type Gateway interface {
	// Select returns the rows of collection matching where, optionally
	// ordered. A nil order means store order.
	Select(ctx context.Context, collection string, where Where, order *Order) ([]Row, error)

	// Insert stores a new row and returns it with the store-assigned id
	// filled in.
	Insert(ctx context.Context, collection string, row Row) (Row, error)

	// Update applies patch to every row matching where and returns the
	// updated rows.
	Update(ctx context.Context, collection string, where Where, patch Row) ([]Row, error)

	// Delete removes every row matching where and returns the number of
	// rows removed.
	Delete(ctx context.Context, collection string, where Where) (int64, error)
}
