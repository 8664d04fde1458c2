// Package catalog provides read access to catalog collections.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/minhngo/storefront/internal/models"
	"github.com/minhngo/storefront/internal/storage"
)

var ErrBrandNotFound = errors.New("brand not found")

// BrandStore reads brands through the gateway.
type BrandStore struct {
	gw storage.Gateway
}

// NewBrandStore creates a brand store over the given gateway.
func NewBrandStore(gw storage.Gateway) *BrandStore {
	return &BrandStore{gw: gw}
}

// ListBrands returns all brands ordered by name.
func (s *BrandStore) ListBrands(ctx context.Context) ([]*models.Brand, error) {
	rows, err := s.gw.Select(ctx, storage.Brands, storage.Where{},
		&storage.Order{Column: "name"})
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	brands := make([]*models.Brand, 0, len(rows))
	for _, row := range rows {
		brands = append(brands, brandFromRow(row))
	}
	return brands, nil
}

// GetBrand returns a single brand by id, or ErrBrandNotFound.
func (s *BrandStore) GetBrand(ctx context.Context, id string) (*models.Brand, error) {
	rows, err := s.gw.Select(ctx, storage.Brands, storage.Eq("id", id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrBrandNotFound
	}
	return brandFromRow(rows[0]), nil
}

func brandFromRow(row storage.Row) *models.Brand {
	return &models.Brand{
		ID:          row.String("id"),
		Name:        row.String("name"),
		Slug:        row.String("slug"),
		Description: row.String("description"),
		LogoURL:     row.String("logo_url"),
		CreatedAt:   row.Time("created_at"),
	}
}
