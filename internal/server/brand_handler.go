package server

import (
	"log/slog"
	"net/http"

	"github.com/minhngo/storefront/internal/catalog"
)

// BrandHandler serves the brand catalog routes.
type BrandHandler struct {
	brands *catalog.BrandStore
	logger *slog.Logger
}

// NewBrandHandler creates the brand handler.
func NewBrandHandler(brands *catalog.BrandStore, logger *slog.Logger) *BrandHandler {
	return &BrandHandler{brands: brands, logger: logger}
}

// List returns all brands ordered by name.
func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.ListBrands(r.Context())
	if err != nil {
		h.logger.Error("Failed to list brands", "error", err)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

// Get returns a single brand.
func (h *BrandHandler) Get(w http.ResponseWriter, r *http.Request) {
	brand, err := h.brands.GetBrand(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}
