package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/minhngo/storefront/internal/cart"
	"github.com/minhngo/storefront/internal/middleware"
	"github.com/minhngo/storefront/internal/models"
)

// CartHandler serves the cart routes.
type CartHandler struct {
	repo   *cart.Repository
	merger *cart.Merger
	logger *slog.Logger
}

// NewCartHandler creates the cart handler.
func NewCartHandler(repo *cart.Repository, merger *cart.Merger, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		repo:   repo,
		merger: merger,
		logger: logger,
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type mergeRequest struct {
	SessionID string `json:"sessionId"`
}

// owner resolves the request's cart owner key: authenticated user id
// when present, session id otherwise.
func (h *CartHandler) owner(r *http.Request) (cart.OwnerKey, error) {
	return cart.ResolveOwner(
		middleware.GetUserID(r.Context()),
		middleware.GetSessionID(r.Context()),
	)
}

// List returns the cart's items. A request with neither a token nor a
// client-sent session-id header gets an empty cart, not an error.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if middleware.GetUserID(ctx) == "" && !middleware.SessionProvided(ctx) {
		writeJSON(w, http.StatusOK, []*models.CartItem{})
		return
	}

	owner, err := h.owner(r)
	if err != nil {
		writeJSON(w, http.StatusOK, []*models.CartItem{})
		return
	}

	items, err := h.repo.List(ctx, owner)
	if err != nil {
		h.logger.Error("Failed to list cart", "error", err)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Add puts a product into the cart, incrementing the quantity when the
// line already exists.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	owner, err := h.owner(r)
	if err != nil {
		respondError(w, err)
		return
	}

	item, err := h.repo.AddOrIncrement(r.Context(), owner, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		h.logger.Error("Failed to add cart item", "product_id", req.ProductID, "error", err)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Update sets a cart line's quantity.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	owner, err := h.owner(r)
	if err != nil {
		respondError(w, cart.ErrItemNotFound)
		return
	}

	item, err := h.repo.UpdateQuantity(r.Context(), owner, r.PathValue("id"), req.Quantity)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Remove deletes a single cart line.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.repo.Remove(r.Context(), owner, r.PathValue("id")); err != nil {
		h.logger.Error("Failed to remove cart item", "error", err)
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear deletes the whole cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.repo.Clear(r.Context(), owner); err != nil {
		h.logger.Error("Failed to clear cart", "error", err)
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Merge folds the guest cart named in the body into the authenticated
// user's cart.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.merger.Merge(r.Context(), userID, req.SessionID); err != nil {
		h.logger.Error("Cart merge failed", "user_id", userID, "error", err)
		respondError(w, err)
		return
	}

	h.logger.Info("Guest cart merged", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
