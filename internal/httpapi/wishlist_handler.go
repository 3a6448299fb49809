package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltkart/storefront/internal/domain"
	"github.com/voltkart/storefront/internal/events"
	"github.com/voltkart/storefront/internal/wishlist"
)

// WishlistService is the wishlist store surface the handler needs.
type WishlistService interface {
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)
	AddToWishlist(ctx context.Context, userID string, product domain.Product, opts wishlist.NotifyOptions) (*domain.Wishlist, error)
	RemoveFromWishlist(ctx context.Context, userID, productID string) (*domain.Wishlist, error)
	ClearWishlist(ctx context.Context, userID string) (*domain.Wishlist, error)
	AddToCompare(ctx context.Context, userID string, product domain.Product) (bool, *domain.Wishlist, error)
	RemoveFromCompare(ctx context.Context, userID, productID string) (*domain.Wishlist, error)
	ClearCompare(ctx context.Context, userID string) (*domain.Wishlist, error)
	RefreshPrices(ctx context.Context, userID string, catalog wishlist.Catalog) (*domain.Wishlist, error)
}

// ProductCatalog extends the price-refresh catalog with single-product
// lookup so wishlist items can be added by id alone.
type ProductCatalog interface {
	wishlist.Catalog
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type WishlistHandler struct {
	wishlists WishlistService
	catalog   ProductCatalog
	events    EventPublisher
	timeout   time.Duration
}

func NewWishlistHandler(wishlists WishlistService, catalog ProductCatalog, events EventPublisher, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{
		wishlists: wishlists,
		catalog:   catalog,
		events:    events,
		timeout:   timeout,
	}
}

type AddWishlistItemRequestDTO struct {
	Product         domain.Product `json:"product"`
	ProductID       string         `json:"product_id,omitempty"`
	NotifyPriceDrop bool           `json:"notify_price_drop"`
	NotifyRestock   bool           `json:"notify_restock"`
}

type AddCompareItemRequestDTO struct {
	Product domain.Product `json:"product"`
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	wl, err := h.wishlists.Get(ctx, userID)
	if err != nil {
		respondServerError(w, r, err, "failed to load wishlist")
		return
	}

	respondJSON(w, http.StatusOK, wl)
}

func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddWishlistItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Product.ID == "" {
		if req.ProductID == "" {
			respondError(w, http.StatusBadRequest, "invalid_product", "product or product_id is required")
			return
		}
		p, err := h.catalog.GetProduct(ctx, req.ProductID)
		if err != nil {
			respondError(w, http.StatusServiceUnavailable, "catalog_unavailable", "could not look up product")
			return
		}
		req.Product = *p
	}

	wl, err := h.wishlists.AddToWishlist(ctx, userID, req.Product, wishlist.NotifyOptions{
		PriceDrop: req.NotifyPriceDrop,
		Restock:   req.NotifyRestock,
	})
	if err != nil {
		respondServerError(w, r, err, "failed to add to wishlist")
		return
	}

	h.events.Publish(events.EventWishlistItemAdded, userID, map[string]interface{}{
		"user_id":    userID,
		"product_id": req.Product.ID,
		"price":      req.Product.BasePrice,
	})

	respondJSON(w, http.StatusCreated, wl)
}

func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	wl, err := h.wishlists.RemoveFromWishlist(ctx, userID, chi.URLParam(r, "product_id"))
	if err != nil {
		respondServerError(w, r, err, "failed to remove from wishlist")
		return
	}

	respondJSON(w, http.StatusOK, wl)
}

func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	wl, err := h.wishlists.ClearWishlist(ctx, userID)
	if err != nil {
		respondServerError(w, r, err, "failed to clear wishlist")
		return
	}

	respondJSON(w, http.StatusOK, wl)
}

// AddToCompare returns 409 when the compare list already holds its maximum
// of four products.
func (h *WishlistHandler) AddToCompare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddCompareItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Product.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "product id is required")
		return
	}

	added, wl, err := h.wishlists.AddToCompare(ctx, userID, req.Product)
	if err != nil {
		respondServerError(w, r, err, "failed to add to compare")
		return
	}
	if !added {
		respondError(w, http.StatusConflict, "compare_full", "compare list holds at most 4 products")
		return
	}

	respondJSON(w, http.StatusCreated, wl)
}

func (h *WishlistHandler) RemoveFromCompare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	wl, err := h.wishlists.RemoveFromCompare(ctx, userID, chi.URLParam(r, "product_id"))
	if err != nil {
		respondServerError(w, r, err, "failed to remove from compare")
		return
	}

	respondJSON(w, http.StatusOK, wl)
}

func (h *WishlistHandler) ClearCompare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	wl, err := h.wishlists.ClearCompare(ctx, userID)
	if err != nil {
		respondServerError(w, r, err, "failed to clear compare list")
		return
	}

	respondJSON(w, http.StatusOK, wl)
}

func (h *WishlistHandler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	wl, err := h.wishlists.RefreshPrices(ctx, userID, h.catalog)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "catalog_unavailable", "could not refresh prices")
		return
	}

	respondJSON(w, http.StatusOK, wl)
}
