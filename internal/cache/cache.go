package cache

import (
	"context"
	"errors"

	"github.com/voltkart/storefront/internal/domain"
)

// CartCache holds the full cart document (lines, saved-for-later, coupon,
// delivery selection) keyed by user. Totals are not cached; they are
// recomputed on every load.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

// WishlistCache holds the wishlist/compare document keyed by user.
type WishlistCache interface {
	GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error)
	SetWishlist(ctx context.Context, userID string, wl *domain.Wishlist) error
	DeleteWishlist(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
