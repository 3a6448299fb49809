package repository

import (
	"context"
	"errors"

	"github.com/voltkart/storefront/internal/domain"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrWishlistNotFound = errors.New("wishlist not found")
)

// CartRepository defines the interface for cart persistence.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

type WishlistRepository interface {
	GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error)
	UpsertWishlist(ctx context.Context, wl *domain.Wishlist) error
	DeleteWishlist(ctx context.Context, userID string) error
}
