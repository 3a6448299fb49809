package wishlist

import (
	"time"

	"github.com/voltkart/storefront/internal/domain"
)

// CompareLimit is the hard cap on concurrent compare-set members.
const CompareLimit = 4

// NotifyOptions are the per-item notification toggles chosen at add time.
type NotifyOptions struct {
	PriceDrop bool
	Restock   bool
}

// addToWishlist is a no-op when the product is already present.
func addToWishlist(wl *domain.Wishlist, product domain.Product, opts NotifyOptions) {
	for i := range wl.Items {
		if wl.Items[i].ProductID == product.ID {
			return
		}
	}
	wl.Items = append(wl.Items, domain.WishlistItem{
		ProductID:       product.ID,
		Product:         product,
		PriceAtAdd:      product.BasePrice,
		CurrentPrice:    product.BasePrice,
		PriceDropped:    false,
		InStock:         product.StockStatus != domain.StockStatusOutOfStock,
		NotifyPriceDrop: opts.PriceDrop,
		NotifyRestock:   opts.Restock,
		AddedAt:         time.Now(),
	})
}

func removeFromWishlist(wl *domain.Wishlist, productID string) {
	for i := range wl.Items {
		if wl.Items[i].ProductID == productID {
			wl.Items = append(wl.Items[:i], wl.Items[i+1:]...)
			return
		}
	}
}

func IsInWishlist(wl *domain.Wishlist, productID string) bool {
	for i := range wl.Items {
		if wl.Items[i].ProductID == productID {
			return true
		}
	}
	return false
}

// addToCompare returns false when the set is full and the product is new.
// Re-adding an existing member is idempotent and reports true.
func addToCompare(wl *domain.Wishlist, product domain.Product) bool {
	for i := range wl.Compare {
		if wl.Compare[i].ProductID == product.ID {
			return true
		}
	}
	if len(wl.Compare) >= CompareLimit {
		return false
	}
	wl.Compare = append(wl.Compare, domain.CompareItem{
		ProductID: product.ID,
		Product:   product,
		AddedAt:   time.Now(),
	})
	return true
}

func removeFromCompare(wl *domain.Wishlist, productID string) {
	for i := range wl.Compare {
		if wl.Compare[i].ProductID == productID {
			wl.Compare = append(wl.Compare[:i], wl.Compare[i+1:]...)
			return
		}
	}
}

func IsInCompare(wl *domain.Wishlist, productID string) bool {
	for i := range wl.Compare {
		if wl.Compare[i].ProductID == productID {
			return true
		}
	}
	return false
}

func CanAddToCompare(wl *domain.Wishlist) bool {
	return len(wl.Compare) < CompareLimit
}

// refreshItem re-derives the drift fields from a fresh catalog snapshot.
func refreshItem(item *domain.WishlistItem, product domain.Product) {
	item.CurrentPrice = product.BasePrice
	item.PriceDropped = product.BasePrice < item.PriceAtAdd
	item.InStock = product.StockStatus != domain.StockStatusOutOfStock
	item.Product = product
}
