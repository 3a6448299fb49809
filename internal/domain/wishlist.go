package domain

import "time"

type WishlistItem struct {
	ProductID       string    `bson:"product_id" json:"product_id"`
	Product         Product   `bson:"product" json:"product"`
	PriceAtAdd      float64   `bson:"price_at_add" json:"price_at_add"`
	CurrentPrice    float64   `bson:"current_price" json:"current_price"`
	PriceDropped    bool      `bson:"price_dropped" json:"price_dropped"`
	InStock         bool      `bson:"in_stock" json:"in_stock"`
	NotifyPriceDrop bool      `bson:"notify_price_drop" json:"notify_price_drop"`
	NotifyRestock   bool      `bson:"notify_restock" json:"notify_restock"`
	AddedAt         time.Time `bson:"added_at" json:"added_at"`
}

type CompareItem struct {
	ProductID string    `bson:"product_id" json:"product_id"`
	Product   Product   `bson:"product" json:"product"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// Wishlist is the persisted per-user wishlist document. The compare set
// shares the document; both sets are keyed by product id.
type Wishlist struct {
	ID        string         `bson:"_id,omitempty" json:"-"`
	UserID    string         `bson:"user_id" json:"user_id"`
	Items     []WishlistItem `bson:"items" json:"items"`
	Compare   []CompareItem  `bson:"compare" json:"compare"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updated_at"`
}
