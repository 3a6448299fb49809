package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every storefront route behind the shared middleware chain.
func NewRouter(carts *CartHandler, checkouts *CheckoutHandler, wishlists *WishlistHandler, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(MockAuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Delete("/", carts.ClearCart)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{item_id}", carts.UpdateQuantity)
			r.Delete("/items/{item_id}", carts.RemoveItem)
			r.Post("/items/{item_id}/save", carts.SaveForLater)
			r.Post("/saved/{saved_id}/move", carts.MoveToCart)
			r.Delete("/saved/{saved_id}", carts.RemoveSavedItem)
			r.Post("/coupon", carts.ApplyCoupon)
			r.Delete("/coupon", carts.RemoveCoupon)
			r.Put("/delivery", carts.SetDelivery)
			r.Put("/pincode", carts.SetPincode)
			r.Post("/validate", carts.Validate)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkouts.StartSession)
			r.Get("/", checkouts.GetSession)
			r.Get("/summary", checkouts.GetSummary)
			r.Post("/next", checkouts.NextStep)
			r.Post("/back", checkouts.PreviousStep)
			r.Put("/step", checkouts.SetStep)
			r.Put("/address", checkouts.SetAddress)
			r.Put("/delivery", checkouts.SetDelivery)
			r.Put("/payment-method", checkouts.SetPaymentMethod)
			r.Post("/submit", checkouts.Submit)
			r.Get("/payment", checkouts.PollPayment)
			r.Post("/payment/retry", checkouts.RetryPayment)
			r.Post("/payment/status", checkouts.PaymentStatus)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlists.Get)
			r.Delete("/", wishlists.Clear)
			r.Post("/items", wishlists.AddItem)
			r.Delete("/items/{product_id}", wishlists.RemoveItem)
			r.Post("/compare", wishlists.AddToCompare)
			r.Delete("/compare/{product_id}", wishlists.RemoveFromCompare)
			r.Delete("/compare", wishlists.ClearCompare)
			r.Post("/refresh", wishlists.RefreshPrices)
		})
	})

	return r
}
