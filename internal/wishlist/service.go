package wishlist

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/voltkart/storefront/internal/cache"
	"github.com/voltkart/storefront/internal/domain"
	"github.com/voltkart/storefront/internal/repository"
)

// Service owns the wishlist and compare sets for all users, persisting them
// as one document per user. Reads prefer the cache; every mutation persists
// and invalidates. Capacity violations surface as a boolean, never an error.
type Service struct {
	repo  repository.WishlistRepository
	cache cache.WishlistCache
}

func NewService(repo repository.WishlistRepository, cache cache.WishlistCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Get returns the user's wishlist, preferring the cache; a missing document
// is an empty wishlist.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	wl, err := s.cache.GetWishlist(ctx, userID)
	if err == nil {
		return wl, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("wishlist cache get error: %v", err)
	}

	wl, err = s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := s.cache.SetWishlist(context.Background(), userID, wl); err != nil {
			log.Printf("wishlist cache set error: %v", err)
		}
	}()

	return wl, nil
}

func (s *Service) load(ctx context.Context, userID string) (*domain.Wishlist, error) {
	wl, err := s.repo.GetWishlist(ctx, userID)
	if err != nil && errors.Is(err, repository.ErrWishlistNotFound) {
		now := time.Now()
		return &domain.Wishlist{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, err
	}
	return wl, nil
}

func (s *Service) mutate(ctx context.Context, userID string, fn func(*domain.Wishlist)) (*domain.Wishlist, error) {
	wl, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	fn(wl)

	if err := s.repo.UpsertWishlist(ctx, wl); err != nil {
		log.Printf("repo upsert wishlist error: %v", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return wl, nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.DeleteWishlist(ctx, userID); err != nil {
		log.Printf("wishlist cache invalidate error: %v", err)
	}
}

func (s *Service) AddToWishlist(ctx context.Context, userID string, product domain.Product, opts NotifyOptions) (*domain.Wishlist, error) {
	return s.mutate(ctx, userID, func(wl *domain.Wishlist) {
		addToWishlist(wl, product, opts)
	})
}

func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	return s.mutate(ctx, userID, func(wl *domain.Wishlist) {
		removeFromWishlist(wl, productID)
	})
}

func (s *Service) ClearWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	return s.mutate(ctx, userID, func(wl *domain.Wishlist) {
		wl.Items = nil
	})
}

// AddToCompare reports false when the compare set is full; the caller must
// remove a member first. The set itself is left untouched in that case.
func (s *Service) AddToCompare(ctx context.Context, userID string, product domain.Product) (bool, *domain.Wishlist, error) {
	added := false
	wl, err := s.mutate(ctx, userID, func(wl *domain.Wishlist) {
		added = addToCompare(wl, product)
	})
	if err != nil {
		return false, nil, err
	}
	return added, wl, nil
}

func (s *Service) RemoveFromCompare(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	return s.mutate(ctx, userID, func(wl *domain.Wishlist) {
		removeFromCompare(wl, productID)
	})
}

func (s *Service) ClearCompare(ctx context.Context, userID string) (*domain.Wishlist, error) {
	return s.mutate(ctx, userID, func(wl *domain.Wishlist) {
		wl.Compare = nil
	})
}

// Catalog is the product lookup collaborator used for price refresh.
type Catalog interface {
	GetProducts(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

// RefreshPrices re-derives current price, price-drop and stock flags for
// every wishlist item from the catalog. Products the catalog no longer knows
// are left as they were.
func (s *Service) RefreshPrices(ctx context.Context, userID string, catalog Catalog) (*domain.Wishlist, error) {
	wl, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(wl.Items) == 0 {
		return wl, nil
	}

	ids := make([]string, 0, len(wl.Items))
	for i := range wl.Items {
		ids = append(ids, wl.Items[i].ProductID)
	}

	products, err := catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range wl.Items {
		if product, ok := products[wl.Items[i].ProductID]; ok {
			refreshItem(&wl.Items[i], product)
		}
	}

	if err := s.repo.UpsertWishlist(ctx, wl); err != nil {
		log.Printf("repo upsert wishlist error: %v", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return wl, nil
}
