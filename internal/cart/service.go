package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/voltkart/storefront/internal/cache"
	"github.com/voltkart/storefront/internal/domain"
	"github.com/voltkart/storefront/internal/repository"
)

// Service is the single source of truth for a user's cart. All mutation goes
// through its methods; state transitions themselves cannot fail, only
// storage I/O can. Local mutations are last-applied-wins; the cart validation
// collaborator's result is authoritative for stock and price drift.
type Service struct {
	repo        repository.CartRepository
	cache       cache.CartCache
	sfg         singleflight.Group // Prevents cache stampede
	mergeOnMove bool
}

// Option configures a Service.
type Option func(*Service)

// WithMergeOnMoveToCart makes MoveToCart merge into a matching active line
// instead of always creating a new one.
func WithMergeOnMoveToCart() Option {
	return func(s *Service) { s.mergeOnMove = true }
}

func NewService(repo repository.CartRepository, cache cache.CartCache, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		cache: cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCart returns the user's cart, preferring the cache. A missing cart is an
// empty cart, never an error. Totals are recomputed on every load since they
// are not persisted.
func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		c, err := s.cache.Get(ctx, userID)
		if err == nil {
			Recompute(c)
			return c, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		c, errGet := s.load(ctx, userID)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			errSet := s.cache.Set(context.Background(), userID, c)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return c, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *Service) load(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.repo.GetCart(ctx, userID)
	if err != nil && errors.Is(err, repository.ErrCartNotFound) {
		now := time.Now()
		c = &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}
	} else if err != nil {
		return nil, err
	}
	Recompute(c)
	return c, nil
}

// mutate loads the cart from the repository, applies fn and persists the
// result, invalidating the cache.
func (s *Service) mutate(ctx context.Context, userID string, fn func(*domain.Cart)) (*domain.Cart, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	fn(c)

	if err := s.repo.UpsertCart(ctx, c); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return c, nil
}

func (s *Service) AddItem(ctx context.Context, userID string, n NewItem) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		AddItem(c, n)
	})
}

func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		UpdateItemQuantity(c, itemID, quantity)
	})
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		RemoveItem(c, itemID)
	})
}

func (s *Service) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		ClearCart(c)
	})
}

func (s *Service) SaveForLater(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		SaveForLater(c, itemID)
	})
}

func (s *Service) MoveToCart(ctx context.Context, userID, savedItemID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		MoveToCart(c, savedItemID, s.mergeOnMove)
	})
}

func (s *Service) RemoveSavedItem(ctx context.Context, userID, savedItemID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		RemoveSavedItem(c, savedItemID)
	})
}

// ApplyCoupon trusts its caller: validity and minimum-order checks happen at
// the coupon validation service before this is called.
func (s *Service) ApplyCoupon(ctx context.Context, userID string, coupon domain.AppliedCoupon) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		ApplyCoupon(c, coupon)
	})
}

func (s *Service) RemoveCoupon(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		RemoveCoupon(c)
	})
}

func (s *Service) SetDeliveryOption(ctx context.Context, userID string, option *domain.DeliveryOption) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		SetDeliveryOption(c, option)
	})
}

func (s *Service) SetDeliveryPincode(ctx context.Context, userID, pincode string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		c.DeliveryPincode = pincode
	})
}

// CartValidator is the external validation collaborator contract.
type CartValidator interface {
	ValidateCart(ctx context.Context, c *domain.Cart) (*domain.CartValidation, error)
}

// Validate runs the external validation collaborator and attaches its result
// to the returned cart. The result is session-only and never persisted.
func (s *Service) Validate(ctx context.Context, userID string, validator CartValidator) (*domain.Cart, error) {
	c, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := validator.ValidateCart(ctx, c)
	if err != nil {
		return nil, err
	}

	SetValidation(c, *result)
	return c, nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
