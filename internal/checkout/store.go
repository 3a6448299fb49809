// Package checkout drives the forward-biased, backward-permissive checkout
// wizard. Session state lives only in memory; it is deliberately never
// persisted and expires with the session.
package checkout

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voltkart/storefront/internal/domain"
)

const (
	// SessionTTL is how long an idle checkout session is kept before expiry
	SessionTTL = 30 * time.Minute

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = time.Minute
)

var (
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrNotReadyForPayment = errors.New("checkout is not ready for payment")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
)

// Store holds checkout sessions keyed by user id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.CheckoutSession
	ttl      time.Duration

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	s := &Store{
		sessions:    make(map[string]*domain.CheckoutSession),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *Store) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireSessions()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Store) expireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for userID, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, userID)
		}
	}
}

// StartSession creates a fresh session for the user, replacing any prior one.
// Payment sub-state resets to initial.
func (s *Store) StartSession(userID string) *domain.CheckoutSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &domain.CheckoutSession{
		ID:               uuid.New().String(),
		UserID:           userID,
		CurrentStep:      domain.StepAddress,
		Completed:        make(map[domain.CheckoutStep]bool),
		UseSameAsBilling: true,
		Payment:          domain.NewPaymentState(),
		CreatedAt:        now,
		UpdatedAt:        now,
		ExpiresAt:        now.Add(s.ttl),
	}
	s.sessions[userID] = sess
	return snapshot(sess)
}

func (s *Store) GetSession(userID string) (*domain.CheckoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok || time.Now().After(sess.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return snapshot(sess), nil
}

// update applies fn to the user's session under the lock, bumping the TTL.
func (s *Store) update(userID string, fn func(*domain.CheckoutSession)) (*domain.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || time.Now().After(sess.ExpiresAt) {
		return nil, ErrSessionNotFound
	}

	fn(sess)
	now := time.Now()
	sess.UpdatedAt = now
	sess.ExpiresAt = now.Add(s.ttl)
	return snapshot(sess), nil
}

// NextStep advances one position unless already at the last step and marks
// the pre-advance step completed.
func (s *Store) NextStep(userID string) (*domain.CheckoutSession, error) {
	return s.update(userID, func(sess *domain.CheckoutSession) {
		idx := sess.CurrentStep.Index()
		if idx < 0 || idx >= len(domain.StepOrder)-1 {
			return
		}
		sess.Completed[sess.CurrentStep] = true
		sess.CurrentStep = domain.StepOrder[idx+1]
	})
}

// PreviousStep retreats one position. Completion marks never shrink.
func (s *Store) PreviousStep(userID string) (*domain.CheckoutSession, error) {
	return s.update(userID, func(sess *domain.CheckoutSession) {
		idx := sess.CurrentStep.Index()
		if idx <= 0 {
			return
		}
		sess.CurrentStep = domain.StepOrder[idx-1]
	})
}

// SetStep stores the step unconditionally. Policy enforcement belongs to the
// caller via CanProceedTo.
func (s *Store) SetStep(userID string, step domain.CheckoutStep) (*domain.CheckoutSession, error) {
	return s.update(userID, func(sess *domain.CheckoutSession) {
		sess.CurrentStep = step
	})
}

func (s *Store) SetShippingAddress(userID string, addr domain.Address) (*domain.CheckoutSession, error) {
	return s.update(userID, func(sess *domain.CheckoutSession) {
		sess.ShippingAddress = &addr
	})
}

func (s *Store) SetBillingAddress(userID string, addr *domain.Address, useSameAsBilling bool) (*domain.CheckoutSession, error) {
	return s.update(userID, func(sess *domain.CheckoutSession) {
		sess.BillingAddress = addr
		sess.UseSameAsBilling = useSameAsBilling
	})
}

func (s *Store) SetDeliveryOption(userID string, option domain.DeliveryOption) (*domain.CheckoutSession, error) {
	return s.update(userID, func(sess *domain.CheckoutSession) {
		sess.Delivery = &option
	})
}

func (s *Store) SetPaymentMethod(userID string, method domain.PaymentMethod) (*domain.CheckoutSession, error) {
	return s.update(userID, func(sess *domain.CheckoutSession) {
		sess.Payment.Method = &method
	})
}

// SetPaymentStatus stores a gateway-reported status together with the
// transaction id when present.
func (s *Store) SetPaymentStatus(userID string, status domain.PaymentStatus, transactionID string) (*domain.CheckoutSession, error) {
	return s.update(userID, func(sess *domain.CheckoutSession) {
		sess.Payment.Status = status
		if transactionID != "" {
			sess.Payment.TransactionID = transactionID
		}
	})
}

// SetPaymentError records the gateway error; a non-empty error forces the
// status to failed.
func (s *Store) SetPaymentError(userID, message string) (*domain.CheckoutSession, error) {
	return s.update(userID, func(sess *domain.CheckoutSession) {
		sess.Payment.Error = message
		if message != "" {
			sess.Payment.Status = domain.PaymentFailed
		}
	})
}

// ResetPayment restores the whole payment sub-state to initial.
func (s *Store) ResetPayment(userID string) (*domain.CheckoutSession, error) {
	return s.update(userID, func(sess *domain.CheckoutSession) {
		sess.Payment = domain.NewPaymentState()
	})
}

// RetryPayment re-arms a failed attempt, incrementing the retry counter for
// the caller's backoff decisions.
func (s *Store) RetryPayment(userID string) (*domain.CheckoutSession, error) {
	return s.update(userID, func(sess *domain.CheckoutSession) {
		sess.Payment.RetryCount++
		sess.Payment.Status = domain.PaymentPending
		sess.Payment.Error = ""
		sess.Payment.TransactionID = ""
		sess.Payment.GatewayURL = ""
	})
}

// Close stops the background cleanup and waits for it to finish
func (s *Store) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}

// snapshot copies a session so callers never share the store's mutable state.
func snapshot(sess *domain.CheckoutSession) *domain.CheckoutSession {
	out := *sess
	out.Completed = make(map[domain.CheckoutStep]bool, len(sess.Completed))
	for k, v := range sess.Completed {
		out.Completed[k] = v
	}
	if sess.ShippingAddress != nil {
		addr := *sess.ShippingAddress
		out.ShippingAddress = &addr
	}
	if sess.BillingAddress != nil {
		addr := *sess.BillingAddress
		out.BillingAddress = &addr
	}
	if sess.Delivery != nil {
		opt := *sess.Delivery
		out.Delivery = &opt
	}
	if sess.Payment.Method != nil {
		m := *sess.Payment.Method
		out.Payment.Method = &m
	}
	return &out
}
