package checkout

import "github.com/voltkart/storefront/internal/domain"

// CanProceedTo reports whether the wizard may navigate to target. Backward
// and lateral moves are always allowed; forward moves are gated on
// prerequisite data. Advisory only: SetStep does not consult it.
func CanProceedTo(sess *domain.CheckoutSession, target domain.CheckoutStep) bool {
	targetIdx := target.Index()
	if targetIdx < 0 {
		return false
	}
	if targetIdx <= sess.CurrentStep.Index() {
		return true
	}

	switch target {
	case domain.StepAddress:
		return true
	case domain.StepDelivery:
		return sess.ShippingAddress != nil
	case domain.StepPayment:
		return sess.ShippingAddress != nil && sess.Delivery != nil
	case domain.StepReview:
		return sess.ShippingAddress != nil && sess.Delivery != nil && sess.Payment.Method != nil
	case domain.StepConfirmation:
		return sess.Payment.Status == domain.PaymentSuccess
	}
	return false
}

// Summary combines the presence checks the order-submission action gates on.
func Summary(sess *domain.CheckoutSession) domain.CheckoutSummary {
	sum := domain.CheckoutSummary{
		HasShippingAddress: sess.ShippingAddress != nil,
		HasBillingAddress:  sess.UseSameAsBilling || sess.BillingAddress != nil,
		HasDeliveryOption:  sess.Delivery != nil,
		HasPaymentMethod:   sess.Payment.Method != nil,
	}
	sum.IsReadyForPayment = sum.HasShippingAddress && sum.HasBillingAddress && sum.HasDeliveryOption && sum.HasPaymentMethod
	return sum
}
