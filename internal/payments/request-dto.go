package payments

type VerifyPaymentRequest struct {
	Reference string `json:"reference"`
	BookingID string `json:"bookingId"`
}

type CheckoutRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
}

// VerifyPaymentResponse is the wire shape the checkout page expects
type VerifyPaymentResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Reference string `json:"reference,omitempty"`
}
