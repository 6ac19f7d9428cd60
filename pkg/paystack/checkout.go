package paystack

// CheckoutConfig is handed to the hosted checkout widget
type CheckoutConfig struct {
	Reference   string           `json:"reference"`
	Email       string           `json:"email"`
	Amount      int64            `json:"amount"` // kobo
	PublicKey   string           `json:"public_key"`
	Currency    string           `json:"currency"`
	CallbackURL string           `json:"callback_url,omitempty"`
	Metadata    CheckoutMetadata `json:"metadata"`
}

type CheckoutMetadata struct {
	BookingReference string        `json:"booking_reference"`
	CustomFields     []CustomField `json:"custom_fields"`
}

type CustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

// InitiateCharge assembles the widget configuration. The booking reference
// doubles as the transaction reference. No request is made.
func (c *Client) InitiateCharge(amountKobo int64, payerEmail, bookingReference, callbackURL string) CheckoutConfig {
	return CheckoutConfig{
		Reference:   bookingReference,
		Email:       payerEmail,
		Amount:      amountKobo,
		PublicKey:   c.publicKey,
		Currency:    c.currency,
		CallbackURL: callbackURL,
		Metadata: CheckoutMetadata{
			BookingReference: bookingReference,
			CustomFields: []CustomField{{
				DisplayName:  "Booking Reference",
				VariableName: "booking_reference",
				Value:        bookingReference,
			}},
		},
	}
}
