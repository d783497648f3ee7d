package payment

import (
	"fmt"

	"github.com/stripe/stripe-go/v81"
)

// StripeConfig holds configuration for Stripe integration
type StripeConfig struct {
	// APIKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// WebhookSecret is the secret for verifying webhook signatures
	WebhookSecret string `json:"webhook_secret" mapstructure:"webhook_secret"`

	// IsTestMode indicates if using Stripe test mode
	IsTestMode bool `json:"is_test_mode" mapstructure:"is_test_mode"`

	// Currency is the ISO 4217 currency code for charges and payment links
	Currency string `json:"currency" mapstructure:"currency"`

	// SuccessURL is where the payer lands after completing a payment link
	SuccessURL string `json:"success_url" mapstructure:"success_url"`

	// CancelURL is where the payer lands after abandoning a payment link
	CancelURL string `json:"cancel_url" mapstructure:"cancel_url"`
}

// DefaultStripeConfig returns a default configuration for development/testing
func DefaultStripeConfig() *StripeConfig {
	return &StripeConfig{
		IsTestMode: true,
		Currency:   "gbp",
		SuccessURL: "http://localhost:8080/payments/success",
		CancelURL:  "http://localhost:8080/payments/cancelled",
	}
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("stripe: api key is required")
	}

	// Validate key format
	if c.IsTestMode {
		if len(c.APIKey) > 7 && c.APIKey[:7] != "sk_test" {
			return fmt.Errorf("stripe: test mode enabled but api key is not a test key")
		}
	} else {
		if len(c.APIKey) > 7 && c.APIKey[:7] != "sk_live" {
			return fmt.Errorf("stripe: live mode enabled but api key is not a live key")
		}
	}

	if c.Currency == "" {
		return fmt.Errorf("stripe: currency is required")
	}

	return nil
}

// InitStripeClient initializes the Stripe client with the configured API key
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.APIKey
}
