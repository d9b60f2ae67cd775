package gateway

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// StripeGateway creates payment intents against the Stripe API.
type StripeGateway struct {
	api    *client.API
	logger *zap.Logger
}

// NewStripeGateway constructs a gateway bound to the given secret key.
func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeGateway{api: client.New(secretKey, nil), logger: logger}
}

// CreateIntent requests a card payment intent for the amount in the smallest
// currency unit and returns the intent's client secret.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}

	g.logger.Debug("payment intent created", zap.String("intent_id", intent.ID), zap.Int64("amount", amount))
	return intent.ClientSecret, nil
}
