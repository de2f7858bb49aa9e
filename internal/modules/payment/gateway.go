// README: External payment processor surface and its Stripe implementation.
package payment

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"

	"freshfold/internal/types"
)

type CustomerParams struct {
	Email string
	Name  string
}

type ChargeParams struct {
	CustomerID    string
	PaymentMethod string
	Amount        types.Money
	OrderID       types.ID
	UserID        types.ID
}

// ChargeResult carries both processor identifiers. ChargeID may be empty when
// the intent has not settled synchronously.
type ChargeResult struct {
	IntentID     string
	ChargeID     string
	ClientSecret string
	Succeeded    bool
}

// Gateway is the processor as the charge flow sees it. The Stripe client sits
// behind it so tests can drive the flow with a fake.
type Gateway interface {
	CreateCustomer(ctx context.Context, p CustomerParams) (string, error)
	Charge(ctx context.Context, p ChargeParams) (*ChargeResult, error)
}

type stripeGateway struct {
	api *stripeclient.API
}

func NewStripeGateway(api *stripeclient.API) Gateway {
	return &stripeGateway{api: api}
}

func (g *stripeGateway) CreateCustomer(ctx context.Context, p CustomerParams) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(p.Email),
		Name:  stripe.String(p.Name),
	}
	params.Context = ctx
	cust, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return cust.ID, nil
}

// Charge creates and confirms a payment intent for the order's stored price.
// Order and user ids ride along as processor metadata so webhook events can
// be correlated later.
func (g *stripeGateway) Charge(ctx context.Context, p ChargeParams) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(p.Amount.Amount),
		Currency:      stripe.String(p.Amount.Currency),
		Customer:      stripe.String(p.CustomerID),
		PaymentMethod: stripe.String(p.PaymentMethod),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", string(p.OrderID))
	params.AddMetadata("user_id", string(p.UserID))
	// Expanded so the settled charge id is available in the same response.
	params.AddExpand("latest_charge")

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create intent: %w", err)
	}
	res := &ChargeResult{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Succeeded:    pi.Status == stripe.PaymentIntentStatusSucceeded,
	}
	if pi.LatestCharge != nil {
		res.ChargeID = pi.LatestCharge.ID
	}
	return res, nil
}
