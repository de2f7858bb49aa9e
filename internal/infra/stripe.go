// README: Stripe API client initialization.
package infra

import (
	"github.com/stripe/stripe-go/v76/client"
)

func NewStripe(apiKey string) *client.API {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return sc
}
