// README: Static service-tier pricing table and quote calculator.
package pricing

import (
	"errors"

	"freshfold/internal/types"
)

type ServiceType string

const (
	ServiceStandard ServiceType = "standard"
	ServiceExpress  ServiceType = "express"
	ServicePremium  ServiceType = "premium"
)

var ErrUnknownServiceType = errors.New("unknown service type")

// Rate is the fixed price entry for one service tier. BasePrice is the quoted
// order price; PerAddon is the surcharge applied per requested addon in quotes.
type Rate struct {
	ServiceType ServiceType
	BasePrice   types.Money
	PerAddon    types.Money
	Turnaround  string
}

// rates is the whole pricing model. Prices change by redeploy, not at runtime.
var rates = map[ServiceType]Rate{
	ServiceStandard: {
		ServiceType: ServiceStandard,
		BasePrice:   types.Money{Amount: 2500, Currency: "usd"},
		PerAddon:    types.Money{Amount: 300, Currency: "usd"},
		Turnaround:  "48 hours",
	},
	ServiceExpress: {
		ServiceType: ServiceExpress,
		BasePrice:   types.Money{Amount: 4000, Currency: "usd"},
		PerAddon:    types.Money{Amount: 500, Currency: "usd"},
		Turnaround:  "24 hours",
	},
	ServicePremium: {
		ServiceType: ServicePremium,
		BasePrice:   types.Money{Amount: 6000, Currency: "usd"},
		PerAddon:    types.Money{Amount: 500, Currency: "usd"},
		Turnaround:  "same day",
	},
}

func ValidServiceType(s ServiceType) bool {
	_, ok := rates[s]
	return ok
}

func GetRate(s ServiceType) (Rate, error) {
	r, ok := rates[s]
	if !ok {
		return Rate{}, ErrUnknownServiceType
	}
	return r, nil
}

// Quote returns the tier base price plus per-addon surcharges. Item count does
// not factor into the price; only the tier and addons do.
func Quote(s ServiceType, addonCount int) (types.Money, error) {
	r, ok := rates[s]
	if !ok {
		return types.Money{}, ErrUnknownServiceType
	}
	if addonCount < 0 {
		addonCount = 0
	}
	total := r.BasePrice
	total.Amount += int64(addonCount) * r.PerAddon.Amount
	return total, nil
}

// Rates lists all tiers for the public price table endpoint.
func Rates() []Rate {
	out := make([]Rate, 0, len(rates))
	for _, s := range []ServiceType{ServiceStandard, ServiceExpress, ServicePremium} {
		out = append(out, rates[s])
	}
	return out
}
