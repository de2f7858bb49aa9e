// README: Price-quote handlers over the static tier table.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"freshfold/internal/modules/pricing"
)

type PricingHandler struct{}

func NewPricingHandler() *PricingHandler {
	return &PricingHandler{}
}

func (h *PricingHandler) Quote(c *gin.Context) {
	serviceType := pricing.ServiceType(c.Query("service_type"))
	addons, _ := strconv.Atoi(c.DefaultQuery("addons", "0"))
	total, err := pricing.Quote(serviceType, addons)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"service_type": serviceType,
		"price":        total.Dollars(),
		"currency":     total.Currency,
	})
}

func (h *PricingHandler) Rates(c *gin.Context) {
	type rateResponse struct {
		ServiceType pricing.ServiceType `json:"service_type"`
		BasePrice   float64             `json:"base_price"`
		PerAddon    float64             `json:"per_addon"`
		Turnaround  string              `json:"turnaround"`
	}
	out := make([]rateResponse, 0, 3)
	for _, r := range pricing.Rates() {
		out = append(out, rateResponse{
			ServiceType: r.ServiceType,
			BasePrice:   r.BasePrice.Dollars(),
			PerAddon:    r.PerAddon.Dollars(),
			Turnaround:  r.Turnaround,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"rates": out})
}
