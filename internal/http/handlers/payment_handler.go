// README: Payment handlers: charge and read paths.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"freshfold/internal/http/middleware"
	"freshfold/internal/modules/payment"
	"freshfold/internal/types"
)

type PaymentHandler struct {
	payments *payment.Service
}

func NewPaymentHandler(svc *payment.Service) *PaymentHandler {
	return &PaymentHandler{payments: svc}
}

type chargeReq struct {
	OrderID       string `json:"order_id"`
	PaymentMethod string `json:"payment_method"`
}

type paymentResponse struct {
	ID              types.ID       `json:"id"`
	OrderID         types.ID       `json:"order_id"`
	ChargeID        *string        `json:"charge_id,omitempty"`
	PaymentIntentID *string        `json:"payment_intent_id,omitempty"`
	Amount          float64        `json:"amount"`
	Currency        string         `json:"currency"`
	Status          payment.Status `json:"status"`
	PaymentMethod   string         `json:"payment_method,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func toPaymentResponse(p *payment.Payment) paymentResponse {
	return paymentResponse{
		ID:              p.ID,
		OrderID:         p.OrderID,
		ChargeID:        p.ChargeID,
		PaymentIntentID: p.IntentID,
		Amount:          p.Amount.Dollars(),
		Currency:        p.Amount.Currency,
		Status:          p.Status,
		PaymentMethod:   p.PaymentMethod,
		ErrorMessage:    p.ErrorMessage,
		CreatedAt:       p.CreatedAt,
	}
}

func (h *PaymentHandler) Charge(c *gin.Context) {
	var req chargeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	outcome, err := h.payments.Charge(c.Request.Context(), payment.ChargeCommand{
		FirebaseUID:   middleware.CallerUID(c),
		OrderID:       types.ID(req.OrderID),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"payment":       toPaymentResponse(outcome.Payment),
		"client_secret": outcome.ClientSecret,
	})
}

func (h *PaymentHandler) GetByOrder(c *gin.Context) {
	p, err := h.payments.GetByOrder(c.Request.Context(), middleware.CallerUID(c), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.payments.List(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]paymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, toPaymentResponse(&payments[i]))
	}
	writeJSON(c, http.StatusOK, gin.H{"payments": out})
}
