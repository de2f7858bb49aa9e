// README: Stripe webhook receiver. Reads the raw body before anything else
// can touch it; signature verification happens over those exact bytes.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"freshfold/internal/modules/payment"
)

type WebhookHandler struct {
	payments *payment.Service
}

func NewWebhookHandler(svc *payment.Service) *WebhookHandler {
	return &WebhookHandler{payments: svc}
}

const maxWebhookBody = 64 * 1024

// Stripe handles processor-initiated payment events. This route is registered
// outside the auth and rate-limit middleware: the processor is the caller,
// and it controls the request rate.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable body")
		return
	}
	sig := c.GetHeader("Stripe-Signature")
	if err := h.payments.HandleWebhook(c.Request.Context(), payload, sig); err != nil {
		if errors.Is(err, payment.ErrBadSignature) {
			writeError(c, http.StatusBadRequest, "signature verification failed")
			return
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"received": true})
}
