// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freshfold/internal/modules/order"
	"freshfold/internal/modules/payment"
	"freshfold/internal/modules/pricing"
	"freshfold/internal/modules/user"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps module sentinel errors onto HTTP statuses. Not-found
// responses carry a generic message so callers cannot probe whether a
// resource exists for a different user.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrBadRequest),
		errors.Is(err, user.ErrBadRequest),
		errors.Is(err, payment.ErrBadRequest),
		errors.Is(err, pricing.ErrUnknownServiceType):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrProfileNotFound):
		writeError(c, http.StatusNotFound, "profile not found; complete onboarding first")
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, payment.ErrNotFound):
		writeError(c, http.StatusNotFound, "not found")
	case errors.Is(err, order.ErrConflict),
		errors.Is(err, payment.ErrAlreadyPaid):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, payment.ErrGateway):
		writeError(c, http.StatusBadGateway, "payment processor error")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
