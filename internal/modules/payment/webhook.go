// README: Webhook reconciliation: processor-initiated payment state updates,
// verified over the raw request body.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

var ErrBadSignature = errors.New("webhook signature verification failed")

// HandleWebhook verifies the signature against the unmodified payload bytes
// and applies the event. Unrecognized event types are acknowledged without
// any state change; redelivered events reconcile idempotently.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		return ErrBadSignature
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return err
		}
		chargeID := ""
		if pi.LatestCharge != nil {
			chargeID = pi.LatestCharge.ID
		}
		applied, err := s.store.Reconcile(ctx, pi.ID, StatusCompleted, chargeID, "")
		if err != nil {
			return err
		}
		if !applied {
			log.Printf("payment: webhook for intent %s already reconciled or unknown", pi.ID)
		}
		return nil

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return err
		}
		msg := "payment failed"
		if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
			msg = pi.LastPaymentError.Msg
		}
		if _, err := s.store.Reconcile(ctx, pi.ID, StatusFailed, "", msg); err != nil {
			return err
		}
		return nil

	default:
		// Acknowledge unknown event types so the processor stops redelivering.
		return nil
	}
}
