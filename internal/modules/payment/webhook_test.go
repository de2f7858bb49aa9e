// README: Webhook reconciliation tests with real HMAC signatures.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v76"

	"freshfold/internal/types"
)

const testWebhookSecret = "whsec_test"

// signPayload produces the signature header Stripe would send for payload.
func signPayload(t *testing.T, secret string, payload []byte) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType, object string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","object":"event","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, object,
	))
}

func webhookFixture() (*fakePayStore, *Service) {
	intent := "pi_1"
	store := &fakePayStore{payments: []*Payment{{
		ID:       "pay-1",
		OrderID:  "order-1",
		UserID:   "user-1",
		IntentID: &intent,
		Amount:   types.Money{Amount: 4000, Currency: "usd"},
		Status:   StatusPending,
	}}}
	return store, NewService(store, nil, nil, nil, testWebhookSecret)
}

func TestWebhookPaymentSucceeded(t *testing.T) {
	store, svc := webhookFixture()

	payload := eventPayload("payment_intent.succeeded", `{"id":"pi_1","latest_charge":"ch_1"}`)
	if err := svc.HandleWebhook(context.Background(), payload, signPayload(t, testWebhookSecret, payload)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	p := store.payments[0]
	if p.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", p.Status)
	}
	if p.ChargeID == nil || *p.ChargeID != "ch_1" {
		t.Error("settled charge id not recorded")
	}
}

func TestWebhookPaymentFailed(t *testing.T) {
	store, svc := webhookFixture()

	payload := eventPayload("payment_intent.payment_failed",
		`{"id":"pi_1","last_payment_error":{"message":"insufficient funds"}}`)
	if err := svc.HandleWebhook(context.Background(), payload, signPayload(t, testWebhookSecret, payload)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	p := store.payments[0]
	if p.Status != StatusFailed {
		t.Errorf("status = %s, want failed", p.Status)
	}
	if p.ErrorMessage != "insufficient funds" {
		t.Errorf("error message = %q", p.ErrorMessage)
	}
}

func TestWebhookBadSignature(t *testing.T) {
	store, svc := webhookFixture()

	payload := eventPayload("payment_intent.succeeded", `{"id":"pi_1"}`)
	err := svc.HandleWebhook(context.Background(), payload, signPayload(t, "whsec_wrong", payload))
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
	if store.payments[0].Status != StatusPending {
		t.Error("payment state changed despite a bad signature")
	}
}

// Processors redeliver; applying the same success twice must not error and
// must not touch the already-completed record again.
func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	store, svc := webhookFixture()
	ctx := context.Background()

	payload := eventPayload("payment_intent.succeeded", `{"id":"pi_1","latest_charge":"ch_1"}`)
	for i := 0; i < 2; i++ {
		if err := svc.HandleWebhook(ctx, payload, signPayload(t, testWebhookSecret, payload)); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}
	if store.payments[0].Status != StatusCompleted {
		t.Errorf("status = %s, want completed", store.payments[0].Status)
	}
}

// A failure event arriving after success must not downgrade the record.
func TestWebhookFailureAfterSuccessIgnored(t *testing.T) {
	store, svc := webhookFixture()
	ctx := context.Background()

	ok := eventPayload("payment_intent.succeeded", `{"id":"pi_1","latest_charge":"ch_1"}`)
	if err := svc.HandleWebhook(ctx, ok, signPayload(t, testWebhookSecret, ok)); err != nil {
		t.Fatalf("success delivery: %v", err)
	}
	failed := eventPayload("payment_intent.payment_failed", `{"id":"pi_1","last_payment_error":{"message":"late decline"}}`)
	if err := svc.HandleWebhook(ctx, failed, signPayload(t, testWebhookSecret, failed)); err != nil {
		t.Fatalf("failure delivery: %v", err)
	}
	if store.payments[0].Status != StatusCompleted {
		t.Errorf("completed payment was downgraded to %s", store.payments[0].Status)
	}
}

func TestWebhookUnknownEventAcknowledged(t *testing.T) {
	store, svc := webhookFixture()

	payload := eventPayload("customer.updated", `{"id":"cus_1"}`)
	if err := svc.HandleWebhook(context.Background(), payload, signPayload(t, testWebhookSecret, payload)); err != nil {
		t.Fatalf("unknown event types must be acknowledged, got %v", err)
	}
	if store.payments[0].Status != StatusPending {
		t.Error("unknown event changed payment state")
	}
}

func TestWebhookUnknownIntentIsNoOp(t *testing.T) {
	store, svc := webhookFixture()

	payload := eventPayload("payment_intent.succeeded", `{"id":"pi_unknown","latest_charge":"ch_9"}`)
	if err := svc.HandleWebhook(context.Background(), payload, signPayload(t, testWebhookSecret, payload)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if store.payments[0].Status != StatusPending {
		t.Error("unrelated payment changed state")
	}
}
