// README: Payment service drives the charge flow and read paths.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"freshfold/internal/modules/order"
	"freshfold/internal/modules/user"
	"freshfold/internal/types"
)

var (
	ErrBadRequest  = errors.New("bad request")
	ErrNotFound    = errors.New("payment not found")
	ErrAlreadyPaid = errors.New("order already paid")
	ErrGateway     = errors.New("payment processor error")
)

// store is the persistence surface the service needs; *Store satisfies it.
type store interface {
	Create(ctx context.Context, p *Payment) error
	HasCompletedForOrder(ctx context.Context, orderID types.ID) (bool, error)
	GetByOrder(ctx context.Context, orderID, userID types.ID) (*Payment, error)
	ListByUser(ctx context.Context, userID types.ID) ([]Payment, error)
	Reconcile(ctx context.Context, intentID string, target Status, chargeID, errMsg string) (bool, error)
}

// userDirectory is the slice of the user module the charge flow needs.
type userDirectory interface {
	GetByUID(ctx context.Context, firebaseUID string) (*user.User, error)
	SetStripeCustomer(ctx context.Context, id types.ID, customerID string, meta map[string]string) error
}

// orderDirectory resolves orders scoped to their owner.
type orderDirectory interface {
	Get(ctx context.Context, id, ownerID types.ID) (*order.Order, error)
}

type Service struct {
	store         store
	users         userDirectory
	orders        orderDirectory
	gateway       Gateway
	webhookSecret string
}

func NewService(store store, users userDirectory, orders orderDirectory, gateway Gateway, webhookSecret string) *Service {
	return &Service{
		store:         store,
		users:         users,
		orders:        orders,
		gateway:       gateway,
		webhookSecret: webhookSecret,
	}
}

type ChargeCommand struct {
	FirebaseUID   string
	OrderID       types.ID
	PaymentMethod string
}

// ChargeOutcome is what the client needs to finish any processor-side
// confirmation step.
type ChargeOutcome struct {
	Payment      *Payment
	ClientSecret string
}

// Charge drives one charge attempt end to end. A failed processor call still
// leaves an audit record behind (best effort) before the failure is
// re-surfaced to the caller.
func (s *Service) Charge(ctx context.Context, cmd ChargeCommand) (*ChargeOutcome, error) {
	if cmd.OrderID == "" || cmd.PaymentMethod == "" {
		return nil, ErrBadRequest
	}

	u, err := s.users.GetByUID(ctx, cmd.FirebaseUID)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.Get(ctx, cmd.OrderID, u.ID)
	if err != nil {
		return nil, err
	}

	// Double-charge guard, checked before any external call.
	paid, err := s.store.HasCompletedForOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, ErrAlreadyPaid
	}

	customerID, err := s.ensureCustomer(ctx, u)
	if err != nil {
		s.recordFailure(ctx, o, u.ID, cmd.PaymentMethod, err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	res, err := s.gateway.Charge(ctx, ChargeParams{
		CustomerID:    customerID,
		PaymentMethod: cmd.PaymentMethod,
		Amount:        o.Price,
		OrderID:       o.ID,
		UserID:        u.ID,
	})
	if err != nil {
		s.recordFailure(ctx, o, u.ID, cmd.PaymentMethod, err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	status := StatusPending
	if res.Succeeded {
		status = StatusCompleted
	}
	p := &Payment{
		ID:            types.NewID(),
		OrderID:       o.ID,
		UserID:        u.ID,
		Amount:        o.Price,
		Status:        status,
		PaymentMethod: cmd.PaymentMethod,
		CreatedAt:     time.Now(),
	}
	if res.ChargeID != "" {
		p.ChargeID = &res.ChargeID
	}
	if res.IntentID != "" {
		p.IntentID = &res.IntentID
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return &ChargeOutcome{Payment: p, ClientSecret: res.ClientSecret}, nil
}

// ensureCustomer resolves the processor customer id, creating it exactly once
// and persisting the mapping back onto the profile.
func (s *Service) ensureCustomer(ctx context.Context, u *user.User) (string, error) {
	if u.StripeCustomerID != nil && *u.StripeCustomerID != "" {
		return *u.StripeCustomerID, nil
	}
	customerID, err := s.gateway.CreateCustomer(ctx, CustomerParams{Email: u.Email, Name: u.Name})
	if err != nil {
		return "", err
	}
	meta := map[string]string{"stripe_customer_id": customerID}
	if err := s.users.SetStripeCustomer(ctx, u.ID, customerID, meta); err != nil {
		return "", err
	}
	u.StripeCustomerID = &customerID
	return customerID, nil
}

// recordFailure persists the audit record for a failed attempt. Its own
// failure is only logged; the original error is the one the caller sees.
func (s *Service) recordFailure(ctx context.Context, o *order.Order, userID types.ID, method string, cause error) {
	p := &Payment{
		ID:            types.NewID(),
		OrderID:       o.ID,
		UserID:        userID,
		Amount:        types.Money{Amount: 0, Currency: o.Price.Currency},
		Status:        StatusFailed,
		PaymentMethod: method,
		ErrorMessage:  cause.Error(),
		CreatedAt:     time.Now(),
	}
	if err := s.store.Create(ctx, p); err != nil {
		log.Printf("payment: failed to record failed attempt for order %s: %v", o.ID, err)
	}
}

// GetByOrder returns the caller's payment for an order.
func (s *Service) GetByOrder(ctx context.Context, firebaseUID string, orderID types.ID) (*Payment, error) {
	u, err := s.users.GetByUID(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	return s.store.GetByOrder(ctx, orderID, u.ID)
}

// List returns all of the caller's payments, newest first.
func (s *Service) List(ctx context.Context, firebaseUID string) ([]Payment, error) {
	u, err := s.users.GetByUID(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	return s.store.ListByUser(ctx, u.ID)
}
