// README: Payment record for one charge attempt against an order.
package payment

import (
	"time"

	"freshfold/internal/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	// StatusRefunded exists in the enumeration for future refund support; no
	// operation currently produces it.
	StatusRefunded Status = "refunded"
)

// Payment is one attempted charge. ChargeID identifies the actual money
// movement at the processor; IntentID identifies the overall attempt. They
// are distinct identifiers and must never be conflated.
type Payment struct {
	ID            types.ID
	OrderID       types.ID
	UserID        types.ID
	ChargeID      *string
	IntentID      *string
	Amount        types.Money
	Status        Status
	PaymentMethod string
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
