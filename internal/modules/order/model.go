// README: Order aggregate, status enumeration, and history entries.
package order

import (
	"time"

	"freshfold/internal/types"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusPickedUp       Status = "picked_up"
	StatusInLaundry      Status = "in_laundry"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

var allStatuses = map[Status]bool{
	StatusPending:        true,
	StatusPickedUp:       true,
	StatusInLaundry:      true,
	StatusReady:          true,
	StatusOutForDelivery: true,
	StatusCompleted:      true,
	StatusCancelled:      true,
}

func ValidStatus(s Status) bool {
	return allStatuses[s]
}

// IsTerminal reports whether no further transition is expected from s.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Order struct {
	ID              types.ID
	UserID          types.ID
	PickupAddress   types.Address
	DeliveryAddress types.Address
	ScheduledAt     time.Time
	Status          Status
	ServiceType     string
	ItemCount       int
	Price           types.Money
	DriverID        *types.ID
	DriverLocation  *types.GeoPoint
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HistoryEntry is one append-only status-change record. OldStatus is nil only
// for the creation entry.
type HistoryEntry struct {
	ID        int64
	OrderID   types.ID
	OldStatus *Status
	NewStatus Status
	ActorID   *types.ID
	Notes     string
	CreatedAt time.Time
}
