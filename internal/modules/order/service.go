// README: Order service implements the lifecycle state machine, history
// bookkeeping, and driver location updates.
package order

import (
	"context"
	"errors"
	"time"

	"freshfold/internal/modules/pricing"
	"freshfold/internal/types"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrNotFound        = errors.New("order not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrConflict        = errors.New("order state conflict")
)

const maxNotesLen = 500

// ProfileResolver maps an identity-provider UID to the internal user id.
// found=false with a nil error means the caller has not completed onboarding.
type ProfileResolver interface {
	ResolveProfile(ctx context.Context, firebaseUID string) (id types.ID, found bool, err error)
}

// store is the persistence surface the service needs; *Store satisfies it.
type store interface {
	Create(ctx context.Context, o *Order, entry *HistoryEntry) error
	Transition(ctx context.Context, id types.ID, target Status, entry *HistoryEntry) error
	SetDriverLocation(ctx context.Context, id types.ID, driverID types.ID, loc types.GeoPoint) error
	Get(ctx context.Context, id, ownerID types.ID) (*Order, error)
	GetAny(ctx context.Context, id types.ID) (*Order, error)
	List(ctx context.Context, ownerID types.ID, f ListFilter) ([]Order, error)
	History(ctx context.Context, orderID types.ID) ([]HistoryEntry, error)
}

type Service struct {
	store    store
	profiles ProfileResolver
}

func NewService(store store, profiles ProfileResolver) *Service {
	return &Service{store: store, profiles: profiles}
}

type CreateCommand struct {
	FirebaseUID     string
	PickupAddress   types.Address
	DeliveryAddress types.Address
	ScheduledAt     time.Time
	ServiceType     pricing.ServiceType
	ItemCount       int
	Notes           string
}

// Create validates input, fixes the price from the tier table, and persists
// the order together with its creation history entry.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if cmd.FirebaseUID == "" {
		return nil, ErrBadRequest
	}
	if !pricing.ValidServiceType(cmd.ServiceType) {
		return nil, ErrBadRequest
	}
	if cmd.ItemCount < 0 {
		return nil, ErrBadRequest
	}
	if len(cmd.Notes) > maxNotesLen {
		return nil, ErrBadRequest
	}
	if cmd.ScheduledAt.IsZero() {
		return nil, ErrBadRequest
	}
	if cmd.PickupAddress.Street == "" || cmd.DeliveryAddress.Street == "" {
		return nil, ErrBadRequest
	}

	userID, found, err := s.profiles.ResolveProfile(ctx, cmd.FirebaseUID)
	if err != nil {
		return nil, err
	}
	if !found {
		// Distinct from validation failure: the caller must finish onboarding.
		return nil, ErrProfileNotFound
	}

	rate, err := pricing.GetRate(cmd.ServiceType)
	if err != nil {
		return nil, ErrBadRequest
	}

	now := time.Now()
	o := &Order{
		ID:              types.NewID(),
		UserID:          userID,
		PickupAddress:   cmd.PickupAddress,
		DeliveryAddress: cmd.DeliveryAddress,
		ScheduledAt:     cmd.ScheduledAt,
		Status:          StatusPending,
		ServiceType:     string(cmd.ServiceType),
		ItemCount:       cmd.ItemCount,
		Price:           rate.BasePrice,
		Notes:           cmd.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	entry := &HistoryEntry{
		OrderID:   o.ID,
		OldStatus: nil,
		NewStatus: StatusPending,
		ActorID:   &userID,
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, o, entry); err != nil {
		return nil, err
	}
	return o, nil
}

type TransitionCommand struct {
	OrderID types.ID
	Target  Status
	ActorID *types.ID
	Notes   string
}

// Transition sets the order status and appends a history entry. Any
// enumerated status may be set from any status; only the enumeration itself
// is enforced here.
func (s *Service) Transition(ctx context.Context, cmd TransitionCommand) (*Order, error) {
	if !ValidStatus(cmd.Target) {
		return nil, ErrBadRequest
	}
	if len(cmd.Notes) > maxNotesLen {
		return nil, ErrBadRequest
	}
	o, err := s.store.GetAny(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	prev := o.Status
	entry := &HistoryEntry{
		OrderID:   o.ID,
		OldStatus: &prev,
		NewStatus: cmd.Target,
		ActorID:   cmd.ActorID,
		Notes:     cmd.Notes,
		CreatedAt: time.Now(),
	}
	if err := s.store.Transition(ctx, o.ID, cmd.Target, entry); err != nil {
		return nil, err
	}
	o.Status = cmd.Target
	return o, nil
}

type CancelCommand struct {
	FirebaseUID string
	OrderID     types.ID
	Notes       string
}

// Cancel is the one owner-initiated transition with a legality rule: a
// terminal order cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Order, error) {
	userID, found, err := s.profiles.ResolveProfile(ctx, cmd.FirebaseUID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrProfileNotFound
	}
	o, err := s.store.Get(ctx, cmd.OrderID, userID)
	if err != nil {
		return nil, err
	}
	if IsTerminal(o.Status) {
		return nil, ErrConflict
	}
	prev := o.Status
	entry := &HistoryEntry{
		OrderID:   o.ID,
		OldStatus: &prev,
		NewStatus: StatusCancelled,
		ActorID:   &userID,
		Notes:     cmd.Notes,
		CreatedAt: time.Now(),
	}
	if err := s.store.Transition(ctx, o.ID, StatusCancelled, entry); err != nil {
		return nil, err
	}
	o.Status = StatusCancelled
	return o, nil
}

type LocationCommand struct {
	OrderID  types.ID
	DriverID types.ID
	Lat      float64
	Lng      float64
}

// UpdateLocation records the latest driver position for an order. Zero is a
// legitimate value on either axis; only non-finite or out-of-range values are
// rejected.
func (s *Service) UpdateLocation(ctx context.Context, cmd LocationCommand) error {
	if !types.ValidCoordinates(cmd.Lat, cmd.Lng) {
		return ErrBadRequest
	}
	loc := types.GeoPoint{Lat: cmd.Lat, Lng: cmd.Lng, RecordedAt: time.Now()}
	return s.store.SetDriverLocation(ctx, cmd.OrderID, cmd.DriverID, loc)
}

// Get returns one of the caller's own orders together with its full history.
func (s *Service) Get(ctx context.Context, firebaseUID string, id types.ID) (*Order, []HistoryEntry, error) {
	userID, found, err := s.profiles.ResolveProfile(ctx, firebaseUID)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, ErrProfileNotFound
	}
	o, err := s.store.Get(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.store.History(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return o, history, nil
}

// List returns the caller's own orders, newest first.
func (s *Service) List(ctx context.Context, firebaseUID string, f ListFilter) ([]Order, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, ErrBadRequest
	}
	userID, found, err := s.profiles.ResolveProfile(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrProfileNotFound
	}
	return s.store.List(ctx, userID, f)
}
