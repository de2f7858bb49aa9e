// README: User service: profile upsert and saved-address list management.
package user

import (
	"context"
	"errors"

	"freshfold/internal/types"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrBadRequest = errors.New("bad request")
)

// store is the persistence surface the service needs; *Store satisfies it.
type store interface {
	GetByUID(ctx context.Context, firebaseUID string) (*User, error)
	GetByID(ctx context.Context, id types.ID) (*User, error)
	Upsert(ctx context.Context, u *User) error
	SaveAddresses(ctx context.Context, id types.ID, addrs []types.Address) error
	SetStripeCustomer(ctx context.Context, id types.ID, customerID string, meta map[string]string) error
}

type Service struct {
	store store
}

func NewService(s store) *Service {
	return &Service{store: s}
}

type UpsertCommand struct {
	FirebaseUID    string
	Email          string
	Name           string
	Phone          string
	DefaultAddress *types.Address
}

// Upsert creates the profile on first write; later calls update it.
func (s *Service) Upsert(ctx context.Context, cmd UpsertCommand) (*User, error) {
	if cmd.FirebaseUID == "" || cmd.Name == "" {
		return nil, ErrBadRequest
	}
	u := &User{
		ID:             types.NewID(),
		FirebaseUID:    cmd.FirebaseUID,
		Name:           cmd.Name,
		Phone:          cmd.Phone,
		Email:          cmd.Email,
		DefaultAddress: cmd.DefaultAddress,
		SavedAddresses: []types.Address{},
	}
	if err := s.store.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return s.store.GetByUID(ctx, cmd.FirebaseUID)
}

func (s *Service) GetByUID(ctx context.Context, firebaseUID string) (*User, error) {
	return s.store.GetByUID(ctx, firebaseUID)
}

func (s *Service) GetByID(ctx context.Context, id types.ID) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// AddAddress appends a labeled address to the caller's saved list.
func (s *Service) AddAddress(ctx context.Context, firebaseUID string, addr types.Address) (*User, error) {
	if addr.Street == "" || addr.City == "" {
		return nil, ErrBadRequest
	}
	u, err := s.store.GetByUID(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	u.SavedAddresses = append(u.SavedAddresses, addr)
	if err := s.store.SaveAddresses(ctx, u.ID, u.SavedAddresses); err != nil {
		return nil, err
	}
	return u, nil
}

// RemoveAddress deletes the entry at index. Removing the last entry leaves an
// empty list, never null.
func (s *Service) RemoveAddress(ctx context.Context, firebaseUID string, index int) (*User, error) {
	u, err := s.store.GetByUID(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(u.SavedAddresses) {
		return nil, ErrBadRequest
	}
	u.SavedAddresses = append(u.SavedAddresses[:index], u.SavedAddresses[index+1:]...)
	u.NormalizeAddresses()
	if err := s.store.SaveAddresses(ctx, u.ID, u.SavedAddresses); err != nil {
		return nil, err
	}
	return u, nil
}

// ResolveProfile is the lookup other modules depend on. found=false with a
// nil error means the caller has no profile yet.
func (s *Service) ResolveProfile(ctx context.Context, firebaseUID string) (types.ID, bool, error) {
	u, err := s.store.GetByUID(ctx, firebaseUID)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return u.ID, true, nil
}

// SetStripeCustomer records the lazily created processor customer id, merging
// correlation fields into the profile metadata. A profile with no metadata yet
// merges as if it had an empty map.
func (s *Service) SetStripeCustomer(ctx context.Context, id types.ID, customerID string, meta map[string]string) error {
	if customerID == "" {
		return ErrBadRequest
	}
	return s.store.SetStripeCustomer(ctx, id, customerID, meta)
}
