// README: User profile aggregate linked to the identity provider.
package user

import (
	"time"

	"freshfold/internal/types"
)

type User struct {
	ID               types.ID
	FirebaseUID      string
	Name             string
	Phone            string
	Email            string
	DefaultAddress   *types.Address
	SavedAddresses   []types.Address
	StripeCustomerID *string
	Metadata         map[string]string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NormalizeAddresses keeps the saved-address list a list. The zero-address
// state is an empty slice, never nil; a nil slice would round-trip through
// JSON as null and break clients that index into it.
func (u *User) NormalizeAddresses() {
	if u.SavedAddresses == nil {
		u.SavedAddresses = []types.Address{}
	}
}
