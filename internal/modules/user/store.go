// README: User store backed by PostgreSQL with JSONB address columns.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freshfold/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const userColumns = `
	id, firebase_uid, name, phone, email,
	default_address, saved_addresses, stripe_customer_id, metadata,
	created_at, updated_at`

func (s *Store) GetByUID(ctx context.Context, firebaseUID string) (*User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE firebase_uid = $1`, firebaseUID)
	return scanUser(row)
}

func (s *Store) GetByID(ctx context.Context, id types.ID) (*User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, string(id))
	return scanUser(row)
}

// Upsert creates the profile on first write and updates the mutable profile
// fields afterwards, keyed by the identity-provider UID.
func (s *Store) Upsert(ctx context.Context, u *User) error {
	defAddr, err := marshalNullable(u.DefaultAddress)
	if err != nil {
		return err
	}
	u.NormalizeAddresses()
	saved, err := json.Marshal(u.SavedAddresses)
	if err != nil {
		return err
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, firebase_uid, name, phone, email, default_address, saved_addresses)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (firebase_uid) DO UPDATE
		SET name = EXCLUDED.name,
		    phone = EXCLUDED.phone,
		    email = EXCLUDED.email,
		    default_address = EXCLUDED.default_address,
		    updated_at = NOW()
		RETURNING id`,
		string(u.ID), u.FirebaseUID, u.Name, u.Phone, u.Email, defAddr, saved,
	)
	var id string
	if err := row.Scan(&id); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	u.ID = types.ID(id)
	return nil
}

// SaveAddresses overwrites the saved-address list. addrs must not be nil.
func (s *Store) SaveAddresses(ctx context.Context, id types.ID, addrs []types.Address) error {
	if addrs == nil {
		addrs = []types.Address{}
	}
	data, err := json.Marshal(addrs)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET saved_addresses = $1, updated_at = NOW() WHERE id = $2`,
		data, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

// SetStripeCustomer persists the processor customer id and merges the given
// fields into the profile metadata. The jsonb concatenation treats an existing
// NULL as an empty object so the merge never errors on a fresh profile.
func (s *Store) SetStripeCustomer(ctx context.Context, id types.ID, customerID string, meta map[string]string) error {
	if meta == nil {
		meta = map[string]string{}
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET stripe_customer_id = $1,
		    metadata = COALESCE(metadata, '{}'::jsonb) || $2::jsonb,
		    updated_at = NOW()
		WHERE id = $3`,
		customerID, data, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var id string
	var defAddr, saved, meta []byte
	var customerID *string
	err := row.Scan(
		&id, &u.FirebaseUID, &u.Name, &u.Phone, &u.Email,
		&defAddr, &saved, &customerID, &meta,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.ID = types.ID(id)
	u.StripeCustomerID = customerID
	if len(defAddr) > 0 {
		var a types.Address
		if err := json.Unmarshal(defAddr, &a); err != nil {
			return nil, err
		}
		u.DefaultAddress = &a
	}
	if len(saved) > 0 {
		if err := json.Unmarshal(saved, &u.SavedAddresses); err != nil {
			return nil, err
		}
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &u.Metadata); err != nil {
			return nil, err
		}
	}
	u.NormalizeAddresses()
	return &u, nil
}

func marshalNullable(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case *types.Address:
		if t == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
