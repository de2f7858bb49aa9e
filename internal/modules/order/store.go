// README: Order store backed by PostgreSQL; order writes and their history
// entries share one transaction.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

const orderColumns = `
	id, user_id, pickup_address, delivery_address, scheduled_at,
	status, service_type, item_count, price_cents, currency,
	driver_id, driver_location, notes, created_at, updated_at`

// Create inserts the order and its creation history entry in one transaction
// so an order can never exist without its first history row.
func (s *Store) Create(ctx context.Context, o *Order, entry *HistoryEntry) error {
	pickup, err := json.Marshal(o.PickupAddress)
	if err != nil {
		return err
	}
	delivery, err := json.Marshal(o.DeliveryAddress)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (
				id, user_id, pickup_address, delivery_address, scheduled_at,
				status, service_type, item_count, price_cents, currency, notes,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
			string(o.ID), string(o.UserID), pickup, delivery, o.ScheduledAt,
			string(o.Status), o.ServiceType, o.ItemCount, o.Price.Amount, o.Price.Currency,
			o.Notes, o.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return appendHistoryTx(ctx, tx, entry)
	})
}

// Transition updates the status and appends the history entry atomically.
func (s *Store) Transition(ctx context.Context, id types.ID, target Status, entry *HistoryEntry) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
			string(target), string(id))
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if tag.RowsAffected() != 1 {
			return ErrNotFound
		}
		return appendHistoryTx(ctx, tx, entry)
	})
}

// SetDriverLocation overwrites the last-known driver position. The assigned
// driver is recorded on first report and kept thereafter.
func (s *Store) SetDriverLocation(ctx context.Context, id types.ID, driverID types.ID, loc types.GeoPoint) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET driver_location = $1,
		    driver_id = COALESCE(driver_id, $2),
		    updated_at = NOW()
		WHERE id = $3`,
		data, string(driverID), string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

// Get returns the order only if owned by ownerID.
func (s *Store) Get(ctx context.Context, id, ownerID types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`,
		string(id), string(ownerID))
	return scanOrder(row)
}

// GetAny is the unscoped read used by the driver/operator status and location
// paths.
func (s *Store) GetAny(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, string(id))
	return scanOrder(row)
}

func (s *Store) List(ctx context.Context, ownerID types.ID, f ListFilter) ([]Order, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1`
	args := []any{string(ownerID)}
	if f.Status != "" {
		query += ` AND status = $2`
		args = append(args, string(f.Status))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, f.Limit, f.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *Store) History(ctx context.Context, orderID types.ID) ([]HistoryEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, old_status, new_status, actor_id, notes, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY id`, string(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var orderID string
		var oldStatus, actorID *string
		if err := rows.Scan(&e.ID, &orderID, &oldStatus, &e.NewStatus, &actorID, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.OrderID = types.ID(orderID)
		if oldStatus != nil {
			s := Status(*oldStatus)
			e.OldStatus = &s
		}
		if actorID != nil {
			a := types.ID(*actorID)
			e.ActorID = &a
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func appendHistoryTx(ctx context.Context, tx pgx.Tx, e *HistoryEntry) error {
	var oldStatus *string
	if e.OldStatus != nil {
		v := string(*e.OldStatus)
		oldStatus = &v
	}
	var actorID *string
	if e.ActorID != nil {
		v := string(*e.ActorID)
		actorID = &v
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, old_status, new_status, actor_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.OrderID), oldStatus, string(e.NewStatus), actorID, e.Notes, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var id, userID string
	var pickup, delivery []byte
	var driverID *string
	var driverLoc []byte
	err := row.Scan(
		&id, &userID, &pickup, &delivery, &o.ScheduledAt,
		&o.Status, &o.ServiceType, &o.ItemCount, &o.Price.Amount, &o.Price.Currency,
		&driverID, &driverLoc, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.ID = types.ID(id)
	o.UserID = types.ID(userID)
	if err := json.Unmarshal(pickup, &o.PickupAddress); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(delivery, &o.DeliveryAddress); err != nil {
		return nil, err
	}
	if driverID != nil {
		d := types.ID(*driverID)
		o.DriverID = &d
	}
	if len(driverLoc) > 0 {
		var p types.GeoPoint
		if err := json.Unmarshal(driverLoc, &p); err != nil {
			return nil, err
		}
		o.DriverLocation = &p
	}
	return &o, nil
}
