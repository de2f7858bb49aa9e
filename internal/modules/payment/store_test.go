// README: DB-backed payment store tests; skipped unless FRESHFOLD_TEST_DSN is
// set. The reconciliation one-way-door rule lives in SQL, so it is tested here
// against a real database.
package payment

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"freshfold/internal/types"
)

func TestStoreReconcileOneWayDoor(t *testing.T) {
	store, db := setupTestStore(t)
	ctx := context.Background()
	seedOrder(t, db, "order-1", "user-1")

	intent := "pi_1"
	p := &Payment{
		ID:       "pay-1",
		OrderID:  "order-1",
		UserID:   "user-1",
		IntentID: &intent,
		Amount:   types.Money{Amount: 4000, Currency: "usd"},
		Status:   StatusPending,
	}
	if err := store.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	applied, err := store.Reconcile(ctx, "pi_1", StatusCompleted, "ch_1", "")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !applied {
		t.Fatal("first reconcile should apply")
	}

	// Redelivery: same event again changes nothing.
	applied, err = store.Reconcile(ctx, "pi_1", StatusCompleted, "ch_1", "")
	if err != nil {
		t.Fatalf("redelivered reconcile: %v", err)
	}
	if applied {
		t.Error("redelivered event should not apply again")
	}

	// A late failure event must not downgrade a completed payment.
	applied, err = store.Reconcile(ctx, "pi_1", StatusFailed, "", "late decline")
	if err != nil {
		t.Fatalf("late failure reconcile: %v", err)
	}
	if applied {
		t.Error("failure after completion should not apply")
	}

	got, err := store.GetByOrder(ctx, "order-1", "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.ChargeID == nil || *got.ChargeID != "ch_1" {
		t.Error("charge id not recorded by reconcile")
	}
	if got.IntentID == nil || *got.IntentID != "pi_1" {
		t.Error("intent id lost during reconcile")
	}
}

func TestStoreReconcileUnknownIntent(t *testing.T) {
	store, _ := setupTestStore(t)

	applied, err := store.Reconcile(context.Background(), "pi_unknown", StatusCompleted, "ch_1", "")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if applied {
		t.Error("unknown intent should not apply")
	}
}

func TestStoreHasCompletedForOrder(t *testing.T) {
	store, db := setupTestStore(t)
	ctx := context.Background()
	seedOrder(t, db, "order-1", "user-1")

	failed := &Payment{
		ID:      "pay-failed",
		OrderID: "order-1",
		UserID:  "user-1",
		Amount:  types.Money{Amount: 0, Currency: "usd"},
		Status:  StatusFailed,
	}
	if err := store.Create(ctx, failed); err != nil {
		t.Fatalf("create failed attempt: %v", err)
	}
	// A failed attempt does not block a retry.
	paid, err := store.HasCompletedForOrder(ctx, "order-1")
	if err != nil {
		t.Fatalf("has completed: %v", err)
	}
	if paid {
		t.Error("failed attempt must not count as paid")
	}

	charge := "ch_1"
	done := &Payment{
		ID:       "pay-done",
		OrderID:  "order-1",
		UserID:   "user-1",
		ChargeID: &charge,
		Amount:   types.Money{Amount: 4000, Currency: "usd"},
		Status:   StatusCompleted,
	}
	if err := store.Create(ctx, done); err != nil {
		t.Fatalf("create completed: %v", err)
	}
	paid, err = store.HasCompletedForOrder(ctx, "order-1")
	if err != nil {
		t.Fatalf("has completed: %v", err)
	}
	if !paid {
		t.Error("completed payment must count as paid")
	}
}

func TestStoreListByUserNewestFirst(t *testing.T) {
	store, db := setupTestStore(t)
	ctx := context.Background()
	seedOrder(t, db, "order-1", "user-1")
	seedOrder(t, db, "order-2", "user-1")

	base := time.Now().Add(-time.Hour)
	orderIDs := []types.ID{"order-1", "order-2"}
	for i, id := range []types.ID{"pay-1", "pay-2"} {
		p := &Payment{
			ID:        id,
			OrderID:   orderIDs[i],
			UserID:    "user-1",
			Amount:    types.Money{Amount: 2500, Currency: "usd"},
			Status:    StatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Create(ctx, p); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	list, err := store.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(list))
	}
	if list[0].ID != "pay-2" {
		t.Errorf("expected newest first, got %s", list[0].ID)
	}
}

func seedOrder(t *testing.T, db *pgxpool.Pool, orderID, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, firebase_uid, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		userID, "uid-"+userID, "Test User")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	_, err = db.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, pickup_address, delivery_address, scheduled_at,
			status, service_type, price_cents
		) VALUES ($1, $2, '{}', '{}', NOW(), 'pending', 'express', 4000)
		ON CONFLICT (id) DO NOTHING`,
		orderID, userID)
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func setupTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("FRESHFOLD_TEST_DSN")
	if dsn == "" {
		t.Skip("FRESHFOLD_TEST_DSN not set; skipping DB-backed store tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE payments, order_status_history, orders, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return NewStore(db), db
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	for _, stmt := range splitSQL(stripSQLComments(string(content))) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
