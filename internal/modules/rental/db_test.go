// README: Postgres-backed rental tests (set CARRENTAL_TEST_DSN; run with -race).
package rental

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

func TestDBRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	r := sampleRental()
	if err := store.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.ID == 0 || r.CreatedAt.IsZero() {
		t.Fatalf("create did not fill id/created_at: %+v", r)
	}

	got, err := store.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := *sampleRental()
	want.ID, want.CreatedAt = got.ID, got.CreatedAt
	if got.ID != r.ID || !reflect.DeepEqual(*got, want) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", *got, want)
	}

	overlap := sampleRental()
	overlap.StartDate, overlap.EndDate = day(5), day(7)
	if err := store.Create(ctx, overlap); err != ErrConflict {
		t.Fatalf("overlapping create: got %v, want ErrConflict", err)
	}

	adjacent := sampleRental()
	adjacent.StartDate, adjacent.EndDate = day(6), day(8)
	if err := store.Create(ctx, adjacent); err != nil {
		t.Fatalf("adjacent create: %v", err)
	}

	n, err := store.CountEndedBefore(ctx, 7, day(7))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("ended before Jan 7: got %d, want 1", n)
	}

	if err := store.Delete(ctx, r.ID, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, r.ID); err != ErrNotFound {
		t.Fatalf("get after delete: got %v, want ErrNotFound", err)
	}
}

func TestDBConcurrentBookingsOfOneCar(t *testing.T) {
	store := setupTestStore(t)
	svc := NewService(store, zerolog.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, createCmd(7, 2, day(20), day(20+1+i%3)))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if err != ErrConflict {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one booking, got %d", success)
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("CARRENTAL_TEST_DSN")
	if dsn == "" {
		t.Skip("CARRENTAL_TEST_DSN not set; skipping DB-backed rental tests")
	}

	ctx := context.Background()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE TABLE rentals, vehicles, users RESTART IDENTITY"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	seed := []string{
		`INSERT INTO users (id, name, email, password_hash) VALUES (7, 'Test', 'test@example.com', 'x')`,
		`INSERT INTO vehicles (id, category, brand, model) VALUES (2, 'C', 'Fiat', 'Tipo')`,
	}
	for _, stmt := range seed {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	return NewStore(db)
}

func applyMigration(ctx context.Context, db *sql.DB) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	for _, stmt := range splitSQL(stripSQLComments(string(content))) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
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
