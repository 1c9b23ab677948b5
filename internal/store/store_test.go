package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRecordsRoundTripOnMemoryStore(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	records := NewRecords[sample](mem, "samples")

	if _, err := records.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := records.Put(ctx, Key("5551234", "centro"), sample{Name: "x", Count: 2}); err != nil {
		t.Fatalf("Put err: %v", err)
	}
	got, err := records.Get(ctx, "5551234|centro")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.Name != "x" || got.Count != 2 {
		t.Fatalf("unexpected record %+v", got)
	}

	if err := records.Delete(ctx, "5551234|centro"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if mem.Len() != 0 {
		t.Fatalf("expected empty store, got %d", mem.Len())
	}
	if err := records.Delete(ctx, "5551234|centro"); err != nil {
		t.Fatalf("deleting a missing key must not fail: %v", err)
	}
}

func TestMemoryStoreNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	_ = mem.Put(ctx, "a", "k", []byte(`1`))

	if _, err := mem.Get(ctx, "b", "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across namespaces, got %v", err)
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	value := []byte(`{"name":"a"}`)
	_ = mem.Put(ctx, "ns", "k", value)
	value[2] = 'X'

	got, _ := mem.Get(ctx, "ns", "k")
	if string(got) != `{"name":"a"}` {
		t.Fatalf("stored value was mutated: %s", got)
	}
}

func TestPostgresStorePut(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	pg := NewPostgresStore(db)
	records := NewRecords[sample](pg, "samples")

	mock.ExpectExec("INSERT INTO kv_records").
		WithArgs("samples", "k1", []byte(`{"name":"x","count":1}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := records.Put(context.Background(), "k1", sample{Name: "x", Count: 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPostgresStoreGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	pg := NewPostgresStore(db)
	records := NewRecords[sample](pg, "samples")

	mock.ExpectQuery("SELECT value FROM kv_records").
		WithArgs("samples", "k1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"name":"x","count":4}`)))
	mock.ExpectQuery("SELECT value FROM kv_records").
		WithArgs("samples", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	got, err := records.Get(context.Background(), "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Count != 4 {
		t.Fatalf("unexpected record %+v", got)
	}

	if _, err := records.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPostgresStoreDeleteAndMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	pg := NewPostgresStore(db)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_records").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM kv_records").
		WithArgs("samples", "k1").
		WillReturnError(errors.New("connection reset"))

	if err := pg.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := pg.Delete(context.Background(), "samples", "k1"); err == nil {
		t.Fatal("expected delete error to propagate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestKeyEscapesSeparators(t *testing.T) {
	if got := Key("5551234", "centro"); got != "5551234|centro" {
		t.Fatalf("Key = %q", got)
	}
	pairs := [][2][]string{
		{{"a|b", "c"}, {"a", "b|c"}},
		{{`a\`, "b"}, {"a", `\b`}},
		{{`a\|`, "b"}, {"a", `|b`}},
	}
	for _, p := range pairs {
		if Key(p[0]...) == Key(p[1]...) {
			t.Fatalf("Key(%q) collides with Key(%q): %q", p[0], p[1], Key(p[0]...))
		}
	}
}
