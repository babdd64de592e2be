package sqlsource

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.ToSlash(filepath.Join(t.TempDir(), "config.db"))
	db, err := Open("sqlite://" + dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db, nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v, want nil", err)
	}
	return store
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	if _, err := Open("mysql://localhost/config"); err == nil {
		t.Fatalf("Open() error = nil, want unsupported scheme error")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	if _, err := store.Insert(ctx, "01-priorities", "namespace::Service::{prioritizedCriteria: [stage]}"); err != nil {
		t.Fatalf("Insert() error = %v, want nil", err)
	}

	// one row holding two top-level values
	content := `
Service::{
    timeoutMillis: 500,
    'stage-prod': {timeoutMillis: 250}
}
Service::{
    retries: 2
}
`
	if _, err := store.Insert(ctx, "02-service", content); err != nil {
		t.Fatalf("Insert() error = %v, want nil", err)
	}

	records, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v, want nil", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if records[0].Name != "01-priorities" {
		t.Errorf("records[0].Name = %q, want 01-priorities", records[0].Name)
	}

	manager, err := store.Manager(ctx)
	if err != nil {
		t.Fatalf("Manager() error = %v, want nil", err)
	}

	values := manager.ValuesForProperties("Service", map[string]string{"stage": "prod"})
	timeout, ok := values["timeoutMillis"]
	if !ok {
		t.Fatalf("timeoutMillis missing from %v", values)
	}
	if i, _ := timeout.Int64(); i != 250 {
		t.Errorf("timeoutMillis = %v, want 250", timeout)
	}
	retries, ok := values["retries"]
	if !ok {
		t.Fatalf("retries missing from %v", values)
	}
	if i, _ := retries.Int64(); i != 2 {
		t.Errorf("retries = %v, want 2", retries)
	}
}

func TestStore_InsertRejectsMalformedIon(t *testing.T) {
	store := testStore(t)
	_, err := store.Insert(context.Background(), "broken", "{unclosed")
	if err == nil {
		t.Fatalf("Insert() error = nil, want parse error")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error = %q, want it to name the record", err.Error())
	}
}

func TestNewRecordID_Unique(t *testing.T) {
	a := NewRecordID()
	b := NewRecordID()
	if a == b {
		t.Errorf("NewRecordID() returned duplicate %q", a)
	}
	if len(a) != 36 {
		t.Errorf("len(RecordID) = %d, want 36", len(a))
	}
}
