package storage

import (
	"path/filepath"
	"testing"

	"despensa/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "app.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDocumentLifecycle(t *testing.T) {
	db := openTestDB(t)

	row, err := db.UpsertDocument("imap", "<m1@test>", "Lista de precios", "verduleria@test", "2025-03-01T10:00:00Z", "abc123", "/raw/m1.eml", "fetched")
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	if row.ID == 0 || row.Status != "fetched" {
		t.Fatalf("row = %+v", row)
	}

	pending, err := db.ListDocumentsByStatus("fetched", 10)
	if err != nil {
		t.Fatalf("ListDocumentsByStatus: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != row.ID {
		t.Fatalf("pending = %+v", pending)
	}

	if err := db.UpdateDocumentStatus(row.ID, "filed", "grid_prices"); err != nil {
		t.Fatalf("UpdateDocumentStatus: %v", err)
	}
	got, err := db.GetDocumentByID(row.ID)
	if err != nil {
		t.Fatalf("GetDocumentByID: %v", err)
	}
	if got.Status != "filed" || got.Kind != "grid_prices" {
		t.Fatalf("row = %+v", got)
	}

	// empty kind must not erase the recorded one
	if err := db.UpdateDocumentStatus(row.ID, "processed", ""); err != nil {
		t.Fatalf("UpdateDocumentStatus: %v", err)
	}
	got, err = db.GetDocumentByID(row.ID)
	if err != nil {
		t.Fatalf("GetDocumentByID: %v", err)
	}
	if got.Status != "processed" || got.Kind != "grid_prices" {
		t.Fatalf("row = %+v", got)
	}

	pending, err = db.ListDocumentsByStatus("fetched", 10)
	if err != nil {
		t.Fatalf("ListDocumentsByStatus: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending = %+v, want none", pending)
	}
}

func TestUpsertDocumentKeepsStatusOnRefetch(t *testing.T) {
	db := openTestDB(t)

	row, err := db.UpsertDocument("gmail", "m2", "asunto", "a@test", "2025-03-01T10:00:00Z", "h1", "/raw/m2.eml", "fetched")
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	if err := db.UpdateDocumentStatus(row.ID, "processed", "recipes"); err != nil {
		t.Fatalf("UpdateDocumentStatus: %v", err)
	}

	again, err := db.UpsertDocument("gmail", "m2", "asunto nuevo", "a@test", "2025-03-01T10:00:00Z", "h2", "/raw/m2.eml", "fetched")
	if err != nil {
		t.Fatalf("UpsertDocument again: %v", err)
	}
	if again.ID != row.ID {
		t.Fatalf("id = %d, want %d", again.ID, row.ID)
	}
	if again.Status != "processed" {
		t.Fatalf("status = %q, want processed kept", again.Status)
	}
	if again.Subject != "asunto nuevo" || again.Hash != "h2" {
		t.Fatalf("row = %+v", again)
	}
}

func TestRunsLedger(t *testing.T) {
	db := openTestDB(t)

	recs := []internal.RunRecord{
		{RunID: "RUN1", StartedAt: "2025-03-01T10:00:00Z", DurationMs: 120, PriceCount: 10, RecipeCount: 2, Trigger: "manual"},
		{RunID: "RUN2", StartedAt: "2025-03-01T11:00:00Z", DurationMs: 95, PriceCount: 12, RecipeCount: 2, Trigger: "mail"},
	}
	for _, rec := range recs {
		if err := db.InsertRun(rec); err != nil {
			t.Fatalf("InsertRun: %v", err)
		}
	}

	got, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(got) != 2 || got[0].RunID != "RUN2" || got[1].RunID != "RUN1" {
		t.Fatalf("runs = %+v, want newest first", got)
	}
	if got[0].Trigger != "mail" || got[0].PriceCount != 12 {
		t.Fatalf("run = %+v", got[0])
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	db := openTestDB(t)

	v, err := db.GetMetadata("rates.2025-03-01")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v != nil {
		t.Fatalf("value = %v, want nil", *v)
	}

	if err := db.SetMetadata("rates.2025-03-01", "1180.5"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	v, err = db.GetMetadata("rates.2025-03-01")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v == nil || *v != "1180.5" {
		t.Fatalf("value = %v", v)
	}

	if err := db.SetMetadata("rates.2025-03-01", "1190"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	v, err = db.GetMetadata("rates.2025-03-01")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v == nil || *v != "1190" {
		t.Fatalf("value = %v", v)
	}
}

func TestMustDocumentByID(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.MustDocumentByID(42); err == nil {
		t.Fatal("expected error for missing document")
	}
}
