package db

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *BriefStore {
	t.Helper()
	database, err := NewSQLiteDB(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	store := NewBriefStore(database)
	store.now = func() time.Time { return time.Date(2025, 9, 15, 7, 0, 0, 0, time.UTC) }
	return store
}

func TestSaveAndLoadBrief(t *testing.T) {
	store := newTestStore(t)

	price := 19.99
	days := 2
	id, err := store.Save(BriefRecord{
		Day:        "2025-09-15",
		Scenario:   "interview",
		ReportPath: "output/reports/brief-20250915.md",
		Markdown:   "# Daily Brief",
	}, []Pick{
		{Title: "Leather belt", Price: &price, Prime: true, DeliveryDays: &days, URL: "https://example.com/belt"},
		{Title: "Notebook"},
	})
	if err != nil {
		t.Fatalf("save brief: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated brief id")
	}

	record, err := store.ByDay("2025-09-15")
	if err != nil {
		t.Fatalf("load brief: %v", err)
	}
	if record == nil || record.ID != id || record.Scenario != "interview" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.CreatedAt.UTC() != time.Date(2025, 9, 15, 7, 0, 0, 0, time.UTC) {
		t.Fatalf("created_at = %v", record.CreatedAt)
	}

	picks, err := store.Picks(id)
	if err != nil {
		t.Fatalf("load picks: %v", err)
	}
	if len(picks) != 2 {
		t.Fatalf("picks = %d, want 2", len(picks))
	}
	if picks[0].Title != "Leather belt" || picks[0].Price == nil || *picks[0].Price != 19.99 || !picks[0].Prime {
		t.Fatalf("unexpected first pick: %+v", picks[0])
	}
	if picks[1].Price != nil || picks[1].DeliveryDays != nil || picks[1].Prime {
		t.Fatalf("optional pick fields must round-trip as nil: %+v", picks[1])
	}
}

func TestByDayMissing(t *testing.T) {
	store := newTestStore(t)
	record, err := store.ByDay("2025-01-01")
	if err != nil {
		t.Fatalf("load brief: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got %+v", record)
	}
}

func TestRecentOrder(t *testing.T) {
	store := newTestStore(t)

	stamp := time.Date(2025, 9, 13, 7, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		stamp = stamp.Add(24 * time.Hour)
		return stamp
	}

	for _, day := range []string{"2025-09-14", "2025-09-15", "2025-09-16"} {
		if _, err := store.Save(BriefRecord{Day: day, Scenario: "generic_meeting", Markdown: "#"}, nil); err != nil {
			t.Fatalf("save %s: %v", day, err)
		}
	}

	records, err := store.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 2 || records[0].Day != "2025-09-16" || records[1].Day != "2025-09-15" {
		t.Fatalf("unexpected recent order: %+v", records)
	}
}

func TestSaveRequiresDay(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Save(BriefRecord{Scenario: "interview"}, nil); err == nil {
		t.Fatal("expected error for missing day")
	}
}
