package ledger_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"upright/internal/ledger"
)

func openStore(t *testing.T, opts ...ledger.Option) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "history.db"), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func TestAppendAndIsDuplicate(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	dup, err := store.IsDuplicate(ctx, "dashcam", "abc")
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if dup {
		t.Fatal("empty ledger should report no duplicate")
	}

	record := ledger.Record{Channel: "dashcam", ContentID: "abc", Title: "Near miss", OutputPath: "/out/a.mp4"}
	if err := store.Append(ctx, record); err != nil {
		t.Fatalf("Append: %v", err)
	}

	dup, err = store.IsDuplicate(ctx, "dashcam", "abc")
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if !dup {
		t.Fatal("appended record should be a duplicate")
	}

	// Same content on another channel is not a duplicate.
	dup, err = store.IsDuplicate(ctx, "nature", "abc")
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if dup {
		t.Fatal("other channel should not see the record")
	}
}

func TestAppendIdempotent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	record := ledger.Record{Channel: "dashcam", ContentID: "abc"}
	if err := store.Append(ctx, record); err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if err := store.Append(ctx, record); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	count, err := store.CountToday(ctx, "dashcam")
	if err != nil {
		t.Fatalf("CountToday: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1 after duplicate append", count)
	}
}

func TestCountTodayBucketsByDay(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	store := openStore(t,
		ledger.WithClock(func() time.Time { return now }),
		ledger.WithLocation(time.UTC),
	)
	ctx := context.Background()

	records := []ledger.Record{
		{Channel: "dashcam", ContentID: "today-1", CreatedAt: now.Add(-2 * time.Hour)},
		{Channel: "dashcam", ContentID: "today-2", CreatedAt: now.Add(-time.Minute)},
		{Channel: "dashcam", ContentID: "yesterday", CreatedAt: now.AddDate(0, 0, -1)},
		{Channel: "nature", ContentID: "today-other-channel", CreatedAt: now},
	}
	for _, record := range records {
		if err := store.Append(ctx, record); err != nil {
			t.Fatalf("Append %s: %v", record.ContentID, err)
		}
	}

	count, err := store.CountToday(ctx, "dashcam")
	if err != nil {
		t.Fatalf("CountToday: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestCountTodayResetsAtMidnight(t *testing.T) {
	current := time.Date(2026, 8, 31, 23, 30, 0, 0, time.UTC)
	store := openStore(t,
		ledger.WithClock(func() time.Time { return current }),
		ledger.WithLocation(time.UTC),
	)
	ctx := context.Background()

	if err := store.Append(ctx, ledger.Record{Channel: "dashcam", ContentID: "late", CreatedAt: current}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	count, err := store.CountToday(ctx, "dashcam")
	if err != nil {
		t.Fatalf("CountToday: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d before midnight", count)
	}

	current = current.Add(time.Hour) // past midnight
	count, err = store.CountToday(ctx, "dashcam")
	if err != nil {
		t.Fatalf("CountToday: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d after midnight, want 0", count)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := openStore(t, ledger.WithLocation(time.UTC))
	ctx := context.Background()

	for i, id := range []string{"first", "second", "third"} {
		record := ledger.Record{
			Channel:   "dashcam",
			ContentID: id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.Append(ctx, record); err != nil {
			t.Fatalf("Append %s: %v", id, err)
		}
	}

	records, err := store.Recent(ctx, "dashcam", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].ContentID != "third" || records[1].ContentID != "second" {
		t.Fatalf("order = %s, %s", records[0].ContentID, records[1].ContentID)
	}
}

func TestRecentAcrossChannels(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, ledger.Record{Channel: "a", ContentID: "1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, ledger.Record{Channel: "b", ContentID: "2"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := store.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
}

func TestClear(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, record := range []ledger.Record{
		{Channel: "a", ContentID: "1"},
		{Channel: "a", ContentID: "2"},
		{Channel: "b", ContentID: "3"},
	} {
		if err := store.Append(ctx, record); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	removed, err := store.Clear(ctx, "a")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d", removed)
	}

	dup, err := store.IsDuplicate(ctx, "b", "3")
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if !dup {
		t.Fatal("channel b should survive clearing channel a")
	}

	removed, err = store.Clear(ctx, "")
	if err != nil {
		t.Fatalf("Clear all: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d", removed)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Append(context.Background(), ledger.Record{Channel: "a", ContentID: "1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	dup, err := reopened.IsDuplicate(context.Background(), "a", "1")
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if !dup {
		t.Fatal("record lost across reopen")
	}
}

func TestLockChannelSerializesSameChannel(t *testing.T) {
	store := openStore(t)

	unlock := store.LockChannel("a")
	acquired := make(chan struct{})
	go func() {
		innerUnlock := store.LockChannel("a")
		close(acquired)
		innerUnlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first held")
	case <-time.After(50 * time.Millisecond):
	}

	// A different channel is not blocked.
	otherUnlock := store.LockChannel("b")
	otherUnlock()

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired after release")
	}
}
