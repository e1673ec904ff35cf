package testsupport

import (
	"context"
	"testing"

	"upright/internal/config"
	"upright/internal/ledger"
)

// MustOpenStore opens the history ledger for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...ledger.Option) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg.LedgerPath(), opts...)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AppendRecord commits a history record for tests using the provided store.
func AppendRecord(t testing.TB, store *ledger.Store, channel, contentID, title string) {
	t.Helper()

	record := ledger.Record{
		Channel:   channel,
		ContentID: contentID,
		Title:     title,
	}
	if err := store.Append(context.Background(), record); err != nil {
		t.Fatalf("store.Append: %v", err)
	}
}
