package testsupport

import (
	"context"
	"testing"

	"autovideo/internal/config"
	"autovideo/internal/ledger"
)

// MustOpenLedger opens the conversion ledger for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(context.Background(), cfg.LedgerPath())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
