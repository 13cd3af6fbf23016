package testsupport

import (
	"testing"

	"maestro/internal/config"
	"maestro/internal/session"
)

// NewStore opens a session store backed by the config's state
// directory and registers cleanup with the test.
func NewStore(t testing.TB, cfg *config.Config) *session.Store {
	t.Helper()

	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("open session store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close session store: %v", err)
		}
	})
	return store
}
