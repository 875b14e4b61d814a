package authstate

import (
	"path/filepath"
	"testing"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{"memory": NewMemory(), "sqlite": sq}
}

func TestStore_TakeConsumesOnce(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			want := Pending{AppID: "APP-100", SecretID: "s3cr3t", RedirectURI: "https://dash.example/cb"}
			if err := st.Put(ctx, want); err != nil {
				t.Fatalf("put: %v", err)
			}

			got, ok, err := st.Take(ctx)
			if err != nil || !ok {
				t.Fatalf("take: ok=%v err=%v", ok, err)
			}
			if got != want {
				t.Fatalf("round-trip mismatch: %+v", got)
			}

			// The slot is cleared after exactly one Take.
			_, ok, err = st.Take(ctx)
			if err != nil {
				t.Fatalf("second take: %v", err)
			}
			if ok {
				t.Fatal("slot should be empty after Take")
			}
		})
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			if err := st.Put(ctx, Pending{AppID: "OLD"}); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := st.Put(ctx, Pending{AppID: "NEW", SecretID: "x", RedirectURI: "y"}); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, ok, err := st.Take(ctx)
			if err != nil || !ok {
				t.Fatalf("take: ok=%v err=%v", ok, err)
			}
			if got.AppID != "NEW" {
				t.Fatalf("want last write, got %+v", got)
			}
		})
	}
}

func TestStore_EmptyTake(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := st.Take(t.Context())
			if err != nil {
				t.Fatalf("take: %v", err)
			}
			if ok {
				t.Fatal("empty store should report no pending flow")
			}
		})
	}
}
