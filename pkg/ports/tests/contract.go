package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/plancheck/pkg/ports"
)

// LockerContractTest is a reusable test suite that verifies if an adapter complies with ports.Locker.
func LockerContractTest(t *testing.T, locker ports.Locker) {
	t.Helper()

	key := "contract-" + time.Now().Format("150405.000000")

	t.Run("Lock_Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(context.Background(), key, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		if err := unlock(context.Background()); err != nil {
			t.Fatalf("unexpected error releasing lock: %v", err)
		}
	})

	t.Run("Lock_Contended", func(t *testing.T) {
		unlock, err := locker.Lock(context.Background(), key, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		defer unlock(context.Background())

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()
		if _, err := locker.Lock(ctx, key, time.Minute); err == nil {
			t.Error("expected second Lock on a held key to fail once the context expires")
		}
	})

	t.Run("Lock_Reacquire", func(t *testing.T) {
		unlock, err := locker.Lock(context.Background(), key, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error acquiring released lock: %v", err)
		}
		_ = unlock(context.Background())
	})

	t.Run("Independent_Keys", func(t *testing.T) {
		unlockA, err := locker.Lock(context.Background(), key+"-a", time.Minute)
		if err != nil {
			t.Fatalf("lock a: %v", err)
		}
		defer unlockA(context.Background())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		unlockB, err := locker.Lock(ctx, key+"-b", time.Minute)
		if err != nil {
			t.Fatalf("lock b should not be blocked by a: %v", err)
		}
		_ = unlockB(context.Background())
	})
}
