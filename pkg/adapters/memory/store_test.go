package memory_test

import (
	"testing"

	"github.com/aretw0/plancheck/pkg/adapters/memory"
	"github.com/aretw0/plancheck/pkg/ports"
	contract "github.com/aretw0/plancheck/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunReportStoreContract(t, store)
}

func TestMemoryLocker_Contract(t *testing.T) {
	contract.LockerContractTest(t, memory.NewLocker())
}
