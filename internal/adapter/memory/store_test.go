package memory

import (
	"testing"

	"timeclock/internal/ports"
	"timeclock/internal/ports/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.RunEntryStore(t, func(t *testing.T) ports.EntryStore { return NewStore() })
}

func TestDirectoryContract(t *testing.T) {
	storetest.RunUserDirectory(t, NewDirectory())
}
