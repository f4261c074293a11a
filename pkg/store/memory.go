package store

import "rill/engine-go/pkg/engine"

type memoryRecord struct {
	sessionId string
	holds     []engine.HoldSnapshot
}

// MemoryStore keeps snapshots in process memory. Useful for tests and for
// REPL sessions that do not opt into persistence.
type MemoryStore struct {
	records map[string]memoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

func (m *MemoryStore) Save(program, sessionId string, holds []engine.HoldSnapshot) error {
	copied := make([]engine.HoldSnapshot, len(holds))
	copy(copied, holds)
	m.records[program] = memoryRecord{sessionId: sessionId, holds: copied}
	return nil
}

func (m *MemoryStore) Load(program string) (string, []engine.HoldSnapshot, error) {
	rec, ok := m.records[program]
	if !ok {
		return "", nil, nil
	}
	copied := make([]engine.HoldSnapshot, len(rec.holds))
	copy(copied, rec.holds)
	return rec.sessionId, copied, nil
}

func (m *MemoryStore) Close() error { return nil }
