// Package store persists hold-cell snapshots so a session can be resumed
// with its committed state intact.
package store

import "rill/engine-go/pkg/engine"

// Store saves and loads hold snapshots keyed by program name. Save replaces
// the program's previous snapshot wholesale.
type Store interface {
	Save(program, sessionId string, holds []engine.HoldSnapshot) error
	Load(program string) (sessionId string, holds []engine.HoldSnapshot, err error)
	Close() error
}
