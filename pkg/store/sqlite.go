package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"rill/engine-go/pkg/ast"
	"rill/engine-go/pkg/engine"
	"rill/engine-go/pkg/runtime"
)

const schemaVersion = 1

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	program    TEXT PRIMARY KEY,
	session_id TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS holds (
	program TEXT NOT NULL,
	scope   TEXT NOT NULL,
	node    INTEGER NOT NULL,
	value   BLOB NOT NULL,
	PRIMARY KEY (program, scope, node)
);
`

// SQLiteStore persists snapshots to a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	var version string
	err = db.QueryRow(`SELECT value FROM metadata WHERE key = 'schema_version'`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec(`INSERT INTO metadata (key, value) VALUES ('schema_version', ?)`,
			fmt.Sprint(schemaVersion)); err != nil {
			db.Close()
			return nil, fmt.Errorf("write schema version: %w", err)
		}
	case err != nil:
		db.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	case version != fmt.Sprint(schemaVersion):
		db.Close()
		return nil, fmt.Errorf("unsupported store schema version %s", version)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(program, sessionId string, holds []engine.HoldSnapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM holds WHERE program = ?`, program); err != nil {
		return fmt.Errorf("clear previous snapshot: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO sessions (program, session_id) VALUES (?, ?)
		 ON CONFLICT(program) DO UPDATE SET session_id = excluded.session_id`,
		program, sessionId); err != nil {
		return fmt.Errorf("save session id: %w", err)
	}
	for _, snap := range holds {
		encoded, err := runtime.Encode(snap.Value)
		if err != nil {
			return fmt.Errorf("encode hold %s#%d: %w", snap.Scope, snap.Node, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO holds (program, scope, node, value) VALUES (?, ?, ?, ?)`,
			program, snap.Scope.String(), int64(snap.Node), encoded); err != nil {
			return fmt.Errorf("save hold %s#%d: %w", snap.Scope, snap.Node, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Load(program string) (string, []engine.HoldSnapshot, error) {
	var sessionId string
	err := s.db.QueryRow(`SELECT session_id FROM sessions WHERE program = ?`, program).Scan(&sessionId)
	if err == sql.ErrNoRows {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("load session id: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT scope, node, value FROM holds WHERE program = ? ORDER BY scope, node`, program)
	if err != nil {
		return "", nil, fmt.Errorf("load holds: %w", err)
	}
	defer rows.Close()

	var holds []engine.HoldSnapshot
	for rows.Next() {
		var scopeText string
		var node int64
		var encoded []byte
		if err := rows.Scan(&scopeText, &node, &encoded); err != nil {
			return "", nil, fmt.Errorf("scan hold row: %w", err)
		}
		scope, err := engine.ParseScope(scopeText)
		if err != nil {
			return "", nil, fmt.Errorf("parse hold scope: %w", err)
		}
		value, err := runtime.Decode(encoded)
		if err != nil {
			return "", nil, fmt.Errorf("decode hold value: %w", err)
		}
		holds = append(holds, engine.HoldSnapshot{Scope: scope, Node: ast.NodeId(node), Value: value})
	}
	return sessionId, holds, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
