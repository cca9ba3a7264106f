package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agenthub-dev/agenthub/core/errors"
	"github.com/agenthub-dev/agenthub/core/manifest"
)

// Store is the local agent registry, a single-file SQLite database. The
// trust core never touches it directly: signing and verification operate on
// manifest values, the store only persists and retrieves them.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("open registry database: %w", err), errors.CategoryIOFailure, "db_open_failed", "")
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS agents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			version TEXT NOT NULL,
			description TEXT NOT NULL,
			author TEXT NOT NULL,
			capabilities TEXT NOT NULL,
			protocols TEXT NOT NULL,
			permissions TEXT NOT NULL,
			lifecycle_state TEXT NOT NULL DEFAULT 'active',
			agent_id TEXT NOT NULL DEFAULT '',
			parent_id TEXT NOT NULL DEFAULT '',
			generation INTEGER NOT NULL DEFAULT 0,
			lineage TEXT NOT NULL DEFAULT '[]',
			signature TEXT NOT NULL DEFAULT '',
			attestations TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`)
	if err != nil {
		return errors.Wrap(fmt.Errorf("init schema: %w", err), errors.CategoryIOFailure, "db_init_failed", "")
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_agents_name ON agents(name)`)
	if err != nil {
		return errors.Wrap(fmt.Errorf("init index: %w", err), errors.CategoryIOFailure, "db_init_failed", "")
	}
	return nil
}

// Register inserts a new agent. A duplicate name is a conflict; callers
// decide whether that means "already registered" or a naming clash.
func (s *Store) Register(m manifest.Manifest, now time.Time) (manifest.Manifest, error) {
	stamp := now.UTC().Format(time.RFC3339)
	m.CreatedAt = stamp
	m.UpdatedAt = stamp

	capabilities, protocols, permissions, lineage, signature, attestations, err := encodeColumns(m)
	if err != nil {
		return manifest.Manifest{}, err
	}
	_, err = s.db.Exec(`
		INSERT INTO agents
		(name, version, description, author, capabilities, protocols, permissions,
		 lifecycle_state, agent_id, parent_id, generation, lineage, signature, attestations,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Version, m.Description, m.Author, capabilities, protocols, permissions,
		string(m.LifecycleState), m.AgentID, m.ParentID, m.Generation, lineage, signature, attestations,
		stamp, stamp)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return manifest.Manifest{}, errors.New(
				fmt.Sprintf("agent %q already exists", m.Name),
				errors.CategoryConflict, "agent_exists", "")
		}
		return manifest.Manifest{}, errors.Wrap(fmt.Errorf("insert agent: %w", err), errors.CategoryIOFailure, "db_write_failed", "")
	}
	return m, nil
}

// Get retrieves an agent by name.
func (s *Store) Get(name string) (manifest.Manifest, error) {
	row := s.db.QueryRow(selectColumns+` FROM agents WHERE name = ?`, name)
	m, err := scanManifest(row)
	if err == sql.ErrNoRows {
		return manifest.Manifest{}, errors.New(
			fmt.Sprintf("agent %q not found", name),
			errors.CategoryNotFound, "agent_not_found", "")
	}
	if err != nil {
		return manifest.Manifest{}, errors.Wrap(fmt.Errorf("query agent: %w", err), errors.CategoryIOFailure, "db_read_failed", "")
	}
	return m, nil
}

// List returns agents in registration order, optionally filtered by
// lifecycle state.
func (s *Store) List(state manifest.LifecycleState, limit int) ([]manifest.Manifest, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if state != "" {
		rows, err = s.db.Query(selectColumns+` FROM agents WHERE lifecycle_state = ? ORDER BY id LIMIT ?`, string(state), limit)
	} else {
		rows, err = s.db.Query(selectColumns+` FROM agents ORDER BY id LIMIT ?`, limit)
	}
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("list agents: %w", err), errors.CategoryIOFailure, "db_read_failed", "")
	}
	return collect(rows)
}

// Search matches agents by capability substring or free text over name and
// description.
func (s *Store) Search(capability, query string, limit int) ([]manifest.Manifest, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows *sql.Rows
	var err error
	switch {
	case capability != "":
		rows, err = s.db.Query(selectColumns+` FROM agents WHERE capabilities LIKE ? ORDER BY id LIMIT ?`,
			"%"+capability+"%", limit)
	case query != "":
		pattern := "%" + query + "%"
		rows, err = s.db.Query(selectColumns+` FROM agents WHERE name LIKE ? OR description LIKE ? ORDER BY id LIMIT ?`,
			pattern, pattern, limit)
	default:
		return []manifest.Manifest{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("search agents: %w", err), errors.CategoryIOFailure, "db_read_failed", "")
	}
	return collect(rows)
}

// UpdateLifecycle transitions an agent's lifecycle state.
func (s *Store) UpdateLifecycle(name string, state manifest.LifecycleState, now time.Time) error {
	result, err := s.db.Exec(`UPDATE agents SET lifecycle_state = ?, updated_at = ? WHERE name = ?`,
		string(state), now.UTC().Format(time.RFC3339), name)
	if err != nil {
		return errors.Wrap(fmt.Errorf("update lifecycle: %w", err), errors.CategoryIOFailure, "db_write_failed", "")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(fmt.Errorf("update lifecycle: %w", err), errors.CategoryIOFailure, "db_write_failed", "")
	}
	if affected == 0 {
		return errors.New(fmt.Sprintf("agent %q not found", name), errors.CategoryNotFound, "agent_not_found", "")
	}
	return nil
}

// Delete removes an agent from the registry.
func (s *Store) Delete(name string) error {
	result, err := s.db.Exec(`DELETE FROM agents WHERE name = ?`, name)
	if err != nil {
		return errors.Wrap(fmt.Errorf("delete agent: %w", err), errors.CategoryIOFailure, "db_write_failed", "")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(fmt.Errorf("delete agent: %w", err), errors.CategoryIOFailure, "db_write_failed", "")
	}
	if affected == 0 {
		return errors.New(fmt.Sprintf("agent %q not found", name), errors.CategoryNotFound, "agent_not_found", "")
	}
	return nil
}

const selectColumns = `SELECT name, version, description, author, capabilities, protocols, permissions,
	lifecycle_state, agent_id, parent_id, generation, lineage, signature, attestations,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanManifest(row rowScanner) (manifest.Manifest, error) {
	var m manifest.Manifest
	var capabilities, protocols, permissions, lifecycle, lineage, signature, attestations string
	err := row.Scan(&m.Name, &m.Version, &m.Description, &m.Author,
		&capabilities, &protocols, &permissions, &lifecycle,
		&m.AgentID, &m.ParentID, &m.Generation, &lineage, &signature, &attestations,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return manifest.Manifest{}, err
	}
	m.LifecycleState = manifest.LifecycleState(lifecycle)
	if err := decodeJSON(capabilities, &m.Capabilities); err != nil {
		return manifest.Manifest{}, err
	}
	if err := decodeJSON(protocols, &m.Protocols); err != nil {
		return manifest.Manifest{}, err
	}
	if err := decodeJSON(permissions, &m.Permissions); err != nil {
		return manifest.Manifest{}, err
	}
	if err := decodeJSON(lineage, &m.Lineage); err != nil {
		return manifest.Manifest{}, err
	}
	if signature != "" {
		var sig manifest.Signature
		if err := json.Unmarshal([]byte(signature), &sig); err != nil {
			return manifest.Manifest{}, fmt.Errorf("decode signature column: %w", err)
		}
		m.Signature = &sig
	}
	if attestations != "" {
		if err := json.Unmarshal([]byte(attestations), &m.Attestations); err != nil {
			return manifest.Manifest{}, fmt.Errorf("decode attestations column: %w", err)
		}
	}
	return m, nil
}

func collect(rows *sql.Rows) ([]manifest.Manifest, error) {
	defer rows.Close()
	out := make([]manifest.Manifest, 0)
	for rows.Next() {
		m, err := scanManifest(rows)
		if err != nil {
			return nil, errors.Wrap(fmt.Errorf("scan agent: %w", err), errors.CategoryIOFailure, "db_read_failed", "")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(fmt.Errorf("iterate agents: %w", err), errors.CategoryIOFailure, "db_read_failed", "")
	}
	return out, nil
}

func encodeColumns(m manifest.Manifest) (capabilities, protocols, permissions, lineage, signature, attestations string, err error) {
	if capabilities, err = encodeJSON(m.Capabilities); err != nil {
		return
	}
	if protocols, err = encodeJSON(m.Protocols); err != nil {
		return
	}
	if permissions, err = encodeJSON(m.Permissions); err != nil {
		return
	}
	if lineage, err = encodeJSON(m.Lineage); err != nil {
		return
	}
	if m.Signature != nil {
		var raw []byte
		if raw, err = json.Marshal(m.Signature); err != nil {
			err = errors.Wrap(fmt.Errorf("encode signature column: %w", err), errors.CategoryInternalFailure, "db_encode_failed", "")
			return
		}
		signature = string(raw)
	}
	if len(m.Attestations) > 0 {
		var raw []byte
		if raw, err = json.Marshal(m.Attestations); err != nil {
			err = errors.Wrap(fmt.Errorf("encode attestations column: %w", err), errors.CategoryInternalFailure, "db_encode_failed", "")
			return
		}
		attestations = string(raw)
	}
	return
}

func encodeJSON[T any](value []T) (string, error) {
	if value == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", errors.Wrap(fmt.Errorf("encode column: %w", err), errors.CategoryInternalFailure, "db_encode_failed", "")
	}
	return string(raw), nil
}

func decodeJSON[T any](raw string, out *[]T) error {
	if raw == "" || raw == "[]" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}
