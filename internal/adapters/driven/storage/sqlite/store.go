package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/contextpilot/contextpilot-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ContextStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.ContextStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.contextpilot/data/contexts.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".contextpilot", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "contexts.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Add stores a unit with an optional embedding. An existing unit with
// the same ID is overwritten; rowid (and thus listing order) is
// preserved by the upsert.
func (s *Store) Add(ctx context.Context, unit *domain.ContextUnit, embedding []float32) error {
	if err := unit.Validate(); err != nil {
		return err
	}

	tagsJSON, err := json.Marshal(unit.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contexts
			(id, type, content, confidence, tags, source, status, superseded_by, embedding, created_at, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			content = excluded.content,
			confidence = excluded.confidence,
			tags = excluded.tags,
			source = excluded.source,
			status = excluded.status,
			superseded_by = excluded.superseded_by,
			embedding = excluded.embedding,
			created_at = excluded.created_at,
			last_used = excluded.last_used
	`, unit.ID, string(unit.Type), unit.Content, unit.Confidence, string(tagsJSON),
		unit.Source, string(unit.Status), nullStringPtr(unit.SupersededBy),
		float32SliceToBytes(embedding), unit.CreatedAt, nullTimePtr(unit.LastUsed))

	if err != nil {
		return fmt.Errorf("saving context: %w", err)
	}
	return nil
}

// Get retrieves a unit by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.ContextUnit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, content, confidence, tags, source, status, superseded_by, created_at, last_used
		FROM contexts WHERE id = ?
	`, id)

	unit, err := scanContext(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("context %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return unit, nil
}

// ListAll returns units in insertion (rowid) order.
func (s *Store) ListAll(ctx context.Context, includeSuperseded bool) ([]domain.ContextUnit, error) {
	query := `
		SELECT id, type, content, confidence, tags, source, status, superseded_by, created_at, last_used
		FROM contexts`
	var args []any
	if !includeSuperseded {
		query += " WHERE status = ?"
		args = append(args, string(domain.ContextStatusActive))
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying contexts: %w", err)
	}
	defer rows.Close()

	var units []domain.ContextUnit //nolint:prealloc // size unknown from query
	for rows.Next() {
		unit, err := scanContextRows(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, *unit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contexts: %w", err)
	}

	return units, nil
}

// Update applies the set fields of the partial update.
func (s *Store) Update(ctx context.Context, id string, update domain.ContextUpdate) (*domain.ContextUnit, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	unit, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(unit)
	if err := unit.Validate(); err != nil {
		return nil, err
	}

	tagsJSON, err := json.Marshal(unit.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE contexts SET
			content = ?,
			confidence = ?,
			tags = ?,
			status = ?,
			superseded_by = ?,
			last_used = ?
		WHERE id = ?
	`, unit.Content, unit.Confidence, string(tagsJSON), string(unit.Status),
		nullStringPtr(unit.SupersededBy), nullTimePtr(unit.LastUsed), id)

	if err != nil {
		return nil, fmt.Errorf("updating context: %w", err)
	}
	return unit, nil
}

// Delete removes a unit and its embedding together.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM contexts WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting context: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking delete result: %w", err)
	}
	return affected > 0, nil
}

// Supersede marks oldID as replaced by newID. The superseding unit
// must already exist so a reader never sees a dangling reference.
func (s *Store) Supersede(ctx context.Context, oldID, newID string) (bool, error) {
	old, err := s.Get(ctx, oldID)
	if errors.Is(err, domain.ErrNotFound) {
		// Still reject a missing replacement before reporting false.
		if _, newErr := s.Get(ctx, newID); errors.Is(newErr, domain.ErrNotFound) {
			return false, fmt.Errorf("superseding context %s: %w", newID, domain.ErrNotFound)
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := s.Get(ctx, newID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, fmt.Errorf("superseding context %s: %w", newID, domain.ErrNotFound)
		}
		return false, err
	}

	if err := old.MarkSuperseded(newID); err != nil {
		return false, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE contexts SET status = ?, superseded_by = ? WHERE id = ?
	`, string(domain.ContextStatusSuperseded), newID, oldID)
	if err != nil {
		return false, fmt.Errorf("superseding context: %w", err)
	}
	return true, nil
}

// GetEmbedding returns the unit's embedding.
func (s *Store) GetEmbedding(ctx context.Context, id string) ([]float32, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT embedding FROM contexts WHERE id = ?", id).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("embedding for context %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("querying embedding: %w", err)
	}
	if blob == nil {
		return nil, fmt.Errorf("embedding for context %s: %w", id, domain.ErrNotFound)
	}
	return bytesToFloat32Slice(blob), nil
}

// UpdateEmbedding replaces the unit's embedding.
func (s *Store) UpdateEmbedding(ctx context.Context, id string, embedding []float32) (bool, error) {
	result, err := s.db.ExecContext(ctx, "UPDATE contexts SET embedding = ? WHERE id = ?",
		float32SliceToBytes(embedding), id)
	if err != nil {
		return false, fmt.Errorf("updating embedding: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking update result: %w", err)
	}
	return affected > 0, nil
}

// ListWithEmbeddings returns embedded units in insertion (rowid) order.
func (s *Store) ListWithEmbeddings(ctx context.Context, includeSuperseded bool) ([]driven.EmbeddedContext, error) {
	query := `
		SELECT id, type, content, confidence, tags, source, status, superseded_by, created_at, last_used, embedding
		FROM contexts WHERE embedding IS NOT NULL`
	var args []any
	if !includeSuperseded {
		query += " AND status = ?"
		args = append(args, string(domain.ContextStatusActive))
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying embedded contexts: %w", err)
	}
	defer rows.Close()

	var result []driven.EmbeddedContext //nolint:prealloc // size unknown from query
	for rows.Next() {
		var unit domain.ContextUnit
		var typeStr, statusStr, tagsJSON string
		var supersededBy sql.NullString
		var lastUsed sql.NullTime
		var blob []byte

		if err := rows.Scan(&unit.ID, &typeStr, &unit.Content, &unit.Confidence, &tagsJSON,
			&unit.Source, &statusStr, &supersededBy, &unit.CreatedAt, &lastUsed, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedded context: %w", err)
		}

		if err := fillContext(&unit, typeStr, statusStr, tagsJSON, supersededBy, lastUsed); err != nil {
			return nil, err
		}

		result = append(result, driven.EmbeddedContext{
			Unit:      unit,
			Embedding: bytesToFloat32Slice(blob),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embedded contexts: %w", err)
	}

	return result, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// nullStringPtr converts a *string to sql.NullString.
func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullTimePtr converts a *time.Time to sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// scanContext scans a single context row.
func scanContext(row *sql.Row) (*domain.ContextUnit, error) {
	var unit domain.ContextUnit
	var typeStr, statusStr, tagsJSON string
	var supersededBy sql.NullString
	var lastUsed sql.NullTime

	if err := row.Scan(&unit.ID, &typeStr, &unit.Content, &unit.Confidence, &tagsJSON,
		&unit.Source, &statusStr, &supersededBy, &unit.CreatedAt, &lastUsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning context: %w", err)
	}

	if err := fillContext(&unit, typeStr, statusStr, tagsJSON, supersededBy, lastUsed); err != nil {
		return nil, err
	}
	return &unit, nil
}

// scanContextRows scans a context from *sql.Rows.
func scanContextRows(rows *sql.Rows) (*domain.ContextUnit, error) {
	var unit domain.ContextUnit
	var typeStr, statusStr, tagsJSON string
	var supersededBy sql.NullString
	var lastUsed sql.NullTime

	if err := rows.Scan(&unit.ID, &typeStr, &unit.Content, &unit.Confidence, &tagsJSON,
		&unit.Source, &statusStr, &supersededBy, &unit.CreatedAt, &lastUsed); err != nil {
		return nil, fmt.Errorf("scanning context: %w", err)
	}

	if err := fillContext(&unit, typeStr, statusStr, tagsJSON, supersededBy, lastUsed); err != nil {
		return nil, err
	}
	return &unit, nil
}

// fillContext decodes the typed and nullable columns onto the unit.
func fillContext(unit *domain.ContextUnit, typeStr, statusStr, tagsJSON string, supersededBy sql.NullString, lastUsed sql.NullTime) error {
	unit.Type = domain.ContextType(typeStr)
	unit.Status = domain.ContextStatus(statusStr)

	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &unit.Tags); err != nil {
			return fmt.Errorf("unmarshalling tags: %w", err)
		}
	}
	if supersededBy.Valid {
		unit.SupersededBy = &supersededBy.String
	}
	if lastUsed.Valid {
		unit.LastUsed = &lastUsed.Time
	}
	return nil
}
