package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lamdong-labs/kvsync-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// cache, sync state and sync log interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.kvsync/data/cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kvsync", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

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

// CacheStore returns a CacheStore interface backed by this store.
func (s *Store) CacheStore() driven.CacheStore {
	return &cacheStore{store: s}
}

// SyncStateStore returns a SyncStateStore interface backed by this store.
func (s *Store) SyncStateStore() driven.SyncStateStore {
	return &syncStateStore{store: s}
}

// SyncLogStore returns a SyncLogStore interface backed by this store.
func (s *Store) SyncLogStore() driven.SyncLogStore {
	return &syncLogStore{store: s}
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

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Cache Store ====================

// cacheStore implements driven.CacheStore.
type cacheStore struct {
	store *Store
}

var _ driven.CacheStore = (*cacheStore)(nil)

// tableFor maps a resource type to its cache table.
func tableFor(resource domain.ResourceType) (string, error) {
	switch resource {
	case domain.ResourceProducts:
		return "products", nil
	case domain.ResourceCustomers:
		return "customers", nil
	case domain.ResourceOrders:
		return "orders", nil
	case domain.ResourceInvoices:
		return "invoices", nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, resource)
	}
}

// Exists reports whether a record is already cached.
func (s *cacheStore) Exists(
	ctx context.Context,
	ownerID string,
	resource domain.ResourceType,
	externalID int64,
) (bool, error) {
	table, err := tableFor(resource)
	if err != nil {
		return false, err
	}

	var count int
	//nolint:gosec // table name comes from a fixed mapping, not user input
	query := "SELECT COUNT(*) FROM " + table + " WHERE owner_id = ? AND external_id = ?"
	if err := s.store.db.QueryRowContext(ctx, query, ownerID, externalID).Scan(&count); err != nil {
		return false, fmt.Errorf("checking record: %w", err)
	}
	return count > 0, nil
}

// Upsert inserts or overwrites a single record.
func (s *cacheStore) Upsert(ctx context.Context, ownerID string, record domain.Record) error {
	now := time.Now().UTC()

	switch rec := record.(type) {
	case domain.Product:
		_, err := s.store.db.ExecContext(ctx, `
			INSERT INTO products
				(owner_id, external_id, code, name, category_name, base_price, on_hand, unit, is_active, source_modified_at, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(owner_id, external_id) DO UPDATE SET
				code = excluded.code,
				name = excluded.name,
				category_name = excluded.category_name,
				base_price = excluded.base_price,
				on_hand = excluded.on_hand,
				unit = excluded.unit,
				is_active = excluded.is_active,
				source_modified_at = excluded.source_modified_at,
				synced_at = excluded.synced_at
		`, ownerID, rec.ID, rec.Code, rec.Name, rec.CategoryName, rec.BasePrice,
			rec.OnHand, rec.Unit, rec.IsActive, nullTime(rec.ModifiedAt), now)
		if err != nil {
			return fmt.Errorf("saving product: %w", err)
		}
		return nil

	case domain.Customer:
		_, err := s.store.db.ExecContext(ctx, `
			INSERT INTO customers
				(owner_id, external_id, code, name, contact_number, email, address, location_name, source_modified_at, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(owner_id, external_id) DO UPDATE SET
				code = excluded.code,
				name = excluded.name,
				contact_number = excluded.contact_number,
				email = excluded.email,
				address = excluded.address,
				location_name = excluded.location_name,
				source_modified_at = excluded.source_modified_at,
				synced_at = excluded.synced_at
		`, ownerID, rec.ID, rec.Code, rec.Name, rec.ContactNumber, rec.Email,
			rec.Address, rec.LocationName, nullTime(rec.ModifiedAt), now)
		if err != nil {
			return fmt.Errorf("saving customer: %w", err)
		}
		return nil

	case domain.Order:
		return s.upsertOrderLike(ctx, "orders", ownerID, rec.ID, rec.Code, rec.Status,
			rec.Total, rec.CustomerName, rec.PurchaseDate, rec.ModifiedAt, now)

	case domain.Invoice:
		return s.upsertOrderLike(ctx, "invoices", ownerID, rec.ID, rec.Code, rec.Status,
			rec.Total, rec.CustomerName, rec.PurchaseDate, rec.ModifiedAt, now)

	default:
		return fmt.Errorf("%w: %T", domain.ErrUnsupportedType, record)
	}
}

// upsertOrderLike writes orders and invoices, which share a shape.
func (s *cacheStore) upsertOrderLike(
	ctx context.Context,
	table, ownerID string,
	externalID int64,
	code, status string,
	total float64,
	customerName string,
	purchaseDate, modifiedAt, syncedAt time.Time,
) error {
	//nolint:gosec // table name comes from a fixed mapping, not user input
	query := `
		INSERT INTO ` + table + `
			(owner_id, external_id, code, status, total, customer_name, purchase_date, source_modified_at, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, external_id) DO UPDATE SET
			code = excluded.code,
			status = excluded.status,
			total = excluded.total,
			customer_name = excluded.customer_name,
			purchase_date = excluded.purchase_date,
			source_modified_at = excluded.source_modified_at,
			synced_at = excluded.synced_at
	`
	_, err := s.store.db.ExecContext(ctx, query, ownerID, externalID, code, status,
		total, customerName, nullTime(purchaseDate), nullTime(modifiedAt), syncedAt)
	if err != nil {
		return fmt.Errorf("saving %s record: %w", strings.TrimSuffix(table, "s"), err)
	}
	return nil
}

// Count returns the number of cached records for a resource type.
func (s *cacheStore) Count(ctx context.Context, ownerID string, resource domain.ResourceType) (int, error) {
	table, err := tableFor(resource)
	if err != nil {
		return 0, err
	}

	var count int
	//nolint:gosec // table name comes from a fixed mapping, not user input
	query := "SELECT COUNT(*) FROM " + table + " WHERE owner_id = ?"
	if err := s.store.db.QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// ==================== Sync State Store ====================

// syncStateStore implements driven.SyncStateStore.
type syncStateStore struct {
	store *Store
}

var _ driven.SyncStateStore = (*syncStateStore)(nil)

// Get retrieves sync state for an owner and resource type.
func (s *syncStateStore) Get(
	ctx context.Context,
	ownerID string,
	resource domain.ResourceType,
) (*domain.SyncState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT owner_id, resource_type, last_sync_at, in_progress, started_at, items_synced
		FROM sync_states WHERE owner_id = ? AND resource_type = ?
	`, ownerID, string(resource))

	state, err := scanSyncState(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sync state: %w", err)
	}
	return state, nil
}

// List returns all sync states for an owner.
func (s *syncStateStore) List(ctx context.Context, ownerID string) ([]domain.SyncState, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT owner_id, resource_type, last_sync_at, in_progress, started_at, items_synced
		FROM sync_states WHERE owner_id = ?
		ORDER BY resource_type
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying sync states: %w", err)
	}
	defer rows.Close()

	var states []domain.SyncState //nolint:prealloc // size unknown from query
	for rows.Next() {
		state, err := scanSyncState(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning sync state: %w", err)
		}
		states = append(states, *state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync states: %w", err)
	}
	return states, nil
}

// Begin atomically marks a sync as in progress. The conditional update
// is the single concurrency guard against overlapping passes; a flag
// older than the staleness timeout is treated as abandoned and taken
// over.
func (s *syncStateStore) Begin(ctx context.Context, ownerID string, resource domain.ResourceType) error {
	now := time.Now().UTC()
	cutoff := now.Add(-driven.StaleSyncTimeout)

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_states (owner_id, resource_type, in_progress, started_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(owner_id, resource_type) DO UPDATE SET
			in_progress = 1,
			started_at = excluded.started_at
		WHERE sync_states.in_progress = 0 OR sync_states.started_at < ?
	`, ownerID, string(resource), now, cutoff)
	if err != nil {
		return fmt.Errorf("beginning sync: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking sync guard: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%s", domain.ErrSyncInProgress, ownerID, resource)
	}
	return nil
}

// Complete records a successful pass.
func (s *syncStateStore) Complete(
	ctx context.Context,
	ownerID string,
	resource domain.ResourceType,
	itemCount int,
) error {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_states SET
			in_progress = 0,
			last_sync_at = ?,
			items_synced = ?
		WHERE owner_id = ? AND resource_type = ?
	`, time.Now().UTC(), itemCount, ownerID, string(resource))
	if err != nil {
		return fmt.Errorf("completing sync: %w", err)
	}
	return nil
}

// Fail clears the in-progress flag without moving the checkpoint.
func (s *syncStateStore) Fail(ctx context.Context, ownerID string, resource domain.ResourceType) error {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_states SET in_progress = 0
		WHERE owner_id = ? AND resource_type = ?
	`, ownerID, string(resource))
	if err != nil {
		return fmt.Errorf("failing sync: %w", err)
	}
	return nil
}

// ResetInProgress clears the flag for every resource type of an owner.
func (s *syncStateStore) ResetInProgress(ctx context.Context, ownerID string) error {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_states SET in_progress = 0 WHERE owner_id = ?
	`, ownerID)
	if err != nil {
		return fmt.Errorf("resetting in-progress flags: %w", err)
	}
	return nil
}

// NeedsInitialSync reports whether any resource type has never completed
// a sync for the owner. Rows without a checkpoint (created by failed
// passes) count as never synced.
func (s *syncStateStore) NeedsInitialSync(ctx context.Context, ownerID string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sync_states
		WHERE owner_id = ? AND last_sync_at IS NOT NULL
	`, ownerID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking initial sync: %w", err)
	}
	return count < len(domain.AllResourceTypes()), nil
}

// scanSyncState scans one sync state row via the given scan function.
func scanSyncState(scan func(...any) error) (*domain.SyncState, error) {
	var state domain.SyncState
	var resource string
	var lastSync, startedAt sql.NullTime
	var inProgress int

	if err := scan(&state.OwnerID, &resource, &lastSync, &inProgress, &startedAt, &state.ItemsSynced); err != nil {
		return nil, err
	}

	state.Resource = domain.ResourceType(resource)
	state.InProgress = inProgress != 0
	if lastSync.Valid {
		state.LastSyncAt = lastSync.Time
	}
	if startedAt.Valid {
		state.StartedAt = startedAt.Time
	}
	return &state, nil
}

// ==================== Sync Log Store ====================

// syncLogStore implements driven.SyncLogStore.
type syncLogStore struct {
	store *Store
}

var _ driven.SyncLogStore = (*syncLogStore)(nil)

// Append writes one audit entry.
func (s *syncLogStore) Append(ctx context.Context, entry domain.SyncLogEntry) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_log
			(id, owner_id, resource_type, operation, processed, added, updated, deleted, duration_ms, success, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.OwnerID, string(entry.Resource), string(entry.Operation),
		entry.Processed, entry.Added, entry.Updated, entry.Deleted,
		entry.Duration.Milliseconds(), entry.Success, entry.ErrorMessage, entry.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("appending sync log: %w", err)
	}
	return nil
}

// List returns the most recent entries for an owner, newest first.
func (s *syncLogStore) List(ctx context.Context, ownerID string, limit int) ([]domain.SyncLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, owner_id, resource_type, operation, processed, added, updated, deleted, duration_ms, success, error_message, created_at
		FROM sync_log WHERE owner_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync log: %w", err)
	}
	defer rows.Close()

	var entries []domain.SyncLogEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.SyncLogEntry
		var resource, operation string
		var durationMS int64
		var success int

		if err := rows.Scan(&entry.ID, &entry.OwnerID, &resource, &operation,
			&entry.Processed, &entry.Added, &entry.Updated, &entry.Deleted,
			&durationMS, &success, &entry.ErrorMessage, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning sync log entry: %w", err)
		}

		entry.Resource = domain.ResourceType(resource)
		entry.Operation = domain.SyncOperation(operation)
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		entry.Success = success != 0
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync log: %w", err)
	}
	return entries, nil
}

// ==================== Helper Functions ====================

// nullTime converts a zero time to NULL for storage.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
