package coverstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-covers/internal/logging"
	"media-covers/internal/metrics"
)

// Default timeout for store operations
const defaultTimeout = 5 * time.Second

// DefaultKeep is how many covers per library Prune retains by default.
const DefaultKeep = 5

// ErrNotFound is returned when a library has no stored cover.
var ErrNotFound = errors.New("no stored cover")

// Cover is one generated cover. Data is left empty by List.
type Cover struct {
	ID          int64     `json:"id"`
	LibraryID   string    `json:"library_id"`
	Style       string    `json:"style"`
	Kind        string    `json:"kind"`
	Format      string    `json:"format"`
	ContentType string    `json:"content_type"`
	Title       string    `json:"title,omitempty"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Size        int       `json:"size"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists generated covers.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// New opens the store at dbPath, creating the schema when needed. The parent
// directory must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("Cover store path: %s", dbPath)

	if err := diagnosePermissions(dbPath); err != nil {
		logging.Warn("Cover store permission diagnostics: %v", err)
	}

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open cover store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close cover store after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to cover store: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close cover store after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize cover store schema: %w", err)
	}

	logging.Info("Cover store initialized successfully at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	CREATE TABLE IF NOT EXISTS covers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		library_id TEXT NOT NULL,
		style TEXT NOT NULL,
		kind TEXT NOT NULL,
		format TEXT NOT NULL,
		content_type TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		subtitle TEXT NOT NULL DEFAULT '',
		size INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_covers_library ON covers(library_id, id DESC);
	`

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Save stores c and returns its id. CreatedAt defaults to now and Size to
// len(Data).
func (s *Store) Save(ctx context.Context, c *Cover) (id int64, err error) {
	start := time.Now()
	defer func() { recordQuery("save_cover", start, err) }()

	if c.LibraryID == "" {
		return 0, errors.New("cover has no library id")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.Size == 0 {
		c.Size = len(c.Data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO covers (library_id, style, kind, format, content_type, title, subtitle, size, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.LibraryID, c.Style, c.Kind, c.Format, c.ContentType,
		c.Title, c.Subtitle, c.Size, c.Data, c.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save cover for %s: %w", c.LibraryID, err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

// Latest returns the most recent cover of libraryID, data included.
func (s *Store) Latest(ctx context.Context, libraryID string) (c *Cover, err error) {
	start := time.Now()
	defer func() {
		// A library without a cover is not a failed query.
		if errors.Is(err, ErrNotFound) {
			recordQuery("latest_cover", start, nil)
			return
		}
		recordQuery("latest_cover", start, err)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, library_id, style, kind, format, content_type, title, subtitle, size, data, created_at
		FROM covers
		WHERE library_id = ?
		ORDER BY id DESC
		LIMIT 1`, libraryID)

	var (
		out     Cover
		created int64
	)
	err = row.Scan(&out.ID, &out.LibraryID, &out.Style, &out.Kind, &out.Format, &out.ContentType,
		&out.Title, &out.Subtitle, &out.Size, &out.Data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, libraryID)
	}
	if err != nil {
		return nil, err
	}
	out.CreatedAt = time.UnixMilli(created)
	return &out, nil
}

// List returns cover metadata, newest first. An empty libraryID lists every
// library; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, libraryID string, limit int) (covers []Cover, err error) {
	start := time.Now()
	defer func() { recordQuery("list_covers", start, err) }()

	if limit <= 0 {
		limit = -1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, library_id, style, kind, format, content_type, title, subtitle, size, created_at
		FROM covers
		WHERE (? = '' OR library_id = ?)
		ORDER BY id DESC
		LIMIT ?`, libraryID, libraryID, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Error("failed to close rows: %v", closeErr)
		}
	}()

	covers = []Cover{}
	for rows.Next() {
		var (
			c       Cover
			created int64
		)
		if err = rows.Scan(&c.ID, &c.LibraryID, &c.Style, &c.Kind, &c.Format, &c.ContentType,
			&c.Title, &c.Subtitle, &c.Size, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = time.UnixMilli(created)
		covers = append(covers, c)
	}
	err = rows.Err()
	return covers, err
}

// Count returns the number of stored covers.
func (s *Store) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { recordQuery("count_covers", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM covers").Scan(&n)
	return n, err
}

// Prune keeps the newest keep covers of libraryID and deletes the rest.
func (s *Store) Prune(ctx context.Context, libraryID string, keep int) (deleted int64, err error) {
	start := time.Now()
	defer func() { recordQuery("prune_covers", start, err) }()

	if keep < 0 {
		keep = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM covers
		WHERE library_id = ?
		  AND id NOT IN (
			SELECT id FROM covers WHERE library_id = ? ORDER BY id DESC LIMIT ?
		  )`, libraryID, libraryID, keep)
	if err != nil {
		return 0, err
	}
	deleted, err = result.RowsAffected()
	if err == nil && deleted > 0 {
		logging.Debug("Pruned %d stored covers of %s", deleted, libraryID)
	}
	return deleted, err
}

// recordQuery records store query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// diagnosePermissions checks the store directory and files are writable.
func diagnosePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat cover store directory: %w", err)
	}
	logging.Debug("Cover store directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("cover store directory not writable: %w", err)
	}
	_ = os.Remove(testFile)

	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		logging.Debug("Cover store file exists: %s (mode: %v, size: %d bytes)", path, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 != 0 {
			continue
		}
		logging.Warn("%s is read-only! Mode: %v - this will cause write failures", path, info.Mode())
		if chmodErr := os.Chmod(path, 0o600); chmodErr != nil {
			logging.Error("Failed to fix permissions of %s: %v", path, chmodErr)
		} else {
			logging.Info("Fixed permissions of %s", path)
		}
	}
	return nil
}
