package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/common"
	_ "modernc.org/sqlite"
)

// MemoryPath selects an ephemeral in-memory database
const MemoryPath = ":memory:"

// Initialisation error kinds
var (
	ErrOpen      = errors.New("failed to open the database file")
	ErrPragma    = errors.New("failed to apply a pragma")
	ErrMigration = errors.New("failed to run the storage migration job")
)

// SQLiteDB manages the SQLite database connection pool.
// Reads share the pool; writes are serialised through writeMu so there is a single writer.
type SQLiteDB struct {
	db      *sql.DB
	logger  arbor.ILogger
	config  *common.SQLiteConfig
	memory  bool
	writeMu sync.Mutex
}

// NewSQLiteDB opens the database, applies pragmas and migrates it to the latest schema.
// Opening fails hard if any migration fails.
func NewSQLiteDB(logger arbor.ILogger, config *common.SQLiteConfig) (*SQLiteDB, error) {
	memory := config.Path == "" || config.Path == MemoryPath

	if !memory {
		dir := filepath.Dir(config.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: failed to create database directory: %w", ErrOpen, err)
		}
	}

	// modernc.org/sqlite uses "sqlite" driver name (not "sqlite3")
	db, err := sql.Open("sqlite", buildDSN(config, memory))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	if memory {
		// Every connection to :memory: is a separate database, so the pool is pinned to one
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		maxOpen := config.MaxOpenConns
		if maxOpen < 1 {
			maxOpen = 1
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}

	s := &SQLiteDB{
		db:     db,
		logger: logger,
		config: config,
		memory: memory,
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	if err := s.configure(); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	path := config.Path
	if memory {
		path = MemoryPath
	}
	logger.Info().Str("path", path).Msg("SQLite database initialized")
	return s, nil
}

// buildDSN encodes the pragmas as connection parameters so that every pooled
// connection carries them, not only the first one.
func buildDSN(config *common.SQLiteConfig, memory bool) string {
	synchronous := config.Synchronous
	if synchronous == "" {
		synchronous = "NORMAL"
	}

	params := url.Values{}
	if config.WALMode {
		params.Add("_pragma", "journal_mode(WAL)")
	}
	params.Add("_pragma", "foreign_keys(ON)")
	params.Add("_pragma", fmt.Sprintf("synchronous(%s)", strings.ToUpper(synchronous)))
	if config.BusyTimeoutMS > 0 {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", config.BusyTimeoutMS))
	}

	name := config.Path
	if memory {
		name = MemoryPath
	}
	return name + "?" + params.Encode()
}

// configure verifies the pragmas took effect on the live connection
func (s *SQLiteDB) configure() error {
	var foreignKeys int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		return fmt.Errorf("%w: foreign_keys: %w", ErrPragma, err)
	}
	if foreignKeys != 1 {
		return fmt.Errorf("%w: foreign_keys is %d, expected 1", ErrPragma, foreignKeys)
	}

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return fmt.Errorf("%w: journal_mode: %w", ErrPragma, err)
	}
	// In-memory databases always report "memory"
	if s.config.WALMode && !s.memory && !strings.EqualFold(journalMode, "wal") {
		return fmt.Errorf("%w: journal_mode is %s, expected wal", ErrPragma, journalMode)
	}

	var synchronous int
	if err := s.db.QueryRow("PRAGMA synchronous").Scan(&synchronous); err != nil {
		return fmt.Errorf("%w: synchronous: %w", ErrPragma, err)
	}

	s.logger.Debug().
		Str("journal_mode", journalMode).
		Int("synchronous", synchronous).
		Int("foreign_keys", foreignKeys).
		Msg("SQLite pragmas applied")

	return nil
}

// WithWriteLock runs fn while holding the single-writer lock
func (s *SQLiteDB) WithWriteLock(fn func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return fn()
}

// DB returns the underlying database connection
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

// IsMemory reports whether the database is ephemeral
func (s *SQLiteDB) IsMemory() bool {
	return s.memory
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
