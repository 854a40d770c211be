// Package hashstore is an optional SQL-backed cache for the hashtab: a
// local-file-vs-remote-libsql dialector dispatch holding one HashEntry row
// per hashtab record.
//
// The text hashtab file (internal/hashtab) remains the canonical wire
// format; a Store only accelerates lookups or mirrors snapshots when a
// sync DSN is configured.
package hashstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/oxhq/qmldiff/internal/hashtab"
)

// HashEntry is the gorm model backing one hashtab record.
type HashEntry struct {
	Hash  uint64 `gorm:"primaryKey"`
	Value string
}

// Store wraps a *gorm.DB dialed against either a local SQLite file or a
// remote libSQL URL.
type Store struct {
	db *gorm.DB
}

// Connect opens dsn (a local file path, or an http(s):// / libsql:// URL)
// and migrates the HashEntry table. authToken is only used for remote
// DSNs. debug enables gorm's verbose logger.
func Connect(dsn string, authToken string, debug bool) (*Store, error) {
	if !isURL(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("hashstore: create directory for %s: %w", dsn, err)
			}
		}
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isURL(dsn) {
		var (
			connector driver.Connector
			err       error
		)
		if authToken != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(authToken))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("hashstore: create libsql connector: %w", err)
		}
		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{
			DriverName: "libsql",
			Conn:       conn,
			DSN:        dsn,
		})
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("hashstore: connect to %s: %w", dsn, err)
	}

	if err := db.AutoMigrate(&HashEntry{}); err != nil {
		return nil, fmt.Errorf("hashstore: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func isURL(dsn string) bool {
	return len(dsn) >= 6 && (dsn[:6] == "libsql" ||
		(len(dsn) >= 7 && dsn[:7] == "http://") ||
		(len(dsn) >= 8 && dsn[:8] == "https://"))
}

// Sync upserts entries into the store, mirroring a hashtab.Table
// snapshot. Used by the exporter thread after a successful text-file
// write.
func (s *Store) Sync(ctx context.Context, entries []hashtab.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]HashEntry, len(entries))
	for i, e := range entries {
		rows[i] = HashEntry{Hash: e.Hash, Value: e.Value}
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rows).Error
}

// Load reads every row back into entries, used to warm an in-memory
// hashtab.Table from the store on startup.
func (s *Store) Load(ctx context.Context) ([]hashtab.Entry, error) {
	var rows []HashEntry
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("hashstore: load: %w", err)
	}
	entries := make([]hashtab.Entry, len(rows))
	for i, r := range rows {
		entries[i] = hashtab.Entry{Hash: r.Hash, Value: r.Value}
	}
	return entries, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
