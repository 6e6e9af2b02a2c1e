package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/wnt/binwatch/internal/metrics"
	"github.com/wnt/binwatch/internal/models"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ConflictPolicy selects what an insert does when it hits an existing row
// with the same natural key.
type ConflictPolicy int

const (
	// Reject fails the insert and surfaces the clashing row.
	Reject ConflictPolicy = iota
	// Update overwrites the existing row with the new values.
	Update
)

// ConflictError reports an insert rejected by a unique constraint, carrying
// the row that already occupies the key.
type ConflictError struct {
	Table    string
	Existing any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("row already occupied in table %s: %+v", e.Table, e.Existing)
}

// Options configures a store connection.
type Options struct {
	Driver string
	Path   string // sqlite database file
	DSN    string // postgres connection string
	Logger zerolog.Logger
}

// Store wraps the relational database holding every synchronized stream.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to the configured database and migrates every registered
// table.
func Open(opts Options) (*Store, error) {
	config := &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Silent),
		PrepareStmt: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		db  *gorm.DB
		err error
	)
	switch opts.Driver {
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(opts.Path), config)
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(opts.DSN), config)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	// Set connection pool limits. SQLite serializes writers, so keep a
	// single connection to avoid lock contention.
	if opts.Driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := migrateSchema(db); err != nil {
		return nil, err
	}

	return &Store{db: db, log: opts.Logger}, nil
}

func migrateSchema(db *gorm.DB) error {
	for _, e := range registry {
		if err := db.AutoMigrate(e.model); err != nil {
			return fmt.Errorf("failed to migrate table for %s: %w", e.kind, err)
		}
	}

	// Add composite indexes for the cursor query patterns
	db.Exec("CREATE INDEX IF NOT EXISTS idx_trades_scope_millis ON trades(market, asset, ref_asset, trade_millis)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_transfers_kind_type_millis ON transfers(kind, transfer_type, transfer_millis)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_margin_loans_scope_millis ON margin_loans(margin_type, asset, loan_millis)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_margin_repays_scope_millis ON margin_repays(margin_type, asset, repay_millis)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_margin_interests_scope_millis ON margin_interests(margin_type, interest_millis)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_lending_interests_type_millis ON lending_interests(lending_type, interest_millis)")

	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// Reset drops and recreates the tables behind the given stream kinds. With
// no kinds it resets every registered table.
func (s *Store) Reset(kinds ...models.StreamKind) error {
	if len(kinds) == 0 {
		kinds = Kinds()
	}
	for _, kind := range kinds {
		e, err := lookup(kind)
		if err != nil {
			return err
		}
		if err := s.db.Migrator().DropTable(e.model); err != nil {
			return fmt.Errorf("failed to drop table for %s: %w", kind, err)
		}
		if err := s.db.AutoMigrate(e.model); err != nil {
			return fmt.Errorf("failed to recreate table for %s: %w", kind, err)
		}
		s.log.Info().Str("stream", string(kind)).Msg("reset stream table")
	}
	return nil
}

// DropAll removes every registered table. Used by purge.
func (s *Store) DropAll() error {
	for _, e := range registry {
		if err := s.db.Migrator().DropTable(e.model); err != nil {
			return fmt.Errorf("failed to drop table for %s: %w", e.kind, err)
		}
	}
	return nil
}

// keyed is satisfied by models carrying a natural unique key.
type keyed interface {
	KeyConditions() map[string]any
}

// Insert writes a single row. With Reject the insert fails on a duplicate
// natural key and the returned ConflictError carries the existing row; with
// Update the existing row is overwritten instead. Models without a natural
// key cannot conflict and are always plain inserts.
func Insert[T any](s *Store, row *T, policy ConflictPolicy) error {
	k, isKeyed := any(row).(keyed)

	if policy == Update && isKeyed {
		onConflict := clause.OnConflict{Columns: keyColumns(k), UpdateAll: true}
		if err := s.db.Clauses(onConflict).Create(row).Error; err != nil {
			return fmt.Errorf("failed to upsert row: %w", err)
		}
		return nil
	}

	err := s.db.Create(row).Error
	if err == nil {
		return nil
	}
	if !isDuplicateErr(err) {
		return fmt.Errorf("failed to insert row: %w", err)
	}

	table := tableName(s.db, row)
	metrics.RecordInsertConflict(table)

	if !isKeyed {
		return &ConflictError{Table: table}
	}
	var existing T
	if err := s.db.Where(k.KeyConditions()).First(&existing).Error; err != nil {
		return &ConflictError{Table: table}
	}
	s.log.Error().
		Str("table", table).
		Interface("row", row).
		Interface("existing", existing).
		Msg("tried to insert a row but the key is occupied")
	return &ConflictError{Table: table, Existing: existing}
}

// keyColumns lists the natural key columns in a deterministic order, used as
// the conflict target for upserts.
func keyColumns(k keyed) []clause.Column {
	conds := k.KeyConditions()
	names := make([]string, 0, len(conds))
	for name := range conds {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make([]clause.Column, len(names))
	for i, name := range names {
		columns[i] = clause.Column{Name: name}
	}
	return columns
}

// SaveBatch commits rows in a single transaction, skipping rows whose
// natural key is already present so resumed syncs can safely replay a
// partially committed page. It returns the number of rows actually inserted.
func SaveBatch[T any](s *Store, rows []T) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows[i])
			if res.Error != nil {
				return fmt.Errorf("failed to insert row: %w", res.Error)
			}
			inserted += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ReplaceDusts rebuilds the dust table from scratch inside one transaction.
// Dust conversions carry no usable cursor, so the stream is always a full
// refresh.
func (s *Store) ReplaceDusts(rows []models.Dust) (int, error) {
	inserted := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable(&models.Dust{}); err != nil {
			return fmt.Errorf("failed to drop dust table: %w", err)
		}
		if err := tx.AutoMigrate(&models.Dust{}); err != nil {
			return fmt.Errorf("failed to recreate dust table: %w", err)
		}
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return fmt.Errorf("failed to insert dust row: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// isDuplicateErr reports whether an error is a unique constraint violation.
// Matches both the postgres and sqlite wording.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "unique constraint")
}

func tableName(db *gorm.DB, model any) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return "unknown"
	}
	return stmt.Schema.Table
}
