package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"paydash/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository reads the dashboard dataset from SQLite. The default DSN is an
// in-memory shared-cache database seeded by the embedded migrations.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	version uint
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if !isMemoryDSN(dbPath) {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// An in-memory database lives as long as one connection does.
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		version: version,
	}, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SchemaVersion is the migration version applied at open.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.version
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// LoadDataset reads every row and tile value and validates them as a Dataset.
func (r *SQLiteRepository) LoadDataset(ctx context.Context) (core.Dataset, error) {
	volumes, err := r.queries.ListYearlyVolumes(ctx)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("list yearly volumes: %w", err)
	}
	stats, err := r.queries.ListAverageStats(ctx)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("list average stats: %w", err)
	}

	rows := make([]core.TimeSeriesRow, 0, len(volumes))
	for _, v := range volumes {
		rows = append(rows, core.TimeSeriesRow{
			Year:            int(v.Year),
			DigitalPayments: v.DigitalPayments,
			NoteVolume:      v.NoteVolume,
			CoinVolume:      v.CoinVolume,
		})
	}
	averages := make([]core.AverageStat, 0, len(stats))
	for _, s := range stats {
		averages = append(averages, core.AverageStat{
			Key:       s.Key,
			Name:      s.Name,
			Help:      s.Help,
			Value:     s.Value,
			Unit:      s.Unit,
			Precision: int(s.Precision),
		})
	}

	ds, err := core.NewDataset(rows, averages)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("stored dataset is invalid: %w", err)
	}
	return ds, nil
}
