package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one embedded SQL file. Version is the file name without
// the .sql suffix; the timestamp prefix makes lexicographic order the
// application order.
type Migration struct {
	Version string
	SQL     string
}

// LoadMigrations reads the embedded migration files sorted by version.
func LoadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		raw, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(name, ".sql"),
			SQL:     string(raw),
		})
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Migrator applies embedded migrations over database/sql. It holds its
// own connection so multi-statement files run through the simple query
// protocol regardless of how the ORM connection is configured.
type Migrator struct {
	db  *sql.DB
	log *logger.Logger
}

func NewMigrator(dsn string, logg *logger.Logger) (*Migrator, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres for migrations: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping postgres for migrations: %w", err)
	}
	return &Migrator{db: sqlDB, log: logg.With("service", "Migrator")}, nil
}

func (m *Migrator) Close() error { return m.db.Close() }

// Run applies every not-yet-recorded migration in version order and
// returns how many were applied. Each file and its version row commit
// in one transaction, so a failed file leaves the schema at the prior
// version.
func (m *Migrator) Run(ctx context.Context) (int, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return 0, err
	}
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return 0, err
	}
	migrations, err := LoadMigrations()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := m.apply(ctx, migration); err != nil {
			return count, fmt.Errorf("apply %s: %w", migration.Version, err)
		}
		m.log.Info("Applied migration", "version", migration.Version)
		count++
	}
	return count, nil
}

// Pending lists versions present on disk but not yet recorded.
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return nil, err
	}
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	migrations, err := LoadMigrations()
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, migration := range migrations {
		if !applied[migration.Version] {
			pending = append(pending, migration.Version)
		}
	}
	return pending, nil
}

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO _migrations (version, applied_at) VALUES ($1, CURRENT_TIMESTAMP)`,
		migration.Version,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("record version: %w", err)
	}
	return tx.Commit()
}

func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure _migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
