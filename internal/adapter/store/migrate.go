package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    description VARCHAR(255) NOT NULL
)`

// currentVersion reads the highest applied migration version.
func currentVersion(ctx context.Context, conn *sql.DB) (int, error) {
	if _, err := conn.ExecContext(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("creating schema_migrations: %w", err)
	}
	var version sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(version.Int64), nil
}

// migrate brings the schema up to the latest version of the dialect.
func migrate(ctx context.Context, conn *sql.DB, d Dialect, logger *zap.Logger) error {
	current, err := currentVersion(ctx, conn)
	if err != nil {
		return err
	}
	if current >= latestVersion(d.migrations) {
		return nil
	}

	for _, m := range d.migrations {
		if m.Version <= current {
			continue
		}

		logger.Info("applying migration",
			zap.Int("version", m.Version),
			zap.String("description", m.Description),
			zap.String("dialect", d.Name),
		)

		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if err := applyMigration(ctx, tx, d, m); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, tx *sql.Tx, d Dialect, m Migration) error {
	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, c := range m.Columns {
		if err := applyColumnChange(ctx, tx, d, c); err != nil {
			return fmt.Errorf("%s.%s: %w", c.Table, c.Column, err)
		}
	}
	for _, idx := range m.Indexes {
		exists, err := schemaHas(ctx, tx, d.hasIndex, idx.Table, idx.Name)
		if err != nil {
			return fmt.Errorf("index %s: %w", idx.Name, err)
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("CREATE INDEX %s ON `%s` (%s)", idx.Name, idx.Table, idx.Columns)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("index %s: %w", idx.Name, err)
		}
	}
	return nil
}

func applyColumnChange(ctx context.Context, tx *sql.Tx, d Dialect, c ColumnChange) error {
	exists, err := schemaHas(ctx, tx, d.hasColumn, c.Table, c.Column)
	if err != nil {
		return err
	}
	var stmt string
	switch {
	case c.Definition != "" && !exists:
		stmt = fmt.Sprintf("ALTER TABLE `%s` ADD COLUMN `%s` %s", c.Table, c.Column, c.Definition)
	case c.Definition == "" && exists:
		stmt = fmt.Sprintf("ALTER TABLE `%s` DROP COLUMN `%s`", c.Table, c.Column)
	default:
		return nil
	}
	_, err = tx.ExecContext(ctx, stmt)
	return err
}

func schemaHas(ctx context.Context, tx *sql.Tx, query, table, name string) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx, query, table, name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
