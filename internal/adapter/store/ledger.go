package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"productcopy-core/internal/domain/entity"
)

type DBOptions struct {
	Driver string // mysql | sqlite
	DSN    string // mysql DSN or sqlite file path
}

// SQLLedger is the usage/billing ledger. Each call is a single statement; no
// transaction spans a pricing check and the writes that follow a run.
type SQLLedger struct {
	conn    *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

// OpenLedger connects and migrates the schema.
func OpenLedger(ctx context.Context, opts DBOptions, logger *zap.Logger) (*SQLLedger, error) {
	d, err := DialectByName(opts.Driver)
	if err != nil {
		return nil, err
	}

	if d.Name == SQLite.Name {
		if err := os.MkdirAll(filepath.Dir(opts.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	conn, err := sql.Open(d.driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if d.Name == SQLite.Name {
		// Concurrent requests share one file; serialize writers instead of failing with SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting journal mode: %w", err)
		}
	} else {
		conn.SetConnMaxLifetime(3 * time.Minute)
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(10)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := migrate(ctx, conn, d, logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &SQLLedger{conn: conn, dialect: d, logger: logger}, nil
}

func (l *SQLLedger) Close() error {
	return l.conn.Close()
}

func (l *SQLLedger) Dialect() Dialect { return l.dialect }

func (l *SQLLedger) UsageCount(ctx context.Context, email string) entity.Outcome[int] {
	var n int
	err := l.conn.QueryRowContext(ctx, "SELECT request_count FROM `usage` WHERE email = ?", email).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Ok(0)
	}
	if err != nil {
		return entity.Degraded(0, fmt.Errorf("get usage: %w", err))
	}
	return entity.Ok(n)
}

func (l *SQLLedger) IncrementUsage(ctx context.Context, email string) error {
	if _, err := l.conn.ExecContext(ctx, l.dialect.upsertUsage, email); err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

func (l *SQLLedger) HasUnlimitedPayment(ctx context.Context, email string) entity.Outcome[bool] {
	var n int
	err := l.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payments WHERE email = ? AND tier = ?",
		email, string(entity.TierUnlimited),
	).Scan(&n)
	if err != nil {
		return entity.Degraded(false, fmt.Errorf("has unlimited: %w", err))
	}
	return entity.Ok(n > 0)
}

func (l *SQLLedger) CountPerUsePayments(ctx context.Context, email string) entity.Outcome[int] {
	var n int
	err := l.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payments WHERE email = ? AND tier = ?",
		email, string(entity.TierPerUse),
	).Scan(&n)
	if err != nil {
		return entity.Degraded(0, fmt.Errorf("count per-use payments: %w", err))
	}
	return entity.Ok(n)
}

func (l *SQLLedger) TotalGenerations(ctx context.Context, service string) entity.Outcome[int] {
	var n int
	err := l.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM requests WHERE service = ?", service).Scan(&n)
	if err != nil {
		return entity.Degraded(0, fmt.Errorf("total generations: %w", err))
	}
	return entity.Ok(n)
}

// RecordPayment appends a payment row; rows are never updated or deleted.
func (l *SQLLedger) RecordPayment(ctx context.Context, email string, tier entity.Tier, amountCents int) error {
	_, err := l.conn.ExecContext(ctx,
		"INSERT INTO payments (email, tier, amount) VALUES (?, ?, ?)",
		email, string(tier), amountCents,
	)
	if err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	return nil
}

func (l *SQLLedger) RecordGeneration(ctx context.Context, rec entity.GenerationRecord) error {
	_, err := l.conn.ExecContext(ctx,
		`INSERT INTO requests (request_id, service, email, name, input, result, score, rounds, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Service, rec.Email, rec.Name, rec.Input, rec.Result, rec.Score, rec.Rounds, rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("save request: %w", err)
	}
	return nil
}

func (l *SQLLedger) RecordCheckout(ctx context.Context, service string, c entity.Checkout) error {
	_, err := l.conn.ExecContext(ctx,
		"INSERT INTO checkouts (service, email, name) VALUES (?, ?, ?)",
		service, c.Email, c.Name,
	)
	if err != nil {
		return fmt.Errorf("save checkout: %w", err)
	}
	return nil
}

// SchemaVersion is the highest applied migration.
func (l *SQLLedger) SchemaVersion(ctx context.Context) (int, error) {
	return currentVersion(ctx, l.conn)
}
