// Package postgres opens pooled database connections through the pgx stdlib
// driver and applies schema migrations.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultConnMaxLifetime = 30 * time.Minute
	defaultMaxIdleConns    = 5
	defaultMaxOpenConns    = 25
)

// Pool bounds the connection pool. Zero fields fall back to defaults suited
// to a small API server.
type Pool struct {
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	MaxIdleConns    int
	MaxOpenConns    int
}

func (p Pool) withDefaults() Pool {
	if p.ConnMaxIdleTime == 0 {
		p.ConnMaxIdleTime = defaultConnMaxIdleTime
	}
	if p.ConnMaxLifetime == 0 {
		p.ConnMaxLifetime = defaultConnMaxLifetime
	}
	if p.MaxIdleConns == 0 {
		p.MaxIdleConns = defaultMaxIdleConns
	}
	if p.MaxOpenConns == 0 {
		p.MaxOpenConns = defaultMaxOpenConns
	}

	return p
}

// Connect opens a database handle, verifies the connection and applies the
// pool limits.
func Connect(ctx context.Context, dsn string, pool Pool) (*sqlx.DB, error) {
	const op = "postgres.Connect"

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	pool = pool.withDefaults()
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetMaxOpenConns(pool.MaxOpenConns)

	return db, nil
}
