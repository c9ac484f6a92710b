package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ConnectConfig holds the connection settings for a live introspection run.
type ConnectConfig struct {
	Driver      string // "mysql" or "postgres"
	DSN         string
	Tracing     bool
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	PingTimeout time.Duration
}

// Connect opens a database handle for the configured driver and returns the
// matching dialect. When tracing is enabled the driver is wrapped so every
// metadata query emits a span.
func Connect(ctx context.Context, cfg ConnectConfig) (*sql.DB, Dialect, error) {
	var driverName string
	var dialect Dialect
	var system = semconv.DBSystemMySQL
	switch cfg.Driver {
	case "mysql", "tidb", "mariadb":
		driverName = "mysql"
		dialect = MySQLDialect{}
	case "postgres", "postgresql", "pgx":
		driverName = "pgx"
		dialect = PostgresDialect{}
		system = semconv.DBSystemPostgreSQL
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	var db *sql.DB
	var err error
	if cfg.Tracing {
		db, err = otelsql.Open(driverName, cfg.DSN,
			otelsql.WithAttributes(system),
			otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
		)
	} else {
		db, err = sql.Open(driverName, cfg.DSN)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s connection: %w", cfg.Driver, err)
	}

	if cfg.MaxOpen > 0 {
		db.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	if cfg.MaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}
	return db, dialect, nil
}
