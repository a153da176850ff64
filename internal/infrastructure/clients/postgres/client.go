package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
	"github.com/zatekoja/mtf-triage/backend/pkg/config"
	"github.com/zatekoja/mtf-triage/backend/pkg/retry"
)

// Client represents a PostgreSQL database client
type Client struct {
	db *sql.DB
}

// schema is applied by EnsureSchema. Assessment payloads are stored as JSONB
// so the record shape can grow without migrations.
const schema = `
CREATE TABLE IF NOT EXISTS risk_assessments (
	id                  UUID PRIMARY KEY,
	patient_id          TEXT NOT NULL,
	adjusted_risk_score DOUBLE PRECISION NOT NULL,
	priority            TEXT NOT NULL,
	urgency_hours       INTEGER NOT NULL,
	assessment          JSONB NOT NULL,
	scan_result         JSONB NOT NULL,
	quality_report      JSONB NOT NULL,
	summary             TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_risk_assessments_patient_created
	ON risk_assessments (patient_id, created_at DESC);
`

// NewClient creates a new PostgreSQL client with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger := observability.LoggerFromContext(ctx)
	err = retry.Do(ctx, retry.DefaultConfig(),
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return db.PingContext(pingCtx)
		},
		retry.Named("PostgreSQL"),
		retry.OnRetry(func(attempt int, err error, nextDelay time.Duration) {
			logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("PostgreSQL connection attempt failed")
		}),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	logger.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connected to PostgreSQL")
	return &Client{db: db}, nil
}

// NewClientFromDB wraps an already opened database handle
func NewClientFromDB(db *sql.DB) *Client {
	return &Client{db: db}
}

// EnsureSchema creates the tables the assessment store needs
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the connection to the database
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
