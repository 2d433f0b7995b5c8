// Package warehouse implements the Snowflake client shared by every
// warehouse-facing pipeline step. Connections are scoped per call: each
// statement opens, executes, fetches, and closes, so no step can leak a
// connection past its own exit.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/datalith/predictit-etl/internal/config"
	"github.com/datalith/predictit-etl/internal/metrics"
)

// Querier is the statement-execution surface consumed by the stage, load,
// transform, and quality steps.
type Querier interface {
	Run(ctx context.Context, query string, args ...any) ([][]any, error)
	RunBatch(ctx context.Context, query string, paramRows [][]any) (int64, error)
}

// QueryError carries the failed statement text for diagnostics.
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("warehouse query failed: %v\nstatement: %s", e.Err, e.SQL)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Client executes SQL against Snowflake.
type Client struct {
	dsn    string
	logger *slog.Logger
}

// NewClient builds a Client from Snowflake configuration.
func NewClient(cfg config.SnowflakeConfig, logger *slog.Logger) (*Client, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("building snowflake DSN: %w", err)
	}
	return &Client{dsn: dsn, logger: logger}, nil
}

func buildDSN(cfg config.SnowflakeConfig) (string, error) {
	sfCfg := &sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	}
	return sf.DSN(sfCfg)
}

// Run opens a scoped connection, executes one statement, and fetches all
// result rows. The connection is released on every exit path.
func (c *Client) Run(ctx context.Context, query string, args ...any) ([][]any, error) {
	db, err := sql.Open("snowflake", c.dsn)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() { _ = db.Close() }()

	metrics.QueriesTotal.Add(1)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}

	var results [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{SQL: query, Err: err}
		}
		results = append(results, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}

	c.logger.Debug("statement executed", "rows", len(results))
	return results, nil
}

// RunBatch executes the same statement once per parameter row and returns
// the total affected count.
func (c *Client) RunBatch(ctx context.Context, query string, paramRows [][]any) (int64, error) {
	db, err := sql.Open("snowflake", c.dsn)
	if err != nil {
		return 0, &QueryError{SQL: query, Err: err}
	}
	defer func() { _ = db.Close() }()

	metrics.QueriesTotal.Add(1)
	stmt, err := db.PrepareContext(ctx, query)
	if err != nil {
		return 0, &QueryError{SQL: query, Err: err}
	}
	defer func() { _ = stmt.Close() }()

	var total int64
	for _, params := range paramRows {
		res, err := stmt.ExecContext(ctx, params...)
		if err != nil {
			return total, &QueryError{SQL: query, Err: err}
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	c.logger.Debug("batch executed", "rows", len(paramRows), "affected", total)
	return total, nil
}
