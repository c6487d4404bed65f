// Package warehouse runs bulk loads against the Redshift cluster.
package warehouse

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"redshift-sales-loader/internal/config"
	"redshift-sales-loader/internal/models"
	"redshift-sales-loader/internal/utils"
)

// Conn is the part of *pgx.Conn the client uses.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Dialer opens a single warehouse connection.
type Dialer func(ctx context.Context, connString string) (Conn, error)

// PgxDialer connects with pgx.Connect.
func PgxDialer(ctx context.Context, connString string) (Conn, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Client opens one connection per call and never keeps it.
type Client struct {
	connString string
	endpoint   string
	database   string
	dial       Dialer
}

// New creates a client that dials with pgx.
func New(cfg *config.Config) *Client {
	return NewWithDialer(cfg, PgxDialer)
}

// NewWithDialer creates a client with a custom dialer.
func NewWithDialer(cfg *config.Config, dial Dialer) *Client {
	return &Client{
		connString: cfg.WarehouseURL(),
		endpoint:   cfg.Endpoint(),
		database:   cfg.RedshiftDB,
		dial:       dial,
	}
}

// Load executes cmd in its own transaction and commits it. Failures to
// connect are Connection errors; anything after that is an Execution error
// and the transaction is rolled back. The connection is closed on every path.
func (c *Client) Load(ctx context.Context, cmd CopyCommand) (int64, error) {
	logger := utils.GetLogger()
	start := time.Now()

	conn, err := c.dial(ctx, c.connString)
	if err != nil {
		return 0, models.ConnectionError(err)
	}
	defer c.release(ctx, conn)

	logger.Debug("Connected to warehouse",
		utils.String("endpoint", c.endpoint),
		utils.String("database", c.database))

	var rows int64
	err = withTransaction(ctx, conn, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, cmd.SQL())
		if err != nil {
			return err
		}
		rows = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, models.ExecutionError(err)
	}

	logger.Info("Copy command complete",
		utils.String("table", cmd.Table),
		utils.String("source", cmd.Source),
		utils.Int64("rows", rows),
		utils.Duration("elapsed", time.Since(start)))

	return rows, nil
}

// Ping verifies the warehouse accepts connections.
func (c *Client) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx, c.connString)
	if err != nil {
		return models.ConnectionError(err)
	}
	defer c.release(ctx, conn)

	if err := conn.Ping(ctx); err != nil {
		return models.ConnectionError(err)
	}
	return nil
}

func (c *Client) release(ctx context.Context, conn Conn) {
	if err := conn.Close(context.WithoutCancel(ctx)); err != nil {
		utils.GetLogger().Warn("Failed to close warehouse connection",
			utils.String("endpoint", c.endpoint),
			utils.Error(err))
	}
}

// withTransaction runs fn inside a transaction, rolling back if fn or the
// commit fails.
func withTransaction(ctx context.Context, conn Conn, fn func(tx pgx.Tx) error) (err error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
