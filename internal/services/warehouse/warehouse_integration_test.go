//go:build integration

package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"redshift-sales-loader/internal/config"
	"redshift-sales-loader/internal/models"
)

// PostgreSQL speaks the same protocol as Redshift but rejects the CREDENTIALS
// clause, which gives a real warehouse-side failure to check rollback against.
func startWarehouse(t *testing.T) *config.Config {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("dev"),
		postgres.WithUsername("loader"),
		postgres.WithPassword("loader"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return &config.Config{
		RedshiftHost:     host,
		RedshiftPort:     port.Int(),
		RedshiftDB:       "dev",
		RedshiftUser:     "loader",
		RedshiftPassword: "loader",
		IAMRoleARN:       config.DefaultIAMRoleARN,
		SSLMode:          "disable",
		ConnectTimeout:   5 * time.Second,
	}
}

func countRows(t *testing.T, conn *pgx.Conn) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(context.Background(), "SELECT COUNT(*) FROM vendas").Scan(&n))
	return n
}

func TestIntegration_FailedCopyLeavesTableUnchanged(t *testing.T) {
	cfg := startWarehouse(t)
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, cfg.WarehouseURL())
	require.NoError(t, err)
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, `CREATE TABLE vendas (id INTEGER, produto VARCHAR(64), valor NUMERIC(10,2))`)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `INSERT INTO vendas VALUES (1, 'caneta', 2.50)`)
	require.NoError(t, err)

	client := New(cfg)
	_, err = client.Load(ctx, NewCopyCommand("s3://sales-data/2024/01/uploads/bad.csv", cfg.IAMRoleARN))
	require.Error(t, err)

	assert.Equal(t, models.ErrorKindExecution, models.KindOf(err))
	assert.Contains(t, err.Error(), "SQLSTATE")
	assert.Equal(t, 1, countRows(t, conn))
}

func TestIntegration_Ping(t *testing.T) {
	cfg := startWarehouse(t)

	assert.NoError(t, New(cfg).Ping(context.Background()))
}

func TestIntegration_UnreachableHost(t *testing.T) {
	cfg := &config.Config{
		RedshiftHost:     "127.0.0.1",
		RedshiftPort:     1,
		RedshiftDB:       "dev",
		RedshiftUser:     "loader",
		RedshiftPassword: "loader",
		IAMRoleARN:       config.DefaultIAMRoleARN,
		ConnectTimeout:   2 * time.Second,
	}

	_, err := New(cfg).Load(context.Background(), NewCopyCommand("s3://sales-data/2024/01/uploads/jan.csv", cfg.IAMRoleARN))
	require.Error(t, err)
	assert.Equal(t, models.ErrorKindConnection, models.KindOf(err))
}
