//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"redshift-sales-loader/internal/config"
)

func main() {
	fmt.Println("🔍 Testing warehouse connection...")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("   ❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Println("1️⃣  Checking Environment Variables:")
	for _, name := range []string{"REDSHIFT_HOST", "REDSHIFT_PORT", "REDSHIFT_DB", "REDSHIFT_USER", "REDSHIFT_PASSWORD", "REDSHIFT_IAM_ROLE_ARN"} {
		checkEnvVar(name)
	}
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Printf("   ❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Println("2️⃣  Testing Warehouse Connection:")
	testWarehouse(cfg)
}

func checkEnvVar(name string) {
	value := os.Getenv(name)
	switch {
	case value == "":
		fmt.Printf("   ⚠️  %s: not set\n", name)
	case name == "REDSHIFT_PASSWORD":
		fmt.Printf("   ✅ %s: ********\n", name)
	default:
		fmt.Printf("   ✅ %s: %s\n", name, value)
	}
}

func testWarehouse(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, cfg.WarehouseURL())
	if err != nil {
		fmt.Printf("   ❌ Connection to %s failed: %v\n", cfg.Endpoint(), err)
		return
	}
	defer conn.Close(ctx)

	fmt.Printf("   ✅ Connected to %s/%s\n", cfg.Endpoint(), cfg.RedshiftDB)

	var exists bool
	err = conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'vendas')
	`).Scan(&exists)
	if err != nil {
		fmt.Printf("   ❌ Table lookup failed: %v\n", err)
		return
	}

	if exists {
		fmt.Println("   📊 Destination table vendas found")
	} else {
		fmt.Println("   ⚠️  Destination table vendas does not exist; COPY will fail")
	}
}
