package store_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/pkg/database"
)

// TestSQLStorePostgres runs the contract against a throwaway postgres
// container. Skipped with -short or when Docker is unreachable.
func TestSQLStorePostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_USER=paintpos",
		"POSTGRES_PASSWORD=secret",
		"POSTGRES_DB=paintpos",
	})
	if err != nil {
		t.Skipf("could not start postgres: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })
	_ = resource.Expire(120)

	dsn := fmt.Sprintf("host=localhost port=%s user=paintpos password=secret dbname=paintpos sslmode=disable",
		resource.GetPort("5432/tcp"))

	pool.MaxWait = 60 * time.Second
	var db *gorm.DB
	if err := pool.Retry(func() error {
		var err error
		db, err = database.Open("postgres", dsn)
		return err
	}); err != nil {
		t.Fatalf("postgres never became ready: %v", err)
	}

	runContract(t, func(t *testing.T) storeUnderTest {
		// Each subtest starts from empty tables.
		if err := db.Migrator().DropTable("logs", "transaction_items", "transactions", "products"); err != nil {
			t.Fatalf("drop tables: %v", err)
		}
		migrateModels(t, db)
		return store.NewSQL(db)
	})
}
