package store_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/pkg/database"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	migrateModels(t, db)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func migrateModels(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Transaction{},
		&models.TransactionItem{},
		&models.LogEntry{},
	))
}

func TestSQLStoreSQLite(t *testing.T) {
	runContract(t, func(t *testing.T) storeUnderTest { return store.NewSQL(openSQLite(t)) })
}
