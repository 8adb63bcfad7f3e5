// Package migrations holds the schema history. Importing it registers every
// migration with pkg/migration.
package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/pkg/migration"
	"github.com/shashiranjanraj/paintpos/pkg/queue"
)

func init() {
	migration.Register("20240501000000_create_products_table", CreateProductsTable{})
	migration.Register("20240501000001_create_transactions_tables", CreateTransactionsTables{})
	migration.Register("20240501000002_create_logs_table", CreateLogsTable{})
	migration.Register("20240501000003_create_users_table", CreateUsersTable{})
	migration.Register("20240601000000_create_failed_jobs_table", CreateFailedJobsTable{})
}

// -------- products --------

type CreateProductsTable struct{}

func (CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- transactions + items --------

type CreateTransactionsTables struct{}

func (CreateTransactionsTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Transaction{}, &models.TransactionItem{})
}

func (CreateTransactionsTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("transaction_items", "transactions")
}

// -------- logs --------

type CreateLogsTable struct{}

func (CreateLogsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.LogEntry{})
}

func (CreateLogsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("logs")
}

// -------- users --------

type CreateUsersTable struct{}

func (CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- failed queue jobs --------

type CreateFailedJobsTable struct{}

func (CreateFailedJobsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&queue.FailedJobRecord{})
}

func (CreateFailedJobsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(queue.FailedJobRecord{}.TableName())
}
