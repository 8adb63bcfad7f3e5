package store

import (
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/paintpos/app/models"
)

func TestDocumentsLeaveUnsetTimesToTheServer(t *testing.T) {
	tx := stampTransaction(models.Transaction{
		CustomerName: "Jane",
		Items:        []models.TransactionItem{models.NewItem("p1", "Latex", decimal.NewFromInt(100), 2)},
		TotalAmount:  decimal.NewFromInt(200),
	}, "key-1", time.Time{})

	assert.True(t, tx.Timestamp.IsZero())
	assert.Equal(t, firestore.ServerTimestamp, transactionDoc(tx)["timestamp"])
	assert.Equal(t, firestore.ServerTimestamp, logDoc(models.SaleLog(tx))["timestamp"])
	assert.Equal(t, firestore.ServerTimestamp, productDoc(models.Product{Name: "Latex"})["createdAt"])
}

func TestDocumentsKeepExplicitTimes(t *testing.T) {
	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	tx := stampTransaction(models.Transaction{CustomerName: "Jane", Timestamp: at}, "key-2", time.Time{})

	assert.Equal(t, at, transactionDoc(tx)["timestamp"])
	assert.Equal(t, at, logDoc(models.LogEntry{Action: models.ActionSale, Timestamp: at})["timestamp"])
}
