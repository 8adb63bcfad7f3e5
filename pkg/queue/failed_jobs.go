package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

// FailedJobRecord is a job that exhausted its retries, kept for manual
// follow-up. A failed sale reconciliation lands here.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"autoCreateTime"`
}

func (FailedJobRecord) TableName() string { return "paintpos_failed_jobs" }

// failedJobDB is the optional DB backend; nil means in-memory only.
var failedJobDB *gorm.DB

// UseDB persists failed jobs to db. The table is created by the
// migrations.
func UseDB(db *gorm.DB) {
	failedJobDB = db
}

// persistFailed records a failure in memory and, when configured, in the
// database.
func (m *Manager) persistFailed(ctx context.Context, job Job, typeName string, lastErr error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Name: typeName, Job: job, Err: lastErr, FailedAt: time.Now(), Attempts: attempts,
	})
	m.mu.Unlock()

	if failedJobDB == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error": "could not marshal: %v"}`, err))
	}

	record := FailedJobRecord{
		JobType:  typeName,
		Payload:  string(payload),
		Error:    lastErr.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	}

	if err := failedJobDB.WithContext(context.WithoutCancel(ctx)).Create(&record).Error; err != nil {
		logger.Error("queue: persist failed job", "type", typeName, "error", err)
	}
}
