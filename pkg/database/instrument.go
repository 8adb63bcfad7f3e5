package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/paintpos/pkg/metrics"
)

const startKey = "paintpos:start"

// instrument times every gorm statement into metrics.DBQueryDuration.
func instrument(db *gorm.DB) error {
	cb := db.Callback()
	steps := []error{
		cb.Create().Before("gorm:create").Register("paintpos:before_create", before),
		cb.Create().After("gorm:create").Register("paintpos:after_create", after("insert")),
		cb.Query().Before("gorm:query").Register("paintpos:before_query", before),
		cb.Query().After("gorm:query").Register("paintpos:after_query", after("select")),
		cb.Update().Before("gorm:update").Register("paintpos:before_update", before),
		cb.Update().After("gorm:update").Register("paintpos:after_update", after("update")),
		cb.Delete().Before("gorm:delete").Register("paintpos:before_delete", before),
		cb.Delete().After("gorm:delete").Register("paintpos:after_delete", after("delete")),
		cb.Row().Before("gorm:row").Register("paintpos:before_row", before),
		cb.Row().After("gorm:row").Register("paintpos:after_row", after("row")),
	}
	for _, err := range steps {
		if err != nil {
			return err
		}
	}
	return nil
}

func before(tx *gorm.DB) { tx.InstanceSet(startKey, time.Now()) }

func after(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(startKey)
		if !ok {
			return
		}
		if start, ok := v.(time.Time); ok {
			metrics.ObserveDBQuery(op, start)
		}
	}
}
