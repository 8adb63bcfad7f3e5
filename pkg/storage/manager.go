package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

// ─── Manager ──────────────────────────────────────────────────────────────────

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the configured disks. The local disk is always available;
// s3 and gcs are booted only when their bucket is configured, and a disk
// that fails to boot is logged and skipped.
func Connect(ctx context.Context) {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = config.Get("STORAGE_DISK", "local")
	disks["local"] = NewLocal(config.Get("STORAGE_LOCAL_ROOT", "storage"), config.Get("STORAGE_URL", ""))

	if config.Get("S3_BUCKET", "") != "" {
		if d, err := newS3Disk(ctx); err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			disks["s3"] = d
		}
	}
	if bucket := config.Get("GCS_BUCKET", ""); bucket != "" {
		if d, err := newGCSDisk(ctx, bucket, config.Get("GCS_URL", "")); err != nil {
			logger.Warn("storage: gcs disk disabled", "error", err)
		} else {
			disks["gcs"] = d
		}
	}
}

// Use returns the named disk.
func Use(name string) (Disk, error) {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the disk named by STORAGE_DISK.
func Default() (Disk, error) {
	managerMu.RLock()
	name := defaultDisk
	managerMu.RUnlock()
	return Use(name)
}

// RegisterDisk plugs in a Disk under name; tests use it to swap drivers.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}

// SetDefault changes which disk Default returns.
func SetDefault(name string) {
	managerMu.Lock()
	defaultDisk = name
	managerMu.Unlock()
}
