package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/pkg/storage"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocal(t.TempDir(), "http://localhost:8080/storage/")

	ok, err := disk.Exists(ctx, "receipts/2024/05/tx-1.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = disk.Get(ctx, "receipts/2024/05/tx-1.pdf")
	assert.ErrorIs(t, err, storage.ErrNotExist)

	require.NoError(t, disk.Put(ctx, "receipts/2024/05/tx-1.pdf", []byte("%PDF-1.3"), "application/pdf"))
	ok, err = disk.Exists(ctx, "receipts/2024/05/tx-1.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := disk.Get(ctx, "receipts/2024/05/tx-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(got))

	assert.Equal(t, "http://localhost:8080/storage/receipts/2024/05/tx-1.pdf", disk.URL("receipts/2024/05/tx-1.pdf"))

	require.NoError(t, disk.Delete(ctx, "receipts/2024/05/tx-1.pdf"))
	require.NoError(t, disk.Delete(ctx, "receipts/2024/05/tx-1.pdf"), "deleting twice is fine")
}

func TestLocalDiskStaysUnderRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	disk := storage.NewLocal(root, "")

	require.NoError(t, disk.Put(ctx, "../../escape.txt", []byte("x"), "text/plain"))
	got, err := storage.NewLocal(root, "").Get(ctx, "escape.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestManagerRegistersDisks(t *testing.T) {
	disk := storage.NewLocal(t.TempDir(), "")
	storage.RegisterDisk("test", disk)
	storage.SetDefault("test")
	defer storage.SetDefault("local")

	got, err := storage.Default()
	require.NoError(t, err)
	assert.Same(t, disk, got)

	_, err = storage.Use("missing")
	assert.Error(t, err)
}
