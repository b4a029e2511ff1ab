package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryObjectStorageUploadAndExists(t *testing.T) {
	store := NewInMemoryObjectStorage("documents", "eu-central-1")
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "tenants/t1/invoices/i1.pdf", []byte("%PDF-1.7"), "application/pdf"))

	exists, err := store.ObjectExists(ctx, "tenants/t1/invoices/i1.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	data, ok := store.Get("tenants/t1/invoices/i1.pdf")
	require.True(t, ok)
	assert.Equal(t, []byte("%PDF-1.7"), data)

	exists, err = store.ObjectExists(ctx, "tenants/t1/invoices/other.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInMemoryObjectStorageUploadOverwrites(t *testing.T) {
	store := NewInMemoryObjectStorage("documents", "eu-central-1")
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "key", []byte("v1"), "application/pdf"))
	require.NoError(t, store.Upload(ctx, "key", []byte("v2"), "application/pdf"))

	data, ok := store.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), data)
}

func TestInMemoryObjectStorageDownloadURL(t *testing.T) {
	store := NewInMemoryObjectStorage("documents", "eu-central-1")
	ctx := context.Background()

	_, _, err := store.GenerateDownloadURL(ctx, "missing", time.Minute)
	assert.Error(t, err, "missing objects must not get a download URL")

	require.NoError(t, store.Upload(ctx, "key", []byte("data"), "application/pdf"))

	url, expiresAt, err := store.GenerateDownloadURL(ctx, "key", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/documents/key")
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)
}

func TestInMemoryObjectStorageDelete(t *testing.T) {
	store := NewInMemoryObjectStorage("documents", "eu-central-1")
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "key", []byte("data"), "application/pdf"))
	require.NoError(t, store.DeleteObject(ctx, "key"))

	exists, err := store.ObjectExists(ctx, "key")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.DeleteObject(ctx, "key"), "deleting a missing object is not an error")
}

func TestInMemoryObjectStorageEmptyKey(t *testing.T) {
	store := NewInMemoryObjectStorage("documents", "eu-central-1")
	ctx := context.Background()

	assert.Error(t, store.Upload(ctx, "", []byte("data"), "application/pdf"))
	assert.Error(t, store.DeleteObject(ctx, ""))
	_, err := store.ObjectExists(ctx, "")
	assert.Error(t, err)
}
