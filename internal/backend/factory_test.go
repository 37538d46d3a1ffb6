package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookkeeping/internal/config"
	"bookkeeping/internal/log"
	"bookkeeping/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg := config.Defaults()
	cfg.StorageBackend = "memory"
	bc, err := FromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, MemoryBackend, bc.Type)
	assert.Equal(t, cfg.StorageCacheTTL, bc.CacheTTL)

	cfg.StorageBackend = "sheets"
	_, err = FromAppConfig(cfg)
	assert.Error(t, err)
}

func TestCreateBackend(t *testing.T) {
	f := NewFactory(log.Discard())
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
		require.NoError(t, err)
		defer res.Cleanup()
		assert.IsType(t, &storage.Memory{}, res.Storage)
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{
			Type:         SQLiteBackend,
			SQLiteDBPath: filepath.Join(t.TempDir(), "session.db"),
		})
		require.NoError(t, err)
		defer res.Cleanup()
		assert.IsType(t, &storage.SQLite{}, res.Storage)
	})

	t.Run("sqlite with cache", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{
			Type:         SQLiteBackend,
			SQLiteDBPath: filepath.Join(t.TempDir(), "session.db"),
			CacheTTL:     time.Minute,
		})
		require.NoError(t, err)
		defer res.Cleanup()
		assert.IsType(t, &storage.Cached{}, res.Storage)

		require.NoError(t, res.Storage.Set(ctx, "token", "abc"))
		v, ok, err := res.Storage.Get(ctx, "token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc", v)
	})

	t.Run("sqlite without path", func(t *testing.T) {
		_, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend})
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := f.CreateBackend(ctx, Config{Type: "redis"})
		assert.Error(t, err)
	})
}
