package store

import (
	"context"
	"testing"

	"github.com/estatedesk/portal/internal/events"
	"github.com/estatedesk/portal/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestGormKV_GetMissing(t *testing.T) {
	kv := NewGormKV(newTestDB(t))

	v, ok, err := kv.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestGormKV_PutOverwrites(t *testing.T) {
	db := newTestDB(t)
	kv := NewGormKV(db)
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, "k", []byte(`[1]`)))
	require.NoError(t, kv.Put(ctx, "k", []byte(`[1,2]`)))

	v, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(v))

	var count int64
	db.Model(&models.KVEntry{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := New(NewGormKV(db), events.NewBus())
	_, err := first.ProjectClients.Add(ctx, "p1", "x1")
	require.NoError(t, err)

	second := New(NewGormKV(db), events.NewBus())
	assert.Equal(t, []models.ClientID{"x1"}, second.ProjectClients.BByA(ctx, "p1"))
}
