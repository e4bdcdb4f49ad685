package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/estatedesk/portal/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KV is the durable document store behind the relation sets. Put replaces the
// whole value for a key in a single write.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// GormKV keeps documents in the kv_entries table.
type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

func (s *GormKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where(&models.KVEntry{Key: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(entry.Value), true, nil
}

// Put upserts the document so the stored value is either the old or the new one.
func (s *GormKV) Put(ctx context.Context, key string, value []byte) error {
	entry := models.KVEntry{Key: key, Value: datatypes.JSON(value), UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// MemoryKV is a process-local KV used by tests and dry runs.
type MemoryKV struct {
	mu       sync.RWMutex
	data     map[string][]byte
	failPuts error
	failGets error
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failGets != nil {
		return nil, false, m.failGets
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPuts != nil {
		return m.failPuts
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	m.data[key] = buf
	return nil
}

// FailPuts makes every following Put return err; nil restores normal writes.
func (m *MemoryKV) FailPuts(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPuts = err
}

// FailGets makes every following Get return err; nil restores normal reads.
func (m *MemoryKV) FailGets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failGets = err
}

// Raw stores value without validation, for seeding corrupt documents.
func (m *MemoryKV) Raw(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}
