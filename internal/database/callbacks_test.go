package database

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"project-tracker-api/internal/domain"
)

type queryRecord struct {
	operation string
	table     string
	err       error
}

type recorderStub struct {
	mu      sync.Mutex
	queries []queryRecord
	stats   []sql.DBStats
}

func (r *recorderStub) RecordDBQuery(operation, table string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, queryRecord{operation: operation, table: table, err: err})
}

func (r *recorderStub) UpdateDBStats(stats interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := stats.(sql.DBStats); ok {
		r.stats = append(r.stats, s)
	}
}

func (r *recorderStub) snapshot() []queryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queryRecord(nil), r.queries...)
}

func (r *recorderStub) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = nil
}

func (r *recorderStub) statsCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stats)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Project{}))
	return db
}

func TestRegisterMetricsCallbacks_CRUD(t *testing.T) {
	db := setupTestDB(t)
	rec := &recorderStub{}
	require.NoError(t, RegisterMetricsCallbacks(db, rec))

	p := domain.Project{Name: "Apollo", Status: domain.ProjectStatusActive, Priority: domain.PriorityHigh}
	require.NoError(t, db.Create(&p).Error)

	var loaded domain.Project
	require.NoError(t, db.First(&loaded, "id = ?", p.ID).Error)
	require.NoError(t, db.Model(&loaded).Update("name", "Apollo 2").Error)
	require.NoError(t, db.Delete(&loaded).Error)

	got := rec.snapshot()
	require.Len(t, got, 4)

	ops := []string{"insert", "select", "update", "delete"}
	for i, q := range got {
		assert.Equal(t, ops[i], q.operation)
		assert.Equal(t, "projects", q.table)
		assert.NoError(t, q.err)
	}
}

func TestRegisterMetricsCallbacks_RecordsErrors(t *testing.T) {
	db := setupTestDB(t)
	rec := &recorderStub{}
	require.NoError(t, RegisterMetricsCallbacks(db, rec))

	var missing domain.Project
	err := db.First(&missing, "name = ?", "nope").Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got := rec.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "select", got[0].operation)
	assert.ErrorIs(t, got[0].err, gorm.ErrRecordNotFound)

	rec.reset()
	p := domain.Project{Name: "dup"}
	require.NoError(t, db.Create(&p).Error)
	dup := domain.Project{BaseModel: domain.BaseModel{ID: p.ID}, Name: "dup"}
	assert.Error(t, db.Create(&dup).Error)

	got = rec.snapshot()
	require.Len(t, got, 2)
	assert.NoError(t, got[0].err)
	assert.Error(t, got[1].err)
}

func TestRegisterMetricsCallbacks_Transaction(t *testing.T) {
	db := setupTestDB(t)
	rec := &recorderStub{}
	require.NoError(t, RegisterMetricsCallbacks(db, rec))

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&domain.Project{Name: "a"}).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Project{Name: "b"}).Error
	})
	require.NoError(t, err)

	got := rec.snapshot()
	require.Len(t, got, 2)
	for _, q := range got {
		assert.Equal(t, "insert", q.operation)
	}
}

func TestStartDBStatsCollector(t *testing.T) {
	db := setupTestDB(t)
	rec := &recorderStub{}

	done := StartDBStatsCollector(db, rec, 10*time.Millisecond)
	defer close(done)

	assert.Eventually(t, func() bool { return rec.statsCalls() > 0 }, time.Second, 10*time.Millisecond)
}

func TestStartDBStatsCollector_Shutdown(t *testing.T) {
	db := setupTestDB(t)
	rec := &recorderStub{}

	done := StartDBStatsCollector(db, rec, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(done)
	time.Sleep(20 * time.Millisecond)

	calls := rec.statsCalls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, rec.statsCalls())
}
