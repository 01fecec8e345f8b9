package metrics

import (
	"database/sql"
	"strings"
	"time"
)

// UpdateDBStats copies a pool snapshot into the gauges. Wait count and wait
// duration are cumulative in sql.DBStats, so only the growth since the previous
// snapshot is added to the counters. A snapshot below the previous one means
// the pool was reopened and is counted from zero.
func (m *Metrics) UpdateDBStats(statsInterface interface{}) {
	m.safeExecute("UpdateDBStats", func() {
		stats, ok := statsInterface.(sql.DBStats)
		if !ok {
			return
		}
		m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
		m.DBConnectionsInUse.Set(float64(stats.InUse))
		m.DBConnectionsIdle.Set(float64(stats.Idle))
		m.DBConnectionsMax.Set(float64(stats.MaxOpenConnections))

		m.dbStatsMu.Lock()
		waits := stats.WaitCount - m.lastWaitCount
		if waits < 0 {
			waits = stats.WaitCount
		}
		waited := stats.WaitDuration - m.lastWaitDuration
		if waited < 0 {
			waited = stats.WaitDuration
		}
		m.lastWaitCount = stats.WaitCount
		m.lastWaitDuration = stats.WaitDuration
		m.dbStatsMu.Unlock()

		m.DBConnectionWaitTotal.Add(float64(waits))
		m.DBConnectionWaitDuration.Add(waited.Seconds())
	})
}

// RecordDBQuery observes one GORM statement, labelled by lowercased operation
// and table
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.safeExecute("RecordDBQuery", func() {
		operation = strings.ToLower(operation)
		m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
		if err != nil {
			m.DBQueryErrors.WithLabelValues(operation, table).Inc()
		}
	})
}
