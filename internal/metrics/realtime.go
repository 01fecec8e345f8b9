package metrics

// SetWSConnections sets the number of live websocket clients
func (m *Metrics) SetWSConnections(count int) {
	m.safeExecute("SetWSConnections", func() {
		m.WSConnectionsActive.Set(float64(count))
	})
}

// RecordEventPublished counts one published realtime event
func (m *Metrics) RecordEventPublished(kind, action string) {
	m.safeExecute("RecordEventPublished", func() {
		m.EventsPublishedTotal.WithLabelValues(kind, action).Inc()
	})
}

// IncrementEventsDropped counts a delivery skipped for a slow client
func (m *Metrics) IncrementEventsDropped() {
	m.safeExecute("IncrementEventsDropped", func() {
		m.EventsDroppedTotal.Inc()
	})
}
