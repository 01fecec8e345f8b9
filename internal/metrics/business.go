package metrics

// IncrementProjectCreated increments project creation counter
func (m *Metrics) IncrementProjectCreated() {
	m.safeExecute("IncrementProjectCreated", func() {
		m.ProjectCreatedTotal.Inc()
	})
}

// IncrementTaskCreated increments task creation counter
func (m *Metrics) IncrementTaskCreated() {
	m.safeExecute("IncrementTaskCreated", func() {
		m.TaskCreatedTotal.Inc()
	})
}

// IncrementTaskCompleted increments the counter of tasks reaching DONE
func (m *Metrics) IncrementTaskCompleted() {
	m.safeExecute("IncrementTaskCompleted", func() {
		m.TaskCompletedTotal.Inc()
	})
}

// SetProjectsTotal sets total projects gauge
func (m *Metrics) SetProjectsTotal(count int64) {
	m.safeExecute("SetProjectsTotal", func() {
		m.ProjectsTotal.Set(float64(count))
	})
}

// SetTasksTotal sets the task gauge for one status
func (m *Metrics) SetTasksTotal(status string, count int64) {
	m.safeExecute("SetTasksTotal", func() {
		m.TasksTotal.WithLabelValues(status).Set(float64(count))
	})
}

// RecordJobRun counts one run of a background job
func (m *Metrics) RecordJobRun(job string, err error) {
	m.safeExecute("RecordJobRun", func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.JobRunsTotal.WithLabelValues(job, status).Inc()
	})
}
