package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"project-tracker-api/internal/metrics"
)

const (
	AttachmentCleanupName     = "attachment_cleanup"
	NotificationRetentionName = "notification_retention"

	runTimeout = 5 * time.Minute
)

// AttachmentCleaner removes TEMP attachments whose upload window has passed
type AttachmentCleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// NotificationPurger hard-deletes read notifications older than a cutoff
type NotificationPurger interface {
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

// CleanupJob handles cleanup of expired temporary attachments
type CleanupJob struct {
	attachments AttachmentCleaner
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewCleanupJob creates a new CleanupJob instance
func NewCleanupJob(attachments AttachmentCleaner, m *metrics.Metrics, logger *zap.Logger) *CleanupJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupJob{
		attachments: attachments,
		metrics:     m,
		logger:      logger,
	}
}

// Run executes the cleanup job. It satisfies cron.Job.
func (j *CleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	j.logger.Info("Starting cleanup job for expired temporary attachments")

	removed, err := j.attachments.CleanupExpired(ctx)
	j.metrics.RecordJobRun(AttachmentCleanupName, err)
	if err != nil {
		j.logger.Error("Cleanup job failed", zap.Int("removed", removed), zap.Error(err))
		return
	}

	j.logger.Info("Cleanup job completed", zap.Int("removed", removed))
}

// RetentionJob deletes read notifications past the retention window
type RetentionJob struct {
	notifications NotificationPurger
	retention     time.Duration
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewRetentionJob creates a job keeping read notifications for days
func NewRetentionJob(notifications NotificationPurger, days int, m *metrics.Metrics, logger *zap.Logger) *RetentionJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionJob{
		notifications: notifications,
		retention:     time.Duration(days) * 24 * time.Hour,
		metrics:       m,
		logger:        logger,
	}
}

// Run executes the retention job. It satisfies cron.Job.
func (j *RetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	purged, err := j.notifications.PurgeRead(ctx, j.retention)
	j.metrics.RecordJobRun(NotificationRetentionName, err)
	if err != nil {
		j.logger.Error("Notification retention job failed", zap.Error(err))
		return
	}

	j.logger.Info("Notification retention job completed",
		zap.Int64("purged", purged),
		zap.Duration("retention", j.retention),
	)
}
