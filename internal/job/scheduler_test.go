package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_Add(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	noop := cron.FuncJob(func() {})

	require.NoError(t, s.Add(AttachmentCleanupName, "0 * * * *", noop))
	require.NoError(t, s.Add(NotificationRetentionName, "", noop))
	assert.Equal(t, 1, s.Len(), "an empty spec disables the job")

	err := s.Add("broken", "every tuesday", noop)
	assert.ErrorContains(t, err, "broken")
	assert.Equal(t, 1, s.Len())
}

func TestScheduler_RunsAndStops(t *testing.T) {
	s := NewScheduler(nil)
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("tick", "@every 1s", cron.FuncJob(func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})))

	s.Start()
	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestScheduler_RecoversPanics(t *testing.T) {
	s := NewScheduler(nil)
	done := make(chan struct{})
	var once sync.Once
	require.NoError(t, s.Add("panics", "@every 1s", cron.FuncJob(func() {
		defer once.Do(func() { close(done) })
		panic("boom")
	})))

	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
