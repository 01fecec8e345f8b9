package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalStatus(t *testing.T) {
	tests := []struct {
		kind   Kind
		status string
		want   bool
	}{
		{KindProject, "COMPLETED", true},
		{KindProject, "DONE", false},
		{KindProject, "ACTIVE", false},
		{KindEpic, "DONE", true},
		{KindEpic, "IN_PROGRESS", false},
		{KindStory, "DONE", true},
		{KindStory, "IN_REVIEW", false},
		{KindTask, "DONE", true},
		{KindTask, "BLOCKED", false},
		{KindSprint, "COMPLETED", false},
		{KindDevice, "RETIRED", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"_"+tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTerminalStatus(tt.kind, tt.status))
		})
	}
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 15)

	seen := map[Kind]bool{}
	for _, k := range kinds {
		assert.True(t, k.IsValid())
		assert.False(t, seen[k], "duplicate kind %s", k)
		seen[k] = true
	}
	assert.False(t, Kind("WIDGET").IsValid())

	for _, k := range kinds {
		assert.NotEmpty(t, k.Plural(), k)
	}
	assert.Equal(t, "backlog-items", KindBacklogItem.Plural())
	assert.Equal(t, "stories", KindStory.Plural())

	for _, k := range kinds {
		back, ok := KindFromPlural(k.Plural())
		assert.True(t, ok)
		assert.Equal(t, k, back)
	}
	_, ok := KindFromPlural("widgets")
	assert.False(t, ok)

	kinds[0] = "MUTATED"
	assert.Equal(t, KindCompany, Kinds()[0])
}

func TestKind_Label(t *testing.T) {
	assert.Equal(t, "Project", KindProject.Label())
	assert.Equal(t, "Backlog item", KindBacklogItem.Label())
	assert.Equal(t, "Notification", KindNotification.Label())
	assert.Equal(t, "", Kind("").Label())
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress(0, 0))
	assert.Equal(t, 0, Progress(0, 4))
	assert.Equal(t, 33, Progress(1, 3))
	assert.Equal(t, 100, Progress(4, 4))

	var a Aggregates
	a.SetCounts(4, 1)
	assert.Equal(t, int64(4), a.TaskCount)
	assert.Equal(t, int64(1), a.DoneTaskCount)
	assert.Equal(t, 25, a.Progress)
}

func TestHasStatusLifecycle(t *testing.T) {
	assert.True(t, HasStatusLifecycle(KindTask))
	assert.False(t, HasStatusLifecycle(KindSprint))
	assert.True(t, IsAttachable(KindComment))
	assert.False(t, IsAttachable(KindDevice))
}
