package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/repository"
	"project-tracker-api/internal/response"
)

func TestTaskService_DenormalisesAncestors(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	p := env.project(t, "Apollo")

	epic, err := env.svc.Epics.Create(ctx, uuid.Nil, &domain.Epic{ProjectID: p.ID, Title: "Launch", Status: domain.EpicStatusTodo})
	require.NoError(t, err)
	story, err := env.svc.Stories.Create(ctx, uuid.Nil, &domain.Story{EpicID: ptr(epic.ID), Title: "Countdown", Status: domain.StoryStatusTodo})
	require.NoError(t, err)
	assert.Equal(t, p.ID, story.ProjectID)

	otherEpic, err := env.svc.Epics.Create(ctx, uuid.Nil, &domain.Epic{ProjectID: p.ID, Title: "Other"})
	require.NoError(t, err)

	task := env.task(t, &domain.Task{StoryID: ptr(story.ID), EpicID: ptr(otherEpic.ID), Title: "Fuel"})
	assert.Equal(t, p.ID, task.ProjectID)
	require.NotNil(t, task.EpicID)
	assert.Equal(t, epic.ID, *task.EpicID, "story's epic wins")

	msg, ok := env.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, events.Type("TASK_CREATED"), msg.Type)
	assert.Equal(t, p.ID.String(), msg.Payload["projectId"])
	assert.Equal(t, epic.ID.String(), msg.Payload["epicId"])
	assert.Equal(t, story.ID.String(), msg.Payload["storyId"])
}

func TestTaskService_MoveCarriesPreviousParents(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	p := env.project(t, "Apollo")

	epicA, err := env.svc.Epics.Create(ctx, uuid.Nil, &domain.Epic{ProjectID: p.ID, Title: "A", Status: domain.EpicStatusTodo})
	require.NoError(t, err)
	epicB, err := env.svc.Epics.Create(ctx, uuid.Nil, &domain.Epic{ProjectID: p.ID, Title: "B", Status: domain.EpicStatusTodo})
	require.NoError(t, err)
	storyA, err := env.svc.Stories.Create(ctx, uuid.Nil, &domain.Story{EpicID: ptr(epicA.ID), Title: "in A", Status: domain.StoryStatusTodo})
	require.NoError(t, err)
	storyB, err := env.svc.Stories.Create(ctx, uuid.Nil, &domain.Story{EpicID: ptr(epicB.ID), Title: "in B", Status: domain.StoryStatusTodo})
	require.NoError(t, err)

	task := env.task(t, &domain.Task{StoryID: ptr(storyA.ID), Title: "Fuel"})

	lastTaskUpdate := func(t *testing.T) events.Payload {
		t.Helper()
		msg, ok := env.recorder.Last()
		require.True(t, ok)
		require.Equal(t, events.Type("TASK_UPDATED"), msg.Type)
		return msg.Payload
	}

	t.Run("moved to a story in another epic", func(t *testing.T) {
		_, err := env.svc.Tasks.Update(ctx, uuid.Nil, task.ID, func(t *domain.Task) {
			t.StoryID = ptr(storyB.ID)
		})
		require.NoError(t, err)

		payload := lastTaskUpdate(t)
		assert.Equal(t, storyB.ID.String(), payload["storyId"])
		assert.Equal(t, storyA.ID.String(), payload["previousStoryId"])
		assert.Equal(t, epicB.ID.String(), payload["epicId"])
		assert.Equal(t, epicA.ID.String(), payload["previousEpicId"])
		assert.NotContains(t, payload, "previousProjectId")
	})

	t.Run("detached from its story", func(t *testing.T) {
		_, err := env.svc.Tasks.Update(ctx, uuid.Nil, task.ID, func(t *domain.Task) {
			t.StoryID = nil
		})
		require.NoError(t, err)

		payload := lastTaskUpdate(t)
		assert.NotContains(t, payload, "storyId")
		assert.Equal(t, storyB.ID.String(), payload["previousStoryId"])
		assert.Equal(t, epicB.ID.String(), payload["epicId"])
		assert.NotContains(t, payload, "previousEpicId")
	})

	t.Run("title edit moves nothing", func(t *testing.T) {
		_, err := env.svc.Tasks.Update(ctx, uuid.Nil, task.ID, func(t *domain.Task) {
			t.Title = "Refuel"
		})
		require.NoError(t, err)

		for field := range lastTaskUpdate(t) {
			assert.NotContains(t, field, "previous")
		}
	})
}

func TestTaskService_RejectsBadParents(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	p1 := env.project(t, "One")
	p2 := env.project(t, "Two")

	epic, err := env.svc.Epics.Create(ctx, uuid.Nil, &domain.Epic{ProjectID: p1.ID, Title: "E"})
	require.NoError(t, err)
	sprint, err := env.svc.Sprints.Create(ctx, uuid.Nil, &domain.Sprint{ProjectID: p2.ID, Name: "S1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		task *domain.Task
	}{
		{"missing project", &domain.Task{ProjectID: uuid.New(), Title: "x"}},
		{"no parent at all", &domain.Task{Title: "x"}},
		{"epic in another project", &domain.Task{ProjectID: p2.ID, EpicID: ptr(epic.ID), Title: "x"}},
		{"sprint in another project", &domain.Task{ProjectID: p1.ID, SprintID: ptr(sprint.ID), Title: "x"}},
		{"unknown assignee", &domain.Task{ProjectID: p1.ID, AssigneeID: ptr(uuid.New()), Title: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Tasks.Create(ctx, uuid.Nil, tt.task)
			assert.Equal(t, response.ErrCodeValidation, appCode(err))
		})
	}
}

func TestTaskService_AssignmentNotifies(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	p := env.project(t, "Apollo")
	actor := env.user(t, "lead@example.com")
	assignee := env.user(t, "dev@example.com")

	task := env.task(t, &domain.Task{ProjectID: p.ID, Title: "Fuel"})
	env.recorder.Reset()

	_, err := env.svc.Tasks.Update(ctx, actor.ID, task.ID, func(t *domain.Task) {
		t.AssigneeID = ptr(assignee.ID)
	})
	require.NoError(t, err)

	assert.Equal(t, []events.Type{"TASK_UPDATED", "NOTIFICATION_CREATED"}, env.recorder.Types())

	list, total, err := env.svc.Notifications.List(ctx, repository.ListOptions{
		Filters: map[string]interface{}{"user_id": assignee.ID},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, domain.NotificationTaskAssigned, list[0].Type)
	assert.Equal(t, domain.KindTask, list[0].ResourceType)
	assert.Equal(t, task.ID, *list[0].ResourceID)

	t.Run("self assignment is silent", func(t *testing.T) {
		env.recorder.Reset()
		_, err := env.svc.Tasks.Update(ctx, actor.ID, task.ID, func(t *domain.Task) {
			t.AssigneeID = ptr(actor.ID)
		})
		require.NoError(t, err)
		assert.Equal(t, []events.Type{"TASK_UPDATED"}, env.recorder.Types())
	})

	t.Run("same assignee is silent", func(t *testing.T) {
		env.recorder.Reset()
		_, err := env.svc.Tasks.Update(ctx, assignee.ID, task.ID, func(t *domain.Task) {
			t.Title = "Fuel up"
		})
		require.NoError(t, err)
		assert.Equal(t, []events.Type{"TASK_UPDATED"}, env.recorder.Types())
	})
}

func TestTaskService_Metrics(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	p := env.project(t, "Apollo")

	task := env.task(t, &domain.Task{ProjectID: p.ID, Title: "Fuel"})
	_, err := env.svc.Tasks.Update(ctx, uuid.Nil, task.ID, func(t *domain.Task) { t.Status = domain.TaskStatusDone })
	require.NoError(t, err)
	_, err = env.svc.Tasks.Update(ctx, uuid.Nil, task.ID, func(t *domain.Task) { t.Title = "Fueled" })
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.ProjectCreatedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.TaskCreatedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.TaskCompletedTotal))
}

func TestProjectService_RollUp(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	p := env.project(t, "Apollo")
	epic, err := env.svc.Epics.Create(ctx, uuid.Nil, &domain.Epic{ProjectID: p.ID, Title: "E"})
	require.NoError(t, err)

	env.task(t, &domain.Task{ProjectID: p.ID, EpicID: ptr(epic.ID), Title: "a", Status: domain.TaskStatusDone})
	env.task(t, &domain.Task{ProjectID: p.ID, EpicID: ptr(epic.ID), Title: "b"})
	env.task(t, &domain.Task{ProjectID: p.ID, Title: "c", Status: domain.TaskStatusDone})
	env.task(t, &domain.Task{ProjectID: p.ID, Title: "d"})

	got, err := env.svc.Projects.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, got.TaskCount)
	assert.EqualValues(t, 2, got.DoneTaskCount)
	assert.Equal(t, 50, got.Progress)

	epics, _, err := env.svc.Epics.List(ctx, repository.ListOptions{Filters: map[string]interface{}{"project_id": p.ID}})
	require.NoError(t, err)
	require.Len(t, epics, 1)
	assert.EqualValues(t, 2, epics[0].TaskCount)
	assert.Equal(t, 50, epics[0].Progress)
}

func TestProjectService_RollUpProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("progress is the floor of done over total", prop.ForAll(
		func(done []bool) bool {
			ctx := context.Background()
			env := setupServices(t)
			p := env.project(t, "P")

			var want int64
			for i, d := range done {
				status := domain.TaskStatusInProgress
				if d {
					status = domain.TaskStatusDone
					want++
				}
				env.task(t, &domain.Task{ProjectID: p.ID, Title: string(rune('a' + i%26)), Status: status})
			}

			got, err := env.svc.Projects.Get(ctx, p.ID)
			if err != nil {
				return false
			}
			return got.TaskCount == int64(len(done)) &&
				got.DoneTaskCount == want &&
				got.Progress == domain.Progress(want, int64(len(done)))
		},
		gen.SliceOfN(8, gen.Bool()),
	))

	properties.TestingRun(t)
}

func TestSprintAndBacklog(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	p := env.project(t, "Apollo")
	other := env.project(t, "Gemini")

	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	_, err := env.svc.Sprints.Create(ctx, uuid.Nil, &domain.Sprint{ProjectID: p.ID, Name: "bad", StartDate: &start, EndDate: &end})
	assert.Equal(t, response.ErrCodeValidation, appCode(err))

	sprint, err := env.svc.Sprints.Create(ctx, uuid.Nil, &domain.Sprint{ProjectID: p.ID, Name: "S1"})
	require.NoError(t, err)

	item, err := env.svc.BacklogItems.Create(ctx, uuid.Nil, &domain.BacklogItem{ProjectID: p.ID, SprintID: ptr(sprint.ID), Title: "Spike", Rank: 2})
	require.NoError(t, err)

	msg, ok := env.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, events.Type("BACKLOG_ITEM_CREATED"), msg.Type)
	assert.Equal(t, sprint.ID.String(), msg.Payload["sprintId"])
	assert.Equal(t, item.ID.String(), msg.Payload["id"])

	_, err = env.svc.BacklogItems.Create(ctx, uuid.Nil, &domain.BacklogItem{ProjectID: other.ID, SprintID: ptr(sprint.ID), Title: "Cross"})
	assert.Equal(t, response.ErrCodeValidation, appCode(err))
}
