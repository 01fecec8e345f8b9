package realtime

import (
	"strings"

	"project-tracker-api/internal/domain"
)

// Ancestor names a parent kind, the payload field carrying its id and the
// field carrying the id it had before a move
type Ancestor struct {
	Kind     domain.Kind
	Field    string
	Previous string
}

// Target describes the cache reads affected by events of one kind
type Target struct {
	Collection string
	Ancestors  []Ancestor
}

// Targets is the dispatch table from entity kind to cache targets
type Targets map[domain.Kind]Target

// ancestry lists the parents whose derived fields depend on a child
var ancestry = map[domain.Kind][]Ancestor{
	domain.KindEpic: {
		{Kind: domain.KindProject, Field: "projectId", Previous: "previousProjectId"},
	},
	domain.KindStory: {
		{Kind: domain.KindEpic, Field: "epicId", Previous: "previousEpicId"},
		{Kind: domain.KindProject, Field: "projectId", Previous: "previousProjectId"},
	},
	domain.KindTask: {
		{Kind: domain.KindStory, Field: "storyId", Previous: "previousStoryId"},
		{Kind: domain.KindEpic, Field: "epicId", Previous: "previousEpicId"},
		{Kind: domain.KindProject, Field: "projectId", Previous: "previousProjectId"},
	},
	domain.KindComment: {
		{Kind: domain.KindTask, Field: "taskId", Previous: "previousTaskId"},
	},
	domain.KindBacklogItem: {
		{Kind: domain.KindSprint, Field: "sprintId", Previous: "previousSprintId"},
		{Kind: domain.KindProject, Field: "projectId", Previous: "previousProjectId"},
	},
}

// DefaultTargets builds the table for every kind under basePath ("/api")
func DefaultTargets(basePath string) Targets {
	base := strings.TrimRight(basePath, "/")
	t := make(Targets, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		t[kind] = Target{
			Collection: base + "/" + kind.Plural(),
			Ancestors:  ancestry[kind],
		}
	}
	return t
}

// CollectionPath returns the collection key for kind
func (t Targets) CollectionPath(kind domain.Kind) string {
	return t[kind].Collection
}

// ResourcePath returns the key of one resource of kind
func (t Targets) ResourcePath(kind domain.Kind, id string) string {
	return t[kind].Collection + "/" + id
}
