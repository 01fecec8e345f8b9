package domain

// Kind names an entity kind. It is the prefix of every realtime event type.
type Kind string

const (
	KindCompany      Kind = "COMPANY"
	KindDepartment   Kind = "DEPARTMENT"
	KindTeam         Kind = "TEAM"
	KindUser         Kind = "USER"
	KindProject      Kind = "PROJECT"
	KindEpic         Kind = "EPIC"
	KindStory        Kind = "STORY"
	KindTask         Kind = "TASK"
	KindSprint       Kind = "SPRINT"
	KindBacklogItem  Kind = "BACKLOG_ITEM"
	KindComment      Kind = "COMMENT"
	KindAttachment   Kind = "ATTACHMENT"
	KindNotification Kind = "NOTIFICATION"
	KindLocation     Kind = "LOCATION"
	KindDevice       Kind = "DEVICE"
)

var allKinds = []Kind{
	KindCompany, KindDepartment, KindTeam, KindUser,
	KindProject, KindEpic, KindStory, KindTask,
	KindSprint, KindBacklogItem, KindComment, KindAttachment,
	KindNotification, KindLocation, KindDevice,
}

// Kinds returns every entity kind in a stable order
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

var plurals = map[Kind]string{
	KindCompany:      "companies",
	KindDepartment:   "departments",
	KindTeam:         "teams",
	KindUser:         "users",
	KindProject:      "projects",
	KindEpic:         "epics",
	KindStory:        "stories",
	KindTask:         "tasks",
	KindSprint:       "sprints",
	KindBacklogItem:  "backlog-items",
	KindComment:      "comments",
	KindAttachment:   "attachments",
	KindNotification: "notifications",
	KindLocation:     "locations",
	KindDevice:       "devices",
}

// Plural returns the REST collection segment for the kind ("backlog-items")
func (k Kind) Plural() string {
	return plurals[k]
}

// KindFromPlural maps a REST collection segment back to its kind
func KindFromPlural(segment string) (Kind, bool) {
	for k, p := range plurals {
		if p == segment {
			return k, true
		}
	}
	return "", false
}

// IsValid reports whether k is a known kind
func (k Kind) IsValid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Label returns a human readable singular label ("Backlog item")
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	s := string(k)
	out := make([]byte, 0, len(s))
	out = append(out, s[0])
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			c = ' '
		} else if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// terminalStatuses lists the status that marks each kind as finished
var terminalStatuses = map[Kind]string{
	KindProject: string(ProjectStatusCompleted),
	KindEpic:    string(EpicStatusDone),
	KindStory:   string(StoryStatusDone),
	KindTask:    string(TaskStatusDone),
}

// IsTerminalStatus reports whether status is the "done" value for kind.
// Kinds without a terminal status always return false.
func IsTerminalStatus(kind Kind, status string) bool {
	terminal, ok := terminalStatuses[kind]
	return ok && terminal == status
}

// HasStatusLifecycle reports whether kind carries a status whose changes are surfaced to users
func HasStatusLifecycle(kind Kind) bool {
	_, ok := terminalStatuses[kind]
	return ok
}
