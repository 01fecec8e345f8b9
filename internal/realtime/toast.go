package realtime

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
)

// Level is the severity of a toast
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Toast is a short user-facing notice
type Toast struct {
	Level   Level
	Title   string
	Message string
}

// GenericErrorMessage is shown when a REST call fails
const GenericErrorMessage = "Something went wrong. Please try again."

// Notifier surfaces toasts to the user
type Notifier interface {
	Notify(Toast)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// LogNotifier writes toasts to a zap logger
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(t Toast) {
	fields := []zap.Field{
		zap.String("level", t.Level.String()),
		zap.String("title", t.Title),
		zap.String("message", t.Message),
	}
	switch t.Level {
	case LevelError:
		n.Logger.Error("toast", fields...)
	case LevelWarning:
		n.Logger.Warn("toast", fields...)
	default:
		n.Logger.Info("toast", fields...)
	}
}

// ToastRecorder keeps toasts in memory
type ToastRecorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *ToastRecorder) Notify(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

// Toasts returns a copy of the recorded toasts
func (r *ToastRecorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// BuildToast summarises an event for the user
func BuildToast(kind domain.Kind, action events.Action, payload events.Payload) Toast {
	label := kind.Label()
	name := displayName(payload)

	if kind == domain.KindNotification && action == events.ActionCreated {
		title, _ := payload.String("title")
		message, _ := payload.String("message")
		if title == "" {
			title = "New notification"
		}
		return Toast{Level: LevelInfo, Title: title, Message: message}
	}

	if action == events.ActionUpdated && domain.HasStatusLifecycle(kind) {
		if status, ok := payload.String("status"); ok {
			if domain.IsTerminalStatus(kind, status) {
				return Toast{
					Level:   LevelSuccess,
					Title:   label + " completed",
					Message: subject(label, name) + " has been completed",
				}
			}
			return Toast{
				Level:   LevelInfo,
				Title:   label + " status changed",
				Message: fmt.Sprintf("%s moved to %s", subject(label, name), status),
			}
		}
	}

	switch action {
	case events.ActionCreated:
		return Toast{Level: LevelSuccess, Title: label + " created", Message: subject(label, name) + " was created"}
	case events.ActionDeleted:
		return Toast{Level: LevelWarning, Title: label + " deleted", Message: subject(label, name) + " was deleted"}
	default:
		return Toast{Level: LevelInfo, Title: label + " updated", Message: subject(label, name) + " was updated"}
	}
}

func displayName(p events.Payload) string {
	if v, ok := p.String("name"); ok {
		return v
	}
	if v, ok := p.String("title"); ok {
		return v
	}
	return ""
}

func subject(label, name string) string {
	if name == "" {
		return label
	}
	return fmt.Sprintf("%s %q", label, name)
}
