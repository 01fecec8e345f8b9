package realtime

import (
	"fmt"

	"go.uber.org/zap"

	"project-tracker-api/internal/events"
)

// Op is a cache operation
type Op string

const (
	OpInvalidate Op = "invalidate"
	OpEvict      Op = "evict"
)

// CacheAction is one planned cache operation
type CacheAction struct {
	Op  Op
	Key string
}

// Router turns realtime events into cache operations and toasts.
// Handle is called from a single reader goroutine, one frame at a time.
type Router struct {
	cache    *QueryCache
	targets  Targets
	notifier Notifier
	logger   *zap.Logger
}

// NewRouter creates a router. notifier may be nil.
func NewRouter(cache *QueryCache, targets Targets, notifier Notifier, logger *zap.Logger) *Router {
	if notifier == nil {
		notifier = NotifierFunc(func(Toast) {})
	}
	return &Router{
		cache:    cache,
		targets:  targets,
		notifier: notifier,
		logger:   logger,
	}
}

// Plan returns the cache operations for msg without applying them
func (r *Router) Plan(msg events.Message) ([]CacheAction, error) {
	kind, action, err := events.ParseType(msg.Type)
	if err != nil {
		return nil, err
	}
	target, ok := r.targets[kind]
	if !ok {
		return nil, fmt.Errorf("no cache target for %s", kind)
	}

	plan := []CacheAction{{Op: OpInvalidate, Key: target.Collection}}
	if id, ok := msg.Payload.String("id"); ok {
		op := OpInvalidate
		if action == events.ActionDeleted {
			op = OpEvict
		}
		plan = append(plan, CacheAction{Op: op, Key: r.targets.ResourcePath(kind, id)})
	}

	for _, a := range target.Ancestors {
		var ids []string
		if id, ok := msg.Payload.String(a.Field); ok {
			ids = append(ids, id)
		}
		// a moved child also changes the parent it left
		if a.Previous != "" {
			if id, ok := msg.Payload.String(a.Previous); ok {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		plan = append(plan, CacheAction{Op: OpInvalidate, Key: r.targets.CollectionPath(a.Kind)})
		for _, id := range ids {
			plan = append(plan, CacheAction{Op: OpInvalidate, Key: r.targets.ResourcePath(a.Kind, id)})
		}
	}
	return plan, nil
}

// Handle decodes one frame and applies it. Malformed frames are logged and dropped.
func (r *Router) Handle(frame []byte) {
	msg, err := events.Decode(frame)
	if err != nil {
		r.logger.Warn("Dropping malformed realtime frame",
			zap.Int("bytes", len(frame)),
			zap.Error(err))
		return
	}
	r.Dispatch(msg)
}

// Dispatch applies an already decoded message
func (r *Router) Dispatch(msg events.Message) {
	plan, err := r.Plan(msg)
	if err != nil {
		r.logger.Warn("Dropping unroutable realtime event",
			zap.String("type", string(msg.Type)),
			zap.Error(err))
		return
	}

	for _, a := range plan {
		switch a.Op {
		case OpEvict:
			r.cache.Remove(a.Key)
		default:
			r.cache.Invalidate(a.Key)
		}
	}

	kind, action, _ := events.ParseType(msg.Type)
	r.logger.Debug("Applied realtime event",
		zap.String("type", string(msg.Type)),
		zap.Int("cache_actions", len(plan)))
	r.notifier.Notify(BuildToast(kind, action, msg.Payload))
}
