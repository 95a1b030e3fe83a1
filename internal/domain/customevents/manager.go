// Package customevents implements create, update, delete and list over the
// custom-event store. Every mutation is one load, mutate, save cycle and
// cycles never interleave within a process.
package customevents

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/agenda/internal/adapters/repository"
	"github.com/okian/agenda/internal/domain/category"
	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
	"github.com/teambition/rrule-go"
)

// Manager serializes access to a repository.Store.
type Manager struct {
	mu     sync.Mutex
	store  repository.Store
	newID  func() string
	logger logger.Logger
}

// New returns a Manager over store.
func New(store repository.Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.Get().Named("custom-events")
	}
	return m
}

// List returns the stored collection in stored order. Records stored
// without an id are given one, which is persisted before they are returned.
func (m *Manager) List(ctx context.Context) ([]model.CustomEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events, err := m.load(ctx)
	if err != nil && events != nil {
		m.logger.Warn(ctx, "assigned ids could not be persisted", logger.Error(err))
		return events, nil
	}
	return events, err
}

// Create validates ev, assigns an id when ev has none, fills default colors
// from the category and appends it. The stored event is returned.
func (m *Manager) Create(ctx context.Context, ev model.CustomEvent) (model.CustomEvent, error) {
	ev.ID = strings.TrimSpace(ev.ID)
	if err := Validate(ev); err != nil {
		return model.CustomEvent{}, err
	}
	ev.BackgroundColor, ev.BorderColor = category.Colors(ev.Category, ev.BackgroundColor, ev.BorderColor)

	m.mu.Lock()
	defer m.mu.Unlock()

	events, err := m.load(ctx)
	if err != nil {
		return model.CustomEvent{}, err
	}

	if ev.ID == "" {
		ev.ID = m.freshID(events)
	} else if indexOf(events, ev.ID) >= 0 {
		return model.CustomEvent{}, fmt.Errorf("%w: %s", ErrDuplicateID, ev.ID)
	}

	events = append(events, ev)
	if err := m.store.Save(ctx, events); err != nil {
		return model.CustomEvent{}, err
	}
	m.logger.Info(ctx, "custom event created", logger.String("id", ev.ID), logger.String("start", ev.Start))
	return ev, nil
}

// Update merges patch over the event with the given id. Fields absent from
// the patch keep their stored value.
func (m *Manager) Update(ctx context.Context, id string, patch model.EventPatch) (model.CustomEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.CustomEvent{}, fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	events, err := m.load(ctx)
	if err != nil {
		return model.CustomEvent{}, err
	}
	idx := indexOf(events, id)
	if idx < 0 {
		return model.CustomEvent{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	merged := patch.Apply(events[idx])
	if err := Validate(merged); err != nil {
		return model.CustomEvent{}, err
	}

	events[idx] = merged
	if err := m.store.Save(ctx, events); err != nil {
		return model.CustomEvent{}, err
	}
	m.logger.Info(ctx, "custom event updated", logger.String("id", id))
	return merged, nil
}

// Delete removes the event with the given id. Deleting an unknown id is a
// no-op and not an error.
func (m *Manager) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	events, err := m.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(events, id)
	if idx < 0 {
		m.logger.Debug(ctx, "delete of unknown custom event", logger.String("id", id))
		return nil
	}

	events = append(events[:idx], events[idx+1:]...)
	if err := m.store.Save(ctx, events); err != nil {
		return err
	}
	m.logger.Info(ctx, "custom event deleted", logger.String("id", id))
	return nil
}

// load reads the collection and gives every record without an id a fresh
// one. When ids were assigned the collection is saved at once, so the ids
// are stable across requests. On a failed save the events are still
// returned with the error.
func (m *Manager) load(ctx context.Context) ([]model.CustomEvent, error) {
	events, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	assigned := 0
	for i := range events {
		if strings.TrimSpace(events[i].ID) == "" {
			events[i].ID = m.freshID(events)
			assigned++
		}
	}
	if assigned == 0 {
		return events, nil
	}
	if err := m.store.Save(ctx, events); err != nil {
		return events, err
	}
	m.logger.Info(ctx, "assigned ids to stored custom events", logger.Int("count", assigned))
	return events, nil
}

func (m *Manager) freshID(events []model.CustomEvent) string {
	for {
		id := m.newID()
		if id != "" && indexOf(events, id) < 0 {
			return id
		}
	}
}

func indexOf(events []model.CustomEvent, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the fields a stored event must satisfy.
func Validate(ev model.CustomEvent) error {
	if strings.TrimSpace(ev.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidEvent)
	}
	if strings.TrimSpace(ev.Start) == "" {
		return fmt.Errorf("%w: missing start", ErrInvalidEvent)
	}
	start, err := model.ParseTime(ev.Start)
	if err != nil {
		return fmt.Errorf("%w: start: %w", ErrInvalidEvent, err)
	}
	if ev.End != "" {
		end, err := model.ParseTime(ev.End)
		if err != nil {
			return fmt.Errorf("%w: end: %w", ErrInvalidEvent, err)
		}
		if end.Before(start) {
			return fmt.Errorf("%w: end before start", ErrInvalidEvent)
		}
	}
	if err := category.Validate(ev.Category); err != nil {
		return fmt.Errorf("%w: %w: %s", ErrInvalidEvent, err, ev.Category)
	}
	if ev.RRule != "" {
		if _, err := rrule.StrToRRule(ev.RRule); err != nil {
			return fmt.Errorf("%w: rrule: %w", ErrInvalidEvent, err)
		}
	}
	return nil
}
