package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/agenda/internal/adapters/mq/queue"
	"github.com/okian/agenda/internal/adapters/mq/worker"
	"github.com/okian/agenda/internal/domain/category"
	"github.com/okian/agenda/internal/domain/customevents"
	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
	"github.com/okian/agenda/pkg/metrics"
)

const defaultQueueCapacity = 256

// ErrUnknownEvent is returned when mutating an id absent from the view.
var ErrUnknownEvent = errors.New("event not in calendar")

// Remote is the server side of the custom-event store.
type Remote interface {
	List(ctx context.Context) ([]model.CustomEvent, error)
	Create(ctx context.Context, ev model.CustomEvent) (model.CustomEvent, error)
	Update(ctx context.Context, id string, patch model.EventPatch) (model.CustomEvent, error)
	Delete(ctx context.Context, id string) error
}

// Calendar is a client view of the custom events. Mutations apply to the
// view at once and reach the server in order on a background worker.
type Calendar struct {
	remote        Remote
	notifier      Notifier
	newID         func() string
	queueCapacity int
	logger        logger.Logger

	queue  *queue.InMemoryQueue
	worker *worker.InMemoryWorker

	mu      sync.Mutex
	state   State
	changed chan struct{}
}

// New returns a Calendar backed by remote. Call Start before mutating.
func New(remote Remote, opts ...Option) *Calendar {
	c := &Calendar{
		remote:        remote,
		newID:         uuid.NewString,
		queueCapacity: defaultQueueCapacity,
		changed:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("calendar")
	}
	if c.notifier == nil {
		c.notifier = NotifierFunc(func(ctx context.Context, r Rejection) {
			c.logger.Warn(ctx, "change was not saved",
				logger.String("kind", string(r.Mutation.Kind)),
				logger.String("event", r.Mutation.EventID),
				logger.Error(r.Err))
		})
	}
	c.queue = queue.NewInMemoryQueue(queue.WithCapacity(c.queueCapacity))
	c.worker = worker.NewInMemoryWorker(c.queue, worker.DispatcherFunc(c.dispatch),
		worker.WithName("calendar-dispatch"), worker.WithLogger(c.logger))
	return c
}

// Start runs the dispatch worker until ctx ends or Close is called.
func (c *Calendar) Start(ctx context.Context) {
	go c.worker.Run(ctx)
}

// Close stops accepting mutations and waits for queued ones to be sent.
func (c *Calendar) Close(ctx context.Context) error {
	_ = c.queue.Close()
	select {
	case <-c.worker.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load reads the collection from the server.
func (c *Calendar) Load(ctx context.Context) error {
	events, err := c.remote.List(ctx)
	if err != nil {
		return fmt.Errorf("load calendar: %w", err)
	}
	c.reduce(Loaded{Events: events})
	return nil
}

// Events returns the current view.
func (c *Calendar) Events() []model.CustomEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.state.Events)
}

// Pending returns the number of mutations awaiting the server.
func (c *Calendar) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.state.Pending)
}

// Create adds ev to the view and queues it for the server. The returned
// event carries the id it will be stored under.
func (c *Calendar) Create(ctx context.Context, ev model.CustomEvent) (model.CustomEvent, error) {
	ev.ID = strings.TrimSpace(ev.ID)
	if ev.ID == "" {
		ev.ID = c.newID()
	}
	if err := customevents.Validate(ev); err != nil {
		return model.CustomEvent{}, err
	}
	ev.BackgroundColor, ev.BorderColor = category.Colors(ev.Category, ev.BackgroundColor, ev.BorderColor)

	m := model.Mutation{Kind: model.MutationCreate, EventID: ev.ID, Event: ev}
	if err := c.submit(ctx, m); err != nil {
		return model.CustomEvent{}, err
	}
	return ev, nil
}

// Update merges patch into the event with id in the view and queues it.
func (c *Calendar) Update(ctx context.Context, id string, patch model.EventPatch) error {
	c.mu.Lock()
	idx := indexOf(c.state.Events, id)
	var current model.CustomEvent
	if idx >= 0 {
		current = c.state.Events[idx]
	}
	c.mu.Unlock()
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, id)
	}
	if err := customevents.Validate(patch.Apply(current)); err != nil {
		return err
	}
	return c.submit(ctx, model.Mutation{Kind: model.MutationUpdate, EventID: id, Patch: patch})
}

// Move sets new bounds after a drag. It returns as soon as the view shows
// the new position; the server is updated in the background.
func (c *Calendar) Move(ctx context.Context, id, start, end string) error {
	patch := model.EventPatch{Start: &start}
	if end != "" {
		patch.End = &end
	}
	return c.Update(ctx, id, patch)
}

// Resize sets a new end after a resize.
func (c *Calendar) Resize(ctx context.Context, id, end string) error {
	return c.Update(ctx, id, model.EventPatch{End: &end})
}

// Delete removes the event from the view and queues the removal.
func (c *Calendar) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: missing id", customevents.ErrInvalidEvent)
	}
	return c.submit(ctx, model.Mutation{Kind: model.MutationDelete, EventID: id})
}

// Flush waits until no mutation is pending.
func (c *Calendar) Flush(ctx context.Context) error {
	for {
		c.mu.Lock()
		n := len(c.state.Pending)
		ch := c.changed
		c.mu.Unlock()
		if n == 0 {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Calendar) submit(ctx context.Context, m model.Mutation) error {
	m.ID = c.newID()
	m.EnqueuedAt = time.Now()
	c.reduce(Applied{Mutation: m})

	if err := c.queue.Enqueue(ctx, m); err != nil {
		c.reject(ctx, m, err)
		return fmt.Errorf("queue %s: %w", m.Kind, err)
	}
	return nil
}

func (c *Calendar) dispatch(ctx context.Context, m model.Mutation) error {
	var (
		echo *model.CustomEvent
		err  error
	)
	switch m.Kind {
	case model.MutationCreate:
		var ev model.CustomEvent
		if ev, err = c.remote.Create(ctx, m.Event); err == nil {
			echo = &ev
		}
	case model.MutationUpdate:
		var ev model.CustomEvent
		if ev, err = c.remote.Update(ctx, m.EventID, m.Patch); err == nil {
			echo = &ev
		}
	case model.MutationDelete:
		err = c.remote.Delete(ctx, m.EventID)
	default:
		err = fmt.Errorf("unknown mutation kind %q", m.Kind)
	}

	if err != nil {
		c.reject(ctx, m, err)
		return err
	}
	c.reduce(Confirmed{MutationID: m.ID, Echo: echo})
	metrics.RecordMutation(string(m.Kind), "confirmed")
	return nil
}

func (c *Calendar) reject(ctx context.Context, m model.Mutation, err error) {
	c.reduce(Rejected{MutationID: m.ID, Err: err})
	metrics.RecordMutation(string(m.Kind), "rejected")
	c.notifier.Notify(ctx, Rejection{Mutation: m, Err: err})
}

func (c *Calendar) reduce(a Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a)
	metrics.UpdatePendingMutations(len(c.state.Pending))
	close(c.changed)
	c.changed = make(chan struct{})
}
