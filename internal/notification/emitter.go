package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
)

var (
	ErrQueueFull     = errors.New("notification queue full")
	ErrEmitterClosed = errors.New("notification emitter closed")
)

// Writer persists a single notification.
type Writer interface {
	CreateNotification(ctx context.Context, n *Notification) error
}

type EmitterConfig struct {
	QueueSize    int
	WriteTimeout time.Duration
	Logger       *slog.Logger
	// OnFailure observes every dropped notification. Failed writes report from the worker
	// goroutine; a full queue or a closed emitter reports from the goroutine calling Emit.
	// It must be safe for concurrent use.
	OnFailure func(ev Event, err error)
}

// Emitter writes notifications on a background worker. Emit never blocks and never
// reports failure to its caller: a full queue, a closed emitter or a failed write is
// logged and handed to OnFailure, and the event is dropped.
type Emitter struct {
	writer Writer
	cfg    EmitterConfig
	queue  chan Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

func NewEmitter(w Writer, cfg EmitterConfig) *Emitter {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	e := &Emitter{
		writer: w,
		cfg:    cfg,
		queue:  make(chan Event, cfg.QueueSize),
		done:   make(chan struct{}),
	}

	go e.run()

	return e
}

func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.fail(ev, ErrEmitterClosed)
		return
	}

	select {
	case e.queue <- ev:
	default:
		e.fail(ev, ErrQueueFull)
	}
}

// Close stops accepting events and waits for queued ones to be written or for ctx to end.
func (e *Emitter) Close(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
	e.mu.Unlock()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Emitter) run() {
	defer close(e.done)

	for ev := range e.queue {
		e.write(ev)
	}
}

func (e *Emitter) write(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.WriteTimeout)
	defer cancel()

	n := &Notification{
		OwnerID:  ev.OwnerID,
		Type:     ev.Type,
		Title:    ev.Title,
		Message:  ev.Message,
		Metadata: ev.Metadata,
	}

	if err := e.writer.CreateNotification(ctx, n); err != nil {
		e.fail(ev, &apperr.NotificationWriteError{Type: string(ev.Type), Err: err})
	}
}

func (e *Emitter) fail(ev Event, err error) {
	e.cfg.Logger.Error("failed to create notification",
		"owner_id", ev.OwnerID,
		"type", ev.Type,
		"error", err,
	)

	if e.cfg.OnFailure != nil {
		e.cfg.OnFailure(ev, err)
	}
}
