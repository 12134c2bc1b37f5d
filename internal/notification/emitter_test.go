package notification_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
)

type recordingWriter struct {
	mu      sync.Mutex
	written []*notification.Notification
	err     error
	block   chan struct{}
}

func (w *recordingWriter) CreateNotification(_ context.Context, n *notification.Notification) error {
	if w.block != nil {
		<-w.block
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}

	n.ID = uuid.New()
	w.written = append(w.written, n)

	return nil
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.written)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmitter_WritesQueuedEvents(t *testing.T) {
	w := &recordingWriter{}
	e := notification.NewEmitter(w, notification.EmitterConfig{Logger: quietLogger()})

	owner := uuid.New()
	for i := 0; i < 3; i++ {
		e.Emit(notification.PocketCreated(owner, notification.PocketRef{ID: uuid.New(), Name: "Main"}))
	}

	require.NoError(t, e.Close(context.Background()))
	assert.Equal(t, 3, w.count())
	assert.Equal(t, notification.TypePocketCreated, w.written[0].Type)
	assert.Equal(t, owner, w.written[0].OwnerID)
}

func TestEmitter_SwallowsWriteFailure(t *testing.T) {
	w := &recordingWriter{err: errors.New("db down")}

	var (
		mu     sync.Mutex
		failed []error
	)

	e := notification.NewEmitter(w, notification.EmitterConfig{
		Logger: quietLogger(),
		OnFailure: func(_ notification.Event, err error) {
			mu.Lock()
			failed = append(failed, err)
			mu.Unlock()
		},
	})

	assert.NotPanics(t, func() {
		e.Emit(notification.PocketDeleted(uuid.New(), notification.PocketRef{ID: uuid.New(), Name: "Old"}))
	})
	require.NoError(t, e.Close(context.Background()))

	require.Len(t, failed, 1)

	var we *apperr.NotificationWriteError
	require.ErrorAs(t, failed[0], &we)
	assert.Equal(t, string(notification.TypePocketDeleted), we.Type)
}

func TestEmitter_DropsWhenQueueFull(t *testing.T) {
	w := &recordingWriter{block: make(chan struct{})}

	var dropped int

	var mu sync.Mutex

	e := notification.NewEmitter(w, notification.EmitterConfig{
		QueueSize: 1,
		Logger:    quietLogger(),
		OnFailure: func(_ notification.Event, err error) {
			if errors.Is(err, notification.ErrQueueFull) {
				mu.Lock()
				dropped++
				mu.Unlock()
			}
		},
	})

	ev := notification.PocketCreated(uuid.New(), notification.PocketRef{ID: uuid.New(), Name: "Main"})

	start := time.Now()
	for i := 0; i < 10; i++ {
		e.Emit(ev)
	}

	assert.Less(t, time.Since(start), time.Second, "Emit must not block on a slow writer")

	close(w.block)
	require.NoError(t, e.Close(context.Background()))

	mu.Lock()
	defer mu.Unlock()

	assert.Positive(t, dropped)
	assert.Equal(t, 10, dropped+w.count())
}

func TestEmitter_EmitAfterClose(t *testing.T) {
	w := &recordingWriter{}

	var lastErr error

	e := notification.NewEmitter(w, notification.EmitterConfig{
		Logger:    quietLogger(),
		OnFailure: func(_ notification.Event, err error) { lastErr = err },
	})
	require.NoError(t, e.Close(context.Background()))

	e.Emit(notification.PocketCreated(uuid.New(), notification.PocketRef{}))

	assert.ErrorIs(t, lastErr, notification.ErrEmitterClosed)
	assert.Zero(t, w.count())
}

func TestEmitter_QueueFullReportedBeforeEmitReturns(t *testing.T) {
	w := &recordingWriter{block: make(chan struct{})}

	var (
		mu      sync.Mutex
		dropped int
	)

	e := notification.NewEmitter(w, notification.EmitterConfig{
		QueueSize: 1,
		Logger:    quietLogger(),
		OnFailure: func(_ notification.Event, err error) {
			mu.Lock()
			defer mu.Unlock()

			if errors.Is(err, notification.ErrQueueFull) {
				dropped++
			}
		},
	})

	ev := notification.PocketCreated(uuid.New(), notification.PocketRef{ID: uuid.New(), Name: "Main"})

	var wg sync.WaitGroup
	for range 3 {
		wg.Go(func() { e.Emit(ev) })
	}
	wg.Wait()

	mu.Lock()
	got := dropped
	mu.Unlock()

	// the writer is still blocked, so every drop so far was reported by an Emit caller
	assert.Positive(t, got)

	close(w.block)
	require.NoError(t, e.Close(context.Background()))
}
