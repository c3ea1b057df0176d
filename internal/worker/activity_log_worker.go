package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ampvending/amp-backend/internal/activity"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/rs/zerolog"
)

const (
	popTimeout        = time.Second
	defaultRetryDelay = 5 * time.Second
)

// ActivityLogWorker consumes the activity queue and writes entries to PostgreSQL.
type ActivityLogWorker struct {
	queue      activity.Queue
	store      activity.Store
	log        zerolog.Logger
	retryDelay time.Duration
}

// NewActivityLogWorker creates a new ActivityLogWorker.
func NewActivityLogWorker(queue activity.Queue, store activity.Store, log zerolog.Logger) *ActivityLogWorker {
	return &ActivityLogWorker{
		queue:      queue,
		store:      store,
		log:        log.With().Str("component", "activity_log_worker").Logger(),
		retryDelay: defaultRetryDelay,
	}
}

// Start begins the worker loop. Call in a goroutine; it returns after the
// context is cancelled and the queue has been drained.
func (w *ActivityLogWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ActivityLogWorker) processNext(ctx context.Context) {
	raw, err := w.queue.Pop(ctx, popTimeout)
	if err != nil {
		if !errors.Is(err, activity.ErrQueueEmpty) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Queue pop error")
			w.sleep(ctx, time.Second)
		}
		return
	}

	entry, ok := w.decode(raw)
	if !ok {
		return
	}

	if err := w.store.Create(ctx, entry); err != nil {
		if repository.IsPermanent(err) {
			w.reject(err, entry)
			return
		}
		w.log.Error().Err(err).
			Str("admin_id", entry.AdminID).
			Str("resource_type", string(entry.ResourceType)).
			Msg("Persist error, retrying later")
		if pushErr := w.queue.Push(context.WithoutCancel(ctx), raw); pushErr != nil {
			w.log.Error().Err(pushErr).Msg("Requeue failed, entry lost")
		}
		w.sleep(ctx, w.retryDelay)
	}
}

// drain persists everything still queued before shutdown.
func (w *ActivityLogWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.queue.TryPop(ctx)
		if err != nil {
			break
		}

		entry, ok := w.decode(raw)
		if !ok {
			continue
		}

		if err := w.store.Create(ctx, entry); err != nil {
			if repository.IsPermanent(err) {
				w.reject(err, entry)
				continue
			}
			w.log.Error().Err(err).Msg("Drain persist error")
			_ = w.queue.Push(ctx, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

// reject drops an entry the database will never accept.
func (w *ActivityLogWorker) reject(err error, entry *model.ActivityLog) {
	w.log.Error().Err(err).
		Str("admin_id", entry.AdminID).
		Str("resource_type", string(entry.ResourceType)).
		Str("resource_id", entry.ResourceID).
		Msg("Dropping activity entry rejected by the database")
}

func (w *ActivityLogWorker) decode(raw string) (*model.ActivityLog, bool) {
	var entry model.ActivityLog
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		w.log.Error().Err(err).Msg("Dropping malformed activity payload")
		return nil, false
	}
	return &entry, true
}

func (w *ActivityLogWorker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
