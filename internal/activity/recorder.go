// Package activity records the admin audit trail. Recording is best-effort:
// it never fails the mutation that triggered it.
package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ampvending/amp-backend/internal/metrics"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/rs/zerolog"
)

// pushTimeout bounds the time a request spends handing an entry off.
const pushTimeout = 2 * time.Second

// Store persists activity entries.
type Store interface {
	Create(ctx context.Context, l *model.ActivityLog) error
}

// Event describes one admin mutation.
type Event struct {
	AdminID      string
	Action       model.ActivityAction
	ResourceType model.ResourceType
	ResourceID   string
	Old          any
	New          any
	IPAddress    string
}

// Recorder hands entries to the queue, falling back to a direct write and
// finally to the log.
type Recorder struct {
	queue   Queue
	store   Store
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewRecorder creates a Recorder. queue may be nil, in which case every
// entry is written directly.
func NewRecorder(queue Queue, store Store, m *metrics.Metrics, log zerolog.Logger) *Recorder {
	return &Recorder{
		queue:   queue,
		store:   store,
		metrics: m,
		log:     log.With().Str("component", "activity_recorder").Logger(),
		now:     time.Now,
	}
}

// Record captures an event. It survives a cancelled request context.
func (r *Recorder) Record(ctx context.Context, e Event) {
	entry := &model.ActivityLog{
		AdminID:      e.AdminID,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		OldValues:    r.snapshot(e.Old),
		NewValues:    r.snapshot(e.New),
		IPAddress:    e.IPAddress,
		CreatedAt:    r.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()

	if r.queue != nil {
		payload, err := json.Marshal(entry)
		if err == nil {
			if err = r.queue.Push(ctx, string(payload)); err == nil {
				return
			}
		}
		r.metrics.ObserveActivityFailure("queue")
		r.log.Warn().Err(err).Msg("Activity queue push failed, writing directly")
	}

	if err := r.store.Create(ctx, entry); err != nil {
		r.metrics.ObserveActivityFailure("store")
		r.log.Error().Err(err).
			Str("admin_id", entry.AdminID).
			Str("action", string(entry.Action)).
			Str("resource_type", string(entry.ResourceType)).
			Str("resource_id", entry.ResourceID).
			Msg("Activity log lost")
	}
}

func (r *Recorder) snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		r.log.Warn().Err(err).Msg("Activity snapshot not serializable")
		return nil
	}
	return raw
}
