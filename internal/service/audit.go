package service

import (
	"context"

	"github.com/ampvending/amp-backend/internal/activity"
	"github.com/ampvending/amp-backend/internal/model"
)

// Actor identifies the admin performing a mutation.
type Actor struct {
	AdminID string
	IP      string
}

// ActivityRecorder receives one event per admin mutation. Implementations
// must not block or fail the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, e activity.Event)
}

type auditor struct {
	rec      ActivityRecorder
	resource model.ResourceType
}

func (a auditor) record(ctx context.Context, actor Actor, action model.ActivityAction, id string, before, after any) {
	if a.rec == nil {
		return
	}
	a.rec.Record(ctx, activity.Event{
		AdminID:      actor.AdminID,
		Action:       action,
		ResourceType: a.resource,
		ResourceID:   id,
		Old:          before,
		New:          after,
		IPAddress:    actor.IP,
	})
}
