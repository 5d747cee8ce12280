package audit

import (
	"context"
	"time"

	"github.com/hass/hass/internal/platform/middleware"
)

type Service struct {
	events EventRepository
}

func NewService(events EventRepository) *Service {
	return &Service{events: events}
}

// RecordAccess satisfies middleware.AuditRecorder.
func (s *Service) RecordAccess(ctx context.Context, entry middleware.AuditEntry) error {
	e := &Event{
		ActorID:    entry.ActorID,
		ActorName:  entry.ActorName,
		ActorRoles: entry.ActorRoles,
		Resource:   entry.Resource,
		Action:     entry.Action,
		HospitalID: entry.HospitalID,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		Path:       entry.Path,
		Method:     entry.Method,
		RequestID:  entry.RequestID,
		StatusCode: entry.StatusCode,
		OccurredAt: entry.Timestamp,
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	return s.events.Create(ctx, e)
}

func (s *Service) SearchEvents(ctx context.Context, params map[string]string, limit, offset int) ([]*Event, int, error) {
	return s.events.Search(ctx, params, limit, offset)
}
