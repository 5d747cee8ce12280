package audit

import (
	"context"
)

type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Event, int, error)
}
