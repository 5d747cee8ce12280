package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hass/hass/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type eventRepoPG struct{ pool *pgxpool.Pool }

func NewEventRepoPG(pool *pgxpool.Pool) EventRepository { return &eventRepoPG{pool: pool} }

func (r *eventRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const eventCols = `id, actor_id, actor_name, actor_roles, resource, action, hospital_id,
	ip_address, user_agent, path, method, request_id, status_code, occurred_at, created_at`

func (r *eventRepoPG) scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.ActorRoles, &e.Resource, &e.Action, &e.HospitalID,
		&e.IPAddress, &e.UserAgent, &e.Path, &e.Method, &e.RequestID, &e.StatusCode, &e.OccurredAt, &e.CreatedAt)
	return &e, err
}

func (r *eventRepoPG) Create(ctx context.Context, e *Event) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_event (id, actor_id, actor_name, actor_roles, resource, action, hospital_id,
			ip_address, user_agent, path, method, request_id, status_code, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		e.ID, e.ActorID, e.ActorName, e.ActorRoles, e.Resource, e.Action, e.HospitalID,
		e.IPAddress, e.UserAgent, e.Path, e.Method, e.RequestID, e.StatusCode, e.OccurredAt)
	return err
}

func (r *eventRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Event, int, error) {
	query := `SELECT ` + eventCols + ` FROM audit_event WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM audit_event WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["actor_id"]; ok {
		query += fmt.Sprintf(` AND actor_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND actor_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["resource"]; ok {
		query += fmt.Sprintf(` AND resource = $%d`, idx)
		countQuery += fmt.Sprintf(` AND resource = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["action"]; ok {
		query += fmt.Sprintf(` AND action = $%d`, idx)
		countQuery += fmt.Sprintf(` AND action = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["since"]; ok {
		query += fmt.Sprintf(` AND occurred_at >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND occurred_at >= $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["until"]; ok {
		query += fmt.Sprintf(` AND occurred_at < $%d`, idx)
		countQuery += fmt.Sprintf(` AND occurred_at < $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Event
	for rows.Next() {
		e, err := r.scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
