package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Actions recorded in the audit trail. Stub computation previews are not
// audited; only state changes and sign-ins are.
const (
	ActionLogin         = "auth.login"
	ActionLogout        = "auth.logout"
	ActionCompanyUpdate = "company.update"
	ActionStubFinalize  = "paystub.finalize"
)

type Event struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actorId"`
	Action    string          `json:"action"`
	EntityID  string          `json:"entityId,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Details   json.RawMessage `json:"details,omitempty"`
}

type Filter struct {
	Action  string
	ActorID string
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record appends one event. Auditing is best-effort: a failure is logged and
// never blocks the action it describes.
func (s *Service) Record(ctx context.Context, actorID, action, entityID, requestID string, details any) {
	if s == nil || s.DB == nil {
		return
	}
	var detailsJSON []byte
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			slog.Warn("audit details marshal failed", "action", action, "err", err)
		} else {
			detailsJSON = payload
		}
	}

	if _, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, action, entity_id, request_id, details_json)
    VALUES ($1,$2,$3,$4,$5)
  `, actorID, action, entityID, requestID, detailsJSON); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	query, args := buildBaseQuery("SELECT id, actor_user_id, action, entity_id, request_id, details_json, created_at", filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityID, &evt.RequestID, &evt.Details, &evt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE 1=1"
	var args []any
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.ActorID != "" {
		query += fmt.Sprintf(" AND actor_user_id::text = $%d", len(args)+1)
		args = append(args, filter.ActorID)
	}
	return query, args
}
