package audit

import (
	"context"
	"encoding/json"
	"time"

	"sharelink-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ResourceType represents the type of resource being acted upon
type ResourceType string

const (
	ResourceTypeSharedLink  ResourceType = "shared_link"
	ResourceTypeCustomQuota ResourceType = "custom_quota"
)

// Action represents the action being performed
type Action string

const (
	ActionCreate Action = "create"
	ActionModify Action = "modify"
	ActionRevoke Action = "revoke"
	ActionSet    Action = "set"
	ActionRemove Action = "remove"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

// Event is one audit record for a mutation of links or quotas.
type Event struct {
	ID           uuid.UUID
	ActorID      *uuid.UUID
	TeamID       *uuid.UUID
	ResourceType ResourceType
	ResourceID   string
	Action       Action
	Status       Status
	Metadata     map[string]any
	CreatedAt    time.Time
}

// Logger persists audit events. Writes are asynchronous and must never
// block or fail the request that triggered them.
type Logger struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewLogger(pool *pgxpool.Pool, log zerolog.Logger) *Logger {
	return &Logger{pool: pool, log: log}
}

// Log records an audit event synchronously.
func (l *Logger) Log(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var metadataJSON []byte
	var err error
	if event.Metadata != nil {
		// Metadata is free-form; never let credentials leak into the trail.
		metadataJSON, err = json.Marshal(logger.SanitizeMap(event.Metadata))
		if err != nil {
			return err
		}
	}

	if l.pool == nil {
		// No audit store wired (dev mode); keep the trail in the log.
		l.log.Info().
			Str("resource_type", string(event.ResourceType)).
			Str("resource_id", event.ResourceID).
			Str("action", string(event.Action)).
			Str("status", string(event.Status)).
			Msg("audit")
		return nil
	}

	query := `
		INSERT INTO audit_events (
			id, actor_id, team_id, resource_type, resource_id,
			action, status, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = l.pool.Exec(ctx, query,
		event.ID,
		event.ActorID,
		event.TeamID,
		event.ResourceType,
		event.ResourceID,
		event.Action,
		event.Status,
		metadataJSON,
		event.CreatedAt,
	)

	return err
}

// Record logs an audit event asynchronously with a bounded timeout.
func (l *Logger) Record(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	go func() {
		defer cancel()
		if err := l.Log(ctx, event); err != nil {
			l.log.Error().Err(err).Msg("audit log failed")
		}
	}()
}
