package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"permitdesk/internal/application"
	id "permitdesk/pkg/domain"
	txcontext "permitdesk/pkg/platform/tx"
)

// PostgresStore persists history entries in PostgreSQL. The table carries no
// update or delete paths; ordering is by created_at with id as tiebreaker.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO status_history (id, application_id, status_from, status_to, changed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var from any
	if entry.StatusFrom != nil {
		from = string(*entry.StatusFrom)
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		entry.ID.String(),
		entry.ApplicationID.String(),
		from,
		string(entry.StatusTo),
		string(entry.ChangedBy),
		entry.Notes,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status history entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, appID id.ApplicationID) ([]Entry, error) {
	query := `
		SELECT id, application_id, status_from, status_to, changed_by, notes, created_at
		FROM status_history
		WHERE application_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, appID.String())
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			rawID   string
			rawApp  string
			from    sql.NullString
			changed string
		)
		if err := rows.Scan(&rawID, &rawApp, &from, &e.StatusTo, &changed, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status history entry: %w", err)
		}
		if e.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("corrupt history entry id %q: %w", rawID, err)
		}
		if e.ApplicationID, err = id.ParseApplicationID(rawApp); err != nil {
			return nil, fmt.Errorf("corrupt application id %q: %w", rawApp, err)
		}
		if from.Valid {
			st := application.Status(from.String)
			e.StatusFrom = &st
		}
		e.ChangedBy = id.ActorID(changed)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status history: %w", err)
	}
	return entries, nil
}
