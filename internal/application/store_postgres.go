package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	id "permitdesk/pkg/domain"
	"permitdesk/pkg/platform/sentinel"
	txcontext "permitdesk/pkg/platform/tx"
)

// PostgresStore persists applications in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, app *Application) error {
	query := `
		INSERT INTO applications (
			id, reference_number, applicant_type, is_representative, is_subdivision,
			zone_id, project_type, floor_area_sqm, total_lots_planned,
			status, assessed_fee, rejection_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		app.ID.String(),
		app.ReferenceNumber,
		string(app.Profile.ApplicantType),
		app.Profile.IsRepresentative,
		app.Profile.IsSubdivision,
		app.ZoneID,
		app.ProjectType,
		decimalOrNil(app.FloorAreaSqm),
		app.TotalLotsPlanned,
		string(app.Status),
		decimalOrNil(app.AssessedFee),
		app.RejectionReason,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrDuplicate
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, appID id.ApplicationID) (Application, error) {
	query := `
		SELECT id, reference_number, applicant_type, is_representative, is_subdivision,
		       zone_id, project_type, floor_area_sqm, total_lots_planned,
		       status, assessed_fee, rejection_reason, created_at, updated_at
		FROM applications
		WHERE id = $1
	`
	var (
		app       Application
		rawID     string
		applicant string
		status    string
		floorArea sql.NullString
		fee       sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, appID.String()).Scan(
		&rawID,
		&app.ReferenceNumber,
		&applicant,
		&app.Profile.IsRepresentative,
		&app.Profile.IsSubdivision,
		&app.ZoneID,
		&app.ProjectType,
		&floorArea,
		&app.TotalLotsPlanned,
		&status,
		&fee,
		&app.RejectionReason,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, sentinel.ErrNotFound
		}
		return Application{}, fmt.Errorf("query application: %w", err)
	}

	parsedID, err := id.ParseApplicationID(rawID)
	if err != nil {
		return Application{}, fmt.Errorf("corrupt application id %q: %w", rawID, err)
	}
	app.ID = parsedID
	app.Profile.ApplicantType = ApplicantType(applicant)
	app.Status = Status(status)

	if app.FloorAreaSqm, err = parseNullDecimal(floorArea); err != nil {
		return Application{}, fmt.Errorf("parse floor area: %w", err)
	}
	if app.AssessedFee, err = parseNullDecimal(fee); err != nil {
		return Application{}, fmt.Errorf("parse assessed fee: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, appID id.ApplicationID, upd StatusUpdate) error {
	// The WHERE clause on the prior status is the optimistic check that keeps
	// concurrent transitions serialized.
	query := `
		UPDATE applications
		SET status = $1, rejection_reason = $2, updated_at = now()
		WHERE id = $3 AND status = $4
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		string(upd.To),
		upd.RejectionReason,
		appID.String(),
		string(upd.From),
	)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if affected == 0 {
		if _, err := s.Get(ctx, appID); errors.Is(err, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) SetAssessedFee(ctx context.Context, appID id.ApplicationID, amount decimal.Decimal) error {
	query := `UPDATE applications SET assessed_fee = $1, updated_at = now() WHERE id = $2`
	res, err := s.execer(ctx).ExecContext(ctx, query, amount.String(), appID.String())
	if err != nil {
		return fmt.Errorf("set assessed fee: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set assessed fee: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func decimalOrNil(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func parseNullDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
