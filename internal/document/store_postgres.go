package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "permitdesk/pkg/domain"
	"permitdesk/pkg/platform/sentinel"
	txcontext "permitdesk/pkg/platform/tx"
)

// PostgresStore persists document versions in PostgreSQL. A partial unique
// index on (application_id, document_type) WHERE is_current backs up the
// one-current invariant at the schema level.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const documentColumns = `
	id, application_id, document_type, version, is_current, status,
	file_name, mime_type, size_bytes, blob_ref,
	reviewed_at, reviewer_notes, created_at
`

func (s *PostgresStore) Insert(ctx context.Context, doc *Document) error {
	doc.Version = 1
	doc.IsCurrent = true
	doc.Status = StatusPending

	query := `
		INSERT INTO documents (
			id, application_id, document_type, version, is_current, status,
			file_name, mime_type, size_bytes, blob_ref
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		doc.ID.String(),
		doc.ApplicationID.String(),
		string(doc.Type),
		doc.Version,
		doc.IsCurrent,
		string(doc.Status),
		doc.FileName,
		doc.MIMEType,
		doc.SizeBytes,
		doc.BlobRef,
	).Scan(&doc.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrDuplicate
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Replace(ctx context.Context, oldID id.DocumentID, successor *Document) error {
	tx, ownTx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	if ownTx {
		defer tx.Rollback()
	}

	// Lock the predecessor row so two replacers serialize here; the loser then
	// observes is_current = false and reports the conflict.
	var (
		appID     string
		docType   string
		version   int
		isCurrent bool
	)
	err = tx.QueryRowContext(ctx, `
		SELECT application_id, document_type, version, is_current
		FROM documents
		WHERE id = $1
		FOR UPDATE
	`, oldID.String()).Scan(&appID, &docType, &version, &isCurrent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("lock document for replace: %w", err)
	}
	if !isCurrent {
		return sentinel.ErrConflict
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE documents SET is_current = false WHERE id = $1
	`, oldID.String()); err != nil {
		return fmt.Errorf("retire document version: %w", err)
	}

	parsedAppID, err := id.ParseApplicationID(appID)
	if err != nil {
		return fmt.Errorf("corrupt application id %q: %w", appID, err)
	}
	successor.ApplicationID = parsedAppID
	successor.Type = Type(docType)
	successor.Version = version + 1
	successor.IsCurrent = true
	successor.Status = StatusPending

	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (
			id, application_id, document_type, version, is_current, status,
			file_name, mime_type, size_bytes, blob_ref
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`,
		successor.ID.String(),
		successor.ApplicationID.String(),
		string(successor.Type),
		successor.Version,
		successor.IsCurrent,
		string(successor.Status),
		successor.FileName,
		successor.MIMEType,
		successor.SizeBytes,
		successor.BlobRef,
	).Scan(&successor.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert successor version: %w", err)
	}

	if ownTx {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit replace: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, docID id.DocumentID) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := s.scanOne(s.db.QueryRowContext(ctx, query, docID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, sentinel.ErrNotFound
		}
		return Document{}, fmt.Errorf("query document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) UpdateReview(ctx context.Context, docID id.DocumentID, upd ReviewUpdate) (Document, error) {
	query := `
		UPDATE documents
		SET status = $1, reviewed_at = now(), reviewer_notes = $2
		WHERE id = $3 AND is_current = true
		RETURNING ` + documentColumns
	doc, err := s.scanOne(s.db.QueryRowContext(ctx, query,
		string(upd.Status),
		upd.Notes,
		docID.String(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := s.Get(ctx, docID); errors.Is(getErr, sentinel.ErrNotFound) {
				return Document{}, sentinel.ErrNotFound
			}
			return Document{}, sentinel.ErrNotCurrent
		}
		return Document{}, fmt.Errorf("update document review: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) ListVersions(ctx context.Context, appID id.ApplicationID, t Type) ([]Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE application_id = $1 AND document_type = $2
		ORDER BY version ASC
	`
	rows, err := s.db.QueryContext(ctx, query, appID.String(), string(t))
	if err != nil {
		return nil, fmt.Errorf("query document versions: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

func (s *PostgresStore) ListCurrent(ctx context.Context, appID id.ApplicationID) ([]Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE application_id = $1 AND is_current = true
		ORDER BY document_type ASC
	`
	rows, err := s.db.QueryContext(ctx, query, appID.String())
	if err != nil {
		return nil, fmt.Errorf("query current documents: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

func (s *PostgresStore) begin(ctx context.Context) (*sql.Tx, bool, error) {
	if tx, ok := txcontext.From(ctx); ok {
		return tx, false, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(row rowScanner) (Document, error) {
	var (
		doc     Document
		rawID   string
		rawApp  string
		docType string
		status  string
	)
	err := row.Scan(
		&rawID,
		&rawApp,
		&docType,
		&doc.Version,
		&doc.IsCurrent,
		&status,
		&doc.FileName,
		&doc.MIMEType,
		&doc.SizeBytes,
		&doc.BlobRef,
		&doc.ReviewedAt,
		&doc.ReviewerNotes,
		&doc.CreatedAt,
	)
	if err != nil {
		return Document{}, err
	}

	docID, err := id.ParseDocumentID(rawID)
	if err != nil {
		return Document{}, fmt.Errorf("corrupt document id %q: %w", rawID, err)
	}
	appID, err := id.ParseApplicationID(rawApp)
	if err != nil {
		return Document{}, fmt.Errorf("corrupt application id %q: %w", rawApp, err)
	}
	doc.ID = docID
	doc.ApplicationID = appID
	doc.Type = Type(docType)
	doc.Status = Status(status)
	return doc, nil
}

func (s *PostgresStore) scanAll(rows *sql.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		doc, err := s.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
