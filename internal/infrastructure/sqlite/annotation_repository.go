package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/spanmark/internal/annotations"
	"github.com/zjrosen/spanmark/internal/document"
	"github.com/zjrosen/spanmark/internal/log"
	"github.com/zjrosen/spanmark/internal/tracing"
)

const tracerName = "github.com/zjrosen/spanmark/internal/infrastructure/sqlite"

const documentColumns = `id, guid, path, text_hash, created_at, updated_at`

// annotationRepository implements annotations.Repository using SQLite.
type annotationRepository struct {
	db     *DB
	now    func() time.Time
	tracer trace.Tracer
}

var _ annotations.Repository = (*annotationRepository)(nil)

func newAnnotationRepository(db *DB) *annotationRepository {
	return &annotationRepository{db: db, now: time.Now, tracer: otel.Tracer(tracerName)}
}

func (r *annotationRepository) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String(tracing.AttrStoreDriver, "sqlite"))
	return r.tracer.Start(ctx, tracing.SpanPrefixStore+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanDocument(scanner interface{ Scan(...any) error }) (documentModel, error) {
	var m documentModel
	err := scanner.Scan(&m.ID, &m.GUID, &m.Path, &m.TextHash, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func findDocument(ctx context.Context, q queryer, path string) (documentModel, error) {
	m, err := scanDocument(q.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return m, &annotations.DocumentNotFoundError{Path: path}
	}
	if err != nil {
		return m, fmt.Errorf("failed to find document: %w", err)
	}
	return m, nil
}

// Load returns the stored list for path in position order.
func (r *annotationRepository) Load(ctx context.Context, path string) (_ annotations.Record, err error) {
	ctx, traceSpan := r.startSpan(ctx, "load", attribute.String(tracing.AttrDocumentPath, path))
	defer func() { tracing.Finish(traceSpan, err) }()

	doc, err := findDocument(ctx, r.db.conn, path)
	if err != nil {
		return annotations.Record{}, err
	}

	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT position, label, text, token_ids, draft, selected
		 FROM spans WHERE document_id = ? ORDER BY position`, doc.ID)
	if err != nil {
		return annotations.Record{}, fmt.Errorf("failed to query spans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	objects := []document.Span{}
	for rows.Next() {
		var m spanModel
		if err := rows.Scan(&m.Position, &m.Label, &m.Text, &m.TokenIDs, &m.Draft, &m.Selected); err != nil {
			return annotations.Record{}, fmt.Errorf("failed to scan span: %w", err)
		}
		span, err := m.toDomain()
		if err != nil {
			return annotations.Record{}, err
		}
		objects = append(objects, span)
	}
	if err := rows.Err(); err != nil {
		return annotations.Record{}, fmt.Errorf("failed to iterate spans: %w", err)
	}

	traceSpan.SetAttributes(attribute.Int(tracing.AttrSpanCount, len(objects)))
	return annotations.Record{Document: doc.toDomain(), Objects: objects}, nil
}

// Save replaces the stored list for path in a single transaction.
func (r *annotationRepository) Save(ctx context.Context, path, version string, objects []document.Span) (_ annotations.Record, err error) {
	ctx, traceSpan := r.startSpan(ctx, "save",
		attribute.String(tracing.AttrDocumentPath, path),
		attribute.Int(tracing.AttrSpanCount, len(objects)))
	defer func() { tracing.Finish(traceSpan, err) }()

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return annotations.Record{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := r.now().Unix()
	doc, err := findDocument(ctx, tx, path)
	var nf *annotations.DocumentNotFoundError
	switch {
	case errors.As(err, &nf):
		doc = documentModel{GUID: uuid.NewString(), Path: path, TextHash: version, CreatedAt: now, UpdatedAt: now}
		result, err := tx.ExecContext(ctx,
			`INSERT INTO documents (guid, path, text_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			doc.GUID, doc.Path, doc.TextHash, doc.CreatedAt, doc.UpdatedAt)
		if err != nil {
			return annotations.Record{}, fmt.Errorf("failed to insert document: %w", err)
		}
		if doc.ID, err = result.LastInsertId(); err != nil {
			return annotations.Record{}, fmt.Errorf("failed to get last insert id: %w", err)
		}
	case err != nil:
		return annotations.Record{}, err
	default:
		doc.TextHash, doc.UpdatedAt = version, now
		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET text_hash = ?, updated_at = ? WHERE id = ?`,
			doc.TextHash, doc.UpdatedAt, doc.ID); err != nil {
			return annotations.Record{}, fmt.Errorf("failed to update document: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM spans WHERE document_id = ?`, doc.ID); err != nil {
		return annotations.Record{}, fmt.Errorf("failed to clear spans: %w", err)
	}
	stored := make([]document.Span, 0, len(objects))
	for i, span := range objects {
		m, err := toSpanModel(i, span)
		if err != nil {
			return annotations.Record{}, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO spans (document_id, position, label, text, token_ids, draft, selected)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			doc.ID, m.Position, m.Label, m.Text, m.TokenIDs, m.Draft, m.Selected); err != nil {
			return annotations.Record{}, fmt.Errorf("failed to insert span %d: %w", i, err)
		}
		stored = append(stored, span.Clone())
	}

	if err := tx.Commit(); err != nil {
		return annotations.Record{}, fmt.Errorf("failed to commit: %w", err)
	}
	log.Debug(log.CatDB, "saved annotations", "path", path, "spans", len(stored))
	return annotations.Record{Document: doc.toDomain(), Objects: stored}, nil
}

// List returns all documents ordered by path.
func (r *annotationRepository) List(ctx context.Context) (_ []annotations.Document, err error) {
	ctx, traceSpan := r.startSpan(ctx, "list")
	defer func() { tracing.Finish(traceSpan, err) }()

	rows, err := r.db.conn.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []annotations.Document
	for rows.Next() {
		m, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, m.toDomain())
	}
	return docs, rows.Err()
}

// Delete removes a document; its spans go with it through the foreign key.
func (r *annotationRepository) Delete(ctx context.Context, path string) (err error) {
	ctx, traceSpan := r.startSpan(ctx, "delete", attribute.String(tracing.AttrDocumentPath, path))
	defer func() { tracing.Finish(traceSpan, err) }()

	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &annotations.DocumentNotFoundError{Path: path}
	}
	return nil
}

// Close closes the underlying database.
func (r *annotationRepository) Close() error {
	return r.db.Close()
}
