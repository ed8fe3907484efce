package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DocumentColumns is the full column list every read path returns, so
// hydration never depends on which query matched.
const DocumentColumns = `id, title, description, file_path, thumbnail_path, original_file_name,
	page_count, file_size, mime_type, ocr_text, ocr_status, created_at, updated_at, folder_id, is_favorite`

// DocumentColumnsQualified is the same list aliased to d for joins.
const DocumentColumnsQualified = `d.id, d.title, d.description, d.file_path, d.thumbnail_path, d.original_file_name,
	d.page_count, d.file_size, d.mime_type, d.ocr_text, d.ocr_status, d.created_at, d.updated_at, d.folder_id, d.is_favorite`

// DocumentRepository persists document rows and their owned page references.
type DocumentRepository struct {
	ctx *Context
}

func NewDocumentRepository(dbCtx *Context) *DocumentRepository {
	return &DocumentRepository{ctx: dbCtx}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner) (DocumentRecord, error) {
	var (
		doc        DocumentRecord
		desc       sql.NullString
		thumb      sql.NullString
		ocrText    sql.NullString
		folder     sql.NullString
		created    string
		updated    string
		isFavorite int64
	)

	err := s.Scan(
		&doc.ID, &doc.Title, &desc, &doc.FilePath, &thumb, &doc.OriginalFileName,
		&doc.PageCount, &doc.FileSize, &doc.MimeType, &ocrText, (*string)(&doc.OCRStatus),
		&created, &updated, &folder, &isFavorite,
	)
	if err != nil {
		return DocumentRecord{}, err
	}

	doc.Description = optionalString(desc)
	doc.ThumbnailPath = optionalString(thumb)
	doc.OCRText = optionalString(ocrText)
	doc.FolderID = optionalString(folder)
	doc.CreatedAt = parseTime(created)
	doc.UpdatedAt = parseTime(updated)
	doc.IsFavorite = isFavorite != 0
	return doc, nil
}

func CollectDocumentRows(rows *sql.Rows) ([]DocumentRecord, error) {
	defer func() {
		_ = rows.Close()
	}()

	var result []DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, rows.Err()
}

// Insert stores a new document together with its page references in one
// transaction. PageCount is derived from the page list, never trusted from
// the caller.
func (r *DocumentRepository) Insert(ctx context.Context, doc *DocumentRecord) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}
	if doc.OCRStatus == "" {
		doc.OCRStatus = OCRPending
	}
	doc.PageCount = int64(len(doc.PagePaths))

	tx, err := r.ctx.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO documents (`+DocumentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, nullString(doc.Description), doc.FilePath, nullString(doc.ThumbnailPath),
		doc.OriginalFileName, doc.PageCount, doc.FileSize, doc.MimeType, nullString(doc.OCRText),
		string(doc.OCRStatus), formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt),
		nullString(doc.FolderID), boolToInt64(doc.IsFavorite),
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert document: %w", err)
	}

	for i, path := range doc.PagePaths {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO document_pages (document_id, page_number, file_path) VALUES (?, ?, ?)`,
			doc.ID, i+1, path,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert page %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document insert: %w", err)
	}
	return nil
}

// FindByID fetches a single document row. A missing id returns (nil, nil);
// callers decide whether absence is an error.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*DocumentRecord, error) {
	row := r.ctx.DB.QueryRowContext(ctx,
		`SELECT `+DocumentColumns+` FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// List returns document rows ordered and paged per opts.
func (r *DocumentRepository) List(ctx context.Context, opts ListOptions) ([]DocumentRecord, error) {
	orderBy := opts.OrderBy
	switch orderBy {
	case OrderByCreatedAtDesc, OrderByCreatedAtAsc, OrderByUpdatedAtDesc, OrderByTitleAsc:
	case "":
		orderBy = OrderByCreatedAtDesc
	default:
		return nil, fmt.Errorf("unsupported order: %s", opts.OrderBy)
	}

	query := `SELECT ` + DocumentColumns + ` FROM documents ORDER BY ` + orderBy
	args := []any{}
	switch {
	case opts.Limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	case opts.Offset > 0:
		// SQLite requires a LIMIT clause before OFFSET; -1 means unbounded.
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, opts.Offset)
	}

	rows, err := r.ctx.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return CollectDocumentRows(rows)
}

// ListByFolder returns the documents inside a folder; a nil folderID selects
// the root (documents with no folder). Folder existence is not checked here.
func (r *DocumentRepository) ListByFolder(ctx context.Context, folderID *string) ([]DocumentRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if folderID == nil {
		rows, err = r.ctx.DB.QueryContext(ctx,
			`SELECT `+DocumentColumns+` FROM documents WHERE folder_id IS NULL ORDER BY created_at DESC`)
	} else {
		rows, err = r.ctx.DB.QueryContext(ctx,
			`SELECT `+DocumentColumns+` FROM documents WHERE folder_id = ? ORDER BY created_at DESC`, *folderID)
	}
	if err != nil {
		return nil, err
	}
	return CollectDocumentRows(rows)
}

// ListFavorites returns all documents flagged as favorite.
func (r *DocumentRepository) ListFavorites(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := r.ctx.DB.QueryContext(ctx,
		`SELECT `+DocumentColumns+` FROM documents WHERE is_favorite = 1 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return CollectDocumentRows(rows)
}

// Update rewrites the mutable metadata columns of a document. It fails with
// ErrNotFound when no row was affected, and always stamps an updated_at
// strictly later than the stored row's value. The stored value is read here
// rather than trusted from the caller's record, which may be stale.
func (r *DocumentRepository) Update(ctx context.Context, doc *DocumentRecord) error {
	var stored string
	err := r.ctx.DB.QueryRowContext(ctx,
		`SELECT updated_at FROM documents WHERE id = ?`, doc.ID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	updated := time.Now().UTC()
	if prev := parseTime(stored); !updated.After(prev) {
		updated = prev.Add(time.Nanosecond)
	}

	res, err := r.ctx.DB.ExecContext(ctx, `UPDATE documents SET
			title = ?, description = ?, file_path = ?, thumbnail_path = ?, original_file_name = ?,
			file_size = ?, mime_type = ?, folder_id = ?, is_favorite = ?, updated_at = ?
		WHERE id = ?`,
		doc.Title, nullString(doc.Description), doc.FilePath, nullString(doc.ThumbnailPath),
		doc.OriginalFileName, doc.FileSize, doc.MimeType, nullString(doc.FolderID),
		boolToInt64(doc.IsFavorite), formatTime(updated), doc.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	doc.UpdatedAt = updated
	return nil
}

// UpdateOCR writes the OCR text and status atomically. A nil text clears the
// column. ErrNotFound is returned when the document does not exist.
func (r *DocumentRepository) UpdateOCR(ctx context.Context, id string, text *string, status OCRStatus) error {
	res, err := r.ctx.DB.ExecContext(ctx,
		`UPDATE documents SET ocr_text = ?, ocr_status = ?, updated_at = ? WHERE id = ?`,
		nullString(text), string(status), formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFavorite flips the favorite flag.
func (r *DocumentRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	return r.setColumn(ctx, id, `is_favorite = ?`, boolToInt64(favorite))
}

// SetFolder moves the document into a folder; nil means root.
func (r *DocumentRepository) SetFolder(ctx context.Context, id string, folderID *string) error {
	return r.setColumn(ctx, id, `folder_id = ?`, nullString(folderID))
}

// SetThumbnailPath records where the encrypted thumbnail lives.
func (r *DocumentRepository) SetThumbnailPath(ctx context.Context, id string, path *string) error {
	return r.setColumn(ctx, id, `thumbnail_path = ?`, nullString(path))
}

func (r *DocumentRepository) setColumn(ctx context.Context, id, assignment string, value any) error {
	res, err := r.ctx.DB.ExecContext(ctx,
		`UPDATE documents SET `+assignment+`, updated_at = ? WHERE id = ?`,
		value, formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the document row together with its pages and tag links.
// Child rows go first; the junction cascade is this repository's job, not
// the schema's.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	return r.DeleteMany(ctx, []string{id})
}

// DeleteMany removes several documents in one transaction. Any missing id
// aborts the whole batch with ErrNotFound.
func (r *DocumentRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.ctx.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id = ?`, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to delete tag links for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM document_pages WHERE document_id = ?`, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to delete pages for %s: %w", id, err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to delete document %s: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if affected == 0 {
			_ = tx.Rollback()
			return ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// PagePaths returns the page file paths of one document ordered by page
// number. List views use BatchPagePaths instead.
func (r *DocumentRepository) PagePaths(ctx context.Context, id string) ([]string, error) {
	rows, err := r.ctx.DB.QueryContext(ctx,
		`SELECT file_path FROM document_pages WHERE document_id = ? ORDER BY page_number ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
