package database

import "context"

// AddTag links a tag to a document. Re-adding an existing link is a no-op.
func (r *DocumentRepository) AddTag(ctx context.Context, documentID, tagID string) error {
	_, err := r.ctx.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO document_tags (document_id, tag_id) VALUES (?, ?)`,
		documentID, tagID,
	)
	return err
}

// RemoveTag unlinks a tag from a document. Removing an absent link is a
// no-op.
func (r *DocumentRepository) RemoveTag(ctx context.Context, documentID, tagID string) error {
	_, err := r.ctx.DB.ExecContext(ctx,
		`DELETE FROM document_tags WHERE document_id = ? AND tag_id = ?`,
		documentID, tagID,
	)
	return err
}

// TagsForDocument returns the tag ids linked to one document.
func (r *DocumentRepository) TagsForDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.ctx.DB.QueryContext(ctx,
		`SELECT tag_id FROM document_tags WHERE document_id = ?`, documentID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	tags := []string{}
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, err
		}
		tags = append(tags, tagID)
	}
	return tags, rows.Err()
}

// ListByTag returns all documents linked to a tag.
func (r *DocumentRepository) ListByTag(ctx context.Context, tagID string) ([]DocumentRecord, error) {
	rows, err := r.ctx.DB.QueryContext(ctx,
		`SELECT `+DocumentColumnsQualified+` FROM documents d
		 JOIN document_tags dt ON dt.document_id = d.id
		 WHERE dt.tag_id = ?
		 ORDER BY d.created_at DESC`,
		tagID,
	)
	if err != nil {
		return nil, err
	}
	return CollectDocumentRows(rows)
}
