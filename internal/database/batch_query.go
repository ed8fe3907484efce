package database

import "context"

// BatchPagePaths resolves the ordered page paths for many documents with a
// single IN-clause query. The result map always contains every requested id;
// documents without pages map to an empty slice, never a missing key.
func (r *DocumentRepository) BatchPagePaths(ctx context.Context, ids []string) (map[string][]string, error) {
	result := make(map[string][]string, len(ids))
	for _, id := range ids {
		result[id] = []string{}
	}
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.ctx.DB.QueryContext(ctx,
		`SELECT document_id, file_path FROM document_pages
		 WHERE document_id IN (`+placeholders(len(ids))+`)
		 ORDER BY document_id, page_number ASC`,
		idsToArgs(ids)...,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var docID, path string
		if err := rows.Scan(&docID, &path); err != nil {
			return nil, err
		}
		result[docID] = append(result[docID], path)
	}
	return result, rows.Err()
}

// BatchTags resolves the tag ids for many documents with a single IN-clause
// query, with the same always-complete key-set guarantee as BatchPagePaths.
func (r *DocumentRepository) BatchTags(ctx context.Context, ids []string) (map[string][]string, error) {
	result := make(map[string][]string, len(ids))
	for _, id := range ids {
		result[id] = []string{}
	}
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.ctx.DB.QueryContext(ctx,
		`SELECT document_id, tag_id FROM document_tags
		 WHERE document_id IN (`+placeholders(len(ids))+`)`,
		idsToArgs(ids)...,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var docID, tagID string
		if err := rows.Scan(&docID, &tagID); err != nil {
			return nil, err
		}
		result[docID] = append(result[docID], tagID)
	}
	return result, rows.Err()
}
