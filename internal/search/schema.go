package search

// provisioningStatements returns the DDL for the shadow index and its three
// synchronization triggers in the given dialect. This is the only function
// that knows FTS5-vs-FTS4 syntax; everything above it branches on Capability
// alone.
//
// FTS5 external-content tables have no native delete, so the delete and
// update triggers use the sentinel-row convention: inserting a row whose
// first column is the literal 'delete' command. FTS4 uses plain DELETE
// statements keyed by docid (the FTS4 name for the same row identity FTS5
// calls rowid).
func provisioningStatements(capability Capability) []string {
	switch capability {
	case CapabilityFTS5:
		return []string{
			`CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
				title, description, ocr_text,
				content='documents', content_rowid='rowid'
			)`,
			`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
				INSERT INTO documents_fts(rowid, title, description, ocr_text)
				VALUES (new.rowid, new.title, new.description, new.ocr_text);
			END`,
			`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, description, ocr_text)
				VALUES ('delete', old.rowid, old.title, old.description, old.ocr_text);
			END`,
			`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, description, ocr_text)
				VALUES ('delete', old.rowid, old.title, old.description, old.ocr_text);
				INSERT INTO documents_fts(rowid, title, description, ocr_text)
				VALUES (new.rowid, new.title, new.description, new.ocr_text);
			END`,
		}
	case CapabilityFTS4:
		return []string{
			`CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts4(
				title, description, ocr_text, content='documents'
			)`,
			`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
				INSERT INTO documents_fts(docid, title, description, ocr_text)
				VALUES (new.rowid, new.title, new.description, new.ocr_text);
			END`,
			`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
				DELETE FROM documents_fts WHERE docid = old.rowid;
			END`,
			`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
				DELETE FROM documents_fts WHERE docid = old.rowid;
				INSERT INTO documents_fts(docid, title, description, ocr_text)
				VALUES (new.rowid, new.title, new.description, new.ocr_text);
			END`,
		}
	default:
		return nil
	}
}

// rebuildStatement recomputes the shadow index from the source rows. Both
// dialects accept the same special 'rebuild' command.
const rebuildStatement = `INSERT INTO documents_fts(documents_fts) VALUES ('rebuild')`
