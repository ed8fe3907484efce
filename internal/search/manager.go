// Package search owns the full-text-search subsystem: the capability cascade
// probed once per database session, the shadow-index provisioning, query
// dispatch per capability, and the escaping rules for user queries.
package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/docstash/docstash/internal/database"
	"github.com/docstash/docstash/internal/logging"
)

// Manager establishes and holds the search capability of one database
// session and dispatches queries accordingly. The capability is an explicit
// per-instance value set exactly once by Initialize (or again after Reset);
// callers must await Initialize before issuing searches, after which the
// field is read without synchronization.
type Manager struct {
	db         *sql.DB
	log        logging.Logger
	capability Capability

	// execStmt is swapped in tests to simulate engines without FTS modules.
	execStmt func(ctx context.Context, stmt string) error
}

// NewManager creates an uninitialized manager over the given connection.
func NewManager(db *sql.DB, log logging.Logger) *Manager {
	m := &Manager{db: db, log: log, capability: CapabilityUnset}
	m.execStmt = func(ctx context.Context, stmt string) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	}
	return m
}

// Capability reports the established search capability.
func (m *Manager) Capability() Capability {
	return m.capability
}

// Reset clears the established capability so Initialize probes again.
// Only tests use this.
func (m *Manager) Reset() {
	m.capability = CapabilityUnset
}

// Initialize runs the capability cascade: FTS5, then FTS4, then the
// substring-scan fallback. Only the typed unsupported-module error advances
// the cascade; any other failure class (disk, permission, schema conflict)
// aborts initialization with its cause intact. Calling Initialize again
// after success is a no-op.
func (m *Manager) Initialize(ctx context.Context) error {
	if m.capability != CapabilityUnset {
		return nil
	}

	for _, candidate := range []Capability{CapabilityFTS5, CapabilityFTS4} {
		err := m.provision(ctx, candidate)
		if err == nil {
			m.capability = candidate
			return nil
		}

		var unsupported *UnsupportedModuleError
		if !errors.As(err, &unsupported) {
			return fmt.Errorf("failed to provision %s shadow index: %w", candidate, err)
		}
	}

	// Degraded search is not an error: log once and scan substrings.
	m.capability = CapabilityDisabled
	m.log.Info(ctx, "no FTS module available, search falls back to substring scan")
	return nil
}

func (m *Manager) provision(ctx context.Context, capability Capability) error {
	for _, stmt := range provisioningStatements(capability) {
		if err := m.execStmt(ctx, stmt); err != nil {
			return classifyProvisionError(capability.String(), err)
		}
	}

	// Derive the shadow index from any rows that predate provisioning, so
	// it is always re-derivable from the documents table.
	if err := m.execStmt(ctx, rebuildStatement); err != nil {
		return classifyProvisionError(capability.String(), err)
	}
	return nil
}

// RebuildIndex recomputes the shadow index from the source rows, e.g. after
// bulk data repair. It is a no-op when search is disabled.
func (m *Manager) RebuildIndex(ctx context.Context) error {
	switch m.capability {
	case CapabilityFTS5, CapabilityFTS4:
		return m.execStmt(ctx, rebuildStatement)
	case CapabilityDisabled:
		return nil
	default:
		return ErrNotInitialized
	}
}

// Search returns the documents matching query under the established
// capability. A blank or whitespace-only query returns an empty result
// without touching the database. Every path returns full document rows;
// match location never filters columns.
func (m *Manager) Search(ctx context.Context, query string) ([]database.DocumentRecord, error) {
	if strings.TrimSpace(query) == "" {
		return []database.DocumentRecord{}, nil
	}

	switch m.capability {
	case CapabilityFTS5, CapabilityFTS4:
		return m.searchMatch(ctx, query)
	case CapabilityDisabled:
		return m.searchScan(ctx, query)
	default:
		return nil, ErrNotInitialized
	}
}

// searchMatch runs an escaped MATCH query against the shadow index. FTS5
// orders by intrinsic relevance rank (ascending, lower is better) and joins
// by rowid; FTS4 has no rank, so it orders by update recency and joins by
// docid.
func (m *Manager) searchMatch(ctx context.Context, query string) ([]database.DocumentRecord, error) {
	var stmt string
	if m.capability == CapabilityFTS5 {
		stmt = `SELECT ` + database.DocumentColumnsQualified + `
			FROM documents_fts
			JOIN documents d ON d.rowid = documents_fts.rowid
			WHERE documents_fts MATCH ?
			ORDER BY documents_fts.rank ASC`
	} else {
		stmt = `SELECT ` + database.DocumentColumnsQualified + `
			FROM documents_fts
			JOIN documents d ON d.rowid = documents_fts.docid
			WHERE documents_fts MATCH ?
			ORDER BY d.updated_at DESC`
	}

	rows, err := m.db.QueryContext(ctx, stmt, EscapeMatch(query))
	if err != nil {
		return nil, fmt.Errorf("search: match query failed: %w", err)
	}
	return database.CollectDocumentRows(rows)
}

// searchScan is the disabled-capability fallback: every whitespace-delimited
// term must appear as a case-insensitive substring in at least one of title,
// description, or ocr_text.
func (m *Manager) searchScan(ctx context.Context, query string) ([]database.DocumentRecord, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return []database.DocumentRecord{}, nil
	}

	conditions := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)*3)
	for _, term := range terms {
		pattern := "%" + EscapeLike(term) + "%"
		conditions = append(conditions,
			`(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR ocr_text LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	stmt := `SELECT ` + database.DocumentColumns + ` FROM documents
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY created_at DESC`

	rows, err := m.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("search: substring scan failed: %w", err)
	}
	return database.CollectDocumentRows(rows)
}
