package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docstash/docstash/internal/database"
	"github.com/docstash/docstash/internal/logging"
)

func setupTestDB(t *testing.T) *database.Context {
	t.Helper()

	dbCtx, err := database.CreateDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.CloseDatabase(dbCtx)
	})
	return dbCtx
}

func newTestManager(t *testing.T, dbCtx *database.Context) *Manager {
	t.Helper()
	return NewManager(dbCtx.DB, logging.Nop())
}

// blockModules makes provisioning of the named modules fail the way an
// engine without them would, while executing everything else for real.
func blockModules(dbCtx *database.Context, m *Manager, modules ...string) {
	m.execStmt = func(ctx context.Context, stmt string) error {
		for _, mod := range modules {
			if strings.Contains(stmt, "USING "+mod) {
				return errors.New("SQL logic error: no such module: " + mod)
			}
		}
		_, err := dbCtx.DB.ExecContext(ctx, stmt)
		return err
	}
}

func insertDoc(t *testing.T, dbCtx *database.Context, title string, ocr *string, createdAt time.Time) string {
	t.Helper()

	doc := &database.DocumentRecord{
		ID:               uuid.NewString(),
		Title:            title,
		FilePath:         "/objects/" + title,
		OriginalFileName: title + ".pdf",
		MimeType:         "application/pdf",
		OCRStatus:        database.OCRPending,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
	if ocr != nil {
		doc.OCRText = ocr
		doc.OCRStatus = database.OCRCompleted
	}

	repo := database.NewDocumentRepository(dbCtx)
	require.NoError(t, repo.Insert(context.Background(), doc))
	return doc.ID
}

func strPtr(s string) *string { return &s }

func TestInitializeEstablishesFTS5(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)

	var fts4Attempted bool
	inner := m.execStmt
	m.execStmt = func(ctx context.Context, stmt string) error {
		if strings.Contains(stmt, "USING fts4") {
			fts4Attempted = true
		}
		return inner(ctx, stmt)
	}

	require.NoError(t, m.Initialize(context.Background()))
	assert.Equal(t, CapabilityFTS5, m.Capability())
	assert.False(t, fts4Attempted, "FTS4 must never be attempted when FTS5 succeeds")
}

func TestInitializeCascadesToFTS4(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)
	blockModules(dbCtx, m, "fts5")

	require.NoError(t, m.Initialize(context.Background()))
	if m.Capability() == CapabilityDisabled {
		t.Skip("engine lacks fts4 support")
	}
	assert.Equal(t, CapabilityFTS4, m.Capability())
}

func TestInitializeCascadesToDisabled(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)
	blockModules(dbCtx, m, "fts5", "fts4")

	require.NoError(t, m.Initialize(context.Background()))
	assert.Equal(t, CapabilityDisabled, m.Capability())
}

func TestInitializePropagatesUnexpectedErrors(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)

	diskErr := errors.New("disk I/O error")
	m.execStmt = func(ctx context.Context, stmt string) error {
		return diskErr
	}

	err := m.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, diskErr, "genuine storage faults must keep their cause")
	assert.Equal(t, CapabilityUnset, m.Capability())
}

func TestInitializeIsIdempotent(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)

	require.NoError(t, m.Initialize(context.Background()))
	cap1 := m.Capability()
	require.NoError(t, m.Initialize(context.Background()))
	assert.Equal(t, cap1, m.Capability())
}

func TestResetAllowsReprobe(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)

	require.NoError(t, m.Initialize(context.Background()))
	m.Reset()
	assert.Equal(t, CapabilityUnset, m.Capability())
	require.NoError(t, m.Initialize(context.Background()))
	assert.Equal(t, CapabilityFTS5, m.Capability())
}

func TestSearchBlankQueryReturnsEmpty(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)
	// Deliberately uninitialized: a blank query never reaches dispatch.
	for _, q := range []string{"", "   ", "\t\n"} {
		result, err := m.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, result)
	}
}

func TestSearchBeforeInitialize(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)

	_, err := m.Search(context.Background(), "invoice")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSearchFindsOCROnlyTermUnderEveryCapability(t *testing.T) {
	cases := []struct {
		name  string
		block []string
		want  Capability
	}{
		{"fts5", nil, CapabilityFTS5},
		{"fts4", []string{"fts5"}, CapabilityFTS4},
		{"disabled", []string{"fts5", "fts4"}, CapabilityDisabled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dbCtx := setupTestDB(t)
			m := newTestManager(t, dbCtx)
			if len(tc.block) > 0 {
				blockModules(dbCtx, m, tc.block...)
			}
			require.NoError(t, m.Initialize(context.Background()))
			if m.Capability() != tc.want {
				t.Skipf("engine lacks %s support", tc.name)
			}

			now := time.Now().UTC()
			insertDoc(t, dbCtx, "Grocery List", nil, now)
			wantID := insertDoc(t, dbCtx, "Scan 0042", strPtr("warranty certificate toaster"), now)

			result, err := m.Search(context.Background(), "warranty")
			require.NoError(t, err)
			require.Len(t, result, 1)
			assert.Equal(t, wantID, result[0].ID)
			assert.Equal(t, "Scan 0042", result[0].Title, "all columns hydrate regardless of match location")
		})
	}
}

func TestSearchFTS5MatchesTitleAndOCR(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)
	require.NoError(t, m.Initialize(context.Background()))
	require.Equal(t, CapabilityFTS5, m.Capability())

	now := time.Now().UTC()
	a := insertDoc(t, dbCtx, "Invoice March", nil, now.Add(-time.Hour))
	b := insertDoc(t, dbCtx, "Invoice April", strPtr("march totals"), now)

	result, err := m.Search(context.Background(), "march")
	require.NoError(t, err)
	require.Len(t, result, 2)

	ids := []string{result[0].ID, result[1].ID}
	assert.ElementsMatch(t, []string{a, b}, ids)
}

func TestSearchDisabledOrdersByCreatedAtDesc(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)
	blockModules(dbCtx, m, "fts5", "fts4")
	require.NoError(t, m.Initialize(context.Background()))

	now := time.Now().UTC()
	older := insertDoc(t, dbCtx, "Invoice March", nil, now.Add(-time.Hour))
	newer := insertDoc(t, dbCtx, "Invoice April", strPtr("march totals"), now)

	result, err := m.Search(context.Background(), "march")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, newer, result[0].ID)
	assert.Equal(t, older, result[1].ID)
}

func TestSearchDisabledRequiresAllTerms(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)
	blockModules(dbCtx, m, "fts5", "fts4")
	require.NoError(t, m.Initialize(context.Background()))

	now := time.Now().UTC()
	insertDoc(t, dbCtx, "Invoice March", nil, now)
	match := insertDoc(t, dbCtx, "Invoice April", strPtr("march totals"), now)

	// Terms combine with AND across columns: "april" is in the title and
	// "totals" only in the OCR text of the same document.
	result, err := m.Search(context.Background(), "april totals")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, match, result[0].ID)
}

func TestSearchDisabledEscapesWildcards(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)
	blockModules(dbCtx, m, "fts5", "fts4")
	require.NoError(t, m.Initialize(context.Background()))

	now := time.Now().UTC()
	literal := insertDoc(t, dbCtx, "Discount 50% off", nil, now)
	insertDoc(t, dbCtx, "Discount 50x off", nil, now)

	result, err := m.Search(context.Background(), "50%")
	require.NoError(t, err)
	require.Len(t, result, 1, "%% must match only the literal character")
	assert.Equal(t, literal, result[0].ID)

	underscore := insertDoc(t, dbCtx, "file_name scan", nil, now)
	insertDoc(t, dbCtx, "fileXname scan", nil, now)

	result, err = m.Search(context.Background(), "file_name")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, underscore, result[0].ID)
}

func TestSearchIndexStaysInSyncThroughTriggers(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)
	require.NoError(t, m.Initialize(context.Background()))

	repo := database.NewDocumentRepository(dbCtx)
	ctx := context.Background()
	now := time.Now().UTC()

	id := insertDoc(t, dbCtx, "Tax Return", nil, now)

	result, err := m.Search(ctx, "tax")
	require.NoError(t, err)
	require.Len(t, result, 1)

	// Update flows into the shadow index through the au trigger.
	require.NoError(t, repo.UpdateOCR(ctx, id, strPtr("deductible receipts"), database.OCRCompleted))
	result, err = m.Search(ctx, "deductible")
	require.NoError(t, err)
	require.Len(t, result, 1)

	// Delete flows through the ad trigger.
	require.NoError(t, repo.Delete(ctx, id))
	result, err = m.Search(ctx, "tax")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRebuildIndex(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)
	require.NoError(t, m.Initialize(context.Background()))
	require.NoError(t, m.RebuildIndex(context.Background()))
}

func TestRebuildIndexNoOpWhenDisabled(t *testing.T) {
	dbCtx := setupTestDB(t)
	m := newTestManager(t, dbCtx)
	blockModules(dbCtx, m, "fts5", "fts4")
	require.NoError(t, m.Initialize(context.Background()))

	// No shadow index exists; rebuild must not touch the database.
	m.execStmt = func(ctx context.Context, stmt string) error {
		t.Fatalf("unexpected statement in disabled mode: %s", stmt)
		return nil
	}
	require.NoError(t, m.RebuildIndex(context.Background()))
}
