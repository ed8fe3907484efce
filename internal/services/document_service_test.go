package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docstash/docstash/internal/cryptox"
	"github.com/docstash/docstash/internal/database"
	"github.com/docstash/docstash/internal/logging"
	"github.com/docstash/docstash/internal/settings"
)

func newTestService(t *testing.T) *DocumentService {
	t.Helper()

	t.Setenv("DOCSTASH_DIR", t.TempDir())

	dbCtx, err := database.CreateDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.CloseDatabase(dbCtx)
	})

	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	svc := NewDocumentService(dbCtx, cryptox.NewService(store), logging.Nop())

	first, err := svc.Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, first, "fresh database and key means first-time setup")

	return svc
}

// writePages creates n plaintext page files and returns their paths.
func writePages(t *testing.T, n int) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, "page"+string(rune('a'+i))+".png")
		require.NoError(t, os.WriteFile(paths[i], []byte("page content "+string(rune('a'+i))), 0o600))
	}
	return paths
}

func addDocument(t *testing.T, svc *DocumentService, title string, pages int) *database.DocumentRecord {
	t.Helper()

	doc, err := svc.Add(context.Background(), AddDocumentInput{
		Title:            title,
		SourcePagePaths:  writePages(t, pages),
		OriginalFileName: title + ".pdf",
		MimeType:         "application/pdf",
	})
	require.NoError(t, err)
	return doc
}

func TestInitializeReportsReady(t *testing.T) {
	svc := newTestService(t)
	assert.True(t, svc.IsReady())
	assert.NotEqual(t, "unset", svc.SearchCapability().String())
}

func TestAddAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	desc := "electricity bill"
	doc, err := svc.Add(ctx, AddDocumentInput{
		Title:            "Invoice",
		Description:      &desc,
		SourcePagePaths:  writePages(t, 2),
		OriginalFileName: "invoice.pdf",
		MimeType:         "application/pdf",
	})
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	assert.Len(t, doc.PagePaths, 2)

	// Pages must be sealed on disk, not plaintext.
	for _, page := range doc.PagePaths {
		data, err := os.ReadFile(page)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "page content")
	}

	got, err := svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Invoice", got.Title)
	assert.Equal(t, desc, *got.Description)
	assert.Equal(t, int64(2), got.PageCount)
	assert.Equal(t, doc.PagePaths, got.PagePaths)
	assert.Equal(t, []string{}, got.TagIDs)
}

func TestGetMissingReturnsNil(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.Get(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBatchHydrationCompleteness(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	withChildren := addDocument(t, svc, "tagged", 3)
	require.NoError(t, svc.AddTag(ctx, withChildren.ID, "tag-1"))

	bare, err := svc.Add(ctx, AddDocumentInput{
		Title:            "bare",
		OriginalFileName: "bare.pdf",
		MimeType:         "application/pdf",
	})
	require.NoError(t, err)

	docs, err := svc.GetAll(ctx, database.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Every returned record carries hydrated slices, empty but non-nil for
	// documents without children.
	byID := map[string]database.DocumentRecord{}
	for _, d := range docs {
		byID[d.ID] = d
	}
	assert.Len(t, byID[withChildren.ID].PagePaths, 3)
	assert.Equal(t, []string{"tag-1"}, byID[withChildren.ID].TagIDs)
	assert.Equal(t, []string{}, byID[bare.ID].PagePaths)
	assert.Equal(t, []string{}, byID[bare.ID].TagIDs)
}

func TestSearchRecordsHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	addDocument(t, svc, "Tax return 2025", 1)
	addDocument(t, svc, "Warranty card", 1)

	docs, err := svc.Search(ctx, "tax")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Tax return 2025", docs[0].Title)
	assert.NotNil(t, docs[0].PagePaths, "search results are hydrated")

	history, err := svc.SearchHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "tax", history[0].Query)
	assert.Equal(t, int64(1), history[0].ResultCount)
}

func TestSearchBlankQuerySkipsHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	docs, err := svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestToggleFavorite(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc := addDocument(t, svc, "fav me", 1)

	on, err := svc.ToggleFavorite(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, on)

	favs, err := svc.GetFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)

	off, err := svc.ToggleFavorite(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, off)
}

func TestToggleFavoriteDeletedDocument(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc := addDocument(t, svc, "doomed", 1)
	require.NoError(t, svc.Delete(ctx, doc.ID))

	_, err := svc.ToggleFavorite(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOCRInfersCompleted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc := addDocument(t, svc, "scan", 1)

	text := "recognized text"
	require.NoError(t, svc.UpdateOCR(ctx, doc.ID, &text, nil))

	got, err := svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, database.OCRCompleted, got.OCRStatus)
	require.NotNil(t, got.OCRText)
	assert.Equal(t, text, *got.OCRText)
}

func TestUpdateOCRNonCompletedClearsText(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc := addDocument(t, svc, "scan", 1)

	text := "should never persist"
	status := database.OCRFailed
	require.NoError(t, svc.UpdateOCR(ctx, doc.ID, &text, &status))

	got, err := svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, database.OCRFailed, got.OCRStatus)
	assert.Nil(t, got.OCRText)
}

func TestUpdateOCRMissingDocument(t *testing.T) {
	svc := newTestService(t)

	err := svc.UpdateOCR(context.Background(), "ghost", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveToFolder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc := addDocument(t, svc, "filed", 1)

	folder := "folder-1"
	require.NoError(t, svc.MoveToFolder(ctx, doc.ID, &folder))

	inFolder, err := svc.GetInFolder(ctx, &folder)
	require.NoError(t, err)
	require.Len(t, inFolder, 1)

	require.NoError(t, svc.MoveToFolder(ctx, doc.ID, nil))
	atRoot, err := svc.GetInFolder(ctx, nil)
	require.NoError(t, err)
	require.Len(t, atRoot, 1)

	err = svc.MoveToFolder(ctx, "ghost", &folder)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTagOperations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc := addDocument(t, svc, "tagged", 1)

	require.NoError(t, svc.AddTag(ctx, doc.ID, "receipts"))
	require.NoError(t, svc.AddTag(ctx, doc.ID, "receipts")) // idempotent
	require.NoError(t, svc.AddTag(ctx, doc.ID, "2025"))

	tags, err := svc.GetTags(ctx, doc.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"receipts", "2025"}, tags)

	byTag, err := svc.GetByTag(ctx, "receipts")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, doc.ID, byTag[0].ID)

	require.NoError(t, svc.RemoveTag(ctx, doc.ID, "receipts"))
	tags, err = svc.GetTags(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025"}, tags)
}

func TestDeleteRemovesFiles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	thumbSource := filepath.Join(t.TempDir(), "thumb.jpg")
	require.NoError(t, os.WriteFile(thumbSource, []byte("jpeg bytes"), 0o600))

	doc, err := svc.Add(ctx, AddDocumentInput{
		Title:            "shredded",
		SourcePagePaths:  writePages(t, 2),
		SourceThumbnail:  &thumbSource,
		OriginalFileName: "shredded.pdf",
		MimeType:         "application/pdf",
	})
	require.NoError(t, err)
	require.NotNil(t, doc.ThumbnailPath)

	// Warm the thumbnail cache so delete has something to invalidate.
	_, err = svc.Thumbnail(ctx, doc.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, doc.ID))

	for _, page := range doc.PagePaths {
		_, statErr := os.Stat(page)
		assert.True(t, os.IsNotExist(statErr), "page file must be removed")
	}
	_, statErr := os.Stat(*doc.ThumbnailPath)
	assert.True(t, os.IsNotExist(statErr), "thumbnail file must be removed")

	got, err := svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = svc.Thumbnail(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteManyMissingIDAbortsBatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc := addDocument(t, svc, "survivor", 1)

	err := svc.DeleteMany(ctx, []string{doc.ID, "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "batch with a missing id must not delete anything")
	for _, page := range got.PagePaths {
		_, statErr := os.Stat(page)
		assert.NoError(t, statErr, "page files survive an aborted batch")
	}
}

func TestThumbnailCaching(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	thumbSource := filepath.Join(t.TempDir(), "thumb.jpg")
	content := []byte("jpeg preview bytes")
	require.NoError(t, os.WriteFile(thumbSource, content, 0o600))

	doc, err := svc.Add(ctx, AddDocumentInput{
		Title:            "pictured",
		SourceThumbnail:  &thumbSource,
		OriginalFileName: "pictured.pdf",
		MimeType:         "application/pdf",
	})
	require.NoError(t, err)

	first, err := svc.Thumbnail(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, content, first)

	second, err := svc.Thumbnail(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, content, second)

	hits, misses, rate := svc.ThumbnailCacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 50.0, rate, 0.01)
}

func TestThumbnailAbsent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc := addDocument(t, svc, "plain", 1)

	data, err := svc.Thumbnail(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSearchHistoryManagement(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Search(ctx, "first")
	require.NoError(t, err)
	_, err = svc.Search(ctx, "second")
	require.NoError(t, err)

	history, err := svc.SearchHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "second", history[0].Query)

	err = svc.DeleteSearchHistory(ctx, history[0].ID)
	require.NoError(t, err)
	err = svc.DeleteSearchHistory(ctx, history[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.ClearSearchHistory(ctx))
	history, err = svc.SearchHistory(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRebuildSearchIndex(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	addDocument(t, svc, "rebuilt", 1)
	require.NoError(t, svc.RebuildSearchIndex(ctx))

	docs, err := svc.Search(ctx, "rebuilt")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestErrorFormatting(t *testing.T) {
	nf := notFoundError("document %s not found", "abc")
	assert.Equal(t, "NotFound: document abc not found", nf.Error())
	assert.True(t, errors.Is(nf, ErrNotFound))

	cause := errors.New("disk I/O error")
	st := storageError("failed to list documents", cause)
	assert.Equal(t, "Storage: failed to list documents (caused by: disk I/O error)", st.Error())
	assert.ErrorIs(t, st, cause)
	assert.False(t, errors.Is(st, ErrNotFound))
}
