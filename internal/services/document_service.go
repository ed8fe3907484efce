// Package services exposes the high-level document operations of docstash:
// metadata CRUD, search with history, tagging, and the decrypted-thumbnail
// path. It is the only caller of the search index manager and the thumbnail
// cache.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/docstash/docstash/internal/cache"
	"github.com/docstash/docstash/internal/config"
	"github.com/docstash/docstash/internal/database"
	"github.com/docstash/docstash/internal/logging"
	"github.com/docstash/docstash/internal/search"
)

// Thumbnail cache bounds. Thumbnails are small JPEG previews; 10 MiB covers
// a few hundred of them.
const (
	defaultThumbCacheBytes = 10 << 20
	defaultThumbCacheItems = 200
)

// EncryptionService is the collaborator that owns key lifecycle and file
// encryption. Failures propagate as repository errors.
type EncryptionService interface {
	IsReady() bool
	EnsureKeyInitialized() (bool, error)
	EncryptFile(source, dest string) error
	DecryptFile(source, dest string) error
	DecryptFileBytes(source string) ([]byte, error)
}

// DocumentService is the sole mutation and query surface for document
// aggregates. It hides the storage layout (pages and tag links live in their
// own tables) behind the unified DocumentRecord value.
type DocumentService struct {
	dbCtx   *database.Context
	docs    *database.DocumentRepository
	history *database.SearchHistoryRepository
	index   *search.Manager
	thumbs  *cache.ThumbnailCache
	crypto  EncryptionService
	log     logging.Logger
}

// NewDocumentService wires the repositories, search manager, and thumbnail
// cache over one database context.
func NewDocumentService(dbCtx *database.Context, crypto EncryptionService, log logging.Logger) *DocumentService {
	return &DocumentService{
		dbCtx:   dbCtx,
		docs:    database.NewDocumentRepository(dbCtx),
		history: database.NewSearchHistoryRepository(dbCtx),
		index:   search.NewManager(dbCtx.DB, log),
		thumbs:  cache.NewThumbnailCache(defaultThumbCacheBytes, defaultThumbCacheItems),
		crypto:  crypto,
		log:     log,
	}
}

// Initialize provisions the search capability and the encryption key
// material. It reports whether either performed first-time setup. Callers
// must await it before issuing any other operation.
func (s *DocumentService) Initialize(ctx context.Context) (bool, error) {
	if err := s.index.Initialize(ctx); err != nil {
		return false, storageError("failed to initialize search index", err)
	}

	cryptoFirst, err := s.crypto.EnsureKeyInitialized()
	if err != nil {
		return false, encryptionError("failed to initialize encryption key", err)
	}

	return s.dbCtx.FirstRun || cryptoFirst, nil
}

// IsReady proxies the encryption service's readiness.
func (s *DocumentService) IsReady() bool {
	return s.crypto.IsReady()
}

// SearchCapability reports the full-text capability established by
// Initialize.
func (s *DocumentService) SearchCapability() search.Capability {
	return s.index.Capability()
}

// Get fetches one document with pages and tags hydrated. A missing id
// returns (nil, nil), not an error.
func (s *DocumentService) Get(ctx context.Context, id string) (*database.DocumentRecord, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, storageError("failed to load document", err)
	}
	if doc == nil {
		return nil, nil
	}

	docs := []database.DocumentRecord{*doc}
	if err := s.hydrate(ctx, docs); err != nil {
		return nil, err
	}
	return &docs[0], nil
}

// GetAll lists documents with batched hydration.
func (s *DocumentService) GetAll(ctx context.Context, opts database.ListOptions) ([]database.DocumentRecord, error) {
	docs, err := s.docs.List(ctx, opts)
	if err != nil {
		return nil, storageError("failed to list documents", err)
	}
	if err := s.hydrate(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetInFolder lists the documents of one folder; nil means the root.
func (s *DocumentService) GetInFolder(ctx context.Context, folderID *string) ([]database.DocumentRecord, error) {
	docs, err := s.docs.ListByFolder(ctx, folderID)
	if err != nil {
		return nil, storageError("failed to list folder documents", err)
	}
	if err := s.hydrate(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetFavorites lists all favorite documents.
func (s *DocumentService) GetFavorites(ctx context.Context) ([]database.DocumentRecord, error) {
	docs, err := s.docs.ListFavorites(ctx)
	if err != nil {
		return nil, storageError("failed to list favorites", err)
	}
	if err := s.hydrate(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetByTag lists the documents linked to a tag.
func (s *DocumentService) GetByTag(ctx context.Context, tagID string) ([]database.DocumentRecord, error) {
	docs, err := s.docs.ListByTag(ctx, tagID)
	if err != nil {
		return nil, storageError("failed to list documents by tag", err)
	}
	if err := s.hydrate(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Search delegates matching to the search index manager, hydrates the
// results exactly like the list queries, and records the query in the
// search history. Degraded capability is invisible here.
func (s *DocumentService) Search(ctx context.Context, query string) ([]database.DocumentRecord, error) {
	docs, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, storageError("search failed", err)
	}
	if err := s.hydrate(ctx, docs); err != nil {
		return nil, err
	}

	if trimmed := strings.TrimSpace(query); trimmed != "" {
		if _, err := s.history.Insert(ctx, trimmed, int64(len(docs))); err != nil {
			// History is best-effort; a failed insert must not fail the search.
			s.log.Warn(ctx, "failed to record search history", "error", err)
		}
	}
	return docs, nil
}

// AddDocumentInput describes a new document to ingest. SourcePagePaths are
// plaintext files on disk; they are encrypted into the objects directory in
// page order.
type AddDocumentInput struct {
	Title            string
	Description      *string
	SourcePagePaths  []string
	SourceThumbnail  *string
	OriginalFileName string
	MimeType         string
	FolderID         *string
}

// Add ingests a document: every source page is encrypted into the objects
// directory, the optional thumbnail into the thumbnails directory, and the
// metadata row plus page references are inserted in one transaction.
func (s *DocumentService) Add(ctx context.Context, input AddDocumentInput) (*database.DocumentRecord, error) {
	id := uuid.NewString()
	docDir := filepath.Join(config.GetObjectsDir(), id)

	var (
		pagePaths []string
		fileSize  int64
	)
	for i, source := range input.SourcePagePaths {
		dest := filepath.Join(docDir, fmt.Sprintf("page_%04d.enc", i+1))
		if err := s.crypto.EncryptFile(source, dest); err != nil {
			return nil, encryptionError(fmt.Sprintf("failed to encrypt page %d", i+1), err)
		}
		pagePaths = append(pagePaths, dest)

		if info, err := os.Stat(source); err == nil {
			fileSize += info.Size()
		}
	}

	var thumbPath *string
	if input.SourceThumbnail != nil {
		dest := filepath.Join(config.GetThumbnailsDir(), id+".enc")
		if err := s.crypto.EncryptFile(*input.SourceThumbnail, dest); err != nil {
			return nil, encryptionError("failed to encrypt thumbnail", err)
		}
		thumbPath = &dest
	}

	doc := &database.DocumentRecord{
		ID:               id,
		Title:            input.Title,
		Description:      input.Description,
		FilePath:         docDir,
		ThumbnailPath:    thumbPath,
		OriginalFileName: input.OriginalFileName,
		FileSize:         fileSize,
		MimeType:         input.MimeType,
		OCRStatus:        database.OCRPending,
		FolderID:         input.FolderID,
		PagePaths:        pagePaths,
	}

	if err := s.docs.Insert(ctx, doc); err != nil {
		return nil, storageError("failed to insert document", err)
	}
	doc.TagIDs = []string{}
	return doc, nil
}

// Update rewrites a document's metadata. Not-found when the row vanished.
func (s *DocumentService) Update(ctx context.Context, doc *database.DocumentRecord) error {
	if err := s.docs.Update(ctx, doc); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFoundError("document %s not found", doc.ID)
		}
		return storageError("failed to update document", err)
	}
	return nil
}

// UpdateOCR is the single mutation contract for OCR text and status. A nil
// text clears the column. When status is nil it is inferred: completed for
// non-nil text, otherwise the current status is kept. Text is persisted only
// under a completed status, so OCR text can never be non-null in any other
// state.
func (s *DocumentService) UpdateOCR(ctx context.Context, id string, text *string, status *database.OCRStatus) error {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return storageError("failed to load document", err)
	}
	if doc == nil {
		return notFoundError("document %s not found", id)
	}

	resolved := doc.OCRStatus
	if status != nil {
		resolved = *status
	} else if text != nil {
		resolved = database.OCRCompleted
	}
	if resolved != database.OCRCompleted {
		text = nil
	}

	if err := s.docs.UpdateOCR(ctx, id, text, resolved); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFoundError("document %s not found", id)
		}
		return storageError("failed to update OCR data", err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
// Not-found if the document vanished between fetch and write.
func (s *DocumentService) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return false, storageError("failed to load document", err)
	}
	if doc == nil {
		return false, notFoundError("document %s not found", id)
	}

	next := !doc.IsFavorite
	if err := s.docs.SetFavorite(ctx, id, next); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, notFoundError("document %s not found", id)
		}
		return false, storageError("failed to toggle favorite", err)
	}
	return next, nil
}

// MoveToFolder assigns the document to a folder; nil moves it to the root.
// Folder existence is not enforced here.
func (s *DocumentService) MoveToFolder(ctx context.Context, id string, folderID *string) error {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return storageError("failed to load document", err)
	}
	if doc == nil {
		return notFoundError("document %s not found", id)
	}

	if err := s.docs.SetFolder(ctx, id, folderID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFoundError("document %s not found", id)
		}
		return storageError("failed to move document", err)
	}
	return nil
}

// Delete removes one document: rows first, then the encrypted files, then
// the cached thumbnail.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany removes several documents. Every id is fetched first so the
// encrypted files can be removed after the rows; a missing id fails the
// whole batch with not-found before anything is deleted.
func (s *DocumentService) DeleteMany(ctx context.Context, ids []string) error {
	fetched := make([]*database.DocumentRecord, 0, len(ids))
	for _, id := range ids {
		doc, err := s.docs.FindByID(ctx, id)
		if err != nil {
			return storageError("failed to load document", err)
		}
		if doc == nil {
			return notFoundError("document %s not found", id)
		}
		doc.PagePaths, err = s.docs.PagePaths(ctx, id)
		if err != nil {
			return storageError("failed to load page paths", err)
		}
		fetched = append(fetched, doc)
	}

	if err := s.docs.DeleteMany(ctx, ids); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFoundError("document vanished during delete")
		}
		return storageError("failed to delete documents", err)
	}

	for _, doc := range fetched {
		for _, page := range doc.PagePaths {
			_ = os.Remove(page)
		}
		if doc.ThumbnailPath != nil {
			_ = os.Remove(*doc.ThumbnailPath)
		}
		_ = os.Remove(doc.FilePath)
		s.thumbs.Invalidate(doc.ID)
	}
	return nil
}

// GetTags returns the tag ids linked to a document.
func (s *DocumentService) GetTags(ctx context.Context, id string) ([]string, error) {
	tags, err := s.docs.TagsForDocument(ctx, id)
	if err != nil {
		return nil, storageError("failed to load tags", err)
	}
	return tags, nil
}

// AddTag links a tag to a document.
func (s *DocumentService) AddTag(ctx context.Context, id, tagID string) error {
	if err := s.docs.AddTag(ctx, id, tagID); err != nil {
		return storageError("failed to add tag", err)
	}
	return nil
}

// RemoveTag unlinks a tag from a document.
func (s *DocumentService) RemoveTag(ctx context.Context, id, tagID string) error {
	if err := s.docs.RemoveTag(ctx, id, tagID); err != nil {
		return storageError("failed to remove tag", err)
	}
	return nil
}

// Thumbnail returns the decrypted thumbnail bytes for a document, serving
// repeat reads from the cache. A document without a thumbnail returns
// (nil, nil). Concurrent misses may both decrypt; last write wins, which is
// harmless because decryption is deterministic.
func (s *DocumentService) Thumbnail(ctx context.Context, id string) ([]byte, error) {
	if data, ok := s.thumbs.Get(id); ok {
		return data, nil
	}

	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, storageError("failed to load document", err)
	}
	if doc == nil {
		return nil, notFoundError("document %s not found", id)
	}
	if doc.ThumbnailPath == nil {
		return nil, nil
	}

	data, err := s.crypto.DecryptFileBytes(*doc.ThumbnailPath)
	if err != nil {
		return nil, encryptionError("failed to decrypt thumbnail", err)
	}

	s.thumbs.Put(id, data)
	return data, nil
}

// ThumbnailCacheStats exposes the cache's cumulative hit/miss counters and
// hit-rate percentage.
func (s *DocumentService) ThumbnailCacheStats() (hits, misses uint64, hitRate float64) {
	hits, misses = s.thumbs.Stats()
	return hits, misses, s.thumbs.HitRate()
}

// TrimThumbnailCache evicts cached thumbnails down to target bytes, for
// memory-pressure handling.
func (s *DocumentService) TrimThumbnailCache(target int64) {
	s.thumbs.TrimToSize(target)
}

// RebuildSearchIndex recomputes the shadow index from the document rows.
func (s *DocumentService) RebuildSearchIndex(ctx context.Context) error {
	if err := s.index.RebuildIndex(ctx); err != nil {
		return storageError("failed to rebuild search index", err)
	}
	return nil
}

// SearchHistory returns recent searches, newest first.
func (s *DocumentService) SearchHistory(ctx context.Context, limit int64) ([]database.SearchHistoryRecord, error) {
	records, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, storageError("failed to load search history", err)
	}
	return records, nil
}

// DeleteSearchHistory removes one history row.
func (s *DocumentService) DeleteSearchHistory(ctx context.Context, id int64) error {
	if err := s.history.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFoundError("search history entry %d not found", id)
		}
		return storageError("failed to delete search history", err)
	}
	return nil
}

// ClearSearchHistory removes all history rows.
func (s *DocumentService) ClearSearchHistory(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return storageError("failed to clear search history", err)
	}
	return nil
}

// hydrate resolves page paths and tag ids for all docs with one batched
// query each, never one query per document.
func (s *DocumentService) hydrate(ctx context.Context, docs []database.DocumentRecord) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}

	pages, err := s.docs.BatchPagePaths(ctx, ids)
	if err != nil {
		return storageError("failed to batch-load page paths", err)
	}
	tags, err := s.docs.BatchTags(ctx, ids)
	if err != nil {
		return storageError("failed to batch-load tags", err)
	}

	for i := range docs {
		docs[i].PagePaths = pages[docs[i].ID]
		docs[i].TagIDs = tags[docs[i].ID]
	}
	return nil
}
