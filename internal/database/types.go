package database

import "time"

// OCRStatus tracks the lifecycle of text recognition for a document.
type OCRStatus string

const (
	OCRPending    OCRStatus = "pending"
	OCRProcessing OCRStatus = "processing"
	OCRCompleted  OCRStatus = "completed"
	OCRFailed     OCRStatus = "failed"
)

// DocumentRecord represents a row in the documents table together with the
// hydrated child data (page paths and tag ids). PageCount always equals the
// number of stored page references; OCRText is non-nil only when OCRStatus is
// OCRCompleted.
type DocumentRecord struct {
	ID               string
	Title            string
	Description      *string
	FilePath         string
	ThumbnailPath    *string
	OriginalFileName string
	PageCount        int64
	FileSize         int64
	MimeType         string
	OCRText          *string
	OCRStatus        OCRStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
	FolderID         *string
	IsFavorite       bool

	// Hydrated via batched lookups; never loaded one query per document.
	PagePaths []string
	TagIDs    []string
}

// SearchHistoryRecord is one remembered search. Append-only except for
// explicit clear/delete.
type SearchHistoryRecord struct {
	ID          int64
	Query       string
	Timestamp   time.Time
	ResultCount int64
}

// ListOptions controls ordering and paging of document list queries.
type ListOptions struct {
	OrderBy string // one of the orderBy* constants; empty means created_at DESC
	Limit   int64  // 0 means no limit
	Offset  int64
}

// Permitted ORDER BY clauses. Kept as a closed set so no caller-provided
// text ever reaches the query.
const (
	OrderByCreatedAtDesc = "created_at DESC"
	OrderByCreatedAtAsc  = "created_at ASC"
	OrderByUpdatedAtDesc = "updated_at DESC"
	OrderByTitleAsc      = "title ASC"
)
