package database

import (
	"context"
	"time"
)

// SearchHistoryRepository records past searches. Rows are append-only apart
// from explicit delete and clear.
type SearchHistoryRepository struct {
	ctx *Context
}

func NewSearchHistoryRepository(dbCtx *Context) *SearchHistoryRepository {
	return &SearchHistoryRepository{ctx: dbCtx}
}

// Insert appends one history row and returns its id.
func (r *SearchHistoryRepository) Insert(ctx context.Context, query string, resultCount int64) (int64, error) {
	res, err := r.ctx.DB.ExecContext(ctx,
		`INSERT INTO search_history (query, timestamp, result_count) VALUES (?, ?, ?)`,
		query, formatTime(time.Now().UTC()), resultCount,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List returns the most recent searches, newest first. A limit of 0 returns
// everything.
func (r *SearchHistoryRepository) List(ctx context.Context, limit int64) ([]SearchHistoryRecord, error) {
	query := `SELECT id, query, timestamp, result_count FROM search_history ORDER BY timestamp DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.ctx.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []SearchHistoryRecord
	for rows.Next() {
		var (
			rec SearchHistoryRecord
			ts  string
		)
		if err := rows.Scan(&rec.ID, &rec.Query, &ts, &rec.ResultCount); err != nil {
			return nil, err
		}
		rec.Timestamp = parseTime(ts)
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Delete removes one history row. ErrNotFound when the id is unknown.
func (r *SearchHistoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.ctx.DB.ExecContext(ctx, `DELETE FROM search_history WHERE id = ?`, id)
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

// Clear removes all history rows.
func (r *SearchHistoryRepository) Clear(ctx context.Context) error {
	_, err := r.ctx.DB.ExecContext(ctx, `DELETE FROM search_history`)
	return err
}
