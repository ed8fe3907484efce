package database

import (
	"database/sql"
	"strings"
	"time"
)

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func optionalString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func boolToInt64(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

// timeLayout is ISO-8601 in UTC with a fixed-width nanosecond fraction.
// RFC3339Nano trims trailing fractional zeros, which makes ".5Z" sort after
// ".500000001Z" under TEXT comparison; the fixed width keeps lexicographic
// ORDER BY equal to chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders timestamps the way they are persisted.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

// placeholders returns "?, ?, ..., ?" with n markers for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idsToArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
