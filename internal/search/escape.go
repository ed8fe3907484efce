package search

import "strings"

// EscapeMatch prepares user text for an FTS MATCH expression. The query is
// split on whitespace, empty tokens are discarded, and each surviving token
// is wrapped in double quotes with embedded quotes doubled. Quoting forces
// literal-phrase interpretation, which neutralizes the FTS operator
// characters (*, -, +, ^).
func EscapeMatch(query string) string {
	fields := strings.Fields(query)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike backslash-escapes the LIKE wildcard metacharacters (% and _)
// and the escape character itself. Every pattern built from the result must
// be paired with an explicit ESCAPE '\' clause and bound as a parameter.
func EscapeLike(term string) string {
	return likeReplacer.Replace(term)
}
