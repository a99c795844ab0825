// Package sqlguard enforces the read-only contract on generated SQL
// before it reaches the database. Generated statements are model output,
// so every one is screened: only a single SELECT or WITH statement may
// pass.
package sqlguard

import (
	"fmt"
	"regexp"
	"strings"
)

// forbiddenVerbs are statement verbs that mutate data or schema. A
// generated statement containing any of them as a standalone word is
// rejected outright.
var forbiddenVerbs = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER",
	"TRUNCATE", "GRANT", "REVOKE", "EXEC", "EXECUTE", "MERGE",
	"REPLACE", "ATTACH", "DETACH", "VACUUM", "PRAGMA",
}

var forbiddenRe = regexp.MustCompile(`(?i)\b(` + strings.Join(forbiddenVerbs, "|") + `)\b`)

// Check validates that sqlText is one read-only statement. It must start
// with SELECT or WITH, contain no mutating verbs, and hold at most one
// statement terminator.
func Check(sqlText string) error {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return fmt.Errorf("empty statement")
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("statement must start with SELECT or WITH")
	}

	body := strings.TrimSuffix(trimmed, ";")
	if strings.ContainsRune(body, ';') {
		return fmt.Errorf("multiple statements are not allowed")
	}

	if m := forbiddenRe.FindString(trimmed); m != "" {
		return fmt.Errorf("forbidden keyword %q in statement", strings.ToUpper(m))
	}

	return nil
}
