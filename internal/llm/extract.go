package llm

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoStatement is returned when a model response contains no usable SQL
// statement. Callers treat it like an empty generation and retry.
var ErrNoStatement = errors.New("llm: no SQL statement in response")

var (
	sqlFenceRe  = regexp.MustCompile("(?is)```sql\\s*(.*?)\\s*```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	statementRe = regexp.MustCompile(`(?is)((?:WITH|SELECT)\s+.*?;)`)
)

// labelPrefixes are conversational lead-ins models prepend despite being
// told not to.
var labelPrefixes = []string{"SQL:", "Query:", "Answer:", "Here is", "The SQL query"}

// ExtractSQL isolates one SQL statement from a possibly noisy model
// response. Preference order: a fenced sql block, any fenced block,
// the text after a stripped label prefix, then the first
// SELECT/WITH-initiated statement found anywhere. The result always ends
// with a semicolon. ErrNoStatement is returned when nothing
// statement-like exists; malformed text is never passed through.
func ExtractSQL(response string) (string, error) {
	text := strings.TrimSpace(response)

	if m := sqlFenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	} else if m := anyFenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	for _, prefix := range labelPrefixes {
		if len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix) {
			text = strings.TrimSpace(text[len(prefix):])
		}
	}

	upper := strings.ToUpper(text)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		if m := statementRe.FindStringSubmatch(text); m != nil {
			text = m[1]
		} else if idx := strings.Index(upper, "SELECT"); idx >= 0 {
			text = text[idx:]
			if semi := strings.IndexByte(text, ';'); semi >= 0 {
				text = text[:semi+1]
			}
		} else {
			return "", ErrNoStatement
		}
	}

	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, ";") {
		text += ";"
	}
	if len(text) < 10 {
		return "", ErrNoStatement
	}
	return text, nil
}
