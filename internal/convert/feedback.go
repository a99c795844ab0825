package convert

import (
	"fmt"
	"strings"

	"github.com/seeqdb/seeq/internal/model"
)

// BuildFeedbackQuestion augments the original question with the previous
// attempt's SQL and the reason it was rejected, so the next generation
// starts from the failure instead of from scratch.
func BuildFeedbackQuestion(question string, rejection *model.Rejection) string {
	var b strings.Builder
	b.WriteString(question)
	b.WriteString("\n\nYour previous SQL attempt was:\n")
	b.WriteString(rejection.SQL)

	switch rejection.Kind {
	case model.RejectionExecution:
		fmt.Fprintf(&b, "\n\nIt failed to execute with this error:\n%s", rejection.ErrorText)
	case model.RejectionVerdict:
		fmt.Fprintf(&b, "\n\nIt executed but did not answer the question. Reason: %s", rejection.Reason)
		if rejection.SuggestedFix != "" {
			fmt.Fprintf(&b, "\nSuggested fix: %s", rejection.SuggestedFix)
		}
	}

	b.WriteString("\n\nGenerate a corrected SQL query. Remember:")
	b.WriteString("\n- If the question asks for \"all\" rows, do not add a LIMIT clause.")
	b.WriteString("\n- Use the exact category value spellings shown in the database context.")
	return b.String()
}
