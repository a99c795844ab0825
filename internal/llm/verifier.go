package llm

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/seeqdb/seeq/internal/model"
)

const verifierSystemPrompt = "You are a SQL verification expert. Analyze query results strictly and precisely. Check if the data returned actually answers the user's question correctly."

// verifierResultRows bounds how many result rows are rendered into the
// verification prompt.
const verifierResultRows = 50

var (
	reasonRe = regexp.MustCompile(`(?is)REASON:\s*(.+?)(?:FIX:|$)`)
	fixRe    = regexp.MustCompile(`(?is)FIX:\s*(.+)$`)
)

// Verifier judges whether executed SQL answers the original question.
type Verifier struct {
	client Client
	logger *slog.Logger
}

// NewVerifier creates a Verifier over the given client.
func NewVerifier(client Client, logger *slog.Logger) *Verifier {
	return &Verifier{client: client, logger: logger}
}

// Verify asks the model to judge the SQL and its result against the
// question. When the service is unreachable or the response cannot be
// parsed, the verdict defaults to correct: a judging failure is not
// evidence of a wrong query, and rejecting on it would force retries that
// can never succeed.
func (v *Verifier) Verify(ctx context.Context, question, sqlText string, result *model.ResultSet, contextText string) model.Verdict {
	prompt := fmt.Sprintf(`VERIFICATION TASK: Determine if this SQL query and result correctly answer the user's question.

USER QUESTION: %s

GENERATED SQL:
%s

RESULT (%d rows):
%s

DATABASE CONTEXT (for reference):
%s

VERIFICATION CHECKLIST:
1. Does the SQL query correctly interpret the user's question?
2. If the user asked for "all" data, are ALL rows returned (no LIMIT)?
3. If filtering by a value (e.g., region, product), is ONLY that value in the results?
4. Are the correct columns selected for the question asked?
5. Is aggregation correct if the question implies totals/averages/counts?
6. Does the number of rows returned make logical sense?

BE STRICT: If there is ANY mismatch between question intent and result, mark as INCORRECT.

RESPOND IN EXACTLY THIS FORMAT:
CORRECT: YES or NO
REASON: [one sentence explanation]
FIX: [if incorrect, the specific SQL change needed]`,
		question, sqlText, result.RowCount(), result.Render(verifierResultRows), contextText)

	raw, err := v.client.Complete(ctx, CompletionRequest{
		Prompt:      prompt,
		System:      verifierSystemPrompt,
		Temperature: generationTemperature,
		MaxTokens:   generationMaxTokens,
	})
	if err != nil {
		v.logger.Warn("verification unavailable, accepting result", "error", err)
		return model.Verdict{IsCorrect: true, Reason: "verification unavailable"}
	}

	verdict, ok := ParseVerdict(raw)
	if !ok {
		v.logger.Warn("unparseable verification response, accepting result", "response_chars", len(raw))
		return model.Verdict{IsCorrect: true, Reason: "verification response unparseable"}
	}
	return verdict
}

// ParseVerdict extracts a correctness verdict from a model response. The
// boolean result reports whether an explicit correctness marker was
// found; when it is false the caller must fail open.
func ParseVerdict(response string) (model.Verdict, bool) {
	upper := strings.ToUpper(response)

	verdict := model.Verdict{}
	switch {
	case strings.Contains(upper, "CORRECT: NO") || strings.Contains(upper, "CORRECT:NO"):
		verdict.IsCorrect = false
	case strings.Contains(upper, "CORRECT: YES") || strings.Contains(upper, "CORRECT:YES"):
		verdict.IsCorrect = true
	case strings.Contains(upper, "INCORRECT"):
		verdict.IsCorrect = false
	default:
		return model.Verdict{}, false
	}

	if m := reasonRe.FindStringSubmatch(response); m != nil {
		verdict.Reason = strings.TrimSpace(m[1])
	}
	if m := fixRe.FindStringSubmatch(response); m != nil {
		verdict.SuggestedFix = strings.TrimSpace(m[1])
	}
	return verdict, true
}
