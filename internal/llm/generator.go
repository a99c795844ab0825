package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// Generation settings. SQL correctness needs determinism, not creativity,
// so the temperature stays near zero.
const (
	generationTemperature = 0.1
	generationMaxTokens   = 1024
)

const generatorSystemPrompt = `You are an expert SQL query generator. Your task is to convert natural language questions into precise, correct SQL queries.

CRITICAL RULES:
1. ONLY output the SQL query - no explanations, no markdown, no code blocks
2. Analyze the database schema, sample data, and date ranges carefully
3. Match column names and table names EXACTLY as shown in the schema
4. Always end queries with a semicolon

INTENT DETECTION - RAW DATA vs AGGREGATION:
When the question contains AGGREGATION keywords, use SUM/AVG/COUNT with GROUP BY:
  - "total", "sum", "average", "avg", "count", "how many", "how much"
  - "per", "by each", "for each", "breakdown", "summary"
  - Example: "total south sales" -> SELECT SUM(amount) FROM sales WHERE region = 'South'

When the question asks for RAW DATA (no aggregation keywords), use SELECT * with WHERE:
  - "show me", "list", "display", "get" -> SELECT all matching rows
  - "[category] sales" without total/sum/count -> SELECT * WHERE column = 'X'
  - Example: "south sales" -> SELECT * FROM sales WHERE region = 'South'

MULTIPLE VALUES FILTERING:
  - "X and Y" or "X or Y" -> WHERE column IN ('X', 'Y'), never a single equality
  - Example: "north and south sales" -> SELECT * FROM sales WHERE region IN ('North', 'South')

DATE/TIME HANDLING:
- Check the DATE RANGE and ROWS PER MONTH sections of the context before writing a date filter
- "January sales" without a year -> include ALL Januaries: WHERE EXTRACT(MONTH FROM date) = 1
- "January 2025" -> filter that exact year AND month
- Never filter on a period the context shows as having zero rows

SPECIAL PATTERNS:
- "all [items]" -> SELECT * with no LIMIT and no WHERE
- "top N" or "best" -> ORDER BY ... DESC LIMIT N
- "first quarter" -> WHERE EXTRACT(MONTH FROM date) IN (1, 2, 3)`

// Generator produces one SQL statement per question using the
// text-generation service.
type Generator struct {
	client Client
	logger *slog.Logger
}

// NewGenerator creates a Generator over the given client.
func NewGenerator(client Client, logger *slog.Logger) *Generator {
	return &Generator{client: client, logger: logger}
}

// Generate converts the question into one SQL statement grounded in the
// combined context. Returns ErrUnavailable when the service is
// unreachable and ErrNoStatement when the response held no usable SQL.
func (g *Generator) Generate(ctx context.Context, question, contextText string) (string, error) {
	prompt := fmt.Sprintf(`DATABASE CONTEXT:
%s

USER QUESTION: %s

Generate the SQL query that precisely answers this question. Consider:
1. What data does the user want to see?
2. Should it be filtered? By what criteria?
3. For DATE queries: check the DATE RANGE and ROWS PER MONTH sections above
4. Should it be aggregated? How?
5. Should it be sorted or limited?

SQL QUERY:`, contextText, question)

	raw, err := g.client.Complete(ctx, CompletionRequest{
		Prompt:      prompt,
		System:      generatorSystemPrompt,
		Temperature: generationTemperature,
		MaxTokens:   generationMaxTokens,
	})
	if err != nil {
		return "", err
	}

	sql, err := ExtractSQL(raw)
	if err != nil {
		g.logger.Warn("no SQL statement in model response", "response_chars", len(raw))
		return "", err
	}

	g.logger.Debug("generated SQL", "sql", sql)
	return sql, nil
}
