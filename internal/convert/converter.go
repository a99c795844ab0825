// Package convert drives the conversion loop: build context, generate
// SQL, execute it, verify the result, and on rejection retry with
// accumulated feedback up to a bounded number of attempts. It is the only
// package with retry logic; everything it calls is a pure
// request/response transform.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/seeqdb/seeq/internal/model"
	"github.com/seeqdb/seeq/internal/observability"
	"github.com/seeqdb/seeq/internal/sqlguard"
)

// SQLGenerator produces one SQL statement for a question and context.
type SQLGenerator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
}

// ResultVerifier judges whether executed SQL answers the question.
type ResultVerifier interface {
	Verify(ctx context.Context, question, sqlText string, result *model.ResultSet, contextText string) model.Verdict
}

// Executor runs read-only SQL against the target database.
type Executor interface {
	Query(ctx context.Context, sqlText string) (*model.ResultSet, error)
}

// ContextProvider supplies the cached schema context.
type ContextProvider interface {
	Context(ctx context.Context) (*model.SchemaContext, error)
}

// Retriever returns documentation excerpts relevant to a question.
type Retriever interface {
	Context(query string, k int) string
}

// Config bounds the conversion loop.
type Config struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	TopK         int           `yaml:"top_k"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// DefaultConfig returns the loop defaults. The attempt bound and
// retrieval breadth are tunables, not contracts.
func DefaultConfig() Config {
	return Config{MaxAttempts: 5, TopK: 3, QueryTimeout: 30 * time.Second}
}

// Converter turns natural-language questions into executed, verified SQL.
type Converter struct {
	contextProvider ContextProvider
	retriever       Retriever
	generator       SQLGenerator
	verifier        ResultVerifier
	executor        Executor
	cfg             Config
	logger          *slog.Logger
}

// New creates a Converter from its collaborators.
func New(cp ContextProvider, r Retriever, g SQLGenerator, v ResultVerifier, e Executor, cfg Config, logger *slog.Logger) *Converter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	return &Converter{
		contextProvider: cp,
		retriever:       r,
		generator:       g,
		verifier:        v,
		executor:        e,
		cfg:             cfg,
		logger:          logger,
	}
}

// Convert runs the full loop for one question and returns the session
// record. The error is non-nil only when no session outcome exists at
// all: a missing schema context. A generation failure returns the session
// with status generation_failed alongside the error so callers can still
// inspect the attempt history.
func (c *Converter) Convert(ctx context.Context, question string) (*model.ConversionSession, error) {
	session := &model.ConversionSession{
		ID:        uuid.NewString(),
		Question:  question,
		StartedAt: time.Now(),
	}
	logger := c.logger.With("session_id", session.ID)

	sc, err := c.contextProvider.Context(ctx)
	if err != nil {
		return nil, fmt.Errorf("build schema context: %w", err)
	}
	docContext := c.retriever.Context(question, c.cfg.TopK)
	fullContext := sc.Text + "\n\nDOCUMENTATION:\n" + docContext

	var lastRejection *model.Rejection
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		prompt := question
		if lastRejection != nil {
			prompt = BuildFeedbackQuestion(question, lastRejection)
		}

		genStart := time.Now()
		sqlText, err := c.generator.Generate(ctx, prompt, fullContext)
		observability.ObserveLLMRequest("generate", time.Since(genStart))
		if err != nil {
			logger.Error("generation failed", "attempt", attempt, "error", err)
			session.Status = model.StatusGenerationFailed
			c.finish(session, logger)
			return session, fmt.Errorf("generate SQL: %w", err)
		}

		record := model.ConversionAttempt{Index: attempt, SQL: sqlText}

		rejection := c.runAttempt(ctx, logger, question, sqlText, fullContext, &record)
		session.Attempts = append(session.Attempts, record)

		if rejection == nil {
			session.Status = model.StatusVerifiedCorrect
			session.FinalSQL = record.SQL
			session.Result = record.Result
			c.finish(session, logger)
			return session, nil
		}

		logger.Info("attempt rejected",
			"attempt", attempt,
			"kind", rejection.Kind,
			"reason", firstNonEmpty(rejection.Reason, rejection.ErrorText),
		)
		lastRejection = rejection
	}

	// Budget exhausted. A usable but unverified answer beats no answer,
	// so return the last attempt that actually executed.
	if last := session.LastExecuted(); last != nil {
		session.Status = model.StatusAcceptedAfterMaxRetries
		session.FinalSQL = last.SQL
		session.Result = last.Result
	} else {
		session.Status = model.StatusExecutionFailedAllAttempts
	}
	c.finish(session, logger)
	return session, nil
}

// runAttempt executes and verifies one generated statement, filling the
// attempt record. A nil return means the attempt was accepted.
func (c *Converter) runAttempt(ctx context.Context, logger *slog.Logger, question, sqlText, fullContext string, record *model.ConversionAttempt) *model.Rejection {
	if err := sqlguard.Check(sqlText); err != nil {
		record.ExecError = err.Error()
		return &model.Rejection{Kind: model.RejectionExecution, SQL: sqlText, ErrorText: err.Error()}
	}

	execCtx := ctx
	if c.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, c.cfg.QueryTimeout)
		defer cancel()
	}

	queryStart := time.Now()
	result, err := c.executor.Query(execCtx, sqlText)
	observability.ObserveQuery(time.Since(queryStart))
	if err != nil {
		// An execution error is unambiguous rejection; verification is
		// skipped and the error text becomes feedback.
		record.ExecError = err.Error()
		return &model.Rejection{Kind: model.RejectionExecution, SQL: sqlText, ErrorText: err.Error()}
	}

	record.Executed = true
	record.Result = result
	record.RowCount = result.RowCount()

	verifyStart := time.Now()
	verdict := c.verifier.Verify(ctx, question, sqlText, result, fullContext)
	observability.ObserveLLMRequest("verify", time.Since(verifyStart))
	record.Verdict = &verdict

	if verdict.IsCorrect {
		return nil
	}
	return &model.Rejection{
		Kind:         model.RejectionVerdict,
		SQL:          sqlText,
		Reason:       verdict.Reason,
		SuggestedFix: verdict.SuggestedFix,
	}
}

func (c *Converter) finish(session *model.ConversionSession, logger *slog.Logger) {
	observability.ObserveConversion(string(session.Status), len(session.Attempts))
	logger.Info("conversion finished",
		"status", session.Status,
		"attempts", len(session.Attempts),
		"rows", session.Result.RowCount(),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
