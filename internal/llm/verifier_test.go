package llm

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/seeqdb/seeq/internal/model"
)

// fakeClient returns a canned response or error.
type fakeClient struct {
	response string
	err      error
	lastReq  CompletionRequest
}

func (f *fakeClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.lastReq = req
	return f.response, f.err
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantParsed  bool
		wantCorrect bool
		wantReason  string
		wantFix     string
	}{
		{
			name:        "explicit yes",
			input:       "CORRECT: YES\nREASON: The filter matches the question.\nFIX:",
			wantParsed:  true,
			wantCorrect: true,
			wantReason:  "The filter matches the question.",
		},
		{
			name:        "explicit no with fix",
			input:       "CORRECT: NO\nREASON: The query adds LIMIT 5 but all rows were asked for.\nFIX: Remove the LIMIT clause.",
			wantParsed:  true,
			wantCorrect: false,
			wantReason:  "The query adds LIMIT 5 but all rows were asked for.",
			wantFix:     "Remove the LIMIT clause.",
		},
		{
			name:        "no space after colon",
			input:       "correct:no\nreason: wrong aggregate",
			wantParsed:  true,
			wantCorrect: false,
			wantReason:  "wrong aggregate",
		},
		{
			name:        "incorrect mentioned without marker",
			input:       "The result is INCORRECT because the region filter is missing.",
			wantParsed:  true,
			wantCorrect: false,
		},
		{
			name:       "no marker at all",
			input:      "Looks fine to me!",
			wantParsed: false,
		},
		{
			name:       "empty response",
			input:      "",
			wantParsed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, ok := ParseVerdict(tt.input)
			if ok != tt.wantParsed {
				t.Fatalf("parsed = %v, want %v", ok, tt.wantParsed)
			}
			if !tt.wantParsed {
				return
			}
			if verdict.IsCorrect != tt.wantCorrect {
				t.Errorf("IsCorrect = %v, want %v", verdict.IsCorrect, tt.wantCorrect)
			}
			if tt.wantReason != "" && verdict.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", verdict.Reason, tt.wantReason)
			}
			if tt.wantFix != "" && verdict.SuggestedFix != tt.wantFix {
				t.Errorf("SuggestedFix = %q, want %q", verdict.SuggestedFix, tt.wantFix)
			}
		})
	}
}

func TestVerifyFailsOpen(t *testing.T) {
	result := &model.ResultSet{Columns: []string{"amount"}, Rows: [][]any{{int64(300)}}}

	tests := []struct {
		name   string
		client *fakeClient
	}{
		{"service unreachable", &fakeClient{err: ErrUnavailable}},
		{"unparseable response", &fakeClient{response: "Sure, everything checks out."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(tt.client, discardLogger())
			verdict := v.Verify(context.Background(), "total sales", "SELECT SUM(amount) FROM sales;", result, "ctx")
			if !verdict.IsCorrect {
				t.Errorf("expected fail-open accept, got rejection: %+v", verdict)
			}
		})
	}
}

func TestVerifyRejection(t *testing.T) {
	client := &fakeClient{response: "CORRECT: NO\nREASON: unwarranted limit\nFIX: remove LIMIT"}
	v := NewVerifier(client, discardLogger())

	result := &model.ResultSet{Columns: []string{"id"}, Rows: [][]any{{int64(1)}}}
	verdict := v.Verify(context.Background(), "show all north sales", "SELECT * FROM sales LIMIT 5;", result, "ctx")

	if verdict.IsCorrect {
		t.Fatal("expected rejection")
	}
	if verdict.Reason != "unwarranted limit" {
		t.Errorf("Reason = %q", verdict.Reason)
	}
	if verdict.SuggestedFix != "remove LIMIT" {
		t.Errorf("SuggestedFix = %q", verdict.SuggestedFix)
	}

	// The prompt must carry the question, the SQL, and the checklist.
	for _, want := range []string{"show all north sales", "SELECT * FROM sales LIMIT 5;", "VERIFICATION CHECKLIST"} {
		if !strings.Contains(client.lastReq.Prompt, want) {
			t.Errorf("verification prompt missing %q", want)
		}
	}
}
