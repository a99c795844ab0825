package model

import "time"

// SessionStatus is the terminal status of a conversion session.
type SessionStatus string

const (
	// StatusVerifiedCorrect means an attempt executed and the verifier
	// judged the result to answer the question.
	StatusVerifiedCorrect SessionStatus = "verified_correct"
	// StatusAcceptedAfterMaxRetries means the attempt budget ran out; the
	// last successfully executed attempt is returned unverified.
	StatusAcceptedAfterMaxRetries SessionStatus = "accepted_after_max_retries"
	// StatusGenerationFailed means the generation service was unreachable
	// or never produced a usable statement.
	StatusGenerationFailed SessionStatus = "generation_failed"
	// StatusExecutionFailedAllAttempts means every generated statement
	// failed to execute.
	StatusExecutionFailedAllAttempts SessionStatus = "execution_failed_all_attempts"
)

// Verified reports whether the session ended with a verifier-approved result.
func (s SessionStatus) Verified() bool { return s == StatusVerifiedCorrect }

// RejectionKind distinguishes why an attempt was rejected.
type RejectionKind string

const (
	RejectionExecution RejectionKind = "execution_error"
	RejectionVerdict   RejectionKind = "verifier_rejected"
)

// Rejection is the tagged reason an attempt was rejected. The feedback
// prompt builder consumes it uniformly, so the retry loop has a single
// transition path regardless of cause.
type Rejection struct {
	Kind         RejectionKind
	SQL          string
	ErrorText    string // execution errors
	Reason       string // verifier rejections
	SuggestedFix string
}

// Verdict is the verifier's judgment of one executed attempt.
type Verdict struct {
	IsCorrect    bool   `json:"is_correct"`
	Reason       string `json:"reason,omitempty"`
	SuggestedFix string `json:"suggested_fix,omitempty"`
}

// ConversionAttempt records one generate, execute, verify cycle.
type ConversionAttempt struct {
	Index     int        `json:"index"` // 1-based
	SQL       string     `json:"sql"`
	Executed  bool       `json:"executed"`
	ExecError string     `json:"exec_error,omitempty"`
	Result    *ResultSet `json:"-"`
	RowCount  int        `json:"row_count"`
	Verdict   *Verdict   `json:"verdict,omitempty"`
}

// ConversionSession is the ordered sequence of attempts for one question
// plus its terminal status. Created per question, discarded after the
// caller reads the outcome.
type ConversionSession struct {
	ID        string              `json:"id"`
	Question  string              `json:"question"`
	StartedAt time.Time           `json:"started_at"`
	Attempts  []ConversionAttempt `json:"attempts"`
	Status    SessionStatus       `json:"status"`
	FinalSQL  string              `json:"final_sql,omitempty"`
	Result    *ResultSet          `json:"-"`
}

// LastExecuted returns the most recent attempt that executed successfully,
// or nil if none did.
func (s *ConversionSession) LastExecuted() *ConversionAttempt {
	for i := len(s.Attempts) - 1; i >= 0; i-- {
		if s.Attempts[i].Executed {
			return &s.Attempts[i]
		}
	}
	return nil
}
