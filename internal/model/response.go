package model

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the envelope returned by the conversion API.
type QueryResponse struct {
	SessionID string              `json:"session_id"`
	Question  string              `json:"question"`
	SQL       string              `json:"sql"`
	Status    SessionStatus       `json:"status"`
	Verified  bool                `json:"verified"`
	Columns   []string            `json:"columns,omitempty"`
	Resource  []map[string]any    `json:"resource"`
	Attempts  []ConversionAttempt `json:"attempts,omitempty"`
	Meta      *ResponseMeta       `json:"meta,omitempty"`
}

// ResponseMeta contains row-count and timing information.
type ResponseMeta struct {
	Count    int     `json:"count"`
	Attempts int     `json:"attempts"`
	TookMs   float64 `json:"took_ms"`
}

// SuggestionsResponse wraps the advisory example-question list.
type SuggestionsResponse struct {
	Resource []string `json:"resource"`
}

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
type ErrorDetail struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}
