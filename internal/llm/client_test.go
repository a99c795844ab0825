package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaClientComplete(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "SELECT 1;", Done: true})
	}))
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: srv.URL, Model: "test-model"})
	out, err := c.Complete(context.Background(), CompletionRequest{
		Prompt:      "question",
		System:      "system",
		Temperature: 0.1,
		MaxTokens:   1024,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "SELECT 1;" {
		t.Errorf("response = %q", out)
	}

	if got.Model != "test-model" {
		t.Errorf("model = %q", got.Model)
	}
	if got.Stream {
		t.Error("requests must be non-streaming")
	}
	if got.Options.Temperature != 0.1 {
		t.Errorf("temperature = %v", got.Options.Temperature)
	}
	if got.Options.NumPredict != 1024 {
		t.Errorf("num_predict = %d", got.Options.NumPredict)
	}
}

func TestOllamaClientUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
		},
		{
			name: "empty response body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(generateResponse{Response: "", Done: true})
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewOllamaClient(OllamaConfig{BaseURL: srv.URL})
			_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "q"})
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("expected ErrUnavailable, got %v", err)
			}
		})
	}

	// Connection refused entirely.
	c := NewOllamaClient(OllamaConfig{BaseURL: "http://127.0.0.1:1"})
	if _, err := c.Complete(context.Background(), CompletionRequest{Prompt: "q"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for dead server, got %v", err)
	}
}

func TestOllamaClientPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: srv.URL})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	c = NewOllamaClient(OllamaConfig{BaseURL: "http://127.0.0.1:1"})
	if err := c.Ping(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestGeneratorExtractsFromNoisyResponse(t *testing.T) {
	client := &fakeClient{response: "Here is the query:\n```sql\nSELECT SUM(amount) FROM sales;\n```"}
	g := NewGenerator(client, discardLogger())

	sql, err := g.Generate(context.Background(), "total sales", "TABLE: sales")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sql != "SELECT SUM(amount) FROM sales;" {
		t.Errorf("sql = %q", sql)
	}

	// Low temperature and the intent rules must reach the service.
	if client.lastReq.Temperature != generationTemperature {
		t.Errorf("temperature = %v", client.lastReq.Temperature)
	}
	if client.lastReq.System == "" {
		t.Error("system prompt missing")
	}
}

func TestGeneratorNoStatement(t *testing.T) {
	client := &fakeClient{response: "I cannot write a query for that."}
	g := NewGenerator(client, discardLogger())

	if _, err := g.Generate(context.Background(), "q", "ctx"); !errors.Is(err, ErrNoStatement) {
		t.Errorf("expected ErrNoStatement, got %v", err)
	}
}
