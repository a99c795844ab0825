// Package retrieval indexes a small free-text documentation corpus and
// returns the chunks most relevant to a question. Scoring is a
// bag-of-words heuristic: the vocabulary is closed (SQL keywords, table
// and column names), so exact word overlap is cheaper than embedding
// similarity and works just as well at this corpus size.
package retrieval

import (
	"os"
	"strings"
)

// Corpus is an ordered collection of text chunks, static for the process
// lifetime.
type Corpus struct {
	Chunks []string
}

// LoadCorpus reads a documentation file and splits it into chunks on
// blank-line boundaries. A missing or unreadable file yields an empty
// corpus and the error; the caller decides whether that is fatal.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Corpus{}, err
	}
	return ParseCorpus(string(data)), nil
}

// ParseCorpus splits raw documentation text into chunks on blank-line
// boundaries, dropping empty chunks.
func ParseCorpus(text string) *Corpus {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(normalized, "\n\n")

	c := &Corpus{}
	for _, part := range parts {
		chunk := strings.TrimSpace(part)
		if chunk != "" {
			c.Chunks = append(c.Chunks, chunk)
		}
	}
	return c
}

// Len returns the number of chunks in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Chunks)
}
