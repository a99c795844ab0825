package retrieval

import (
	"fmt"
	"sort"
	"strings"
)

// domainKeywords are SQL-intent words that boost a chunk when they appear
// in both the query and the chunk.
var domainKeywords = []string{"select", "sum", "count", "avg", "group", "where", "order"}

// fallbackContext is returned when the corpus failed to load entirely.
// Downstream prompt construction assumes a non-empty context string.
const fallbackContext = "The database contains tables with typed columns. " +
	"Consult the schema section of the prompt for table names, column names, and sample values."

// Index scores corpus chunks against a question.
type Index struct {
	corpus *Corpus
}

// NewIndex creates an Index over the given corpus. A nil corpus is
// treated as empty.
func NewIndex(corpus *Corpus) *Index {
	if corpus == nil {
		corpus = &Corpus{}
	}
	return &Index{corpus: corpus}
}

type scoredChunk struct {
	pos   int
	score int
	text  string
}

// Search returns up to k chunks ordered by relevance to the query.
// A chunk scores one point per shared lowercased word, ten points if the
// full lowercased query appears verbatim inside it, and two points per
// domain keyword present in both. Zero-scoring chunks are excluded; ties
// keep corpus order.
func (ix *Index) Search(query string, k int) []string {
	if k <= 0 || ix.corpus.Len() == 0 {
		return nil
	}

	queryLower := strings.ToLower(query)
	queryWords := tokenize(queryLower)

	var scored []scoredChunk
	for i, chunk := range ix.corpus.Chunks {
		s := score(queryLower, queryWords, chunk)
		if s > 0 {
			scored = append(scored, scoredChunk{pos: i, score: s, text: chunk})
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].score > scored[b].score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	out := make([]string, len(scored))
	for i, sc := range scored {
		out[i] = sc.text
	}
	return out
}

// Context returns the retrieved excerpts formatted for prompt inclusion.
// It never returns an empty string: when nothing scores above zero it
// falls back to the first k chunks verbatim, and when the corpus itself
// is empty it returns a minimal hard-coded description.
func (ix *Index) Context(query string, k int) string {
	chunks := ix.Search(query, k)
	if len(chunks) == 0 {
		if ix.corpus.Len() == 0 {
			return fallbackContext
		}
		n := k
		if n > ix.corpus.Len() {
			n = ix.corpus.Len()
		}
		chunks = ix.corpus.Chunks[:n]
	}

	var b strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Context %d]\n%s", i+1, chunk)
	}
	return b.String()
}

func score(queryLower string, queryWords map[string]bool, chunk string) int {
	chunkLower := strings.ToLower(chunk)
	chunkWords := tokenize(chunkLower)

	s := 0
	for w := range queryWords {
		if chunkWords[w] {
			s++
		}
	}
	if strings.Contains(chunkLower, queryLower) {
		s += 10
	}
	for _, kw := range domainKeywords {
		if queryWords[kw] && chunkWords[kw] {
			s += 2
		}
	}
	return s
}

// tokenize splits lowercased text into a word set on any non-alphanumeric
// boundary.
func tokenize(lower string) map[string]bool {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_'
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
