package convert

import (
	"context"
	"fmt"
)

// Suggester derives example questions from the schema context, so a
// caller with no knowledge of the data can see what kinds of questions
// the pipeline answers.
type Suggester struct {
	contextProvider ContextProvider
}

// NewSuggester creates a Suggester over the given context provider.
func NewSuggester(cp ContextProvider) *Suggester {
	return &Suggester{contextProvider: cp}
}

// Suggestions returns up to limit example questions. Phrasings mirror
// the intent patterns the generator is instructed on: raw retrieval,
// aggregation, category filters from real distinct values, and date
// filters from real periods.
func (s *Suggester) Suggestions(ctx context.Context, limit int) ([]string, error) {
	sc, err := s.contextProvider.Context(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	var out []string
	add := func(q string) bool {
		if len(out) >= limit {
			return false
		}
		out = append(out, q)
		return true
	}

	for i := range sc.Tables {
		tc := &sc.Tables[i]
		name := tc.Schema.Name

		if !add(fmt.Sprintf("show all %s", name)) {
			return out, nil
		}
		if !add(fmt.Sprintf("how many %s are there", name)) {
			return out, nil
		}

		for _, cd := range tc.Distincts {
			if cd.HighCardinality || len(cd.Values) == 0 {
				continue
			}
			if !add(fmt.Sprintf("show all %s where %s is %s", name, cd.Column, cd.Values[0])) {
				return out, nil
			}
			if len(cd.Values) > 1 {
				if !add(fmt.Sprintf("show %s and %s %s", cd.Values[0], cd.Values[1], name)) {
					return out, nil
				}
			}
		}

		for _, ds := range tc.Dates {
			if len(ds.PerMonth) == 0 {
				continue
			}
			if !add(fmt.Sprintf("count %s per month by %s", name, ds.Column)) {
				return out, nil
			}
		}
	}
	return out, nil
}
