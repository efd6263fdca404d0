package extract

// Rule is one weighted predicate in a scoring policy.
type Rule[C any] struct {
	Name   string
	Weight int
	Match  func(C) bool
}

// Policy is an ordered rule table. A candidate's score is the sum of the
// weights of every rule it matches; rules are independent.
type Policy[C any] []Rule[C]

// Score sums the weights of the matching rules.
func (p Policy[C]) Score(c C) int {
	total := 0
	for _, r := range p {
		if r.Match(c) {
			total += r.Weight
		}
	}
	return total
}

// Explain lists the names of the rules c matches, for debug logging.
func (p Policy[C]) Explain(c C) []string {
	var names []string
	for _, r := range p {
		if r.Match(c) {
			names = append(names, r.Name)
		}
	}
	return names
}

// Scored pairs a candidate with its score.
type Scored[C any] struct {
	Candidate C
	Score     int
}

// Best returns the first highest-scoring candidate. ok is false when
// there are no candidates or the best score is not positive.
func Best[C any](p Policy[C], candidates []C) (best Scored[C], ok bool) {
	for i, c := range candidates {
		s := p.Score(c)
		if i == 0 || s > best.Score {
			best = Scored[C]{Candidate: c, Score: s}
		}
	}
	return best, len(candidates) > 0 && best.Score > 0
}

// Strategy produces a candidate value for a field, or "" when it has none.
type Strategy func(*Page) string

// Chain tries strategies in priority order and falls back to a literal.
type Chain struct {
	Strategies []Strategy
	Fallback   string
}

// Run returns the first non-empty strategy result, or the fallback.
func (c Chain) Run(p *Page) string {
	for _, s := range c.Strategies {
		if v := s(p); v != "" {
			return v
		}
	}
	return c.Fallback
}
