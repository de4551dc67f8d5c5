package grading

import (
	"context"
	"strings"
)

// Q is the slice of a question the scorer needs.
type Q struct {
	Type      string
	Points    float64
	AnswerKey []string
}

// Result is the outcome of grading a single question response.
type Result struct {
	AutoPoints float64
	MaxPoints  float64
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, selected []string) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, selected []string) (Result, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, selected []string) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		s = g.strategies["single"]
	}
	return s.Grade(ctx, q, selected)
}

type Option func(*config)

type config struct {
	AllowPartialMulti bool // partial credit for multiple-choice without false positives
}

func WithPartialMulti(b bool) Option { return func(c *config) { c.AllowPartialMulti = b } }

// NewDefaultGrader installs the single and multiple choice strategies.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultGrader{
		strategies: map[string]Strategy{
			"single":   singleStrategy{},
			"multiple": multiStrategy{allowPartial: cfg.AllowPartialMulti},
		},
	}
}

// Total grades every question and returns the awarded and maximum points.
// responses is keyed by question id.
func Total(ctx context.Context, g Grader, qs []Q, ids []string, responses map[string][]string) (score, max float64) {
	for i, q := range qs {
		max += q.Points
		sel := responses[ids[i]]
		if len(sel) == 0 {
			continue
		}
		res, err := g.Grade(ctx, q, sel)
		if err != nil {
			continue
		}
		score += res.AutoPoints
	}
	return score, max
}

// --- Strategies ---

type singleStrategy struct{}

func (singleStrategy) Grade(_ context.Context, q Q, selected []string) (Result, error) {
	res := Result{MaxPoints: q.Points}
	if len(selected) != 1 {
		return res, nil
	}
	for _, k := range q.AnswerKey {
		if sameAnswer(selected[0], k) {
			res.AutoPoints = q.Points
			return res, nil
		}
	}
	return res, nil
}

type multiStrategy struct{ allowPartial bool }

func (s multiStrategy) Grade(_ context.Context, q Q, selected []string) (Result, error) {
	res := Result{MaxPoints: q.Points}
	correct := toSet(q.AnswerKey)
	resp := toSet(selected)

	if setEqual(correct, resp) {
		res.AutoPoints = q.Points
		return res, nil
	}
	for r := range resp {
		if _, ok := correct[r]; !ok {
			return res, nil
		}
	}
	if s.allowPartial && len(correct) > 0 {
		res.AutoPoints = q.Points * (float64(len(resp)) / float64(len(correct)))
	}
	return res, nil
}

// helpers

func sameAnswer(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
