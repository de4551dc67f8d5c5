package session

import (
	"errors"
	"fmt"

	"github.com/mind-engage/certprep/internal/exam"
)

var ErrUnknownOrdinal = errors.New("unknown question ordinal")

// Toggle selects how a multiple-choice answer is mutated.
type Toggle int

const (
	// ToggleNone replaces the whole selection with the given option.
	ToggleNone Toggle = iota
	ToggleOn
	ToggleOff
)

// AnswerStore holds the learner's selections keyed by ordinal. Single-choice
// ordinals keep a scalar, multiple-choice ordinals an ordered set; the shape
// is fixed by the question type at construction.
type AnswerStore struct {
	types  map[int]exam.QuestionType
	single map[int]string
	multi  map[int][]string
}

func NewAnswerStore(questions []exam.Question) *AnswerStore {
	s := &AnswerStore{
		types:  make(map[int]exam.QuestionType, len(questions)),
		single: map[int]string{},
		multi:  map[int][]string{},
	}
	for _, q := range questions {
		s.types[q.Ordinal] = q.Type
	}
	return s
}

// Set is the only mutation entry point.
func (s *AnswerStore) Set(ordinal int, option string, toggle Toggle) error {
	t, ok := s.types[ordinal]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownOrdinal, ordinal)
	}
	if t != exam.TypeMultiple {
		s.single[ordinal] = option
		return nil
	}
	cur := s.multi[ordinal]
	switch toggle {
	case ToggleOn:
		if indexOf(cur, option) < 0 {
			s.multi[ordinal] = append(cur, option)
		}
	case ToggleOff:
		if i := indexOf(cur, option); i >= 0 {
			next := make([]string, 0, len(cur)-1)
			next = append(next, cur[:i]...)
			s.multi[ordinal] = append(next, cur[i+1:]...)
		}
	default:
		s.multi[ordinal] = []string{option}
	}
	return nil
}

// Selection returns a copy of the current selection, never nil.
func (s *AnswerStore) Selection(ordinal int) []string {
	if s.types[ordinal] == exam.TypeMultiple {
		return append([]string{}, s.multi[ordinal]...)
	}
	if v := s.single[ordinal]; v != "" {
		return []string{v}
	}
	return []string{}
}

func (s *AnswerStore) Answered(ordinal int) bool {
	if s.types[ordinal] == exam.TypeMultiple {
		return len(s.multi[ordinal]) > 0
	}
	return s.single[ordinal] != ""
}

// AnsweredCount counts ordinals <= limit with a non-empty value.
func (s *AnswerStore) AnsweredCount(limit int) int {
	n := 0
	for o := range s.types {
		if o <= limit && s.Answered(o) {
			n++
		}
	}
	return n
}

func (s *AnswerStore) RemainingCount(limit int) int {
	return limit - s.AnsweredCount(limit)
}

// Snapshot copies every non-empty selection.
func (s *AnswerStore) Snapshot() map[int][]string {
	out := make(map[int][]string)
	for o := range s.types {
		if s.Answered(o) {
			out[o] = s.Selection(o)
		}
	}
	return out
}

func indexOf(xs []string, v string) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}
