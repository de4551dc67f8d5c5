package session_test

import (
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/session"
)

func mixedQuestions(n int, multi ...int) []exam.Question {
	isMulti := map[int]bool{}
	for _, o := range multi {
		isMulti[o] = true
	}
	qs := make([]exam.Question, n)
	for i := range qs {
		o := i + 1
		qs[i] = exam.Question{ID: "q" + strconv.Itoa(o), Ordinal: o, Type: exam.TypeSingle, Points: 1}
		if isMulti[o] {
			qs[i].Type = exam.TypeMultiple
		}
	}
	return qs
}

func TestSingleChoiceReplaces(t *testing.T) {
	s := session.NewAnswerStore(mixedQuestions(5))
	require.NoError(t, s.Set(3, "B", session.ToggleNone))
	require.NoError(t, s.Set(3, "C", session.ToggleOn))
	assert.Equal(t, []string{"C"}, s.Selection(3))
}

func TestMultiChoiceToggles(t *testing.T) {
	s := session.NewAnswerStore(mixedQuestions(5, 5))
	require.NoError(t, s.Set(5, "A", session.ToggleOn))
	require.NoError(t, s.Set(5, "B", session.ToggleOn))
	require.NoError(t, s.Set(5, "B", session.ToggleOn))
	require.NoError(t, s.Set(5, "A", session.ToggleOff))
	assert.Equal(t, []string{"B"}, s.Selection(5))

	require.NoError(t, s.Set(5, "D", session.ToggleNone))
	assert.Equal(t, []string{"D"}, s.Selection(5))

	require.NoError(t, s.Set(5, "D", session.ToggleOff))
	assert.Equal(t, []string{}, s.Selection(5))
	assert.False(t, s.Answered(5))
}

func TestUnknownOrdinalRejected(t *testing.T) {
	s := session.NewAnswerStore(mixedQuestions(2))
	err := s.Set(9, "A", session.ToggleNone)
	assert.True(t, errors.Is(err, session.ErrUnknownOrdinal))
}

func TestAnsweredCountIsBoundedAndOrderIndependent(t *testing.T) {
	type call struct {
		ordinal int
		option  string
		toggle  session.Toggle
	}
	calls := []call{
		{1, "A", session.ToggleNone},
		{2, "B", session.ToggleOn},
		{2, "B", session.ToggleOff},
		{3, "C", session.ToggleNone},
		{3, "D", session.ToggleNone},
		{12, "A", session.ToggleNone},
		{14, "E", session.ToggleOn},
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		s := session.NewAnswerStore(mixedQuestions(15, 2, 14))
		perm := rng.Perm(len(calls))
		for _, j := range perm {
			c := calls[j]
			require.NoError(t, s.Set(c.ordinal, c.option, c.toggle))
		}
		distinct := 0
		for o := 1; o <= 10; o++ {
			if s.Answered(o) {
				distinct++
			}
		}
		assert.Equal(t, distinct, s.AnsweredCount(10))
		assert.Equal(t, 10-distinct, s.RemainingCount(10))
		assert.LessOrEqual(t, s.AnsweredCount(10), 10)
	}
}

func TestSnapshotOmitsEmpty(t *testing.T) {
	s := session.NewAnswerStore(mixedQuestions(3, 2))
	require.NoError(t, s.Set(1, "A", session.ToggleNone))
	require.NoError(t, s.Set(2, "C", session.ToggleOn))
	require.NoError(t, s.Set(2, "C", session.ToggleOff))
	assert.Equal(t, map[int][]string{1: {"A"}}, s.Snapshot())
}
