package exam

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mind-engage/certprep/internal/grading"
)

var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrTestNotFound    = errors.New("test not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrNotOwner        = errors.New("attempt belongs to another learner")
)

// DefaultPassMark is the percentage needed to pass when an exam sets none.
const DefaultPassMark = 70

// Store is the backend side of the practice catalog and attempt records.
type Store interface {
	PutExam(ctx context.Context, def Definition) (Definition, error)
	GetExam(ctx context.Context, slugOrID string) (Definition, error) // tests without questions
	GetQuestions(ctx context.Context, examID, testRef string) (PracticeTest, []Question, error)

	PutLearner(ctx context.Context, l Learner) error
	GetLearner(ctx context.Context, idOrUsername string) (Learner, error)
	Enroll(ctx context.Context, learnerID, examID string) error
	IsEnrolled(ctx context.Context, learnerID, examID string) (bool, error)

	// EnsureAttempt returns the learner's attempt for the test, creating it
	// on first use.
	EnsureAttempt(ctx context.Context, learnerID, examID, testRef string) (Attempt, error)
	SubmitAttempt(ctx context.Context, attemptID, learnerID string, responses map[string][]string) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	// ListAttempts returns the newest attempts first.
	ListAttempts(ctx context.Context, f AttemptFilter) ([]Attempt, error)
}

// AttemptFilter narrows ListAttempts. Empty fields match everything.
type AttemptFilter struct {
	LearnerID string
	ExamID    string // id or slug
	Status    AttemptStatus
	Limit     int // defaults to DefaultListLimit, capped at MaxListLimit
	Offset    int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

func (f AttemptFilter) window() (limit, offset int) {
	limit, offset = f.Limit, f.Offset
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// normalizeExam fills ids, slugs, ordinals and counts on an uploaded exam.
func normalizeExam(def Definition) (Definition, error) {
	if strings.TrimSpace(def.Title) == "" {
		return Definition{}, errors.New("exam title required")
	}
	if def.Slug == "" {
		if def.Provider == "" || def.Code == "" {
			return Definition{}, errors.New("exam slug or provider+code required")
		}
		def.Slug = ComposeSlug(def.Provider, def.Code)
	}
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	tests := make([]PracticeTest, len(def.Tests))
	for i, t := range def.Tests {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		qs := make([]Question, len(t.Questions))
		for j, q := range t.Questions {
			if q.Ordinal == 0 {
				q.Ordinal = j + 1
			}
			if q.ID == "" {
				q.ID = fmt.Sprintf("%s-q%d", t.ID, q.Ordinal)
			}
			q.Type = ParseQuestionType(string(q.Type))
			if q.Points == 0 {
				q.Points = 1
			}
			qs[j] = q
		}
		t.Questions = qs
		if t.QuestionCount == 0 {
			t.QuestionCount = len(qs)
		}
		tests[i] = t
	}
	def.Tests = tests
	return def, nil
}

type gradeOutcome struct {
	score, max, percentage float64
	passed                 bool
}

func gradeResponses(ctx context.Context, g grading.Grader, qs []Question, responses map[string][]string, passMark float64) gradeOutcome {
	gq := make([]grading.Q, len(qs))
	ids := make([]string, len(qs))
	for i, q := range qs {
		gq[i] = grading.Q{Type: string(q.Type), Points: q.Points, AnswerKey: q.AnswerKey}
		ids[i] = q.ID
	}
	score, max := grading.Total(ctx, g, gq, ids, responses)
	out := gradeOutcome{score: score, max: max}
	if max > 0 {
		out.percentage = score / max * 100
	}
	if passMark <= 0 {
		passMark = DefaultPassMark
	}
	out.passed = out.percentage >= passMark
	return out
}

// keepKnown drops responses for questions outside the test.
func keepKnown(qs []Question, responses map[string][]string) map[string][]string {
	known := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		known[q.ID] = struct{}{}
	}
	out := make(map[string][]string, len(responses))
	for k, v := range responses {
		if _, ok := known[k]; ok {
			out[k] = v
		}
	}
	return out
}
