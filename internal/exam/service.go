package exam

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/certprep/internal/grading"
)

type memoryStore struct {
	mu        sync.RWMutex
	grader    grading.Grader
	exams     map[string]Definition // by id, tests carry questions
	slugs     map[string]string     // slug -> id
	learners  map[string]Learner
	enrolled  map[string]bool    // learner|exam
	attempts  map[string]Attempt // by id
	attemptBy map[string]string  // learner|exam|test -> attempt id
}

func NewInMemoryStore(g grading.Grader) Store {
	if g == nil {
		g = grading.NewDefaultGrader()
	}
	return &memoryStore{
		grader:    g,
		exams:     map[string]Definition{},
		slugs:     map[string]string{},
		learners:  map[string]Learner{},
		enrolled:  map[string]bool{},
		attempts:  map[string]Attempt{},
		attemptBy: map[string]string{},
	}
}

func (m *memoryStore) PutExam(_ context.Context, def Definition) (Definition, error) {
	def, err := normalizeExam(def)
	if err != nil {
		return Definition{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exams[def.ID] = def
	m.slugs[def.Slug] = def.ID
	return stripQuestions(def), nil
}

func (m *memoryStore) GetExam(_ context.Context, slugOrID string) (Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.lookupExam(slugOrID)
	if !ok {
		return Definition{}, ErrExamNotFound
	}
	return stripQuestions(def), nil
}

func (m *memoryStore) GetQuestions(_ context.Context, examID, testRef string) (PracticeTest, []Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.lookupExam(examID)
	if !ok {
		return PracticeTest{}, nil, ErrExamNotFound
	}
	t, ok := ResolveTest(def.Tests, testRef)
	if !ok {
		return PracticeTest{}, nil, ErrTestNotFound
	}
	qs := make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		qs[i] = q.Public()
	}
	t.Questions = nil
	return t, qs, nil
}

func (m *memoryStore) PutLearner(_ context.Context, l Learner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	m.learners[l.ID] = l
	return nil
}

func (m *memoryStore) GetLearner(_ context.Context, idOrUsername string) (Learner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.learners[idOrUsername]; ok {
		return l, nil
	}
	for _, l := range m.learners {
		if l.Username == idOrUsername {
			return l, nil
		}
	}
	return Learner{}, ErrAccountNotFound
}

func (m *memoryStore) Enroll(_ context.Context, learnerID, examID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	def, ok := m.lookupExam(examID)
	if !ok {
		return ErrExamNotFound
	}
	m.enrolled[learnerID+"|"+def.ID] = true
	return nil
}

func (m *memoryStore) IsEnrolled(_ context.Context, learnerID, examID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.lookupExam(examID)
	if !ok {
		return false, ErrExamNotFound
	}
	return m.enrolled[learnerID+"|"+def.ID], nil
}

func (m *memoryStore) EnsureAttempt(_ context.Context, learnerID, examID, testRef string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.learners[learnerID]; !ok {
		return Attempt{}, ErrAccountNotFound
	}
	def, ok := m.lookupExam(examID)
	if !ok {
		return Attempt{}, ErrExamNotFound
	}
	t, ok := ResolveTest(def.Tests, testRef)
	if !ok {
		return Attempt{}, ErrTestNotFound
	}
	key := learnerID + "|" + def.ID + "|" + t.ID
	if id, ok := m.attemptBy[key]; ok {
		return m.attempts[id], nil
	}
	a := Attempt{
		ID:        uuid.NewString(),
		ExamID:    def.ID,
		TestID:    t.ID,
		LearnerID: learnerID,
		Status:    AttemptInProgress,
		Responses: map[string][]string{},
		StartedAt: time.Now().UTC(),
	}
	m.attempts[a.ID] = a
	m.attemptBy[key] = a.ID
	return a, nil
}

func (m *memoryStore) SubmitAttempt(ctx context.Context, attemptID, learnerID string, responses map[string][]string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	if a.LearnerID != learnerID {
		return Attempt{}, ErrNotOwner
	}
	if a.Status == AttemptSubmitted {
		return a, nil
	}
	def := m.exams[a.ExamID]
	t, ok := ResolveTest(def.Tests, a.TestID)
	if !ok {
		return Attempt{}, ErrTestNotFound
	}
	a.Responses = keepKnown(t.Questions, responses)
	out := gradeResponses(ctx, m.grader, t.Questions, a.Responses, def.PassMark)
	now := time.Now().UTC()
	a.Score, a.MaxScore, a.Percentage, a.Passed = out.score, out.max, out.percentage, out.passed
	a.Status = AttemptSubmitted
	a.SubmittedAt = &now
	m.attempts[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, f AttemptFilter) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	examID := ""
	if f.ExamID != "" {
		def, ok := m.lookupExam(f.ExamID)
		if !ok {
			return []Attempt{}, nil
		}
		examID = def.ID
	}
	out := []Attempt{}
	for _, a := range m.attempts {
		if f.LearnerID != "" && a.LearnerID != f.LearnerID ||
			examID != "" && a.ExamID != examID ||
			f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	limit, offset := f.window()
	if offset >= len(out) {
		return []Attempt{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) lookupExam(slugOrID string) (Definition, bool) {
	if def, ok := m.exams[slugOrID]; ok {
		return def, true
	}
	if id, ok := m.slugs[slugOrID]; ok {
		return m.exams[id], true
	}
	return Definition{}, false
}

func stripQuestions(def Definition) Definition {
	tests := make([]PracticeTest, len(def.Tests))
	for i, t := range def.Tests {
		t.Questions = nil
		tests[i] = t
	}
	def.Tests = tests
	return def
}
