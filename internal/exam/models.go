package exam

import "time"

type QuestionType string

const (
	TypeSingle   QuestionType = "single"
	TypeMultiple QuestionType = "multiple"
)

// ParseQuestionType maps the tags used by question banks onto the two
// answer shapes the session understands. Anything unknown is single choice.
func ParseQuestionType(s string) QuestionType {
	switch s {
	case "multiple", "multi", "mcq_multi", "multiple_choice", "multi_select", "checkbox":
		return TypeMultiple
	default:
		return TypeSingle
	}
}

type Option struct {
	Label string `json:"label"` // letter or value
	Text  string `json:"text"`
}

type Question struct {
	ID        string       `json:"id"`
	Ordinal   int          `json:"ordinal"` // 1-based, stable for the session
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	Options   []Option     `json:"options,omitempty"`
	Points    float64      `json:"points"`
	AnswerKey []string     `json:"answerKey,omitempty"` // never served to learners
}

type PracticeTest struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug,omitempty"`
	Name          string     `json:"name"`
	Duration      any        `json:"duration,omitempty"` // minutes, or free text like "90 minutes"
	Difficulty    string     `json:"difficulty,omitempty"`
	QuestionCount int        `json:"questionCount"`
	Questions     []Question `json:"questions,omitempty"` // upload payload only

	// Synthesized marks a placeholder built when no test record resolved.
	Synthesized bool `json:"-"`
}

// Definition is an exam as the catalog serves it.
type Definition struct {
	ID         string         `json:"id"`
	Slug       string         `json:"slug"`
	Title      string         `json:"title"`
	Provider   string         `json:"provider"`
	Code       string         `json:"code"`
	Tests      []PracticeTest `json:"tests"`
	Duration   any            `json:"duration,omitempty"`
	Difficulty string         `json:"difficulty,omitempty"`
	PassMark   float64        `json:"passMark,omitempty"`
}

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

type Attempt struct {
	ID          string              `json:"id"`
	ExamID      string              `json:"examId"`
	TestID      string              `json:"testId"`
	LearnerID   string              `json:"learnerId"`
	Status      AttemptStatus       `json:"status"`
	Score       float64             `json:"score"`
	MaxScore    float64             `json:"maxScore"`
	Percentage  float64             `json:"percentage"`
	Passed      bool                `json:"passed"`
	Responses   map[string][]string `json:"responses"` // questionID -> selected answers
	StartedAt   time.Time           `json:"startedAt"`
	SubmittedAt *time.Time          `json:"submittedAt,omitempty"`
}

type Learner struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"` // learner|admin
}

// Public returns a copy safe to serve to learners.
func (q Question) Public() Question {
	q.AnswerKey = nil
	return q
}
