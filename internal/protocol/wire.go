package protocol

import (
	"strings"

	"github.com/mind-engage/certprep/internal/exam"
)

// AnswerPayload is one entry of a submit-attempt body. SelectedAnswers is
// always an array, empty for unanswered questions.
type AnswerPayload struct {
	QuestionID      string   `json:"questionId"`
	SelectedAnswers []string `json:"selectedAnswers"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type EnsureAttemptRequest struct {
	ExamID string `json:"examId"`
	TestID string `json:"testId"`
}

type EnsureAttemptResponse struct {
	AttemptID string `json:"attemptId"`
}

type SubmitRequest struct {
	Answers []AnswerPayload `json:"answers"`
}

type SubmitResult struct {
	Success    bool    `json:"success"`
	Score      float64 `json:"score"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
	Message    string  `json:"message,omitempty"`
}

type EnrollmentResponse struct {
	Enrolled bool `json:"enrolled"`
}

type ErrorBody struct {
	Message string `json:"message"`
}

// TestInfo is the test metadata carried alongside a question list.
type TestInfo struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	Duration   any    `json:"duration,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type QuestionSet struct {
	Questions []exam.Question `json:"questions"`
	Test      TestInfo        `json:"test"`
}

type wireOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Text  string `json:"text"`
}

// wireQuestion accepts both the structured options list and the lettered
// optionA..optionF fields some banks still emit.
type wireQuestion struct {
	ID       string       `json:"id"`
	Ordinal  int          `json:"ordinal"`
	Text     string       `json:"text"`
	Question string       `json:"question"`
	Type     string       `json:"type"`
	Points   float64      `json:"points"`
	Options  []wireOption `json:"options"`
	OptionA  string       `json:"optionA"`
	OptionB  string       `json:"optionB"`
	OptionC  string       `json:"optionC"`
	OptionD  string       `json:"optionD"`
	OptionE  string       `json:"optionE"`
	OptionF  string       `json:"optionF"`
}

type wireQuestionSet struct {
	Questions []wireQuestion `json:"questions"`
	Test      TestInfo       `json:"test"`
}

func (w wireQuestion) toQuestion(pos int) exam.Question {
	q := exam.Question{
		ID:      w.ID,
		Ordinal: w.Ordinal,
		Text:    w.Text,
		Type:    exam.ParseQuestionType(strings.ToLower(w.Type)),
		Points:  w.Points,
	}
	if q.Text == "" {
		q.Text = w.Question
	}
	if q.Ordinal <= 0 {
		q.Ordinal = pos + 1
	}
	if q.Points == 0 {
		q.Points = 1
	}
	for _, o := range w.Options {
		label := o.Label
		if label == "" {
			label = o.Value
		}
		q.Options = append(q.Options, exam.Option{Label: label, Text: o.Text})
	}
	if len(q.Options) == 0 {
		q.Options = exam.OptionsFromLetters(map[string]string{
			"A": w.OptionA, "B": w.OptionB, "C": w.OptionC,
			"D": w.OptionD, "E": w.OptionE, "F": w.OptionF,
		})
	}
	return q
}
