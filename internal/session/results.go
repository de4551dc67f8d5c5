package session

import (
	"fmt"
	"time"

	"github.com/mind-engage/certprep/internal/exam"
)

// Summary is what the results screen shows after a successful submit.
// Score, Percentage and Passed come verbatim from the backend.
type Summary struct {
	AttemptID        string    `json:"attemptId"`
	ExamID           string    `json:"examId"`
	TestID           string    `json:"testId"`
	TestName         string    `json:"testName"`
	Accessible       int       `json:"accessible"`
	Answered         int       `json:"answered"`
	Unanswered       int       `json:"unanswered"`
	Score            float64   `json:"score"`
	Percentage       float64   `json:"percentage"`
	Passed           bool      `json:"passed"`
	SeededSeconds    int       `json:"seededSeconds"`
	RemainingSeconds int       `json:"remainingSeconds"`
	TimeSpent        string    `json:"timeSpent"` // mm:ss
	TimeSpentMinutes int       `json:"timeSpentMinutes"`
	SubmittedAt      time.Time `json:"submittedAt"`
}

// Handoff is everything the results screen reads once after the redirect.
type Handoff struct {
	AttemptID string           `json:"attemptId"`
	Summary   Summary          `json:"summary"`
	Answers   map[int][]string `json:"answers"`
	Questions []exam.Question  `json:"questions"`
}

// FormatClock renders seconds as mm:ss. Minutes are not wrapped at 60.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func spent(seeded, remaining int) int {
	s := seeded - remaining
	if s < 0 {
		return 0
	}
	return s
}
