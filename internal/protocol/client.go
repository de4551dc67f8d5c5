package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/mind-engage/certprep/internal/exam"
)

// ErrMalformedResponse wraps bodies that could not be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

type Client struct {
	base string
	http *http.Client
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional
}

func New(cfg Config) *Client {
	h := cfg.HTTPClient
	if h == nil {
		h = &http.Client{}
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{base: strings.TrimSuffix(cfg.BaseURL, "/"), http: h}
}

// Login exchanges a username and password for a bearer credential.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out LoginResponse
	err := c.do(ctx, "login", http.MethodPost, "/auth/login", "",
		LoginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("login: %w: empty access token", ErrMalformedResponse)
	}
	return out.AccessToken, nil
}

// EnsureAttempt is the idempotent get-or-create for (learner, exam, test).
func (c *Client) EnsureAttempt(ctx context.Context, examID, testID, credential string) (string, error) {
	var out EnsureAttemptResponse
	err := c.do(ctx, "ensure attempt", http.MethodPost, "/attempts", credential,
		EnsureAttemptRequest{ExamID: examID, TestID: testID}, &out)
	if err != nil {
		return "", err
	}
	if out.AttemptID == "" {
		return "", fmt.Errorf("ensure attempt: %w: empty attempt id", ErrMalformedResponse)
	}
	return out.AttemptID, nil
}

func (c *Client) SubmitAttempt(ctx context.Context, attemptID string, answers []AnswerPayload, credential string) (SubmitResult, error) {
	if answers == nil {
		answers = []AnswerPayload{}
	}
	var out SubmitResult
	err := c.do(ctx, "submit attempt", http.MethodPost, "/attempts/"+url.PathEscape(attemptID)+"/submit", credential,
		SubmitRequest{Answers: answers}, &out)
	return out, err
}

func (c *Client) FetchExam(ctx context.Context, slug string) (exam.Definition, error) {
	var out exam.Definition
	err := c.do(ctx, "fetch exam", http.MethodGet, "/exams/"+url.PathEscape(slug), "", nil, &out)
	return out, err
}

func (c *Client) FetchQuestions(ctx context.Context, examID, testID string) (QuestionSet, error) {
	var raw wireQuestionSet
	path := "/exams/" + url.PathEscape(examID) + "/tests/" + url.PathEscape(testID) + "/questions"
	if err := c.do(ctx, "fetch questions", http.MethodGet, path, "", nil, &raw); err != nil {
		return QuestionSet{}, err
	}
	out := QuestionSet{Test: raw.Test, Questions: make([]exam.Question, len(raw.Questions))}
	for i, wq := range raw.Questions {
		out.Questions[i] = wq.toQuestion(i)
	}
	sort.SliceStable(out.Questions, func(i, j int) bool { return out.Questions[i].Ordinal < out.Questions[j].Ordinal })
	return out, nil
}

// CheckEnrollment reports whether the learner is enrolled. Without a
// credential no request is made.
func (c *Client) CheckEnrollment(ctx context.Context, examID, credential string) (bool, error) {
	if credential == "" {
		return false, nil
	}
	var out EnrollmentResponse
	err := c.do(ctx, "check enrollment", http.MethodGet, "/exams/"+url.PathEscape(examID)+"/enrollment", credential, nil, &out)
	if err != nil {
		return false, err
	}
	return out.Enrolled, nil
}

func (c *Client) do(ctx context.Context, op, method, path, credential string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		(&oauth2.Token{AccessToken: credential, TokenType: "Bearer"}).SetAuthHeader(req)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return &StatusError{Op: op, Status: res.StatusCode, Message: readMessage(res.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	return nil
}

// readMessage pulls a human message from an error body: JSON message or
// error field, otherwise the trimmed text.
func readMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &m) == nil {
		if m.Message != "" {
			return m.Message
		}
		if m.Error != "" {
			return m.Error
		}
	}
	return strings.TrimSpace(string(b))
}
