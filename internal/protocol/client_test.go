package protocol_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/protocol"
)

func newClient(t *testing.T, h http.HandlerFunc) *protocol.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return protocol.New(protocol.Config{BaseURL: srv.URL + "/"})
}

func TestEnsureAttemptSendsBearerAndBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/attempts", r.URL.Path)
		assert.Equal(t, "Bearer a.b.c", r.Header.Get("Authorization"))
		var req protocol.EnsureAttemptRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, protocol.EnsureAttemptRequest{ExamID: "e1", TestID: "2"}, req)
		_ = json.NewEncoder(w).Encode(protocol.EnsureAttemptResponse{AttemptID: "att-1"})
	})

	id, err := c.EnsureAttempt(context.Background(), "e1", "2", "a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "att-1", id)
}

func TestStatusErrorCarriesServerMessage(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"test not found"}`)
	})

	_, err := c.EnsureAttempt(context.Background(), "e1", "9", "a.b.c")
	var se *protocol.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "test not found", se.Message)
	assert.Equal(t, http.StatusNotFound, protocol.StatusCode(err))
}

func TestPlainTextErrorBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	})
	_, err := c.SubmitAttempt(context.Background(), "att-1", nil, "a.b.c")
	var se *protocol.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "bad token", se.Message)
}

func TestMalformedBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success": tru`)
	})
	_, err := c.SubmitAttempt(context.Background(), "att-1", nil, "a.b.c")
	assert.ErrorIs(t, err, protocol.ErrMalformedResponse)
}

func TestSubmitAlwaysSendsArrays(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/attempts/att%201/submit", r.URL.EscapedPath())
		var raw map[string][]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		require.Len(t, raw["answers"], 2)
		assert.Equal(t, []any{"B"}, raw["answers"][0]["selectedAnswers"])
		assert.Equal(t, []any{}, raw["answers"][1]["selectedAnswers"])
		_ = json.NewEncoder(w).Encode(protocol.SubmitResult{Success: true, Score: 1, Percentage: 50, Passed: false})
	})
	res, err := c.SubmitAttempt(context.Background(), "att 1", []protocol.AnswerPayload{
		{QuestionID: "q1", SelectedAnswers: []string{"B"}},
		{QuestionID: "q2", SelectedAnswers: []string{}},
	}, "a.b.c")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 50.0, res.Percentage)
}

func TestFetchQuestionsSynthesizesLetteredOptions(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exams/e1/tests/practice-1/questions", r.URL.Path)
		_, _ = io.WriteString(w, `{
		  "test": {"duration": "90 minutes"},
		  "questions": [
		    {"id": "q2", "ordinal": 2, "question": "Pick two", "type": "multiple",
		     "options": [{"value": "A", "text": "RDS"}, {"label": "B", "text": "SQS"}]},
		    {"id": "q1", "text": "Object storage?", "optionA": "S3", "optionB": "EBS", "optionD": "EFS"}
		  ]}`)
	})
	set, err := c.FetchQuestions(context.Background(), "e1", "practice-1")
	require.NoError(t, err)
	assert.Equal(t, 90, exam.ParseDurationMinutes(set.Test.Duration))
	require.Len(t, set.Questions, 2)

	first := set.Questions[0]
	assert.Equal(t, "q1", first.ID)
	assert.Equal(t, 1, first.Ordinal)
	assert.Equal(t, exam.TypeSingle, first.Type)
	assert.Equal(t, []exam.Option{{Label: "A", Text: "S3"}, {Label: "B", Text: "EBS"}, {Label: "D", Text: "EFS"}}, first.Options)

	second := set.Questions[1]
	assert.Equal(t, "Pick two", second.Text)
	assert.Equal(t, exam.TypeMultiple, second.Type)
	assert.Equal(t, "A", second.Options[0].Label)
}

func TestCheckEnrollmentWithoutCredentialSkipsRequest(t *testing.T) {
	called := false
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	ok, err := c.CheckEnrollment(context.Background(), "e1", "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, called)
}

func TestFetchExam(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exams/aws-saa-c03", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(exam.Definition{ID: "e1", Slug: "aws-saa-c03", Title: "SAA",
			Tests: []exam.PracticeTest{{ID: "t1", Name: "Practice 1"}}})
	})
	def, err := c.FetchExam(context.Background(), "aws-saa-c03")
	require.NoError(t, err)
	assert.Equal(t, "e1", def.ID)
	require.Len(t, def.Tests, 1)
}

func TestLogin(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var req protocol.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "pw" {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"a.b.c"}`)
	})
	tok, err := c.Login(context.Background(), "ada", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", tok)

	_, err = c.Login(context.Background(), "ada", "nope")
	assert.Equal(t, http.StatusUnauthorized, protocol.StatusCode(err))
}
