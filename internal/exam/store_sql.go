package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/certprep/internal/grading"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	grader grading.Grader
}

func NewSQLStore(db *sql.DB, driver string, g grading.Grader) *SQLStore {
	if g == nil {
		g = grading.NewDefaultGrader()
	}
	return &SQLStore{db: db, driver: driver, grader: g}
}

func (s *SQLStore) PutExam(ctx context.Context, def Definition) (Definition, error) {
	def, err := normalizeExam(def)
	if err != nil {
		return Definition{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Definition{}, err
	}
	defer tx.Rollback()

	dur, _ := json.Marshal(def.Duration)
	_, err = tx.ExecContext(ctx, `INSERT INTO exams (id,slug,title,provider,code,duration_json,difficulty,pass_mark,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET slug=EXCLUDED.slug, title=EXCLUDED.title, provider=EXCLUDED.provider,
			code=EXCLUDED.code, duration_json=EXCLUDED.duration_json, difficulty=EXCLUDED.difficulty, pass_mark=EXCLUDED.pass_mark`,
		def.ID, def.Slug, def.Title, def.Provider, def.Code, string(dur), def.Difficulty, def.PassMark, time.Now().Unix())
	if err != nil {
		return Definition{}, fmt.Errorf("upsert exam: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE exam_id=$1`, def.ID); err != nil {
		return Definition{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM practice_tests WHERE exam_id=$1`, def.ID); err != nil {
		return Definition{}, err
	}
	for i, t := range def.Tests {
		tdur, _ := json.Marshal(t.Duration)
		_, err := tx.ExecContext(ctx, `INSERT INTO practice_tests (exam_id,id,position,slug,name,duration_json,difficulty,question_count)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			def.ID, t.ID, i, t.Slug, t.Name, string(tdur), t.Difficulty, t.QuestionCount)
		if err != nil {
			return Definition{}, fmt.Errorf("insert test %s: %w", t.ID, err)
		}
		for _, q := range t.Questions {
			body, err := json.Marshal(q)
			if err != nil {
				return Definition{}, err
			}
			_, err = tx.ExecContext(ctx, `INSERT INTO questions (exam_id,test_id,ordinal,id,body_json) VALUES ($1,$2,$3,$4,$5)`,
				def.ID, t.ID, q.Ordinal, q.ID, string(body))
			if err != nil {
				return Definition{}, fmt.Errorf("insert question %s: %w", q.ID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return Definition{}, err
	}
	return stripQuestions(def), nil
}

func (s *SQLStore) GetExam(ctx context.Context, slugOrID string) (Definition, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,slug,title,provider,code,duration_json,difficulty,pass_mark
		FROM exams WHERE slug=$1 OR id=$1`, slugOrID)
	var def Definition
	var dur string
	if err := row.Scan(&def.ID, &def.Slug, &def.Title, &def.Provider, &def.Code, &dur, &def.Difficulty, &def.PassMark); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Definition{}, ErrExamNotFound
		}
		return Definition{}, err
	}
	def.Duration = decodeDuration(dur)
	tests, err := s.listTests(ctx, def.ID)
	if err != nil {
		return Definition{}, err
	}
	def.Tests = tests
	return def, nil
}

func (s *SQLStore) listTests(ctx context.Context, examID string) ([]PracticeTest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,slug,name,duration_json,difficulty,question_count
		FROM practice_tests WHERE exam_id=$1 ORDER BY position`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PracticeTest
	for rows.Next() {
		var t PracticeTest
		var dur string
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &dur, &t.Difficulty, &t.QuestionCount); err != nil {
			return nil, err
		}
		t.Duration = decodeDuration(dur)
		out = append(out, t)
	}
	return out, rows.Err()
}

// loadTest resolves testRef within the exam and returns its questions with answer keys.
func (s *SQLStore) loadTest(ctx context.Context, examID, testRef string) (Definition, PracticeTest, []Question, error) {
	def, err := s.GetExam(ctx, examID)
	if err != nil {
		return Definition{}, PracticeTest{}, nil, err
	}
	t, ok := ResolveTest(def.Tests, testRef)
	if !ok {
		return Definition{}, PracticeTest{}, nil, ErrTestNotFound
	}
	rows, err := s.db.QueryContext(ctx, `SELECT body_json FROM questions WHERE exam_id=$1 AND test_id=$2 ORDER BY ordinal`, def.ID, t.ID)
	if err != nil {
		return Definition{}, PracticeTest{}, nil, err
	}
	defer rows.Close()
	var qs []Question
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return Definition{}, PracticeTest{}, nil, err
		}
		var q Question
		if err := json.Unmarshal([]byte(body), &q); err != nil {
			return Definition{}, PracticeTest{}, nil, err
		}
		qs = append(qs, q)
	}
	return def, t, qs, rows.Err()
}

func (s *SQLStore) GetQuestions(ctx context.Context, examID, testRef string) (PracticeTest, []Question, error) {
	_, t, qs, err := s.loadTest(ctx, examID, testRef)
	if err != nil {
		return PracticeTest{}, nil, err
	}
	// Strip answer keys when serving to learners
	for i := range qs {
		qs[i] = qs[i].Public()
	}
	return t, qs, nil
}

func (s *SQLStore) PutLearner(ctx context.Context, l Learner) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Role == "" {
		l.Role = "learner"
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO learners (id,username,password_hash,role,created_at) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET username=EXCLUDED.username, password_hash=EXCLUDED.password_hash, role=EXCLUDED.role`,
		l.ID, l.Username, l.PasswordHash, l.Role, time.Now().Unix())
	return err
}

func (s *SQLStore) GetLearner(ctx context.Context, idOrUsername string) (Learner, error) {
	var l Learner
	err := s.db.QueryRowContext(ctx, `SELECT id,username,password_hash,role FROM learners WHERE id=$1 OR username=$1`, idOrUsername).
		Scan(&l.ID, &l.Username, &l.PasswordHash, &l.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return Learner{}, ErrAccountNotFound
	}
	return l, err
}

func (s *SQLStore) Enroll(ctx context.Context, learnerID, examID string) error {
	def, err := s.GetExam(ctx, examID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO enrollments (learner_id,exam_id,created_at) VALUES ($1,$2,$3)
		ON CONFLICT (learner_id,exam_id) DO NOTHING`, learnerID, def.ID, time.Now().Unix())
	return err
}

func (s *SQLStore) IsEnrolled(ctx context.Context, learnerID, examID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM enrollments e JOIN exams x ON x.id=e.exam_id
		WHERE e.learner_id=$1 AND (x.id=$2 OR x.slug=$2)`, learnerID, examID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) EnsureAttempt(ctx context.Context, learnerID, examID, testRef string) (Attempt, error) {
	if _, err := s.GetLearner(ctx, learnerID); err != nil {
		return Attempt{}, err
	}
	def, err := s.GetExam(ctx, examID)
	if err != nil {
		return Attempt{}, err
	}
	t, ok := ResolveTest(def.Tests, testRef)
	if !ok {
		return Attempt{}, ErrTestNotFound
	}
	// insert-if-absent keeps concurrent starts on one row
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts (id,exam_id,test_id,learner_id,status,responses_json,started_at)
		VALUES ($1,$2,$3,$4,'in_progress','{}',$5)
		ON CONFLICT (learner_id,exam_id,test_id) DO NOTHING`,
		uuid.NewString(), def.ID, t.ID, learnerID, time.Now().Unix())
	if err != nil {
		return Attempt{}, err
	}
	row := s.db.QueryRowContext(ctx, attemptColumns+` WHERE learner_id=$1 AND exam_id=$2 AND test_id=$3`, learnerID, def.ID, t.ID)
	return scanAttempt(row)
}

func (s *SQLStore) SubmitAttempt(ctx context.Context, attemptID, learnerID string, responses map[string][]string) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.LearnerID != learnerID {
		return Attempt{}, ErrNotOwner
	}
	if a.Status == AttemptSubmitted {
		return a, nil
	}
	def, _, qs, err := s.loadTest(ctx, a.ExamID, a.TestID)
	if err != nil {
		return Attempt{}, err
	}
	a.Responses = keepKnown(qs, responses)
	out := gradeResponses(ctx, s.grader, qs, a.Responses, def.PassMark)

	buf, _ := json.Marshal(a.Responses)
	_, err = s.db.ExecContext(ctx, `UPDATE attempts SET status='submitted', score=$1, max_score=$2, percentage=$3, passed=$4,
		responses_json=$5, submitted_at=$6 WHERE id=$7 AND status='in_progress'`,
		out.score, out.max, out.percentage, out.passed, string(buf), time.Now().Unix(), attemptID)
	if err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(ctx, attemptID)
}

const attemptColumns = `SELECT id,exam_id,test_id,learner_id,status,score,max_score,percentage,passed,responses_json,started_at,submitted_at FROM attempts`

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	return scanAttempt(s.db.QueryRowContext(ctx, attemptColumns+` WHERE id=$1`, id))
}

func (s *SQLStore) ListAttempts(ctx context.Context, f AttemptFilter) ([]Attempt, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.LearnerID != "" {
		add("learner_id=$%d", f.LearnerID)
	}
	if f.ExamID != "" {
		def, err := s.GetExam(ctx, f.ExamID)
		if errors.Is(err, ErrExamNotFound) {
			return []Attempt{}, nil
		}
		if err != nil {
			return nil, err
		}
		add("exam_id=$%d", def.ID)
	}
	if f.Status != "" {
		add("status=$%d", string(f.Status))
	}
	q := attemptColumns
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit, offset := f.window()
	args = append(args, limit, offset)
	q += fmt.Sprintf(" ORDER BY started_at DESC, id ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var rjson string
	var started int64
	var submitted sql.NullInt64
	if err := row.Scan(&a.ID, &a.ExamID, &a.TestID, &a.LearnerID, &a.Status, &a.Score, &a.MaxScore,
		&a.Percentage, &a.Passed, &rjson, &started, &submitted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(rjson), &a.Responses); err != nil {
		a.Responses = map[string][]string{}
	}
	a.StartedAt = time.Unix(started, 0).UTC()
	if submitted.Valid {
		t := time.Unix(submitted.Int64, 0).UTC()
		a.SubmittedAt = &t
	}
	return a, nil
}

func decodeDuration(raw string) any {
	if raw == "" || raw == "null" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return v
}
