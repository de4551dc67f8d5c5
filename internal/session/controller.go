package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/certprep/internal/auth"
	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/protocol"
)

// Backend is the submission protocol as the controller consumes it.
// *protocol.Client satisfies it.
type Backend interface {
	AttemptCreator
	FetchExam(ctx context.Context, slug string) (exam.Definition, error)
	FetchQuestions(ctx context.Context, examID, testID string) (protocol.QuestionSet, error)
	CheckEnrollment(ctx context.Context, examID, credential string) (bool, error)
	SubmitAttempt(ctx context.Context, attemptID string, answers []protocol.AnswerPayload, credential string) (protocol.SubmitResult, error)
}

// HandoffWriter persists what the results screen reads after the redirect.
type HandoffWriter interface {
	Put(ctx context.Context, h Handoff) error
}

type Options struct {
	FreeThreshold    int  // defaults to DefaultFreeThreshold
	StrictResolution bool // unresolved test ids fail the load instead of using a placeholder
	Logger           zerolog.Logger
	Ticks            TickSource
	Handoff          HandoffWriter
	// OnChange is called after every transition and timer tick. It may be
	// invoked from the timer goroutine.
	OnChange func(Snapshot)
	Now      func() time.Time
}

// Target addresses one practice test of one exam.
type Target struct {
	Provider string
	ExamCode string
	TestID   string
}

func (t Target) Slug() string { return exam.ComposeSlug(t.Provider, t.ExamCode) }

type Confirmation struct {
	Answered   int
	Accessible int
}

type PreTestView struct {
	Name            string
	Difficulty      string
	DurationMinutes int
	DurationLabel   string
	Accessible      int
	QuestionCount   int
	Authenticated   bool
	Enrolled        bool
	Placeholder     bool
}

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	State            State
	Closed           bool
	ExamID           string
	TestID           string
	TestName         string
	Ordinal          int
	Page             int
	Pages            int
	Total            int
	Accessible       int
	Answered         int
	Unanswered       int
	SeededSeconds    int
	RemainingSeconds int
	Clock            string
	Enrolled         bool
	Authenticated    bool
	AttemptID        string
	Signal           Signal
	Error            *SessionError
	Summary          *Summary
}

// Controller drives one exam-taking session. State changes only happen in
// transitionLocked; every exported method is safe for concurrent use.
type Controller struct {
	backend  Backend
	creds    auth.Credentials
	opts     Options
	log      zerolog.Logger
	timer    *Countdown
	attempts *AttemptManager
	ctx      context.Context
	cancel   context.CancelFunc

	mu            sync.Mutex
	state         State
	closed        bool
	busy          bool
	target        Target
	def           exam.Definition
	test          exam.PracticeTest
	questions     []exam.Question
	credential    string
	authenticated bool
	enrolled      bool
	seeded        int
	remaining     int
	answers       *AnswerStore
	nav           *Navigator
	lastErr       *SessionError
	signal        Signal
	summary       *Summary
}

func New(backend Backend, creds auth.Credentials, opts Options) *Controller {
	if opts.FreeThreshold <= 0 {
		opts.FreeThreshold = DefaultFreeThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if creds == nil {
		creds = auth.NewMemoryCredentials("")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		backend:  backend,
		creds:    creds,
		opts:     opts,
		log:      opts.Logger,
		timer:    NewCountdown(opts.Ticks),
		attempts: NewAttemptManager(backend, creds, opts.Logger),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Load fetches the exam, the enrollment status and the questions, then
// moves to PreTest. Allowed from Idle and from a load failure.
func (c *Controller) Load(ctx context.Context, t Target) error {
	ctx, cancel := c.scope(ctx)
	defer cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateIdle && !c.failedAtLocked(OriginLoad) {
		c.mu.Unlock()
		return ErrWrongState
	}
	c.target = t
	c.lastErr = nil
	c.signal = SignalNone
	c.transitionLocked(StateLoading)
	c.mu.Unlock()
	c.emit()

	l, err := c.fetch(ctx, t)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		c.log.Warn().Err(err).Str("exam", t.Slug()).Str("test", t.TestID).Msg("load failed")
		serr := c.failLocked(OriginLoad, loadMessage(err), err)
		c.mu.Unlock()
		c.emit()
		return serr
	}
	c.def, c.test, c.questions = l.def, l.test, l.questions
	c.credential, c.authenticated, c.enrolled = l.credential, l.authenticated, l.enrolled
	c.seeded, c.remaining = l.seconds, l.seconds
	c.answers = NewAnswerStore(l.questions)
	c.nav = NewNavigator(len(l.questions),
		func(o int) bool { return c.policyLocked().Reachable(o) },
		c.answers.Answered)
	c.transitionLocked(StatePreTest)
	c.mu.Unlock()
	c.emit()
	return nil
}

type loaded struct {
	def           exam.Definition
	test          exam.PracticeTest
	questions     []exam.Question
	credential    string
	authenticated bool
	enrolled      bool
	seconds       int
}

func (c *Controller) fetch(ctx context.Context, t Target) (loaded, error) {
	var l loaded
	tok, err := c.creds.Token(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("read credential")
		tok = ""
	}
	l.credential, l.authenticated = tok, auth.WellFormed(tok)

	slug := t.Slug()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		def, err := c.backend.FetchExam(gctx, slug)
		if err != nil {
			return fmt.Errorf("fetch exam %s: %w", slug, err)
		}
		l.def = def
		return nil
	})
	g.Go(func() error {
		l.enrolled = c.checkEnrollment(gctx, slug, tok)
		return nil
	})
	if err := g.Wait(); err != nil {
		return l, err
	}

	test, ok := exam.ResolveTest(l.def.Tests, t.TestID)
	if !ok {
		if c.opts.StrictResolution {
			return l, fmt.Errorf("%w: %q", ErrTestMissing, t.TestID)
		}
		c.log.Warn().Str("exam", slug).Str("test", t.TestID).Msg("practice test not found, using placeholder")
		test = exam.PlaceholderTest(l.def, t.TestID)
	}
	l.test = test

	set, err := c.backend.FetchQuestions(ctx, l.def.ID, testRef(test, t.TestID))
	if protocol.StatusCode(err) == http.StatusNotFound {
		return l, fmt.Errorf("fetch questions: %w: %w", ErrTestMissing, err)
	}
	if err != nil {
		return l, fmt.Errorf("fetch questions: %w", err)
	}
	if len(set.Questions) == 0 {
		return l, ErrNoQuestions
	}
	l.questions = renumber(set.Questions)
	l.seconds = exam.ParseDurationMinutes(firstDuration(set.Test.Duration, test.Duration, l.def.Duration)) * 60
	return l, nil
}

// checkEnrollment maps every failure to "not enrolled".
func (c *Controller) checkEnrollment(ctx context.Context, examRef, credential string) bool {
	if !auth.WellFormed(credential) {
		return false
	}
	ok, err := c.backend.CheckEnrollment(ctx, examRef, credential)
	if err != nil {
		c.log.Debug().Err(err).Str("exam", examRef).Msg("enrollment check failed")
		return false
	}
	return ok
}

func (c *Controller) PreTest() (PreTestView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.questions == nil {
		return PreTestView{}, ErrWrongState
	}
	minutes := c.seeded / 60
	diff := c.test.Difficulty
	if diff == "" {
		diff = c.def.Difficulty
	}
	return PreTestView{
		Name:            c.test.Name,
		Difficulty:      diff,
		DurationMinutes: minutes,
		DurationLabel:   exam.DurationLabel(minutes),
		Accessible:      c.policyLocked().Ceiling(len(c.questions)),
		QuestionCount:   len(c.questions),
		Authenticated:   c.authenticated,
		Enrolled:        c.enrolled,
		Placeholder:     c.test.Synthesized,
	}, nil
}

// Start creates or resumes the attempt and arms the timer. Without a
// credential it raises SignalLoginRequired and stays in PreTest.
func (c *Controller) Start(ctx context.Context) (Signal, error) {
	ctx, cancel := c.scope(ctx)
	defer cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return SignalNone, ErrClosed
	}
	if c.state != StatePreTest {
		c.mu.Unlock()
		return SignalNone, ErrWrongState
	}
	if c.busy {
		c.mu.Unlock()
		return SignalNone, ErrBusy
	}
	if !c.authenticated {
		c.signal = SignalLoginRequired
		c.mu.Unlock()
		c.emit()
		return SignalLoginRequired, nil
	}
	c.busy = true
	c.lastErr = nil
	c.signal = SignalNone
	examID, testID, cred := c.def.ID, testRef(c.test, c.target.TestID), c.credential
	c.mu.Unlock()

	id, err := c.attempts.Ensure(ctx, examID, testID, cred)

	c.mu.Lock()
	c.busy = false
	if c.closed {
		c.mu.Unlock()
		return SignalNone, ErrClosed
	}
	if err != nil {
		sig := SignalNone
		var ae *AttemptError
		if errors.As(err, &ae) && ae.Kind == KindLoginRequired {
			c.credential, c.authenticated = "", false
			sig = SignalLoginRequired
		}
		c.signal = sig
		c.lastErr = &SessionError{Origin: OriginAttempt, Message: err.Error(), Err: err}
		serr := *c.lastErr
		c.mu.Unlock()
		c.emit()
		return sig, &serr
	}
	c.remaining = c.seeded
	c.transitionLocked(StateInProgress)
	if err := c.timer.Start(c.remaining, c.onTick, c.onExpire); err != nil {
		c.log.Error().Err(err).Msg("arm countdown")
	}
	c.log.Info().Str("attempt_id", id).Str("exam_id", examID).Int("seconds", c.seeded).Msg("session started")
	c.mu.Unlock()
	c.emit()
	return SignalNone, nil
}

func (c *Controller) onTick(remaining int) {
	c.mu.Lock()
	if c.closed || c.state != StateInProgress {
		c.mu.Unlock()
		return
	}
	c.remaining = remaining
	c.mu.Unlock()
	c.emit()
}

func (c *Controller) onExpire() {
	if _, err := c.submit(c.ctx, true); err != nil && !errors.Is(err, ErrNotInProgress) {
		c.log.Warn().Err(err).Msg("auto submit failed")
	}
}

func (c *Controller) Answer(ordinal int, option string, toggle Toggle) (Signal, error) {
	c.mu.Lock()
	if err := c.playableLocked(); err != nil {
		c.mu.Unlock()
		return SignalNone, err
	}
	if ordinal < 1 || ordinal > len(c.questions) {
		c.mu.Unlock()
		return SignalNone, fmt.Errorf("%w: %d", ErrUnknownOrdinal, ordinal)
	}
	if !c.policyLocked().Reachable(ordinal) {
		c.signal = SignalUpgradePrompt
		c.mu.Unlock()
		c.emit()
		return SignalUpgradePrompt, nil
	}
	if err := c.answers.Set(ordinal, option, toggle); err != nil {
		c.mu.Unlock()
		return SignalNone, err
	}
	c.signal = SignalNone
	c.mu.Unlock()
	c.emit()
	return SignalNone, nil
}

func (c *Controller) Next() (Signal, error) {
	return c.navigate((*Navigator).Next)
}

func (c *Controller) Previous() (Signal, error) {
	return c.navigate((*Navigator).Previous)
}

func (c *Controller) JumpTo(ordinal int) (Signal, error) {
	return c.navigate(func(n *Navigator) Signal { return n.JumpTo(ordinal) })
}

func (c *Controller) SetPage(page int) error {
	_, err := c.navigate(func(n *Navigator) Signal { n.SetPage(page); return SignalNone })
	return err
}

func (c *Controller) navigate(move func(*Navigator) Signal) (Signal, error) {
	c.mu.Lock()
	if err := c.playableLocked(); err != nil {
		c.mu.Unlock()
		return SignalNone, err
	}
	sig := move(c.nav)
	c.signal = sig
	c.mu.Unlock()
	c.emit()
	return sig, nil
}

func (c *Controller) Page() (PageView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nav == nil {
		return PageView{}, ErrWrongState
	}
	return c.nav.Page(), nil
}

// Question returns the question under the cursor and its current selection.
// The answer key is never included.
func (c *Controller) Question() (exam.Question, []string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nav == nil {
		return exam.Question{}, nil, ErrWrongState
	}
	o := c.nav.Current()
	return c.questions[o-1].Public(), c.answers.Selection(o), nil
}

// ConfirmSubmit returns the counts for the manual submit prompt. Declining
// is simply not calling Submit.
func (c *Controller) ConfirmSubmit() (Confirmation, error) {
	c.mu.Lock()
	if err := c.playableLocked(); err != nil {
		c.mu.Unlock()
		return Confirmation{}, err
	}
	ceiling := c.policyLocked().Ceiling(len(c.questions))
	conf := Confirmation{Answered: c.answers.AnsweredCount(ceiling), Accessible: ceiling}
	c.signal = SignalConfirmSubmit
	c.mu.Unlock()
	c.emit()
	return conf, nil
}

// Submit is the manual submission. It races timer expiry through the same
// InProgress -> Submitting transition; the loser gets ErrNotInProgress.
func (c *Controller) Submit(ctx context.Context) (*Summary, error) {
	return c.submit(ctx, false)
}

func (c *Controller) submit(ctx context.Context, auto bool) (*Summary, error) {
	ctx, cancel := c.scope(ctx)
	defer cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.state != StateInProgress {
		c.mu.Unlock()
		return nil, ErrNotInProgress
	}
	c.timer.Stop()
	c.remaining = c.timer.Remaining()
	c.signal = SignalNone
	c.transitionLocked(StateSubmitting)
	s := c.submissionLocked()
	c.log.Info().Bool("auto", auto).Str("attempt_id", s.attemptID).Int("answers", len(s.answers)).Msg("submitting")
	c.mu.Unlock()
	c.emit()
	return c.send(ctx, s)
}

type submission struct {
	attemptID  string
	credential string
	answers    []protocol.AnswerPayload
	answerSet  map[int][]string
	questions  []exam.Question
	accessible int
	answered   int
	seeded     int
	remaining  int
}

// submissionLocked builds the payload for ordinals 1..ceiling, with the
// ceiling evaluated now.
func (c *Controller) submissionLocked() submission {
	ceiling := c.policyLocked().Ceiling(len(c.questions))
	s := submission{
		attemptID:  c.attempts.ID(),
		credential: c.credential,
		answers:    make([]protocol.AnswerPayload, 0, ceiling),
		answerSet:  map[int][]string{},
		questions:  append([]exam.Question(nil), c.questions[:ceiling]...),
		accessible: ceiling,
		answered:   c.answers.AnsweredCount(ceiling),
		seeded:     c.seeded,
		remaining:  c.remaining,
	}
	for _, q := range s.questions {
		sel := c.answers.Selection(q.Ordinal)
		s.answers = append(s.answers, protocol.AnswerPayload{QuestionID: q.ID, SelectedAnswers: sel})
		if len(sel) > 0 {
			s.answerSet[q.Ordinal] = sel
		}
	}
	return s
}

func (c *Controller) send(ctx context.Context, s submission) (*Summary, error) {
	res, err := c.backend.SubmitAttempt(ctx, s.attemptID, s.answers, s.credential)
	if err == nil && !res.Success {
		err = fmt.Errorf("%w: %s", ErrRejected, res.Message)
	}
	var sum Summary
	if err == nil {
		sum = c.summarize(s, res)
		if c.opts.Handoff != nil {
			h := Handoff{AttemptID: s.attemptID, Summary: sum, Answers: s.answerSet, Questions: s.questions}
			if perr := c.opts.Handoff.Put(ctx, h); perr != nil {
				err = fmt.Errorf("save results: %w", perr)
			}
		}
	}
	unauthorized := protocol.StatusCode(err) == http.StatusUnauthorized
	if unauthorized {
		if cerr := c.creds.Clear(ctx); cerr != nil {
			c.log.Warn().Err(cerr).Msg("clear rejected credential")
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if err != nil {
		c.log.Warn().Err(err).Str("attempt_id", s.attemptID).Msg("submit failed")
		if unauthorized {
			c.credential, c.authenticated = "", false
			c.signal = SignalLoginRequired
		}
		serr := c.failLocked(OriginSubmit, submitMessage(err, res), err)
		c.mu.Unlock()
		c.emit()
		return nil, serr
	}
	c.summary = &sum
	c.attempts.MarkSubmitted()
	c.transitionLocked(StateRedirected)
	c.mu.Unlock()
	c.emit()
	out := sum
	return &out, nil
}

func (c *Controller) summarize(s submission, res protocol.SubmitResult) Summary {
	secs := spent(s.seeded, s.remaining)
	return Summary{
		AttemptID:        s.attemptID,
		ExamID:           c.def.ID,
		TestID:           testRef(c.test, c.target.TestID),
		TestName:         c.test.Name,
		Accessible:       s.accessible,
		Answered:         s.answered,
		Unanswered:       s.accessible - s.answered,
		Score:            res.Score,
		Percentage:       res.Percentage,
		Passed:           res.Passed,
		SeededSeconds:    s.seeded,
		RemainingSeconds: s.remaining,
		TimeSpent:        FormatClock(secs),
		TimeSpentMinutes: secs / 60,
		SubmittedAt:      c.opts.Now().UTC(),
	}
}

// Retry re-runs the failed step: the load for a load failure, the submit
// with the same attempt id and answers for a submit failure.
func (c *Controller) Retry(ctx context.Context) error {
	ctx, cancel := c.scope(ctx)
	defer cancel()
	tok, _ := c.creds.Token(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateError || c.lastErr == nil {
		c.mu.Unlock()
		return ErrWrongState
	}
	switch c.lastErr.Origin {
	case OriginLoad:
		t := c.target
		c.mu.Unlock()
		return c.Load(ctx, t)
	case OriginSubmit:
		if !auth.WellFormed(c.credential) && auth.WellFormed(tok) {
			c.credential, c.authenticated = tok, true
		}
		c.lastErr = nil
		c.signal = SignalNone
		c.transitionLocked(StateSubmitting)
		s := c.submissionLocked()
		c.mu.Unlock()
		c.emit()
		_, err := c.send(ctx, s)
		return err
	default:
		c.mu.Unlock()
		return ErrWrongState
	}
}

// RefreshEnrollment re-checks enrollment. It can unlock questions
// mid-session but never locks them again.
func (c *Controller) RefreshEnrollment(ctx context.Context) (bool, error) {
	ctx, cancel := c.scope(ctx)
	defer cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	if c.questions == nil {
		c.mu.Unlock()
		return false, ErrWrongState
	}
	if c.enrolled {
		c.mu.Unlock()
		return true, nil
	}
	examID, cred := c.def.ID, c.credential
	c.mu.Unlock()

	if !c.checkEnrollment(ctx, examID, cred) {
		return false, nil
	}
	c.mu.Lock()
	c.enrolled = true
	c.mu.Unlock()
	c.log.Info().Str("exam_id", examID).Msg("enrollment upgraded")
	c.emit()
	return true, nil
}

// Close leaves the session from any state. The timer is stopped before
// Close returns and in-flight results are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.timer.Stop()
	c.cancel()
	c.log.Debug().Stringer("state", c.state).Msg("session closed")
	c.mu.Unlock()
	c.emit()
}

// scope derives a context that is also cancelled by Close.
func (c *Controller) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Done is closed once the timer goroutine has exited.
func (c *Controller) Done() <-chan struct{} { return c.timer.Done() }

func (c *Controller) Summary() *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return nil
	}
	s := *c.summary
	return &s
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		State:            c.state,
		Closed:           c.closed,
		ExamID:           c.def.ID,
		TestID:           testRef(c.test, c.target.TestID),
		TestName:         c.test.Name,
		Total:            len(c.questions),
		SeededSeconds:    c.seeded,
		RemainingSeconds: c.remaining,
		Clock:            FormatClock(c.remaining),
		Enrolled:         c.enrolled,
		Authenticated:    c.authenticated,
		AttemptID:        c.attempts.ID(),
		Signal:           c.signal,
	}
	if c.nav != nil {
		s.Ordinal, s.Page, s.Pages = c.nav.Current(), c.nav.CurrentPage(), c.nav.Pages()
		s.Accessible = c.policyLocked().Ceiling(len(c.questions))
		s.Answered = c.answers.AnsweredCount(s.Accessible)
		s.Unanswered = c.answers.RemainingCount(s.Accessible)
	}
	if c.lastErr != nil {
		e := *c.lastErr
		s.Error = &e
	}
	if c.summary != nil {
		sum := *c.summary
		s.Summary = &sum
	}
	return s
}

func (c *Controller) emit() {
	if c.opts.OnChange != nil {
		c.opts.OnChange(c.Snapshot())
	}
}

func (c *Controller) transitionLocked(to State) {
	c.log.Debug().Stringer("from", c.state).Stringer("to", to).Msg("session transition")
	c.state = to
}

func (c *Controller) failLocked(origin Origin, msg string, err error) *SessionError {
	c.lastErr = &SessionError{Origin: origin, Message: msg, Err: err}
	c.transitionLocked(StateError)
	out := *c.lastErr
	return &out
}

func (c *Controller) failedAtLocked(origin Origin) bool {
	return c.state == StateError && c.lastErr != nil && c.lastErr.Origin == origin
}

func (c *Controller) playableLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.state != StateInProgress {
		return ErrNotInProgress
	}
	return nil
}

func (c *Controller) policyLocked() AccessPolicy {
	return AccessPolicy{Enrolled: c.enrolled, FreeThreshold: c.opts.FreeThreshold}
}

func testRef(t exam.PracticeTest, fallback string) string {
	if t.ID != "" {
		return t.ID
	}
	return fallback
}

// renumber pins ordinals to list position so they are dense and 1-based.
func renumber(qs []exam.Question) []exam.Question {
	out := make([]exam.Question, len(qs))
	for i, q := range qs {
		q.Ordinal = i + 1
		out[i] = q
	}
	return out
}

func firstDuration(candidates ...any) any {
	for _, v := range candidates {
		if !exam.DurationUnset(v) {
			return v
		}
	}
	return nil
}

func loadMessage(err error) string {
	switch {
	case errors.Is(err, ErrTestMissing):
		return "this practice test could not be found"
	case errors.Is(err, ErrNoQuestions):
		return "this practice test has no questions yet"
	case protocol.StatusCode(err) == http.StatusNotFound:
		return "this exam could not be found"
	default:
		return "could not load the test, please try again"
	}
}

func submitMessage(err error, res protocol.SubmitResult) string {
	var se *protocol.StatusError
	switch {
	case errors.Is(err, ErrRejected) && res.Message != "":
		return res.Message
	case errors.Is(err, ErrRejected):
		return "the submission was not accepted, please try again"
	case protocol.StatusCode(err) == http.StatusUnauthorized:
		return "your session has expired, please log in again"
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	case errors.Is(err, protocol.ErrMalformedResponse):
		return "the server sent an unexpected response, please try again"
	default:
		return "submission failed, please try again"
	}
}
