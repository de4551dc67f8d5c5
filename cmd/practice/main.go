package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mind-engage/certprep/internal/auth"
	"github.com/mind-engage/certprep/internal/config"
	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/handoff"
	"github.com/mind-engage/certprep/internal/logging"
	"github.com/mind-engage/certprep/internal/protocol"
	"github.com/mind-engage/certprep/internal/session"
)

var errAbandoned = errors.New("session abandoned")

const usage = `Usage: practice [flags] <provider> <exam-code> <test>

Commands during a session:
  a <letter>     answer the current question (toggles on multi-select)
  n | p          next / previous question
  g <number>     go to question
  page <number>  show a page of the question grid
  s              submit
  r              retry after a failed submit
  q              quit without submitting
`

func main() {
	cfg := config.FromEnv()
	apiURL := flag.String("api", cfg.APIBaseURL, "Backend base URL")
	credsPath := flag.String("creds", defaultCredsPath(), "File holding the bearer credential")
	user := flag.String("user", "", "Log in as this user before starting (password from CERTPREP_PASSWORD)")
	logout := flag.Bool("logout", false, "Forget the stored credential and exit")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage); flag.PrintDefaults() }
	flag.Parse()

	logger := logging.New(cfg.LogLevel, cfg.LogPretty)
	ctx := context.Background()
	creds := auth.NewFileCredentials(*credsPath)
	client := protocol.New(protocol.Config{BaseURL: *apiURL, Timeout: cfg.APITimeout})

	if *logout {
		if err := creds.Clear(ctx); err != nil {
			fatal("clear credential: %v", err)
		}
		return
	}
	if *user != "" {
		tok, err := client.Login(ctx, *user, os.Getenv("CERTPREP_PASSWORD"))
		if err != nil {
			fatal("login: %v", err)
		}
		if err := creds.Save(tok); err != nil {
			fatal("save credential: %v", err)
		}
	}
	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}

	store, closer, err := handoff.Open(ctx, cfg)
	if err != nil {
		fatal("handoff store: %v", err)
	}
	defer closer.Close()

	redirected := make(chan struct{}, 1)
	var (
		mu   sync.Mutex
		last = session.StateIdle
	)
	c := session.New(client, creds, session.Options{
		FreeThreshold:    cfg.FreeQuestionLimit,
		StrictResolution: cfg.StrictTestResolution,
		Logger:           logger,
		Handoff:          store,
		OnChange: func(s session.Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			if s.State == last {
				return
			}
			last = s.State
			switch {
			case s.State == session.StateRedirected:
				select {
				case redirected <- struct{}{}:
				default:
				}
			case s.State == session.StateError && s.Error != nil && s.Error.Origin == session.OriginSubmit:
				fmt.Printf("! %s (type r to retry)\n", s.Error.Message)
			}
		},
	})
	defer func() {
		c.Close()
		<-c.Done()
	}()

	t := session.Target{Provider: flag.Arg(0), ExamCode: flag.Arg(1), TestID: flag.Arg(2)}
	err = run(ctx, c, t, os.Stdin, redirected, logger)
	if errors.Is(err, errAbandoned) {
		return
	}
	if err != nil {
		fatal("%v", err)
	}

	attemptID := c.Snapshot().AttemptID
	h, err := store.Take(ctx, attemptID)
	if err != nil {
		fatal("read results: %v", err)
	}
	printResults(h)
}

func run(ctx context.Context, c *session.Controller, t session.Target, in io.Reader, redirected <-chan struct{}, logger zerolog.Logger) error {
	if err := c.Load(ctx, t); err != nil {
		return err
	}
	pre, err := c.PreTest()
	if err != nil {
		return err
	}
	fmt.Printf("%s  (%s, %s)\n", pre.Name, pre.DurationLabel, orDash(pre.Difficulty))
	fmt.Printf("%d questions, %d available to you\n", pre.QuestionCount, pre.Accessible)
	if pre.Placeholder {
		fmt.Println("note: test details were not found, showing defaults")
	}

	sig, err := c.Start(ctx)
	if err != nil {
		return err
	}
	if sig == session.SignalLoginRequired {
		return errors.New("login required: run again with -user")
	}
	showQuestion(c)

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-redirected:
			return nil
		case line, ok := <-lines:
			if !ok {
				return errors.New("input closed before submit")
			}
			done, err := command(ctx, c, strings.Fields(line))
			if done {
				return err
			}
			if err != nil {
				logger.Debug().Err(err).Str("line", line).Msg("command failed")
				fmt.Println("!", err)
			}
		}
	}
}

// command applies one line of input. done reports that the session has
// ended, either redirected to results or abandoned.
func command(ctx context.Context, c *session.Controller, f []string) (done bool, err error) {
	if len(f) == 0 {
		return false, nil
	}
	var sig session.Signal
	switch f[0] {
	case "a":
		if len(f) < 2 {
			return false, errors.New("a needs an option letter")
		}
		q, _, err := c.Question()
		if err != nil {
			return false, err
		}
		sig, err = c.Answer(q.Ordinal, strings.ToUpper(f[1]), toggleFor(c, q.Ordinal, strings.ToUpper(f[1])))
		if err != nil {
			return false, err
		}
	case "n":
		sig, err = c.Next()
	case "p":
		sig, err = c.Previous()
	case "g":
		n, convErr := strconv.Atoi(arg(f))
		if convErr != nil {
			return false, errors.New("g needs a question number")
		}
		sig, err = c.JumpTo(n)
	case "page":
		n, convErr := strconv.Atoi(arg(f))
		if convErr != nil {
			return false, errors.New("page needs a page number")
		}
		if err := c.SetPage(n); err != nil {
			return false, err
		}
		showPage(c)
		return false, nil
	case "s":
		conf, err := c.ConfirmSubmit()
		if err != nil {
			return false, err
		}
		fmt.Printf("submitting %d of %d answered\n", conf.Answered, conf.Accessible)
		if _, err := c.Submit(ctx); err != nil {
			// expiry may have won the race; the redirect ends the loop
			if errors.Is(err, session.ErrNotInProgress) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	case "r":
		if err := c.Retry(ctx); err != nil {
			return false, err
		}
		return c.Snapshot().State == session.StateRedirected, nil
	case "q":
		return true, errAbandoned
	default:
		return false, fmt.Errorf("unknown command %q", f[0])
	}
	if err != nil {
		return false, err
	}
	if sig == session.SignalUpgradePrompt {
		fmt.Println("That question is part of the full test. Enroll to unlock it.")
		return false, nil
	}
	showQuestion(c)
	return false, nil
}

// toggleFor turns a repeated letter on a multi-select question into a
// removal.
func toggleFor(c *session.Controller, ordinal int, option string) session.Toggle {
	q, sel, err := c.Question()
	if err != nil || q.Ordinal != ordinal || q.Type != exam.TypeMultiple {
		return session.ToggleNone
	}
	for _, s := range sel {
		if s == option {
			return session.ToggleOff
		}
	}
	return session.ToggleOn
}

func showQuestion(c *session.Controller) {
	q, sel, err := c.Question()
	if err != nil {
		return
	}
	snap := c.Snapshot()
	fmt.Printf("\n[%s]  Q%d/%d  answered %d\n%s\n", snap.Clock, q.Ordinal, snap.Total, snap.Answered, q.Text)
	picked := map[string]bool{}
	for _, s := range sel {
		picked[s] = true
	}
	for _, o := range q.Options {
		mark := " "
		if picked[o.Label] {
			mark = "x"
		}
		fmt.Printf("  [%s] %s. %s\n", mark, o.Label, o.Text)
	}
}

func showPage(c *session.Controller) {
	p, err := c.Page()
	if err != nil {
		return
	}
	fmt.Printf("page %d/%d:", p.Number, p.Pages)
	for _, it := range p.Items {
		switch {
		case it.Locked:
			fmt.Printf(" %d#", it.Ordinal)
		case it.Current:
			fmt.Printf(" [%d]", it.Ordinal)
		case it.Answered:
			fmt.Printf(" %d*", it.Ordinal)
		default:
			fmt.Printf(" %d", it.Ordinal)
		}
	}
	fmt.Println()
}

func printResults(h session.Handoff) {
	s := h.Summary
	verdict := "FAILED"
	if s.Passed {
		verdict = "PASSED"
	}
	fmt.Printf("\n%s: %s\n", s.TestName, verdict)
	fmt.Printf("score %.0f (%.1f%%)\n", s.Score, s.Percentage)
	fmt.Printf("answered %d of %d, time spent %s\n", s.Answered, s.Accessible, s.TimeSpent)
}

func arg(f []string) string {
	if len(f) < 2 {
		return ""
	}
	return f[1]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func defaultCredsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".certprep-token"
	}
	return filepath.Join(dir, "certprep", "token")
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
