package handoff

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/certprep/internal/session"
)

// SQLStore keeps hand-offs in the session_handoffs table.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Put(ctx context.Context, h session.Handoff) error {
	if h.AttemptID == "" {
		return errNoAttempt
	}
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode handoff: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO session_handoffs (attempt_id, data, created_at) VALUES ($1, $2, $3)
ON CONFLICT (attempt_id) DO UPDATE SET data = excluded.data, created_at = excluded.created_at`,
		h.AttemptID, string(data), s.now().Unix())
	return err
}

// Take removes and returns the hand-off in one statement, so concurrent
// readers cannot both see it.
func (s *SQLStore) Take(ctx context.Context, attemptID string) (session.Handoff, error) {
	var out session.Handoff
	var data string
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM session_handoffs WHERE attempt_id = $1 RETURNING data`, attemptID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return out, fmt.Errorf("decode handoff: %w", err)
	}
	return out, nil
}
