package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mind-engage/certprep/internal/session"
)

// FSStore keeps one JSON file per attempt under base.
type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data/handoffs"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) path(attemptID string) (string, error) {
	if attemptID == "" {
		return "", errNoAttempt
	}
	if strings.ContainsAny(attemptID, `/\`) || attemptID == "." || attemptID == ".." {
		return "", fmt.Errorf("handoff: invalid attempt id %q", attemptID)
	}
	return filepath.Join(s.base, attemptID+".json"), nil
}

func (s *FSStore) Put(_ context.Context, h session.Handoff) error {
	dst, err := s.path(h.AttemptID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode handoff: %w", err)
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

// Take claims the file by renaming it first, so concurrent readers cannot
// both get it.
func (s *FSStore) Take(_ context.Context, attemptID string) (session.Handoff, error) {
	var out session.Handoff
	src, err := s.path(attemptID)
	if err != nil {
		return out, err
	}
	claimed := src + ".taken"
	if err := os.Rename(src, claimed); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, ErrNotFound
		}
		return out, err
	}
	defer os.Remove(claimed)
	data, err := os.ReadFile(claimed)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode handoff: %w", err)
	}
	return out, nil
}
