package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "github.com/tooMike/homework-bot/pkg/logx"
)

// fileStore keeps state in plain files next to each other:
//   - <prefix>.state.json      (cursor snapshot, replaced atomically)
//   - <prefix>.deliveries.jsonl (append-only JSON Lines)
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	statePath string
	journal   *os.File
	state     fileState
}

type fileState struct {
	Cursor    int64 `json:"cursor"`
	HasCursor bool  `json:"has_cursor"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	st := &fileStore{log: log, statePath: prefix + ".state.json"}
	if b, err := os.ReadFile(st.statePath); err == nil {
		if err := json.Unmarshal(b, &st.state); err != nil {
			// A torn snapshot only loses the cursor; the poller falls back to "now".
			log.Warn("state snapshot unreadable; ignoring", logx.String("path", st.statePath), logx.Err(err))
			st.state = fileState{}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	jf, err := os.OpenFile(prefix+".deliveries.jsonl", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	st.journal = jf
	return st, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal == nil {
		return nil
	}
	err := s.journal.Close()
	s.journal = nil
	return err
}

func (s *fileStore) LoadCursor(ctx context.Context) (int64, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Cursor, s.state.HasCursor, nil
}

func (s *fileStore) SaveCursor(ctx context.Context, cursor int64) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal == nil {
		return ErrClosed
	}

	next := fileState{Cursor: cursor, HasCursor: true}
	b, err := json.Marshal(next)
	if err != nil {
		return err
	}
	tmp := s.statePath + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.statePath); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	s.state = next
	return nil
}

func (s *fileStore) AppendDelivery(ctx context.Context, d Delivery) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal == nil {
		return ErrClosed
	}
	return json.NewEncoder(s.journal).Encode(d)
}
