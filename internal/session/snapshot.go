package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

type snapshot struct {
	Version  int        `json:"version"`
	Sessions []*Session `json:"sessions"`
}

// SaveSnapshot writes all sessions to path as xz-compressed JSON.
func (s *Store) SaveSnapshot(path string) error {
	s.mu.Lock()
	snap := snapshot{Version: 1, Sessions: make([]*Session, 0, len(s.sessions))}
	for _, sess := range s.sessions {
		copied := *sess
		copied.views = nil
		snap.Sessions = append(snap.Sessions, &copied)
	}
	s.mu.Unlock()

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	buffered := bufio.NewWriter(f)
	zw, err := xz.NewWriter(buffered)
	if err != nil {
		f.Close()
		return err
	}
	if err := json.NewEncoder(zw).Encode(snap); err != nil {
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	if err := buffered.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSnapshot restores sessions written by SaveSnapshot. A missing file
// leaves the store empty. Restored tokens are not checked here: a stale one
// is discovered by the first 401 like any other.
func (s *Store) LoadSnapshot(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	zr, err := xz.NewReader(bufio.NewReader(f))
	if err != nil {
		return 0, fmt.Errorf("read session snapshot: %w", err)
	}
	var snap snapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return 0, fmt.Errorf("decode session snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range snap.Sessions {
		if sess == nil || sess.ID == "" || sess.Token == "" {
			continue
		}
		sess.views = NewViews()
		s.sessions[sess.ID] = sess
	}
	return len(snap.Sessions), nil
}
