package uploads

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sozercan/research-ai-mole/internal/config"
)

var (
	ErrInvalidFilename = errors.New("invalid upload filename")
	ErrTooLarge        = errors.New("upload exceeds size limit")
)

// Store persists uploaded datasets in the local artifact directory under
// their original base name. A single interactive user is assumed, so name
// collisions simply overwrite.
type Store struct {
	cfg  config.UploadConfig
	cron *cron.Cron
}

func NewStore(cfg config.UploadConfig) *Store {
	return &Store{cfg: cfg}
}

// Save writes the upload to the artifact directory and returns the path the
// file was saved under.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	path := filepath.Join(s.cfg.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, s.cfg.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if n > s.cfg.MaxBytes {
		os.Remove(path)
		return "", fmt.Errorf("%w (%d bytes max)", ErrTooLarge, s.cfg.MaxBytes)
	}

	slog.Info("saved uploaded dataset", "path", path, "bytes", n)
	return path, nil
}

// StartJanitor begins the periodic sweep that removes artifacts older than
// the configured age. Stop with StopJanitor.
func (s *Store) StartJanitor() error {
	c := cron.New()
	_, err := c.AddFunc(s.cfg.CleanupCron, func() {
		if err := s.Sweep(time.Now()); err != nil {
			slog.Error("artifact sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.cfg.CleanupCron, err)
	}

	c.Start()
	s.cron = c
	slog.Info("artifact janitor started", "schedule", s.cfg.CleanupCron, "maxAge", s.cfg.MaxArtifactAge)
	return nil
}

func (s *Store) StopJanitor() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep removes regular files in the artifact directory whose modification
// time is older than the configured age, relative to now.
func (s *Store) Sweep(now time.Time) error {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return fmt.Errorf("failed to read artifact directory: %w", err)
	}

	cutoff := now.Add(-s.cfg.MaxArtifactAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.cfg.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("failed to remove stale artifact", "path", path, "error", err)
			continue
		}
		slog.Info("removed stale artifact", "path", path)
	}
	return nil
}
