// Package artifacts writes per-run diagnostic screenshots and raw-HTML
// dumps, plus per-user plaintext credential files after registration.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Store writes artifacts under a fixed directory tree. Files are named with
// a step tag and a timestamp so successive runs never collide.
type Store struct {
	dir      string
	usersDir string
	log      *zap.Logger
	now      func() time.Time
}

// New creates a Store rooted at dir for diagnostics and usersDir for
// credential files, creating both directories.
func New(dir, usersDir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifacts dir: %w", err)
	}
	if err := os.MkdirAll(usersDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating users dir: %w", err)
	}
	return &Store{
		dir:      dir,
		usersDir: usersDir,
		log:      logger.Named("artifacts"),
		now:      time.Now,
	}, nil
}

func (s *Store) stampedPath(step, ext string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%d%s", step, s.now().Unix(), ext))
}

// SaveScreenshot writes a PNG capture tagged with the step name.
func (s *Store) SaveScreenshot(step string, png []byte) (string, error) {
	path := s.stampedPath(step, ".png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("writing screenshot: %w", err)
	}
	s.log.Debug("Saved screenshot", zap.String("path", path))
	return path, nil
}

// SaveMarkup writes a raw-HTML dump tagged with the step name.
func (s *Store) SaveMarkup(step string, markup string) (string, error) {
	path := s.stampedPath(step, ".html")
	if err := os.WriteFile(path, []byte(markup), 0o644); err != nil {
		return "", fmt.Errorf("writing markup dump: %w", err)
	}
	s.log.Debug("Saved markup dump", zap.String("path", path))
	return path, nil
}

// SaveUserCredentials writes the plaintext credential file for a user after
// successful registration: two lines, email then password.
func (s *Store) SaveUserCredentials(userID int64, email, password string) (string, error) {
	path := filepath.Join(s.usersDir, fmt.Sprintf("%d.txt", userID))
	content := fmt.Sprintf("Email: %s\nPassword: %s\n", email, password)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("writing user credentials: %w", err)
	}
	s.log.Info("Saved user credentials", zap.Int64("user_id", userID), zap.String("path", path))
	return path, nil
}
