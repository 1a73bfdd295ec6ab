package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Solarpaletten/dashkavisa/internal/config"
)

func TestRemoveTempGlobs(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "chrome_profile_abc")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "lock"), []byte("x"), 0o644))
	keep := filepath.Join(dir, "unrelated")
	require.NoError(t, os.MkdirAll(keep, 0o755))

	removeTempGlobs([]string{filepath.Join(dir, "chrome_profile_*")}, zap.NewNop())

	assert.NoDirExists(t, stale)
	assert.DirExists(t, keep, "non-matching paths must survive")
}

func TestRemoveTempGlobsBadPattern(t *testing.T) {
	// A malformed pattern must be skipped, not panic.
	removeTempGlobs([]string{"[-"}, zap.NewNop())
}

func TestReleaseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile")
	require.NoError(t, os.MkdirAll(profile, 0o755))

	_, cancel1 := context.WithCancel(context.Background())
	ctx, cancel2 := context.WithCancel(context.Background())
	s := &Session{
		id:          "test",
		profileDir:  profile,
		allocCancel: cancel1,
		ctx:         ctx,
		cancel:      cancel2,
		log:         zap.NewNop(),
	}

	m := NewManager(zap.NewNop(), &config.Config{})
	m.Release(s)
	assert.NoDirExists(t, profile)

	// Second release must be a no-op, not a double cancel or remove error.
	m.Release(s)
	m.Release(nil)
}

func TestAllocatorOptionsHonorConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Browser.Headless = true
	cfg.Browser.WindowWidth = 1280
	cfg.Browser.WindowHeight = 720
	cfg.Browser.UserAgent = "test-agent"

	m := NewManager(zap.NewNop(), cfg)
	opts := m.allocatorOptions(t.TempDir())
	assert.NotEmpty(t, opts)

	// Without a user agent one option fewer is emitted.
	cfg.Browser.UserAgent = ""
	assert.Len(t, m.allocatorOptions(t.TempDir()), len(opts)-1)
}
