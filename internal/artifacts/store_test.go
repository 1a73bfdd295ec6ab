package artifacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "shots"), filepath.Join(dir, "users"), zap.NewNop())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Unix(1715000000, 0) }
	return s
}

func TestSaveScreenshotNaming(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SaveScreenshot("login_page_initial", []byte{0x89, 0x50})
	require.NoError(t, err)
	assert.Equal(t, "login_page_initial_1715000000.png", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50}, data)
}

func TestSaveMarkupNaming(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SaveMarkup("no_slots_available", "<html></html>")
	require.NoError(t, err)
	assert.Equal(t, "no_slots_available_1715000000.html", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestSaveUserCredentialsFormat(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SaveUserCredentials(123456, "visauser_42@example.com", "s3cretpassw0")
	require.NoError(t, err)
	assert.Equal(t, "123456.txt", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Email: visauser_42@example.com\nPassword: s3cretpassw0\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNewCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	_, err := New(filepath.Join(dir, "a", "b"), filepath.Join(dir, "c"), zap.NewNop())
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "a", "b"))
	assert.DirExists(t, filepath.Join(dir, "c"))
}
