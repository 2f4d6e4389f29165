package gitops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthor = Author{Name: "Test Author", Email: "test@example.com"}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func TestInit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(context.Background(), dir))

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestIsRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(context.Background(), dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestCommit(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, Init(ctx, dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.csv"), []byte("hello"), 0o644))

	changed, err := HasChanges(ctx, dir)
	require.NoError(t, err)
	assert.True(t, changed)

	hash, err := Commit(ctx, dir, "import: 5 transactions", testAuthor)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	log := exec.Command("git", "log", "--format=%s|%an <%ae>|%cn", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "import: 5 transactions|Test Author <test@example.com>|Test Author")

	changed, err = HasChanges(ctx, dir)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCommit_NothingToCommit(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, Init(ctx, dir))

	_, err := Commit(ctx, dir, "empty", testAuthor)
	require.ErrorIs(t, err, ErrNothingToCommit)
}

func TestHasChanges_NotARepo(t *testing.T) {
	requireGit(t)
	_, err := HasChanges(context.Background(), t.TempDir())
	require.Error(t, err)
}

func TestAuthorString(t *testing.T) {
	assert.Equal(t, "Test Author <test@example.com>", testAuthor.String())
}
