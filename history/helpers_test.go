package history

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

// testRepo is an in-memory repository with a worktree.
type testRepo struct {
	repo *git.Repository
	fs   billy.Filesystem
	wt   *git.Worktree
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	fs := memfs.New()
	repo, err := git.Init(memory.NewStorage(), fs)
	require.NoError(t, err, "failed to initialize test repository")

	wt, err := repo.Worktree()
	require.NoError(t, err, "failed to open worktree")

	return &testRepo{repo: repo, fs: fs, wt: wt}
}

func (tr *testRepo) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(tr.fs, path, []byte(content), 0o644), "failed to write %s", path)
	_, err := tr.wt.Add(path)
	require.NoError(t, err, "failed to add %s", path)
}

func (tr *testRepo) remove(t *testing.T, path string) {
	t.Helper()
	_, err := tr.wt.Remove(path)
	require.NoError(t, err, "failed to remove %s", path)
}

func (tr *testRepo) commit(t *testing.T, msg string) plumbing.Hash {
	t.Helper()
	hash, err := tr.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Registry Bot", Email: "bot@example.com", When: time.Unix(1700000000, 0)},
	})
	require.NoError(t, err, "failed to commit")
	return hash
}

func (tr *testRepo) setRef(t *testing.T, name plumbing.ReferenceName, hash plumbing.Hash) {
	t.Helper()
	require.NoError(t, tr.repo.Storer.SetReference(plumbing.NewHashReference(name, hash)), "failed to set %s", name)
}
