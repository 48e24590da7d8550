package history

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Compile-time interface compliance check
var _ Source = (*GitSource)(nil)

// GitSource reads history from a go-git repository. It is safe for
// concurrent use.
type GitSource struct {
	// mu serializes object access: go-git's filesystem storage loads packfile
	// indexes lazily without locking.
	mu   sync.Mutex
	repo *git.Repository

	// prefix is the registry root relative to the repository root, "" when
	// they coincide.
	prefix string
}

// OpenGit opens the repository containing dir, searching parent directories
// for .git. Paths passed to the returned source are relative to dir.
func OpenGit(dir string) (*GitSource, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	prefix, err := relativePrefix(wt.Filesystem.Root(), dir)
	if err != nil {
		return nil, err
	}
	return NewGitSource(repo, prefix), nil
}

// NewGitSource wraps an open repository. prefix is the registry root within
// the repository tree; pass "" when the registry is the repository root.
func NewGitSource(repo *git.Repository, prefix string) *GitSource {
	prefix = strings.TrimPrefix(path.Clean(filepath.ToSlash(prefix)), "/")
	if prefix == "." {
		prefix = ""
	}
	return &GitSource{repo: repo, prefix: prefix}
}

func relativePrefix(root, dir string) (string, error) {
	absRoot, err := canonical(root)
	if err != nil {
		return "", err
	}
	absDir, err := canonical(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil {
		return "", fmt.Errorf("locate %s in repository: %w", dir, err)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

func canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// Prefix returns the registry root within the repository tree.
func (s *GitSource) Prefix() string {
	return s.prefix
}

// resolve tries ref as given, then as a branch of the origin remote, which is
// all a shallow CI checkout usually has.
func (s *GitSource) resolve(ref string) (*plumbing.Hash, error) {
	candidates := []string{ref}
	if !strings.HasPrefix(ref, "refs/") && !strings.HasPrefix(ref, "origin/") && !plumbing.IsHash(ref) {
		candidates = append(candidates, "origin/"+ref)
	}

	for _, c := range candidates {
		hash, err := s.repo.ResolveRevision(plumbing.Revision(c))
		if err == nil {
			return hash, nil
		}
		if !isNotFound(err) {
			return nil, fmt.Errorf("resolve %s: %w", c, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRefNotFound, ref)
}

// isNotFound matches missing references and ancestors past the root commit.
func isNotFound(err error) bool {
	return errors.Is(err, plumbing.ErrReferenceNotFound) ||
		errors.Is(err, plumbing.ErrObjectNotFound) ||
		errors.Is(err, object.ErrParentNotFound)
}

func (s *GitSource) tree(ref string) (*object.Tree, error) {
	hash, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	commit, err := s.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", ref, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", ref, err)
	}
	return tree, nil
}

// ResolveRef implements Source.
func (s *GitSource) ResolveRef(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.resolve(ref); err != nil {
		if errors.Is(err, ErrRefNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FileAtRef implements Source.
func (s *GitSource) FileAtRef(ctx context.Context, p, ref string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, err := s.tree(ref)
	if err != nil {
		return nil, false, err
	}

	f, err := tree.File(path.Join(s.prefix, p))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) ||
			errors.Is(err, object.ErrDirectoryNotFound) ||
			errors.Is(err, object.ErrEntryNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s at %s: %w", p, ref, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, false, fmt.Errorf("read %s at %s: %w", p, ref, err)
	}
	return []byte(contents), true, nil
}

// ChangedFiles implements Source. Only paths under the registry root are
// returned, relative to it.
func (s *GitSource) ChangedFiles(ctx context.Context, base, head string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	baseTree, err := s.tree(base)
	if err != nil {
		return nil, err
	}
	headTree, err := s.tree(head)
	if err != nil {
		return nil, err
	}

	changes, err := baseTree.DiffContext(ctx, headTree)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", base, head, err)
	}

	seen := make(map[string]bool)
	for _, ch := range changes {
		for _, name := range []string{ch.From.Name, ch.To.Name} {
			if rel, ok := s.relative(name); ok {
				seen[rel] = true
			}
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func (s *GitSource) relative(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if s.prefix == "" {
		return name, true
	}
	rel, ok := strings.CutPrefix(name, s.prefix+"/")
	return rel, ok
}
