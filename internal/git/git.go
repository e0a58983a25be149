package git

import (
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ChangedFile holds both versions of a file touched by a commit.
// Before is nil for added files, After is nil for deleted ones.
type ChangedFile struct {
	Path   string
	Before []byte
	After  []byte
}

// Repository wraps a go-git repository.
type Repository struct {
	repo *git.Repository
	path string
}

// Open opens an existing Git repository.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}
	return &Repository{repo: repo, path: path}, nil
}

// Commit resolves a revision such as "HEAD~2", a branch, a tag or a hash.
func (r *Repository) Commit(rev string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", hash, err)
	}
	return commit, nil
}

// ChangedFiles returns the files rev changed relative to its first parent,
// sorted by path. Only paths accepted by match are read; a nil match accepts
// every path. A root commit is compared against the empty tree.
func (r *Repository) ChangedFiles(rev string, match func(path string) bool) ([]ChangedFile, error) {
	commit, err := r.Commit(rev)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent: %w", err)
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("failed to get parent tree: %w", err)
		}
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	var out []ChangedFile
	for _, change := range changes {
		from, to, err := change.Files()
		if err != nil {
			return nil, fmt.Errorf("failed to read change: %w", err)
		}

		// File names from Files() are tree-entry base names; the change
		// entries carry the full path.
		cf := ChangedFile{Path: change.To.Name}
		if cf.Path == "" {
			cf.Path = change.From.Name
		}
		if match != nil && !match(cf.Path) {
			continue
		}

		if cf.Before, err = fileContents(from); err != nil {
			return nil, err
		}
		if cf.After, err = fileContents(to); err != nil {
			return nil, err
		}
		out = append(out, cf)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func fileContents(f *object.File) ([]byte, error) {
	if f == nil {
		return nil, nil
	}
	content, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return []byte(content), nil
}
