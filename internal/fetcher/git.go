package fetcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
)

// GitFetcher shallow-clones the repository into memory and copies the
// requested subdirectory out of the worktree.
type GitFetcher struct {
	Token string

	// URL overrides the clone URL derived from the locator (used in tests).
	URL string
}

// Fetch implements Fetcher.
func (g *GitFetcher) Fetch(ctx context.Context, loc Locator, dest string) error {
	url := g.URL
	if url == "" {
		url = loc.CloneURL()
	}

	worktree, err := g.clone(ctx, url, loc.Ref)
	if err != nil {
		if errors.Is(err, transport.ErrRepositoryNotFound) || errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return fmt.Errorf("cloning %s: %w", loc, err)
	}

	src := worktree
	if loc.Subdir != "" {
		info, statErr := worktree.Stat(loc.Subdir)
		if statErr != nil || !info.IsDir() {
			return fmt.Errorf("%w: %s (no directory %q)", ErrNotFound, loc, loc.Subdir)
		}
		src, err = worktree.Chroot(loc.Subdir)
		if err != nil {
			return fmt.Errorf("entering %s: %w", loc.Subdir, err)
		}
	}

	if err := copyTree(src, "/", dest); err != nil {
		return fmt.Errorf("copying %s to %s: %w", loc, dest, err)
	}
	return nil
}

// clone tries ref as a branch and then as a tag.
func (g *GitFetcher) clone(ctx context.Context, url, ref string) (billy.Filesystem, error) {
	candidates := []plumbing.ReferenceName{""}
	if ref != "" {
		candidates = []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(ref),
			plumbing.NewTagReferenceName(ref),
		}
	}

	var lastErr error
	for _, name := range candidates {
		fs := memfs.New()
		opts := &git.CloneOptions{
			URL:           url,
			Depth:         1,
			SingleBranch:  true,
			ReferenceName: name,
			Tags:          git.NoTags,
		}
		if g.Token != "" {
			opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: g.Token}
		}
		if _, err := git.CloneContext(ctx, memory.NewStorage(), fs, opts); err != nil {
			lastErr = err
			continue
		}
		return fs, nil
	}
	return nil, lastErr
}

// copyTree recursively copies dir from src onto the local path dst,
// overwriting existing files. Symlinks are skipped.
func copyTree(src billy.Filesystem, dir, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	entries, err := src.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}

		srcPath := src.Join(dir, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.IsDir():
			if err := copyTree(src, srcPath, dstPath); err != nil {
				return err
			}
		case entry.Mode().IsRegular():
			if err := copyFile(src, srcPath, dstPath, entry.Mode().Perm()); err != nil {
				return err
			}
		}
	}

	return nil
}

func copyFile(src billy.Filesystem, srcPath, dstPath string, perm os.FileMode) error {
	in, err := src.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	return writeFile(dstPath, in, perm)
}
