package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
)

var (
	// ErrTargetExists is returned when the destination directory is already present.
	ErrTargetExists = errors.New("target directory already exists")

	// ErrNotFound is returned when the repository, ref or subpath does not exist.
	ErrNotFound = errors.New("template source not found")
)

// Fetcher downloads the tree addressed by a locator into dest, overwriting
// files already there. Partial content is left in place on failure.
type Fetcher interface {
	Fetch(ctx context.Context, loc Locator, dest string) error
}

// Supported fetch modes.
const (
	ModeTarball = "tarball"
	ModeGit     = "git"
)

// Options configures the fetcher returned by New.
type Options struct {
	Mode           string
	ArchiveBaseURL string
	HTTPClient     *http.Client
	Token          string
}

// New returns the Fetcher for opts.Mode. An empty mode selects the tarball strategy.
func New(opts Options) (Fetcher, error) {
	switch opts.Mode {
	case "", ModeTarball:
		var tOpts []TarballOption
		if opts.ArchiveBaseURL != "" {
			tOpts = append(tOpts, WithBaseURL(opts.ArchiveBaseURL))
		}
		if opts.HTTPClient != nil {
			tOpts = append(tOpts, WithHTTPClient(opts.HTTPClient))
		}
		if opts.Token != "" {
			tOpts = append(tOpts, WithToken(opts.Token))
		}
		return NewTarballFetcher(tOpts...), nil
	case ModeGit:
		return &GitFetcher{Token: opts.Token}, nil
	default:
		return nil, fmt.Errorf("unknown fetch mode %q: supported modes are %q and %q", opts.Mode, ModeTarball, ModeGit)
	}
}

// EnsureAbsent fails with ErrTargetExists if anything exists at dest.
func EnsureAbsent(dest string) error {
	_, err := os.Lstat(dest)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrTargetExists, dest)
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", dest, err)
	}
	return nil
}
