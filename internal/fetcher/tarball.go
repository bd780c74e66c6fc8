package fetcher

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const defaultRef = "HEAD"

// TarballFetcher downloads a gzipped repository archive over HTTP and
// extracts the requested subdirectory.
type TarballFetcher struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// TarballOption configures a TarballFetcher.
type TarballOption func(*TarballFetcher)

// WithBaseURL sets the archive host (useful for testing and mirrors).
func WithBaseURL(u string) TarballOption {
	return func(f *TarballFetcher) {
		f.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) TarballOption {
	return func(f *TarballFetcher) {
		f.httpClient = c
	}
}

// WithToken sets a token sent as a bearer credential for private repositories.
func WithToken(token string) TarballOption {
	return func(f *TarballFetcher) {
		f.token = token
	}
}

// NewTarballFetcher creates a TarballFetcher pointed at github.com by default.
func NewTarballFetcher(opts ...TarballOption) *TarballFetcher {
	f := &TarballFetcher{
		baseURL:    "https://github.com",
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ArchiveURL returns the download URL for the locator's repository and ref.
func (f *TarballFetcher) ArchiveURL(loc Locator) string {
	ref := loc.Ref
	if ref == "" {
		ref = defaultRef
	}
	return fmt.Sprintf("%s/%s/%s/archive/%s.tar.gz", f.baseURL, loc.Owner, loc.Repo, ref)
}

// Fetch implements Fetcher.
func (f *TarballFetcher) Fetch(ctx context.Context, loc Locator, dest string) error {
	url := f.ArchiveURL(loc)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "create-x402")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", loc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: server returned status %d", loc, resp.StatusCode)
	}

	n, err := extractTarGz(resp.Body, loc.Subdir, dest)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", loc, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s (no files under %q)", ErrNotFound, loc, loc.Subdir)
	}
	return nil
}

// extractTarGz writes every archive entry below subdir into dest and returns
// the number of entries written. The archive's single top-level directory
// is stripped first.
func extractTarGz(r io.Reader, subdir, dest string) (int, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	written := 0
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, fmt.Errorf("reading tar entry: %w", err)
		}

		rel, ok := relativeEntry(hdr.Name, subdir)
		if !ok {
			continue
		}

		target, err := safeJoin(dest, rel)
		if err != nil {
			return written, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return written, fmt.Errorf("creating directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return written, err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(dest, target, hdr.Linkname); err != nil {
				return written, err
			}
		default:
			continue
		}
		written++
	}

	return written, nil
}

// relativeEntry strips the archive root and subdir prefix from name.
// It reports false for entries outside subdir and for the subdir itself.
func relativeEntry(name, subdir string) (string, bool) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	i := strings.Index(name, "/")
	if i < 0 {
		return "", false
	}
	name = name[i+1:]

	if subdir == "" {
		return name, name != ""
	}
	if !strings.HasPrefix(name, subdir+"/") {
		return "", false
	}
	rel := strings.TrimPrefix(name, subdir+"/")
	return rel, rel != ""
}

// safeJoin joins rel onto dest and rejects results that escape dest.
func safeJoin(dest, rel string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(rel))
	r, err := filepath.Rel(dest, target)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", rel)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return out.Close()
}

func writeSymlink(dest, target, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(target), linkname)
	}
	if r, err := filepath.Rel(dest, resolved); err != nil || strings.HasPrefix(r, "..") || filepath.IsAbs(linkname) {
		return fmt.Errorf("symlink %s -> %s escapes destination", target, linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}
	_ = os.Remove(target)
	if err := os.Symlink(linkname, target); err != nil {
		return fmt.Errorf("creating symlink %s: %w", target, err)
	}
	return nil
}
