package fetcher

import (
	"fmt"
	"path"
	"strings"
)

// Locator identifies a directory inside a hosted repository.
type Locator struct {
	Owner  string
	Repo   string
	Subdir string // slash-separated, no leading or trailing slash; empty for the repo root
	Ref    string // branch, tag or commit; empty means the default branch
}

// ParseLocator parses "owner/repo[/subpath][#ref]".
func ParseLocator(s string) (Locator, error) {
	raw := strings.TrimSpace(s)
	var loc Locator

	if i := strings.Index(raw, "#"); i >= 0 {
		loc.Ref = raw[i+1:]
		raw = raw[:i]
		if loc.Ref == "" {
			return Locator{}, fmt.Errorf("invalid locator %q: empty ref after '#'", s)
		}
	}

	raw = strings.Trim(raw, "/")
	parts := strings.Split(raw, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Locator{}, fmt.Errorf("invalid locator %q: expected owner/repo[/subpath]", s)
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			return Locator{}, fmt.Errorf("invalid locator %q: bad path segment %q", s, p)
		}
	}

	loc.Owner = parts[0]
	loc.Repo = parts[1]
	if len(parts) > 2 {
		loc.Subdir = path.Join(parts[2:]...)
	}
	return loc, nil
}

// String renders the locator back into its canonical form.
func (l Locator) String() string {
	s := l.Owner + "/" + l.Repo
	if l.Subdir != "" {
		s += "/" + l.Subdir
	}
	if l.Ref != "" {
		s += "#" + l.Ref
	}
	return s
}

// CloneURL returns the HTTPS git URL of the repository.
func (l Locator) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", l.Owner, l.Repo)
}
