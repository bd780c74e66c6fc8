package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FileName is the manifest file looked up in the project root.
	FileName = "package.json"

	// WorkspacePrefix marks a version resolved from a sibling package in a monorepo.
	WorkspacePrefix = "workspace:"

	// LatestVersion replaces workspace versions.
	LatestVersion = "latest"
)

// DependencyGroups are the package.json sections scanned for workspace versions.
var DependencyGroups = []string{"dependencies", "devDependencies", "peerDependencies"}

// Rewrite records one replaced version.
type Rewrite struct {
	Group   string
	Package string
	From    string
	To      string
}

// Result is the outcome of FixWorkspaceDeps.
type Result struct {
	Path      string
	Changed   bool
	Rewritten []Rewrite
}

// ParseError reports a package.json that is not valid JSON or whose
// dependency groups are not maps of strings.
type ParseError struct {
	Path   string
	Err    error
	Issues []ValidationIssue
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %v", e.Path, e.Err)
	}
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("invalid %s: %s", e.Path, strings.Join(msgs, "; "))
}

func (e *ParseError) Unwrap() error { return e.Err }

// FixWorkspaceDeps rewrites every "workspace:" version in the dependency
// groups of dir/package.json to "latest". The file is written only when at
// least one entry changed. A missing package.json is not an error.
func FixWorkspaceDeps(dir string) (*Result, error) {
	path := filepath.Join(dir, FileName)
	result := &Result{Path: path}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	validation, err := Validate(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if !validation.Valid {
		return nil, &ParseError{Path: path, Issues: validation.Issues}
	}

	doc, err := parseObject(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	for _, group := range DependencyGroups {
		rewrites, err := fixGroup(doc, group)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		result.Rewritten = append(result.Rewritten, rewrites...)
	}

	if len(result.Rewritten) == 0 {
		return result, nil
	}

	out, err := encodeIndented(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}

	result.Changed = true
	return result, nil
}

// fixGroup rewrites workspace versions inside one dependency group of doc.
func fixGroup(doc *object, group string) ([]Rewrite, error) {
	raw, ok := doc.get(group)
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	deps, err := parseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", group, err)
	}

	latest, _ := json.Marshal(LatestVersion)

	var rewrites []Rewrite
	for _, name := range deps.keys {
		var version string
		if err := json.Unmarshal(deps.values[name], &version); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", group, name, err)
		}
		if !strings.HasPrefix(version, WorkspacePrefix) {
			continue
		}
		deps.set(name, latest)
		rewrites = append(rewrites, Rewrite{Group: group, Package: name, From: version, To: LatestVersion})
	}

	if len(rewrites) == 0 {
		return nil, nil
	}

	encoded, err := deps.MarshalJSON()
	if err != nil {
		return nil, err
	}
	doc.set(group, encoded)
	return rewrites, nil
}
