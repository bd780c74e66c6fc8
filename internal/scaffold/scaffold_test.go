package scaffold

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x402-tools/create-x402/internal/catalog"
	"github.com/x402-tools/create-x402/internal/fetcher"
	"github.com/x402-tools/create-x402/internal/installer"
	"github.com/x402-tools/create-x402/internal/manifest"
	"github.com/x402-tools/create-x402/internal/prompt"
	"github.com/x402-tools/create-x402/internal/status"
)

const examplesBase = "coinbase/x402/examples/typescript"

const workspaceManifest = `{
  "name": "express-example",
  "dependencies": {
    "x402-express": "workspace:*",
    "express": "^4.18.2"
  }
}
`

type fakeFetcher struct {
	calls    []fetcher.Locator
	manifest string
	err      error
}

func (f *fakeFetcher) Fetch(_ context.Context, loc fetcher.Locator, dest string) error {
	f.calls = append(f.calls, loc)
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	if f.manifest == "" {
		return nil
	}
	return os.WriteFile(filepath.Join(dest, manifest.FileName), []byte(f.manifest), 0o644)
}

type fakeExecutor struct {
	calls   []installer.Command
	outcome *installer.Outcome
}

func (f *fakeExecutor) Run(_ context.Context, c installer.Command) (*installer.Outcome, error) {
	f.calls = append(f.calls, c)
	return f.outcome, nil
}

type stubPrompter struct {
	template  string
	name      string
	err       error
	asked     []string
	nameAsked string
}

func (s *stubPrompter) SelectTemplate(_ context.Context, templates []catalog.Template) (string, error) {
	for _, t := range templates {
		s.asked = append(s.asked, t.ID)
	}
	if s.err != nil {
		return "", s.err
	}
	return s.template, nil
}

func (s *stubPrompter) ProjectName(_ context.Context, defaultName string) (string, error) {
	s.nameAsked = defaultName
	if s.err != nil {
		return "", s.err
	}
	if s.name == "" {
		return defaultName, nil
	}
	return s.name, nil
}

type harness struct {
	runner   *Runner
	fetcher  *fakeFetcher
	executor *fakeExecutor
	out      *bytes.Buffer
	dir      string
}

func newHarness(t *testing.T, p prompt.Prompter) *harness {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	out := &bytes.Buffer{}
	h := &harness{
		fetcher:  &fakeFetcher{manifest: workspaceManifest},
		executor: &fakeExecutor{outcome: &installer.Outcome{ExitCode: 0}},
		out:      out,
		dir:      t.TempDir(),
	}
	reporter := status.New(out)
	h.runner = &Runner{
		Catalog:  cat,
		Prompter: p,
		Fetcher:  h.fetcher,
		Installer: &installer.Runner{
			Executor: h.executor,
			Reporter: reporter,
			GOOS:     "linux",
			Silent:   true,
			Output:   out,
			Environ:  func() []string { return nil },
		},
		Reporter: reporter,
		Out:      out,
	}
	return h
}

func TestRun_EndToEnd(t *testing.T) {
	p := &stubPrompter{template: "servers/express", name: "my-app"}
	h := newHarness(t, p)

	res, err := h.runner.Run(context.Background(), Options{Dir: h.dir, ExamplesBase: examplesBase})
	require.NoError(t, err)

	assert.Contains(t, p.asked, "servers/express")
	assert.Equal(t, "express", p.nameAsked)

	require.Len(t, h.fetcher.calls, 1)
	assert.Equal(t, fetcher.Locator{Owner: "coinbase", Repo: "x402", Subdir: "examples/typescript/servers/express"}, h.fetcher.calls[0])

	target := filepath.Join(h.dir, "my-app")
	assert.Equal(t, target, res.Target)
	data, err := os.ReadFile(filepath.Join(target, manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, `{
  "name": "express-example",
  "dependencies": {
    "x402-express": "latest",
    "express": "^4.18.2"
  }
}
`, string(data))

	require.Len(t, h.executor.calls, 1)
	assert.Equal(t, target, h.executor.calls[0].Dir)
	assert.Equal(t, "npm", h.executor.calls[0].Name)
	assert.True(t, res.Installed)

	out := h.out.String()
	assert.Contains(t, out, "✔ Downloaded servers/express")
	assert.Contains(t, out, "✔ Updated 1 workspace dependencies")
	assert.Contains(t, out, "✔ Installed dependencies")
	assert.Contains(t, out, "cd my-app")
	assert.Contains(t, out, "npm run dev")
	assert.NotContains(t, out, "npm install\n")
	assert.Contains(t, out, "x402-express (dependencies)")
}

func TestRun_StarterKitUsesExplicitRepo(t *testing.T) {
	h := newHarness(t, &stubPrompter{template: "starter-kit"})
	h.fetcher.manifest = ""

	res, err := h.runner.Run(context.Background(), Options{Dir: h.dir, ExamplesBase: examplesBase, SkipInstall: true})
	require.NoError(t, err)

	require.Len(t, h.fetcher.calls, 1)
	assert.Equal(t, fetcher.Locator{Owner: "dabit3", Repo: "x402-starter-kit"}, h.fetcher.calls[0])
	assert.Equal(t, filepath.Join(h.dir, "starter-kit"), res.Target)
	assert.False(t, res.Manifest.Changed)
	assert.Empty(t, h.executor.calls)
	assert.Contains(t, h.out.String(), "npm install")
}

func TestRun_ExistingTargetAbortsBeforeFetch(t *testing.T) {
	h := newHarness(t, &stubPrompter{template: "servers/express", name: "taken"})
	require.NoError(t, os.Mkdir(filepath.Join(h.dir, "taken"), 0o755))

	_, err := h.runner.Run(context.Background(), Options{Dir: h.dir, ExamplesBase: examplesBase})
	require.ErrorIs(t, err, fetcher.ErrTargetExists)
	assert.Contains(t, err.Error(), "taken already exists")
	assert.Empty(t, h.fetcher.calls)
	assert.Empty(t, h.executor.calls)
}

func TestRun_CancelledSelectionWritesNothing(t *testing.T) {
	h := newHarness(t, &stubPrompter{err: prompt.ErrCancelled})

	_, err := h.runner.Run(context.Background(), Options{Dir: h.dir, ExamplesBase: examplesBase})
	require.ErrorIs(t, err, prompt.ErrCancelled)
	assert.Empty(t, h.fetcher.calls)

	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_FlagsBypassPrompts(t *testing.T) {
	p := &stubPrompter{err: errors.New("prompt must not be called")}
	h := newHarness(t, p)

	res, err := h.runner.Run(context.Background(), Options{
		TemplateID:   "clients/axios",
		ProjectName:  "  client  ",
		Dir:          h.dir,
		ExamplesBase: examplesBase,
		SkipInstall:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "client", res.Name)
	assert.Empty(t, p.asked)
	assert.Empty(t, p.nameAsked)
}

func TestRun_UnknownTemplate(t *testing.T) {
	h := newHarness(t, &stubPrompter{})

	_, err := h.runner.Run(context.Background(), Options{TemplateID: "servers/nope", Dir: h.dir, ExamplesBase: examplesBase})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template")
	assert.Empty(t, h.fetcher.calls)
}

func TestRun_FetchFailure(t *testing.T) {
	h := newHarness(t, &stubPrompter{template: "servers/hono"})
	h.fetcher.err = fetcher.ErrNotFound

	_, err := h.runner.Run(context.Background(), Options{Dir: h.dir, ExamplesBase: examplesBase})
	require.ErrorIs(t, err, fetcher.ErrNotFound)
	assert.Contains(t, h.out.String(), "✖ Failed to download servers/hono")
	assert.Empty(t, h.executor.calls)
}

func TestRun_MalformedManifestIsFatal(t *testing.T) {
	h := newHarness(t, &stubPrompter{template: "servers/express"})
	h.fetcher.manifest = `{"dependencies": [}`

	_, err := h.runner.Run(context.Background(), Options{Dir: h.dir, ExamplesBase: examplesBase})
	var parseErr *manifest.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Empty(t, h.executor.calls)
}

func TestRun_InstallFailurePropagatesExitCode(t *testing.T) {
	h := newHarness(t, &stubPrompter{template: "servers/express"})
	h.executor.outcome = &installer.Outcome{ExitCode: 7, Stderr: "npm ERR! code E404"}

	_, err := h.runner.Run(context.Background(), Options{Dir: h.dir, ExamplesBase: examplesBase})
	var exitErr *installer.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 7, exitErr.Code)
	assert.True(t, strings.Contains(h.out.String(), "npm ERR! code E404"))
	assert.NotContains(t, h.out.String(), "Next steps")
}

func TestRun_CancelledAfterPromptsExitsBeforeFetch(t *testing.T) {
	h := newHarness(t, &stubPrompter{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.runner.Run(ctx, Options{
		TemplateID:   "servers/express",
		ProjectName:  "my-app",
		Dir:          h.dir,
		ExamplesBase: examplesBase,
	})
	require.ErrorIs(t, err, prompt.ErrCancelled)
	assert.Empty(t, h.fetcher.calls)

	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
