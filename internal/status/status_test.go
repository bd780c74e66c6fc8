package status

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

// syncBuffer guards a bytes.Buffer for writes from spinner goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestReporter_PlainSuccess(t *testing.T) {
	var out bytes.Buffer
	r := New(&out)

	task := r.Start("Downloading template")
	task.Rotate([]string{"a", "b"}, time.Millisecond)
	task.Succeed("Downloaded servers/express")

	got := out.String()
	assert.Equal(t, "Downloading template...\n", strings.SplitAfter(got, "\n")[0])
	assert.Contains(t, got, "Downloaded servers/express")
	assert.NotContains(t, got, "\r")
	assert.NotContains(t, got, " a")
}

func TestReporter_PlainFailure(t *testing.T) {
	var out bytes.Buffer
	r := New(&out)

	task := r.Start("Installing dependencies")
	task.Fail("Install failed")

	assert.Contains(t, out.String(), "✖")
	assert.Contains(t, out.String(), "Install failed")
}

func TestTask_FinishIsIdempotent(t *testing.T) {
	var out bytes.Buffer
	task := New(&out).Start("Working")
	task.Succeed("done")
	task.Fail("ignored")

	assert.NotContains(t, out.String(), "ignored")
}

func TestTask_EmptyMessageFallsBackToStart(t *testing.T) {
	var out bytes.Buffer
	task := New(&out).Start("Fixing dependencies")
	task.Succeed("")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Contains(t, lines[len(lines)-1], "Fixing dependencies")
}

func TestReporter_AnimatedStopsGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := &syncBuffer{}
	fast := spinner.Spinner{Frames: []string{"-", "+"}, FPS: time.Millisecond}
	r := New(out, WithAnimation(true), WithSpinner(fast))

	task := r.Start("Installing dependencies")
	task.Rotate([]string{"resolving", "linking"}, 2*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	task.Succeed("Installed dependencies")

	got := out.String()
	assert.Contains(t, got, "\r\033[K")
	assert.Contains(t, got, "Installing dependencies")
	assert.Contains(t, got, "resolving")
	assert.True(t, strings.HasSuffix(got, "Installed dependencies\n"))
}

func TestReporter_Note(t *testing.T) {
	var out bytes.Buffer
	New(&out).Note("cd my-app\n")
	assert.Equal(t, "cd my-app\n", out.String())
}
