// Package status draws transient progress indicators around long-running
// steps: a spinner with a message and an optional rotating sub-label, ending
// in a success or failure line. Nothing is retained once a task finishes.
package status

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00B4D8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Faint(true)
)

// Reporter writes task status to a single output stream.
type Reporter struct {
	out     io.Writer
	animate bool
	frames  spinner.Spinner
	mu      sync.Mutex
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithAnimation forces the spinner on or off regardless of the output type.
func WithAnimation(on bool) Option {
	return func(r *Reporter) {
		r.animate = on
	}
}

// WithSpinner replaces the default spinner frames.
func WithSpinner(s spinner.Spinner) Option {
	return func(r *Reporter) {
		r.frames = s
	}
}

// New returns a Reporter writing to out. The spinner is animated only when
// out is a terminal.
func New(out io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		out:     out,
		animate: isTerminal(out),
		frames:  spinner.Dot,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Task is one running operation.
type Task struct {
	r     *Reporter
	msg   string
	label string
	frame int

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
	done bool
}

// Start shows msg with a spinner and returns the running task.
func (r *Reporter) Start(msg string) *Task {
	t := &Task{r: r, msg: msg, stop: make(chan struct{})}

	if !r.animate {
		r.printf("%s...\n", msg)
		return t
	}

	t.draw()
	t.wg.Add(1)
	go t.spin()
	return t
}

// Rotate cycles the task's sub-label through labels every interval until
// the task finishes. It has no effect on non-animated output.
func (t *Task) Rotate(labels []string, interval time.Duration) {
	if len(labels) == 0 || interval <= 0 || !t.r.animate {
		return
	}

	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.label = labels[0]
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 1; ; i++ {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				t.mu.Lock()
				t.label = labels[i%len(labels)]
				t.mu.Unlock()
			}
		}
	}()
}

// Succeed ends the task in the success state.
func (t *Task) Succeed(msg string) {
	t.finish(successStyle.Render("✔"), msg)
}

// Fail ends the task in the failure state.
func (t *Task) Fail(msg string) {
	t.finish(failureStyle.Render("✖"), msg)
}

func (t *Task) finish(symbol, msg string) {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	close(t.stop)
	t.mu.Unlock()

	t.wg.Wait()

	if msg == "" {
		msg = t.msg
	}
	if t.r.animate {
		t.r.printf("\r\033[K%s %s\n", symbol, msg)
		return
	}
	t.r.printf("%s %s\n", symbol, msg)
}

func (t *Task) spin() {
	defer t.wg.Done()
	fps := t.r.frames.FPS
	if fps <= 0 {
		fps = time.Second / 10
	}
	ticker := time.NewTicker(fps)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.draw()
		}
	}
}

func (t *Task) draw() {
	t.mu.Lock()
	frames := t.r.frames.Frames
	frame := ""
	if len(frames) > 0 {
		frame = frames[t.frame%len(frames)]
	}
	t.frame++
	line := spinnerStyle.Render(frame) + " " + t.msg
	if t.label != "" {
		line += " " + labelStyle.Render(t.label)
	}
	t.mu.Unlock()

	t.r.printf("\r\033[K%s", line)
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

// Note prints a line outside of any task.
func (r *Reporter) Note(msg string) {
	r.printf("%s\n", strings.TrimRight(msg, "\n"))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
