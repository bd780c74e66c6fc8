package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/x402-tools/create-x402/internal/catalog"
)

// LinePrompter asks questions with numbered menus on plain streams. Used when
// stdin is not a terminal.
type LinePrompter struct {
	reader *bufio.Reader
	w      io.Writer

	// pending holds the result of a read still in flight after its caller
	// was cancelled, so reads never overlap.
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewLinePrompter reads answers from r and writes questions to w.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{reader: bufio.NewReader(r), w: w}
}

// SelectTemplate presents templates as a numbered list and returns the chosen ID.
func (p *LinePrompter) SelectTemplate(ctx context.Context, templates []catalog.Template) (string, error) {
	if len(templates) == 0 {
		return "", errors.New("no templates available")
	}

	fmt.Fprintf(p.w, "\nSelect a template:\n")
	for i, t := range templates {
		fmt.Fprintf(p.w, "  %2d) %-22s %s\n", i+1, t.ID, t.Description)
	}

	for {
		fmt.Fprintf(p.w, "Enter number [1-%d]: ", len(templates))
		line, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}

		num, err := strconv.Atoi(line)
		if err == nil && num >= 1 && num <= len(templates) {
			return templates[num-1].ID, nil
		}
		fmt.Fprintf(p.w, "Invalid selection %q: choose 1-%d\n", line, len(templates))
	}
}

// ProjectName asks for the project directory name. An empty answer accepts
// defaultName.
func (p *LinePrompter) ProjectName(ctx context.Context, defaultName string) (string, error) {
	for {
		fmt.Fprintf(p.w, "Project name (%s): ", defaultName)
		line, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}
		if line == "" {
			line = defaultName
		}

		name, err := CleanName(line)
		if err == nil {
			return name, nil
		}
		fmt.Fprintln(p.w, err)
	}
}

// readLine returns the next trimmed line. End of input or a cancelled
// context cancels the prompt, even while the read is blocked.
func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrCancelled
	}

	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := p.reader.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		p.pending = ch
	}

	var res lineResult
	select {
	case <-ctx.Done():
		return "", ErrCancelled
	case res = <-p.pending:
		p.pending = nil
	}
	if ctx.Err() != nil {
		return "", ErrCancelled
	}

	line := strings.TrimSpace(res.line)
	if res.err != nil {
		if errors.Is(res.err, io.EOF) {
			if line != "" {
				return line, nil
			}
			return "", ErrCancelled
		}
		return "", fmt.Errorf("reading input: %w", res.err)
	}
	return line, nil
}
