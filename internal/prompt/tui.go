package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/x402-tools/create-x402/internal/catalog"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8CFF")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

// TUIPrompter asks questions with bubbletea widgets. Esc and ctrl+c cancel.
type TUIPrompter struct {
	In  io.Reader
	Out io.Writer
}

// SelectTemplate shows a filterable template picker.
func (p *TUIPrompter) SelectTemplate(ctx context.Context, templates []catalog.Template) (string, error) {
	if len(templates) == 0 {
		return "", errors.New("no templates available")
	}
	m, err := p.run(ctx, newPickerModel(templates))
	if err != nil {
		return "", err
	}
	pm := m.(pickerModel)
	if pm.cancelled || pm.choice == "" {
		return "", ErrCancelled
	}
	return pm.choice, nil
}

// ProjectName shows a text input prefilled with defaultName as placeholder.
func (p *TUIPrompter) ProjectName(ctx context.Context, defaultName string) (string, error) {
	m, err := p.run(ctx, newNameModel(defaultName))
	if err != nil {
		return "", err
	}
	nm := m.(nameModel)
	if nm.cancelled {
		return "", ErrCancelled
	}
	return nm.value, nil
}

func (p *TUIPrompter) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	prog := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
	)
	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("running prompt: %w", err)
	}
	return final, nil
}

// pickerModel selects one template. Typing filters by ID and description.
type pickerModel struct {
	templates []catalog.Template
	filtered  []catalog.Template
	filter    textinput.Model
	cursor    int
	choice    string
	cancelled bool
}

func newPickerModel(templates []catalog.Template) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = "/ "
	ti.Width = 30
	ti.Focus()

	return pickerModel{templates: templates, filtered: templates, filter: ti}
}

func (m pickerModel) Init() tea.Cmd { return textinput.Blink }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "esc", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	case "enter":
		if m.cursor < len(m.filtered) {
			m.choice = m.filtered[m.cursor].ID
			return m, tea.Quit
		}
		return m, nil
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *pickerModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if query == "" {
		m.filtered = m.templates
	} else {
		m.filtered = m.filtered[:0:0]
		for _, t := range m.templates {
			if strings.Contains(strings.ToLower(t.ID), query) ||
				strings.Contains(strings.ToLower(t.Description), query) {
				m.filtered = append(m.filtered, t)
			}
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m pickerModel) View() string {
	if m.choice != "" || m.cancelled {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Select a template"))
	sb.WriteString("  ")
	sb.WriteString(dimStyle.Render("↑/↓ move · enter select · esc cancel"))
	sb.WriteString("\n\n")
	sb.WriteString(m.filter.View())
	sb.WriteString("\n\n")

	if len(m.filtered) == 0 {
		sb.WriteString(dimStyle.Render("  No matching templates"))
		sb.WriteString("\n")
	}
	for i, t := range m.filtered {
		line := fmt.Sprintf("%-22s %s", t.ID, dimStyle.Render(t.Description))
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render("› " + fmt.Sprintf("%-22s", t.ID)))
			sb.WriteString(" " + dimStyle.Render(t.Description))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// nameModel reads the project name.
type nameModel struct {
	input     textinput.Model
	fallback  string
	value     string
	err       error
	cancelled bool
}

func newNameModel(defaultName string) nameModel {
	ti := textinput.New()
	ti.Placeholder = defaultName
	ti.Prompt = "› "
	ti.Width = 40
	ti.Focus()
	return nameModel{input: ti, fallback: defaultName}
}

func (m nameModel) Init() tea.Cmd { return textinput.Blink }

func (m nameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			raw := m.input.Value()
			if strings.TrimSpace(raw) == "" {
				raw = m.fallback
			}
			name, err := CleanName(raw)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.value = name
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.err = nil
	return m, cmd
}

func (m nameModel) View() string {
	if m.value != "" || m.cancelled {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Project name"))
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	if m.err != nil {
		sb.WriteString(errorStyle.Render(m.err.Error()))
		sb.WriteString("\n")
	}
	return sb.String()
}
