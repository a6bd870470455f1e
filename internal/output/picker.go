package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/qacapture/internal/records"
)

var (
	pickerTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	pickerSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	pickerDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Picker is a bubbletea model for choosing one test record.
type Picker struct {
	tests  []*records.TestRecord
	now    time.Time
	cursor int
	chosen *records.TestRecord
	done   bool
}

// NewPicker lists tests in the order given.
func NewPicker(tests []*records.TestRecord, now time.Time) Picker {
	return Picker{tests: tests, now: now}
}

// Chosen returns the selected record, or nil if the picker was dismissed.
func (m Picker) Chosen() *records.TestRecord { return m.chosen }

// Init implements tea.Model.
func (m Picker) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tests)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		if len(m.tests) > 0 {
			m.cursor = len(m.tests) - 1
		}
	case "enter":
		if len(m.tests) > 0 {
			m.chosen = m.tests[m.cursor]
		}
		m.done = true
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m Picker) View() string {
	if m.done {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(pickerTitle.Render("Continue which test?"))
	sb.WriteString("\n\n")

	for i, t := range m.tests {
		h := t.HeaderData
		line := fmt.Sprintf("%-9s %-16s %-14s %-12s %s",
			ShortID(t.ID),
			truncate(orDash(h.TestCase), 16),
			truncate(orDash(h.System), 14),
			t.Status,
			relTime(t.UpdatedAt, m.now))
		if i == m.cursor {
			sb.WriteString(pickerSelected.Render("> " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(pickerDim.Render("↑/↓ move · enter select · esc cancel"))
	sb.WriteString("\n")
	return sb.String()
}

// PickTest runs the picker on in/out and returns the chosen record, or nil
// when the user cancels or there is nothing to choose.
func PickTest(tests []*records.TestRecord, now time.Time, in io.Reader, out io.Writer) (*records.TestRecord, error) {
	if len(tests) == 0 {
		return nil, nil
	}

	p := tea.NewProgram(NewPicker(tests, now), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run picker: %w", err)
	}
	return final.(Picker).Chosen(), nil
}
