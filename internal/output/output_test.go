package output

import (
	"bytes"
	"image"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/blackwell-systems/qacapture/internal/capture"
	"github.com/blackwell-systems/qacapture/internal/notify"
	"github.com/blackwell-systems/qacapture/internal/records"
	"github.com/blackwell-systems/qacapture/internal/selector"
	"github.com/blackwell-systems/qacapture/internal/store"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func sampleTests() []*records.TestRecord {
	return []*records.TestRecord{
		{
			ID:        "3f2a9c1e-0000-4000-8000-000000000001",
			CreatedAt: now.Add(-48 * time.Hour),
			UpdatedAt: now.Add(-2 * time.Hour),
			Status:    records.StatusCompleted,
			HeaderData: records.HeaderData{
				TestName: "pass", System: "checkout", TestCycle: "C1",
				TestCase: "TC-101", TestType: "sprint", TestTypeValue: "42",
			},
			Screenshots: []records.Screenshot{
				{Filename: "screenshot-001.png", CapturedAt: now.Add(-3 * time.Hour)},
				{Filename: "screenshot-002.png", CapturedAt: now.Add(-2 * time.Hour), Edited: true},
			},
			Notes:        "line one\nline two",
			PDFGenerated: true,
			PDFPath:      "/qa/test-1/TC-101-evidence.pdf",
		},
		{
			ID:          "77b0d4aa-0000-4000-8000-000000000002",
			CreatedAt:   now.Add(-30 * time.Second),
			UpdatedAt:   now.Add(-30 * time.Second),
			Status:      records.StatusInProgress,
			Screenshots: []records.Screenshot{},
		},
	}
}

func TestRenderTestTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name     string
		input    []*records.TestRecord
		contains []string
	}{
		{
			name:     "empty",
			input:    nil,
			contains: []string{"No tests found"},
		},
		{
			name:  "records",
			input: sampleTests(),
			contains: []string{
				"3f2a9c1e", "TC-101", "checkout", "sprint 42", "completed", "2 hours ago",
				"77b0d4aa", "in-progress", "just now", "—",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderTestTable(tt.input, now)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("RenderTestTable() missing %q\n%s", want, result)
				}
			}
		})
	}
}

func TestRenderTestTable_PreservesOrder(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	result := RenderTestTable(sampleTests(), now)
	if strings.Index(result, "3f2a9c1e") > strings.Index(result, "77b0d4aa") {
		t.Error("rows should keep the caller's order")
	}
}

func TestRenderTestDetail(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	result := RenderTestDetail(sampleTests()[0], now)

	for _, want := range []string{
		"TC-101", "checkout", "pass", "/qa/test-1/TC-101-evidence.pdf",
		"line one", "line two", "Screenshots (2)",
		"1. screenshot-001.png", "2. screenshot-002.png", "(edited)",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("RenderTestDetail() missing %q\n%s", want, result)
		}
	}
}

func TestRenderValidation(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	ok := RenderValidation("save", records.Validation{IsValid: true, MissingFields: []string{}})
	if !strings.Contains(ok, "ready to save") {
		t.Errorf("valid result = %q", ok)
	}

	bad := RenderValidation("generate a report", records.Validation{MissingFields: []string{"testName", "system"}})
	if !strings.Contains(bad, "cannot generate a report") || !strings.Contains(bad, "testName, system") {
		t.Errorf("invalid result = %q", bad)
	}
}

func TestRenderDisplayTable(t *testing.T) {
	displays := []capture.Display{
		{ID: 0, Label: "Display 1", Bounds: image.Rect(0, 0, 1920, 1080), Primary: true},
		{ID: 1, Label: "Display 2", Bounds: image.Rect(1920, 0, 4480, 1440)},
	}
	result := RenderDisplayTable(displays, 1)

	for _, want := range []string{"1920x1080", "2560x1440", "(primary)", "1920,0"} {
		if !strings.Contains(result, want) {
			t.Errorf("RenderDisplayTable() missing %q\n%s", want, result)
		}
	}
	lines := strings.Split(result, "\n")
	if !strings.HasPrefix(lines[3], "*") {
		t.Errorf("selected display not marked: %q", lines[3])
	}
	if RenderDisplayTable(nil, 0) != "No displays found.\n" {
		t.Error("empty display table")
	}
}

func TestRenderCaptureLog(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	events := []*store.CaptureEvent{
		{TestID: "3f2a9c1e-0000", Filename: "screenshot-001.png", CapturedAt: now.Add(-time.Hour)},
		{TestID: "3f2a9c1e-0000", Filename: "screenshot-002.png", DisplayID: 1,
			Area: &selector.Rect{X: 10, Y: 20, Width: 300, Height: 200}, CapturedAt: now.Add(-time.Hour)},
	}
	result := RenderCaptureLog(events, now)
	for _, want := range []string{"full screen", "screenshot-002.png", "1 hour ago", "3f2a9c1e"} {
		if !strings.Contains(result, want) {
			t.Errorf("RenderCaptureLog() missing %q\n%s", want, result)
		}
	}
}

func TestRenderCleanupResult(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	tests := []struct {
		in   records.CleanupResult
		want string
	}{
		{records.CleanupResult{}, "No tests were old enough"},
		{records.CleanupResult{DeletedCount: 1}, "Deleted 1 completed test."},
		{records.CleanupResult{DeletedCount: 3, Errors: []string{"test x: busy"}}, "test x: busy"},
	}
	for _, tt := range tests {
		if got := RenderCleanupResult(tt.in); !strings.Contains(got, tt.want) {
			t.Errorf("RenderCleanupResult(%+v) = %q, want it to contain %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderSettings(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	days := 30
	got := RenderSettings(records.Settings{AutoDeleteAfterDays: &days, LastCleanup: now.Add(-24 * time.Hour)}, now)
	if !strings.Contains(got, "30 days") || !strings.Contains(got, "1 day ago") {
		t.Errorf("RenderSettings() = %q", got)
	}
	got = RenderSettings(records.Settings{}, now)
	if !strings.Contains(got, "off") || !strings.Contains(got, "never") {
		t.Errorf("RenderSettings() unset = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much too long", 8, "much ..."},
		{"abcdef", 2, "ab"},
		{"ünïcödé-name", 6, "ünï..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("3f2a9c1e-0000-4000"); got != "3f2a9c1e" {
		t.Errorf("ShortID() = %q", got)
	}
	if got := ShortID("plainidentifier"); got != "plain..." {
		t.Errorf("ShortID() without dashes = %q", got)
	}
}

func TestTerminalNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminalNotifier(&buf)
	notify.Warn(n, "Test database reset", "old file kept")

	got := buf.String()
	if !strings.Contains(got, "Test database reset") || !strings.Contains(got, ": old file kept") {
		t.Errorf("Notify() wrote %q", got)
	}
}

func TestNewProgress_NonTTY(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgress(3, "Rendering", &buf)
	for i := 0; i < 3; i++ {
		bar.Add(1)
	}
	bar.Finish()
	if buf.Len() != 0 {
		t.Errorf("progress on a non-terminal should be silent, wrote %q", buf.String())
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker(t *testing.T) {
	tests := sampleTests()

	var m tea.Model = NewPicker(tests, now)
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down")) // clamped at the last row
	m, _ = m.Update(key("k"))
	m, _ = m.Update(key("j"))

	if !strings.Contains(m.View(), "> 77b0d4aa") {
		t.Errorf("cursor not on second row:\n%s", m.View())
	}

	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Error("enter should quit the program")
	}
	if got := m.(Picker).Chosen(); got == nil || got.ID != tests[1].ID {
		t.Errorf("Chosen() = %v, want %s", got, tests[1].ID)
	}
}

func TestPicker_Cancel(t *testing.T) {
	var m tea.Model = NewPicker(sampleTests(), now)
	m, _ = m.Update(key("up"))
	m, cmd := m.Update(key("esc"))
	if cmd == nil {
		t.Error("esc should quit the program")
	}
	if m.(Picker).Chosen() != nil {
		t.Error("cancelled picker should choose nothing")
	}
}

func TestPickTest_Empty(t *testing.T) {
	got, err := PickTest(nil, now, strings.NewReader(""), &bytes.Buffer{})
	if err != nil || got != nil {
		t.Errorf("PickTest(nil) = %v, %v", got, err)
	}
}
