package output

import (
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/blackwell-systems/qacapture/internal/notify"
)

// TerminalNotifier prints notices to a writer, usually stderr.
type TerminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminalNotifier creates a TerminalNotifier writing to w.
func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{w: w}
}

// Notify implements notify.Notifier.
func (n *TerminalNotifier) Notify(notice notify.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var title *color.Color
	switch notice.Level {
	case notify.LevelError:
		title = color.New(color.FgRed, color.Bold)
	case notify.LevelWarning:
		title = color.New(color.FgYellow, color.Bold)
	default:
		title = color.New(color.FgCyan, color.Bold)
	}

	title.Fprint(n.w, notice.Title)
	if notice.Message != "" {
		io.WriteString(n.w, ": "+notice.Message)
	}
	io.WriteString(n.w, "\n")
}
