package selector

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
)

// EventKind names a recorded input event.
type EventKind string

const (
	EventDown    EventKind = "down"
	EventMove    EventKind = "move"
	EventUp      EventKind = "up"
	EventEscape  EventKind = "esc"
	EventConfirm EventKind = "confirm"
)

// Event is one recorded pointer or key event.
type Event struct {
	Kind EventKind
	At   image.Point
}

// Apply feeds e to the session.
func (s *Session) Apply(e Event) {
	switch e.Kind {
	case EventDown:
		s.PointerDown(e.At)
	case EventMove:
		s.PointerMove(e.At)
	case EventUp:
		s.PointerUp(e.At)
	case EventEscape:
		s.Escape()
	case EventConfirm:
		c := s.ConfirmControl()
		if c.Empty() {
			return
		}
		s.PointerDown(image.Pt(c.X+c.Width/2, c.Y+c.Height/2))
	}
}

// Replay applies events in order and returns the final state.
func (s *Session) Replay(events []Event) State {
	for _, e := range events {
		if s.Done() {
			break
		}
		s.Apply(e)
	}
	return s.state
}

// ParseScript reads one event per line:
//
//	down X Y
//	move X Y
//	up X Y
//	confirm
//	esc
//
// Blank lines and lines starting with # are skipped.
func ParseScript(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		kind := EventKind(strings.ToLower(fields[0]))
		switch kind {
		case EventEscape, EventConfirm:
			if len(fields) != 1 {
				return nil, fmt.Errorf("line %d: %s takes no arguments", lineNo, kind)
			}
			events = append(events, Event{Kind: kind})
		case EventDown, EventMove, EventUp:
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: %s needs X and Y", lineNo, kind)
			}
			x, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid x %q", lineNo, fields[1])
			}
			y, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid y %q", lineNo, fields[2])
			}
			events = append(events, Event{Kind: kind, At: image.Pt(x, y)})
		default:
			return nil, fmt.Errorf("line %d: unknown event %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event script: %w", err)
	}
	return events, nil
}
