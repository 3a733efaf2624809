package blender

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Severity classifies a line of renderer output.
type Severity int

const (
	SeverityPlain Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "plain"
	}
}

// QuitSentinel is printed by Blender once it has finished and is exiting.
const QuitSentinel = "Blender quit"

// Line is one line of process output with escape codes removed.
type Line struct {
	Text     string
	Severity Severity
}

// IsQuit reports whether the line announces that Blender is exiting.
func (l Line) IsQuit() bool {
	return strings.Contains(l.Text, QuitSentinel)
}

var severityTags = []struct {
	tag      string
	severity Severity
}{
	{"[ERROR]", SeverityError},
	{"[WARNING]", SeverityWarning},
	{"[INFO]", SeverityInfo},
}

// ParseLine strips ANSI escapes and tags lines the settings module prefixed
// with [INFO], [WARNING] or [ERROR].
func ParseLine(raw string) Line {
	clean := strings.TrimRight(text.StripEscape(raw), "\r\n")
	trimmed := strings.TrimSpace(clean)
	for _, entry := range severityTags {
		if strings.HasPrefix(trimmed, entry.tag) {
			return Line{Text: clean, Severity: entry.severity}
		}
	}
	return Line{Text: clean, Severity: SeverityPlain}
}
