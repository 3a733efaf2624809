package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry is one decoded session log record.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Attrs     map[string]any
}

// ParseEntry decodes a JSON log line. ok is false for lines that are not
// JSON objects.
func ParseEntry(line string) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	e := Entry{Attrs: make(map[string]any)}
	for key, value := range raw {
		switch key {
		case "ts":
			if s, ok := value.(string); ok {
				e.Time, _ = time.Parse(time.RFC3339, s)
			}
		case "level":
			e.Level, _ = value.(string)
		case "component":
			e.Component, _ = value.(string)
		case "msg":
			e.Message, _ = value.(string)
		default:
			e.Attrs[key] = value
		}
	}
	return e, true
}

// IsRendererOutput reports whether the entry is a line of Blender output.
func (e Entry) IsRendererOutput() bool {
	return e.Component == "blender"
}

// Format renders the entry as a single console line.
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format(time.TimeOnly))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		fmt.Fprintf(&b, "%-5s ", strings.ToUpper(e.Level))
	}
	if e.Component != "" {
		b.WriteString(e.Component)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Attrs[k])
	}
	return b.String()
}
