package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"renderrob/internal/job"
	"renderrob/internal/render"
)

// renderSummary tabulates every job of a finished session. Jobs the session
// never reached are marked "not run".
func renderSummary(records []job.Record, summary render.Summary, colorize bool) string {
	byIndex := make(map[int]render.Outcome, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		byIndex[o.Index] = o
	}
	colors := render.Colors(records, summary.Outcomes)

	rows := make([][]string, 0, len(records))
	tints := make([]text.Colors, 0, len(records))
	for i, rec := range records {
		row := []string{strconv.Itoa(i + 1), rec.Label(), "", "not run", "", "", ""}
		if o, ok := byIndex[i]; ok {
			row[2] = o.ShotName
			row[3] = o.Status.String()
			if o.Exited || o.Status == render.StatusSkipped {
				row[4] = strconv.Itoa(o.ExitCode)
			}
			if o.Status != render.StatusSkipped {
				row[5] = formatDuration(o.Duration())
			}
			row[6] = o.FramePath
			if o.Err != nil && o.FramePath == "" {
				row[6] = o.Err.Error()
			}
		} else if !rec.Active {
			row[3] = "inactive"
		}
		rows = append(rows, row)
		tints = append(tints, jobColors(colors[i]))
	}

	return renderTable(tableData{
		headers:   []string{"#", "Job", "Shot", "Status", "Exit", "Time", "Output"},
		rows:      rows,
		aligns:    []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		rowColors: tints,
		colorize:  colorize,
	})
}

func summaryFooter(summary render.Summary, sessionLog string) string {
	counts := summary.Counts()
	parts := []string{
		fmt.Sprintf("%d green", counts[render.StatusGreen]),
		fmt.Sprintf("%d yellow", counts[render.StatusYellow]),
		fmt.Sprintf("%d red", counts[render.StatusRed]),
		fmt.Sprintf("%d skipped", counts[render.StatusSkipped]),
	}
	if n := len(summary.Remaining); n > 0 {
		parts = append(parts, fmt.Sprintf("%d not run", n))
	}
	var state string
	switch {
	case summary.Cancelled:
		state = "cancelled"
	case summary.Err != nil:
		state = "halted"
	default:
		state = "complete"
	}
	line := fmt.Sprintf("Session %s %s (%d%%): %s", shortID(summary.SessionID), state, summary.Progress, strings.Join(parts, ", "))
	if sessionLog != "" {
		line += "\nSession log: " + sessionLog
	}
	return line
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
