package session

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// NoDetectionsText is printed for a session without records.
const NoDetectionsText = "No microbes detected."

const stampLayout = "2006-01-02 15:04:05"

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#6b7785")
)

// Text returns the plain summary. The first four lines keep the classic
// "Final Report" layout; the session statistics follow.
func Text(s Summary) string {
	if s.NoDetections {
		return NoDetectionsText + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Final Report:\nMost Common Microbe: %s\nDisease: %s\nRisk: %s\n", s.Microbe, s.Disease, s.Risk)
	fmt.Fprintf(&b, "Frames: %d\n", s.Frames)
	fmt.Fprintf(&b, "Cells: %d total, %.2f per frame\n", s.TotalCells, s.MeanCells)
	fmt.Fprintf(&b, "Window: %s to %s\n", s.First.Local().Format(stampLayout), s.Last.Local().Format(stampLayout))
	b.WriteString("Microbes:\n")
	for _, c := range s.Microbes {
		fmt.Fprintf(&b, "  %-16s %d\n", c.Name, c.N)
	}
	return b.String()
}

// Render writes the summary to w. Styled output draws a bordered box using
// the colour profile detected for w; plain output is Text.
func Render(w io.Writer, s Summary, styled bool) error {
	if !styled || s.NoDetections {
		_, err := io.WriteString(w, Text(s))
		return err
	}
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Foreground(accent).Bold(true)
	key := r.NewStyle().Foreground(muted)
	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 2)

	row := func(k, v string) string { return key.Render(fmt.Sprintf("%-20s", k)) + v }
	lines := []string{
		title.Render("Final Report"),
		"",
		row("Most Common Microbe", s.Microbe),
		row("Disease", s.Disease),
		row("Risk", string(s.Risk)),
		row("Frames", fmt.Sprint(s.Frames)),
		row("Cells", fmt.Sprintf("%d total, %.2f per frame", s.TotalCells, s.MeanCells)),
		row("Window", fmt.Sprintf("%s to %s", s.First.Local().Format(stampLayout), s.Last.Local().Format(stampLayout))),
	}
	if len(s.Microbes) > 0 {
		lines = append(lines, "", title.Render("Microbes"))
		for _, c := range s.Microbes {
			lines = append(lines, row(c.Name, fmt.Sprint(c.N)))
		}
	}
	_, err := fmt.Fprintln(w, box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	return err
}
