package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/escuriola/edaitorial/internal/gate"
	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/tracker"
)

const lineWidth = 80

var (
	bold   = color.New(color.Bold)
	cyan   = color.New(color.FgCyan, color.Bold)
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	faint  = color.New(color.FgHiBlack)
)

var (
	barHigh  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	barMid   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	barLow   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	barEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderHuman(w io.Writer, v any) bool {
	switch x := v.(type) {
	case *model.AnalysisResult:
		humanResult(w, x)
	case *gate.Decision:
		humanDecision(w, x)
	case *tracker.Comparison:
		humanComparison(w, x)
	case []*tracker.Entry:
		humanHistory(w, x)
	case []model.Node:
		humanNodes(w, x)
	case *model.Node:
		humanNodes(w, []model.Node{*x})
	default:
		return false
	}
	return true
}

func classColor(c model.ScoreClass) *color.Color {
	switch c {
	case model.ClassExcellent, model.ClassGood:
		return green
	case model.ClassFair:
		return yellow
	default:
		return red
	}
}

func severityColor(s model.Severity) *color.Color {
	switch s {
	case model.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case model.SeverityHigh:
		return color.New(color.FgRed)
	case model.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func scoreBar(score int) string {
	const width = 20
	score = max(0, min(100, score))
	filled := score * width / 100

	style := barLow
	switch {
	case score >= 75:
		style = barHigh
	case score >= 50:
		style = barMid
	}
	return style.Render(strings.Repeat("█", filled)) + barEmpty.Render(strings.Repeat("░", width-filled))
}

func humanResult(w io.Writer, r *model.AnalysisResult) {
	fmt.Fprintln(w)
	classColor(r.ScoreClass).Fprintf(w, "SCORE %d/100 (%s)\n", r.OverallScore, r.ScoreClass)
	faint.Fprintf(w, "source: %s  scoring: %s\n\n", r.Source, r.ScoringVersion)

	bold.Fprintln(w, "CATEGORIES:")
	for _, c := range model.Categories {
		s := r.CategoryScores[c]
		fmt.Fprintf(w, "   %s %s %3d\n", runewidth.FillRight(string(c), 14), scoreBar(s), s)
	}
	fmt.Fprintln(w)

	if len(r.Issues) > 0 {
		yellow.Fprintf(w, "ISSUES (%d):\n", len(r.Issues))
		for i, is := range r.Issues {
			fmt.Fprintf(w, "   %d. ", i+1)
			severityColor(is.Severity).Fprintf(w, "[%s]", is.Severity)
			fmt.Fprintf(w, " %s\n", is.Type)
			fmt.Fprintln(w, wrapText(is.Description, lineWidth, "      "))
		}
		fmt.Fprintln(w)
	} else {
		green.Fprintln(w, "No issues found.")
		fmt.Fprintln(w)
	}

	if len(r.Suggestions) > 0 {
		cyan.Fprintln(w, "SUGGESTIONS:")
		for _, s := range r.Suggestions {
			fmt.Fprintln(w, wrapText("- "+s, lineWidth, "   "))
		}
	}
}

func humanDecision(w io.Writer, d *gate.Decision) {
	if d.Allowed {
		green.Fprintf(w, "✓ Ready to publish: score %d >= %d\n", d.Score, d.MinScore)
	} else {
		red.Fprintf(w, "✗ Publishing blocked: score %d < %d (%s)\n", d.Score, d.MinScore, d.ScoreClass)
	}
	for _, line := range d.Summary {
		fmt.Fprintln(w, wrapText(line, lineWidth, "   "))
	}
}

func signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func humanComparison(w io.Writer, c *tracker.Comparison) {
	s := c.Scores
	fmt.Fprintf(w, "Node %s: ", c.NodeID)
	delta := color.New(color.Bold)
	switch {
	case s.ScoreDelta > 0:
		delta = green
	case s.ScoreDelta < 0:
		delta = red
	}
	delta.Fprintf(w, "%d -> %d (%s)\n", s.ScoreBase, s.ScoreHead, signed(s.ScoreDelta))
	if s.ClassBase != s.ClassHead {
		fmt.Fprintf(w, "   class: %s -> %s\n", s.ClassBase, s.ClassHead)
	}
	for _, cat := range model.Categories {
		if d, ok := s.CategoryDeltas[cat]; ok {
			fmt.Fprintf(w, "   %s %s\n", runewidth.FillRight(string(cat), 14), signed(d))
		}
	}
	fmt.Fprintf(w, "   issues: %s\n", signed(s.IssueDelta))

	if !c.ContentChanged {
		faint.Fprintln(w, "   content unchanged")
		return
	}
	fmt.Fprintln(w)
	for _, ch := range c.Chunks {
		text := runewidth.Truncate(strings.Join(strings.Fields(ch.Content), " "), lineWidth-12, "...")
		if ch.Type == "added" {
			color.New(color.FgGreen).Fprintf(w, "   + [%s] %s\n", ch.Field, text)
		} else {
			color.New(color.FgRed).Fprintf(w, "   - [%s] %s\n", ch.Field, text)
		}
	}
}

func humanHistory(w io.Writer, entries []*tracker.Entry) {
	if len(entries) == 0 {
		faint.Fprintln(w, "No analyses recorded.")
		return
	}
	for _, e := range entries {
		r := e.Result
		fmt.Fprintf(w, "%s  ", e.CreatedAt.Format("2006-01-02 15:04:05"))
		classColor(r.ScoreClass).Fprintf(w, "%3d %-9s", r.OverallScore, r.ScoreClass)
		fmt.Fprintf(w, " %2d issues  %s  %s\n", len(r.Issues), runewidth.Truncate(e.Title, 30, "..."), faint.Sprint(e.ID))
	}
}

func humanNodes(w io.Writer, nodes []model.Node) {
	if len(nodes) == 0 {
		faint.Fprintln(w, "No nodes registered.")
		return
	}
	for _, n := range nodes {
		fmt.Fprintf(w, "%s  %s", runewidth.FillRight(n.ID, 12), runewidth.Truncate(n.Title, 50, "..."))
		if n.URL != "" {
			faint.Fprintf(w, "  %s", n.URL)
		}
		fmt.Fprintln(w)
	}
}

// wrapText wraps on display width so wide characters do not overflow.
func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}
		current := indent
		for _, word := range words {
			switch {
			case current == indent:
				current += word
			case runewidth.StringWidth(current)+runewidth.StringWidth(word)+1 > width:
				result.WriteString(current + "\n")
				current = indent + word
			default:
				current += " " + word
			}
		}
		result.WriteString(current + "\n")
	}
	return strings.TrimSuffix(result.String(), "\n")
}
