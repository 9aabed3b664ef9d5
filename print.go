package clustergen

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorMauve   = lipgloss.Color("#cba6f7")
	colorTeal    = lipgloss.Color("#94e2d5")
	colorPeach   = lipgloss.Color("#fab387")
	colorOverlay = lipgloss.Color("#6c7086")
)

type clusterLineStyles struct {
	id         lipgloss.Style
	count      lipgloss.Style
	tags       lipgloss.Style
	suggestion lipgloss.Style
}

func newClusterLineStyles(color bool) clusterLineStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return clusterLineStyles{id: plain, count: plain, tags: plain, suggestion: plain}
	}
	return clusterLineStyles{
		id:         lipgloss.NewStyle().Bold(true).Foreground(colorMauve),
		count:      lipgloss.NewStyle().Foreground(colorOverlay),
		tags:       lipgloss.NewStyle().Foreground(colorTeal),
		suggestion: lipgloss.NewStyle().Foreground(colorPeach),
	}
}

// isTerminal reports whether w writes to a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// PrintClusters writes one line per cluster with its size, tags and suggested approach.
// Lines are colored only when w is a terminal.
func PrintClusters(w io.Writer, s *Session) error {
	styles := newClusterLineStyles(isTerminal(w))
	for _, insight := range Insights(s.Clusters()) {
		_, err := fmt.Fprintf(w, "%s  %s  %s  %s\n",
			styles.id.Render(fmt.Sprintf("Cluster %s", insight.Cluster)),
			styles.count.Render(fmt.Sprintf("(%d videos)", insight.Count)),
			styles.tags.Render(insight.Characteristics),
			styles.suggestion.Render(fmt.Sprintf("→ %s [%s]", insight.Suggestion.Approach, insight.Suggestion.Confidence)),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
