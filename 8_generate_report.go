package clustergen

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

const (
	ReportMarkdownFile = "cluster_report.md"
	ReportHTMLFile     = "cluster_report.html"
)

//go:embed templates/report.html
var htmlTemplate string

//go:embed templates/styles.css
var cssStyles string

var GenerateReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the cluster report as markdown and HTML",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(Config)
		if err != nil {
			return err
		}
		specs, err := ReadSpecs(Config.OutputDir)
		if err != nil {
			return err
		}
		session.RestoreSpecs(specs)
		return WriteReport(Config.OutputDir, session)
	},
}

// WriteReport renders the session and writes cluster_report.md and cluster_report.html
func WriteReport(dir string, s *Session) error {
	markdown := RenderReport(s)
	page, err := RenderReportHTML(markdown)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	mdPath := filepath.Join(dir, ReportMarkdownFile)
	if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("failed to write markdown report: %w", err)
	}
	htmlPath := filepath.Join(dir, ReportHTMLFile)
	if err := os.WriteFile(htmlPath, []byte(page), 0644); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}

	logger.Info("📝 Report generated", zap.String("markdown", mdPath), zap.String("html", htmlPath))
	return nil
}

// RenderReport writes one markdown section per cluster
func RenderReport(s *Session) string {
	clusters := s.Clusters()
	radar := NormalizeRadar(clusters)
	specs := s.Specs()

	var b strings.Builder
	b.WriteString("# Cluster Report\n\n")
	fmt.Fprintf(&b, "%d videos in %d clusters, %d specs built.\n\n", s.VideoCount(), len(clusters), len(specs))

	if len(clusters) == 0 {
		b.WriteString("No clusters loaded.\n")
		return b.String()
	}

	for _, c := range clusters {
		scores := radar[c.Cluster]
		suggestion := SuggestApproach(scores)

		fmt.Fprintf(&b, "## Cluster %s\n\n", c.Cluster)
		fmt.Fprintf(&b, "**Videos:** %d  \n", c.Count)
		fmt.Fprintf(&b, "**Characteristics:** %s\n\n", Characteristics(c))

		b.WriteString("| Metric | Average | Min | Max |\n")
		b.WriteString("|---|---:|---:|---:|\n")
		fmt.Fprintf(&b, "| Motion | %.3f | %.3f | %.3f |\n", c.AvgMotion, c.MinMotion, c.MaxMotion)
		fmt.Fprintf(&b, "| Cut rate (per min) | %.1f | %.1f | %.1f |\n", c.AvgCutRate, c.MinCutRate, c.MaxCutRate)
		fmt.Fprintf(&b, "| Visual density | %.3f | %.3f | %.3f |\n", c.AvgVisualDensity, c.MinVisualDensity, c.MaxVisualDensity)
		fmt.Fprintf(&b, "| Audio RMS mean | %.3f | | |\n", c.AvgAudioRMSMean)
		fmt.Fprintf(&b, "| Audio RMS std | %.3f | | |\n", c.AvgAudioRMSStd)
		if c.AvgDurationSec != nil {
			fmt.Fprintf(&b, "| Duration (s) | %.1f | | |\n", *c.AvgDurationSec)
		}
		b.WriteString("\n")

		if len(c.Missing) > 0 {
			fields := make([]string, 0, len(c.Missing))
			for _, field := range metricFields {
				if n := c.Missing[field]; n > 0 {
					fields = append(fields, fmt.Sprintf("%s (%d)", field, n))
				}
			}
			fmt.Fprintf(&b, "_Missing values counted as 0: %s_\n\n", strings.Join(fields, ", "))
		}

		b.WriteString("**Radar**\n\n")
		for _, p := range scores.Points() {
			fmt.Fprintf(&b, "- %s: %.0f\n", p.Metric, p.Value)
		}
		b.WriteString("\n")

		fmt.Fprintf(&b, "**Suggested approach:** %s (%s confidence). %s\n\n",
			suggestion.Approach, suggestion.Confidence, suggestion.Reason)

		if approach, ok := s.ApproachFor(c.Cluster); ok {
			fmt.Fprintf(&b, "**Chosen approach:** %s\n\n", approach)
		} else {
			b.WriteString("**Chosen approach:** none\n\n")
		}

		if tokens := s.Tokens(c.Cluster); len(tokens) > 0 {
			fmt.Fprintf(&b, "**Trend tokens:** %s\n\n", strings.Join(tokens, ", "))
		}

		if spec, ok := specs[c.Cluster]; ok {
			fmt.Fprintf(&b, "**Spec:** built with %s, %s camera, %s pacing, variation by %s\n\n",
				spec.Approach, spec.MotionProfile.CameraMovement, spec.PacingProfile.Pacing, spec.VariationStrategy)
		} else {
			b.WriteString("**Spec:** not built\n\n")
		}
	}
	return b.String()
}

// RenderReportHTML converts the markdown report into a standalone HTML page
func RenderReportHTML(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML template: %w", err)
	}

	data := struct {
		Title string
		Date  string
		Body  template.HTML
		CSS   template.CSS
	}{
		Title: "Cluster Report",
		Date:  time.Now().Format("2 January 2006"),
		Body:  template.HTML(buf.String()),
		CSS:   template.CSS(cssStyles),
	}

	var result bytes.Buffer
	if err := tmpl.Execute(&result, data); err != nil {
		return "", fmt.Errorf("failed to execute HTML template: %w", err)
	}
	return result.String(), nil
}
