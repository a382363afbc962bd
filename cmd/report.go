package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dashu-baba/docker-service-manager/internal/app"
	"github.com/dashu-baba/docker-service-manager/internal/render"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

type reportOptions struct {
	full   bool
	format string
	output string
	input  string
}

func newReportCmd(o *rootOptions) *cobra.Command {
	ro := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a quick or full health report",
		Long: `Generate a health report. A quick report covers the daemon status and
container and image counts; --full adds engine details, Docker disk usage,
host resources and findings.

With --input a previously saved JSON report is rendered instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") && ro.output != "" {
				ro.format = formatFromExt(ro.output)
			}
			return failed(runReport(cmd, o.env(cmd), ro))
		},
	}

	cmd.Flags().BoolVar(&ro.full, "full", false, "include engine details, disk usage, host resources and findings")
	cmd.Flags().StringVarP(&ro.format, "format", "f", "text", "output format: text, json, md or html")
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&ro.input, "input", "i", "", "render a JSON report saved earlier instead of collecting")
	return cmd
}

func runReport(cmd *cobra.Command, a *app.App, ro *reportOptions) error {
	format, err := render.ParseFormat(ro.format)
	if err != nil {
		return err
	}
	if ro.output != "" && format == render.FormatText {
		render.DisableColor()
	}

	var buf bytes.Buffer
	if ro.input != "" {
		report, err := readReport(ro.input)
		if err != nil {
			return err
		}
		opts := render.Options{Graphs: a.Config.Report.Graphs, GraphWidth: a.Config.Report.GraphWidth}
		if err := render.Report(&buf, report, format, opts); err != nil {
			return err
		}
	} else if _, err := a.Report(cmd.Context(), ro.full, format, &buf); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if ro.output == "" {
		_, err := out.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(ro.output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	fmt.Fprintf(out, "Report written to %s\n", ro.output)
	return nil
}

func readReport(path string) (*types.HealthReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	var report types.HealthReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return &report, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return string(render.FormatJSON)
	case ".md", ".markdown":
		return string(render.FormatMarkdown)
	case ".html", ".htm":
		return string(render.FormatHTML)
	}
	return string(render.FormatText)
}
