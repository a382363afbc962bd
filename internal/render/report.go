package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/docker/go-units"

	"github.com/dashu-baba/docker-service-manager/internal/types"
)

// Format is a report output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat accepts the format names of the --format flag.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported format: %s (want text, json, md or html)", s)
}

// Options controls the text renderer.
type Options struct {
	Graphs     bool
	GraphWidth int
}

// Report writes a health report in the given format.
func Report(w io.Writer, report *types.HealthReport, format Format, opts Options) error {
	switch format {
	case FormatText:
		return reportText(w, report, opts)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatMarkdown:
		_, err := io.WriteString(w, generateMarkdown(report))
		return err
	case FormatHTML:
		return generateHTML(w, report)
	}
	return fmt.Errorf("unsupported format: %s", format)
}

func reportText(w io.Writer, r *types.HealthReport, opts Options) error {
	fmt.Fprintf(w, "%s (%s) generated %s\n", bold("Health report"), r.Kind, r.Timestamp.Format("2006-01-02 15:04:05"))

	Heading(w, "Service")
	Status(w, r.Service)

	Heading(w, "Summary")
	c := r.Counts
	fmt.Fprintf(w, "Containers: %d total, %d running, %d stopped, %d unhealthy\n",
		c.ContainersTotal, c.ContainersRunning, c.ContainersStopped, c.ContainersUnhealthy)
	fmt.Fprintf(w, "Images:     %d total, %d dangling\n", c.Images, c.DanglingImages)
	if r.Kind == types.ReportQuick {
		return reportErrors(w, r)
	}

	if r.Docker != nil {
		Heading(w, "Docker Engine")
		DockerInfo(w, r.Docker)
	}
	if du := r.DiskUsage; du != nil {
		Heading(w, "Docker Disk Usage")
		fmt.Fprintf(w, "Images:            %s\n", units.HumanSize(float64(du.ImagesBytes)))
		fmt.Fprintf(w, "Containers (rw):   %s\n", units.HumanSize(float64(du.ContainersWritableBytes)))
		fmt.Fprintf(w, "Volumes:           %s\n", units.HumanSize(float64(du.VolumesBytes)))
		fmt.Fprintf(w, "Build cache:       %s\n", units.HumanSize(float64(du.BuildCacheBytes)))
	}
	if r.Host != nil {
		Heading(w, "Host Resources")
		Host(w, r.Host, opts.Graphs, opts.GraphWidth)
	}

	Heading(w, fmt.Sprintf("Findings (%d)", len(r.Issues)))
	if len(r.Issues) == 0 {
		fmt.Fprintln(w, green("All systems stable - No issues detected!"))
	}
	for _, is := range r.Issues {
		fmt.Fprintf(w, "%s %s %s\n", severity(is.Severity), bold(is.RuleID), faint(is.Subject))
		fmt.Fprintf(w, "    %s\n", is.Description)
		for _, s := range is.Solutions {
			fmt.Fprintf(w, "    - %s\n", s)
		}
	}
	return reportErrors(w, r)
}

func reportErrors(w io.Writer, r *types.HealthReport) error {
	if len(r.Errors) == 0 {
		return nil
	}
	Heading(w, "Collection Errors")
	for _, e := range r.Errors {
		if _, err := fmt.Fprintf(w, "%s %s\n", red("-"), e); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func generateMarkdown(r *types.HealthReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, `# Docker Service Manager Health Report

**Kind:** %s
**Timestamp:** %s

## Service
| Unit | State | Enabled | Reachable | Version |
|------|-------|---------|-----------|---------|
| %s | %s | %t | %t | %s |

## Summary
- **Containers:** %d total, %d running, %d stopped, %d unhealthy
- **Images:** %d total, %d dangling
`, r.Kind, r.Timestamp.Format("2006-01-02 15:04:05"),
		r.Service.Unit, r.Service.State, r.Service.Enabled, r.Service.Reachable, r.Service.Version,
		r.Counts.ContainersTotal, r.Counts.ContainersRunning, r.Counts.ContainersStopped, r.Counts.ContainersUnhealthy,
		r.Counts.Images, r.Counts.DanglingImages)

	if d := r.Docker; d != nil {
		fmt.Fprintf(&b, `
## Docker Information
- **Version:** %s (API %s)
- **Operating System:** %s (%s/%s)
- **Storage Driver:** %s
- **Root Dir:** %s
`, d.Version, d.APIVersion, d.OperatingSystem, d.OS, d.Arch, d.StorageDriver, d.RootDir)
	}
	if du := r.DiskUsage; du != nil {
		fmt.Fprintf(&b, `
## Docker Disk Usage
| Images | Containers (rw) | Volumes | Build Cache |
|--------|-----------------|---------|-------------|
| %s | %s | %s | %s |
`, units.HumanSize(float64(du.ImagesBytes)), units.HumanSize(float64(du.ContainersWritableBytes)),
			units.HumanSize(float64(du.VolumesBytes)), units.HumanSize(float64(du.BuildCacheBytes)))
	}
	if h := r.Host; h != nil {
		fmt.Fprintf(&b, `
## Host Information
- **Hostname:** %s
- **Operating System:** %s %s
- **CPU:** %.1f%% of %d cores
- **Memory:** %.1f%% of %s

### Disk Usage
| Path | Used (%%) | Used | Total |
|------|-----------|------|-------|
`, h.Hostname, h.OS, h.Platform, h.CPUPercent, h.CPUCount, h.Memory.UsedPercent, units.BytesSize(float64(h.Memory.Total)))
		paths := make([]string, 0, len(h.DiskUsage))
		for p := range h.DiskUsage {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			d := h.DiskUsage[p]
			fmt.Fprintf(&b, "| %s | %.2f | %s | %s |\n", p, d.UsedPercent, units.BytesSize(float64(d.Used)), units.BytesSize(float64(d.Total)))
		}
	}

	if r.Kind == types.ReportFull {
		b.WriteString("\n## Diagnostic Issues\n")
		if len(r.Issues) == 0 {
			b.WriteString("**All systems stable - No issues detected!**\n")
		}
		for _, is := range r.Issues {
			fmt.Fprintf(&b, "### %s (%s Severity)\n`%s` %s\n\n%s\n\n**Facts:**\n", is.RuleID, title(is.Severity), is.Subject, title(is.Category), is.Description)
			for _, k := range sortedKeys(is.Facts) {
				fmt.Fprintf(&b, "- **%s:** %v\n", title(k), is.Facts[k])
			}
			b.WriteString("\n**Recommended Solutions:**\n")
			for i, s := range is.Solutions {
				fmt.Fprintf(&b, "%d. %s\n", i+1, s)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Errors) > 0 {
		b.WriteString("\n## Collection Errors\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}

var htmlFuncs = template.FuncMap{
	"size":  func(v uint64) string { return units.HumanSize(float64(v)) },
	"bytes": func(v uint64) string { return units.BytesSize(float64(v)) },
	"title": title,
}

var htmlReport = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Docker Service Manager Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        h1, h2, h3 { color: #333; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        .issue { margin-bottom: 20px; border-left: 5px solid #ff6b6b; padding-left: 10px; }
        .stable { color: green; }
        .severity-high { color: red; }
        .severity-medium { color: orange; }
        .severity-low { color: #b59f00; }
    </style>
</head>
<body>
    <h1>Docker Service Manager Report</h1>
    <p><strong>Kind:</strong> {{.Kind}}</p>
    <p><strong>Timestamp:</strong> {{.Timestamp.Format "2006-01-02 15:04:05"}}</p>

    <h2>Service</h2>
    <table>
        <tr><th>Unit</th><th>State</th><th>Enabled</th><th>Reachable</th><th>Version</th></tr>
        <tr>
            <td>{{.Service.Unit}}</td>
            <td>{{.Service.State}}</td>
            <td>{{if .Service.Enabled}}Yes{{else}}No{{end}}</td>
            <td>{{if .Service.Reachable}}Yes{{else}}No{{end}}</td>
            <td>{{.Service.Version}}</td>
        </tr>
    </table>

    <h2>Summary</h2>
    <p><strong>Containers:</strong> {{.Counts.ContainersTotal}} total, {{.Counts.ContainersRunning}} running, {{.Counts.ContainersStopped}} stopped, {{.Counts.ContainersUnhealthy}} unhealthy</p>
    <p><strong>Images:</strong> {{.Counts.Images}} total, {{.Counts.DanglingImages}} dangling</p>

    {{with .Docker}}
    <h2>Docker Information</h2>
    <p><strong>Version:</strong> {{.Version}} (API {{.APIVersion}})</p>
    <p><strong>Operating System:</strong> {{.OperatingSystem}} ({{.OS}}/{{.Arch}})</p>
    <p><strong>Storage Driver:</strong> {{.StorageDriver}}</p>
    {{end}}

    {{with .DiskUsage}}
    <h2>Docker Disk Usage</h2>
    <table>
        <tr><th>Images</th><th>Containers (rw)</th><th>Volumes</th><th>Build Cache</th></tr>
        <tr>
            <td>{{size .ImagesBytes}}</td>
            <td>{{size .ContainersWritableBytes}}</td>
            <td>{{size .VolumesBytes}}</td>
            <td>{{size .BuildCacheBytes}}</td>
        </tr>
    </table>
    {{end}}

    {{with .Host}}
    <h2>Host Information</h2>
    <p><strong>Hostname:</strong> {{.Hostname}}</p>
    <p><strong>Operating System:</strong> {{.OS}} {{.Platform}}</p>
    <p><strong>CPU:</strong> {{printf "%.1f" .CPUPercent}}% of {{.CPUCount}} cores</p>
    <p><strong>Memory:</strong> {{printf "%.1f" .Memory.UsedPercent}}% of {{bytes .Memory.Total}}</p>

    <h3>Disk Usage</h3>
    <table>
        <tr><th>Path</th><th>Used (%)</th><th>Used</th><th>Total</th></tr>
        {{range $path, $disk := .DiskUsage}}
        <tr>
            <td>{{$path}}</td>
            <td>{{printf "%.2f" $disk.UsedPercent}}</td>
            <td>{{bytes $disk.Used}}</td>
            <td>{{bytes $disk.Total}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}

    {{if eq (print .Kind) "full"}}
    <h2>Diagnostic Issues</h2>
    {{if .Issues}}
        {{range .Issues}}
        <div class="issue severity-{{.Severity}}">
            <h3>{{.RuleID}} ({{title .Severity}} Severity)</h3>
            <p><code>{{.Subject}}</code> {{title .Category}}</p>
            <p><strong>Description:</strong> {{.Description}}</p>
            <h4>Facts</h4>
            <ul>
            {{range $key, $value := .Facts}}
                <li><strong>{{title $key}}:</strong> {{$value}}</li>
            {{end}}
            </ul>
            <h4>Recommended Solutions</h4>
            <ol>
            {{range .Solutions}}
                <li>{{.}}</li>
            {{end}}
            </ol>
        </div>
        {{end}}
    {{else}}
        <p class="stable"><strong>All systems stable - No issues detected!</strong></p>
    {{end}}
    {{end}}

    {{if .Errors}}
    <h2>Collection Errors</h2>
    <ul>
    {{range .Errors}}
        <li>{{.}}</li>
    {{end}}
    </ul>
    {{end}}
</body>
</html>
`))

func generateHTML(w io.Writer, r *types.HealthReport) error {
	return htmlReport.Execute(w, r)
}

// Summary prints a one-line digest of a report, as used by `dsm watch`.
func Summary(w io.Writer, r *types.HealthReport) {
	state := string(r.Service.State)
	if r.Service.Reachable {
		state = green(state)
	} else {
		state = red(state)
	}
	c := r.Counts
	line := fmt.Sprintf("%s %s %s: containers %d/%d running", r.Timestamp.Format("2006-01-02 15:04:05"), r.Service.Unit, state, c.ContainersRunning, c.ContainersTotal)
	if c.ContainersUnhealthy > 0 {
		line += ", " + yellow(fmt.Sprintf("%d unhealthy", c.ContainersUnhealthy))
	}
	line += fmt.Sprintf(", images %d (%d dangling)", c.Images, c.DanglingImages)
	if r.Kind == types.ReportFull {
		line += fmt.Sprintf(", %d issue(s)", len(r.Issues))
	}
	if len(r.Errors) > 0 {
		line += ", " + red(fmt.Sprintf("%d error(s)", len(r.Errors)))
	}
	fmt.Fprintln(w, line)
}
