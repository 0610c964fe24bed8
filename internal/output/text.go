package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ramkansal/leadercrawl/pkg/plugin"
)

// ReportWriter renders a plain-text run report: one line per country, the
// timing line, outcome counts and a dump of the reloaded aggregate.
type ReportWriter struct {
	w     io.Writer
	lines []string
	mu    sync.Mutex
}

// NewReportWriter creates a report writer that renders to w.
func NewReportWriter(w io.Writer) *ReportWriter {
	return &ReportWriter{w: w}
}

// WriteResult records one country's outcome (called incrementally).
func (r *ReportWriter) WriteResult(result *plugin.CountryResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("  [%s] %s (%s) leaders:%d", result.Outcome, result.Country, FmtDur(result.Duration), len(result.Leaders))
	if result.Renewed {
		line += " renewed"
	}
	if result.Err != nil {
		line += " error: " + result.Err.Error()
	}
	r.lines = append(r.lines, line)
}

// Finalize writes the whole report.
func (r *ReportWriter) Finalize(summary *plugin.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder

	b.WriteString(fmt.Sprintf("  Source:  %s\n", summary.RootURL))
	b.WriteString(fmt.Sprintf("  Started: %s\n\n", summary.StartedAt.Format(time.RFC1123)))

	for _, line := range r.lines {
		b.WriteString(line + "\n")
	}

	b.WriteString("\n  " + strings.Repeat("-", 50) + "\n")
	b.WriteString(fmt.Sprintf("  Summary (%s)\n", FmtDur(summary.Duration)))
	b.WriteString(fmt.Sprintf("    Countries: %d\n", len(summary.Countries)))
	b.WriteString(fmt.Sprintf("    Leaders:  %d (%d enriched, %d failed, %d without reference)\n",
		summary.Leaders, summary.Enrichment.Enriched, summary.Enrichment.Failed, summary.Enrichment.Skipped))
	b.WriteString("    Outcomes: " + outcomeCounts(summary.Outcomes) + "\n")
	b.WriteString(fmt.Sprintf("    Renewals: %d\n", summary.Renewals))
	if summary.OutputPath != "" {
		b.WriteString(fmt.Sprintf("    Output:   %s\n", summary.OutputPath))
	}
	b.WriteString("\n")

	if summary.Result != nil {
		b.WriteString(Dump(summary.Result))
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// Dump renders an aggregate country by country, in sorted order.
func Dump(agg plugin.Aggregate) string {
	countries := make([]string, 0, len(agg))
	for c := range agg {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	var b strings.Builder
	for _, c := range countries {
		b.WriteString(fmt.Sprintf("  %s\n", c))
		for _, l := range agg[c] {
			name := l.Name()
			if name == "" {
				name = l.ID()
			}
			b.WriteString(fmt.Sprintf("    +-- %s", name))
			if born := l.BirthDate(); born != "" {
				b.WriteString(fmt.Sprintf(" (born %s)", born))
			}
			b.WriteString("\n")
			if l.FirstParagraph != nil && *l.FirstParagraph != "" {
				b.WriteString(fmt.Sprintf("        %s\n", truncate(*l.FirstParagraph, 200)))
			}
		}
	}
	return b.String()
}

// ---------- helpers ----------

func outcomeCounts(counts map[plugin.Outcome]int) string {
	var parts []string
	for _, o := range plugin.Outcomes {
		if n := counts[o]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", o, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// FmtDur formats a duration the way the report and the console show it.
func FmtDur(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
