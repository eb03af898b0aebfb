package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/clinicscan/clinicscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-page listing and round summaries.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-page details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeFields(&sb, report)
	w.writeEvidence(&sb, report)
	if w.verbose {
		w.writeRounds(&sb, report)
		w.writePages(&sb, report)
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteBatch outputs each report in sequence.
func (w *SimpleWriter) WriteBatch(reports []*model.ScanReport) (int, error) {
	return writeEach(w, reports)
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         CLINICSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Site:           %s\n", report.SiteURL)
	fmt.Fprintf(sb, "Scan Date:      %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Pages Crawled:  %d\n", report.PagesCrawled())
	fmt.Fprintf(sb, "Elapsed:        %s\n", report.Elapsed.Round(time.Millisecond))

	if report.Failed {
		fmt.Fprintf(sb, "Status:         ERROR - %s\n", report.ErrorMessage)
	} else if unknown := report.Clinic.UnknownFields(); len(unknown) > 0 {
		fmt.Fprintf(sb, "Status:         Partial (unresolved: %s)\n", strings.Join(unknown, ", "))
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFields(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("CLINIC INFORMATION\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Specialty:      %s\n", report.Clinic.Specialty)
	fmt.Fprintf(sb, "Modalities:     %s\n", report.Clinic.Modalities)
	fmt.Fprintf(sb, "Location:       %s\n", report.Clinic.Location)
	fmt.Fprintf(sb, "Clinic Size:    %s\n", report.Clinic.ClinicSize)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeEvidence(sb *strings.Builder, report *model.ScanReport) {
	if report.Evidence == nil {
		return
	}
	ev := report.Evidence

	sb.WriteString("EVIDENCE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Named Providers:     %d\n", ev.ProviderCount())
	if n := ev.MaxCountHint(); n > 0 {
		fmt.Fprintf(sb, "Headcount Mentions:  up to %d\n", n)
	}
	for _, c := range ev.LocationCandidates {
		fmt.Fprintf(sb, "Location:            %s (%s, %.1f)\n", c.Display(), c.Source, c.Confidence)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRounds(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Rounds) == 0 {
		return
	}
	sb.WriteString("CRAWL ROUNDS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for i, round := range report.Rounds {
		fmt.Fprintf(sb, "%d. budget=%s terminal=%s new=%d total=%d\n",
			i+1, round.Budget.String(), round.Terminal, round.NewPages, round.PagesFetched)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Pages) == 0 {
		return
	}
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for _, page := range report.Pages {
		status := page.Status.String()
		if page.StatusCode != 0 {
			status = fmt.Sprintf("%s (%d)", status, page.StatusCode)
		}
		fmt.Fprintf(sb, "[depth %d] %-8s %s\n", page.Depth, status, page.URL)
	}
	sb.WriteString("\n")
}
