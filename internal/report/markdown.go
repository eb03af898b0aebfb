package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/clinicscan/clinicscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeFields(md, report)
	w.writeEvidence(md, report)
	w.writeRounds(md, report)

	return len(md.String()), md.Build()
}

// WriteBatch outputs each report in sequence, separated by rules.
func (w *MarkdownWriter) WriteBatch(reports []*model.ScanReport) (int, error) {
	return writeEach(w, reports)
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Clinicscan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.SiteURL + "`"},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Pages Crawled", strconv.Itoa(report.PagesCrawled())},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on report state.
func (w *MarkdownWriter) statusText(report *model.ScanReport) string {
	if report.Failed {
		return "❌ Error - " + report.ErrorMessage
	}
	if unknown := report.Clinic.UnknownFields(); len(unknown) > 0 {
		return "⚠️ Partial (unresolved: " + strings.Join(unknown, ", ") + ")"
	}
	return "✅ Complete"
}

// writeFields writes the extracted clinic fields.
func (w *MarkdownWriter) writeFields(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Clinic Information")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Specialty", report.Clinic.Specialty.String()},
			{"Modalities", report.Clinic.Modalities.String()},
			{"Location", report.Clinic.Location.String()},
			{"Clinic Size", report.Clinic.ClinicSize.String()},
		},
	})
	md.PlainText("")
}

// writeEvidence writes the evidence summary section.
func (w *MarkdownWriter) writeEvidence(md *markdown.Markdown, report *model.ScanReport) {
	if report.Evidence == nil {
		return
	}
	ev := report.Evidence

	md.H2("Evidence")
	md.PlainText("")

	if len(ev.LocationCandidates) > 0 {
		rows := make([][]string, 0, len(ev.LocationCandidates))
		for _, c := range ev.LocationCandidates {
			rows = append(rows, []string{
				c.Display(),
				c.Source,
				strconv.FormatFloat(c.Confidence, 'f', 1, 64),
			})
		}
		md.H3("Location Candidates")
		md.Table(markdown.TableSet{
			Header: []string{"Location", "Source", "Confidence"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	items := []string{
		"Named providers: " + strconv.Itoa(ev.ProviderCount()),
	}
	if n := ev.MaxCountHint(); n > 0 {
		items = append(items, "Largest headcount mention: "+strconv.Itoa(n))
	}
	if len(ev.SpecialtyTokens) > 0 {
		items = append(items, "Specialty terms: "+strings.Join(ev.SpecialtyTokens, ", "))
	}
	if len(ev.ModalityTokens) > 0 {
		items = append(items, "Modality terms: "+strings.Join(ev.ModalityTokens, ", "))
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeRounds writes the crawl round table.
func (w *MarkdownWriter) writeRounds(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Rounds) == 0 {
		return
	}

	rows := make([][]string, 0, len(report.Rounds))
	for _, round := range report.Rounds {
		rows = append(rows, []string{
			round.Budget.String(),
			round.Terminal,
			strconv.Itoa(round.NewPages),
			strconv.Itoa(round.PagesFetched),
		})
	}

	md.H2("Crawl Rounds")
	md.Table(markdown.TableSet{
		Header: []string{"Budget", "Terminal", "New Pages", "Total Fetched"},
		Rows:   rows,
	})
	md.PlainText("")
}
