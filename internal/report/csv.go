package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/clinicscan/clinicscan/internal/model"
)

// csvHeader is the column layout of CSV output. Unresolved fields are
// rendered with the "unknown" sentinel, matching the JSON wire format.
var csvHeader = []string{
	"site",
	"specialty",
	"modalities",
	"location",
	"clinic_size",
	"pages_crawled",
	"unknown_fields",
	"error",
}

// CSVWriter outputs reports as CSV rows, one per site. This format is
// designed for spreadsheet review of batch runs.
type CSVWriter struct {
	output io.Writer
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{output: output}
}

// Write outputs the header and one row.
func (w *CSVWriter) Write(report *model.ScanReport) (int, error) {
	return w.WriteBatch([]*model.ScanReport{report})
}

// WriteBatch outputs the header and one row per report.
//
// The byte count is derived from the buffered output because
// encoding/csv does not report write sizes.
func (w *CSVWriter) WriteBatch(reports []*model.ScanReport) (int, error) {
	var buf strings.Builder
	cw := csv.NewWriter(&buf)

	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}
	for _, report := range reports {
		if err := cw.Write(w.row(report)); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	return w.output.Write([]byte(buf.String()))
}

func (w *CSVWriter) row(report *model.ScanReport) []string {
	return []string{
		report.SiteURL,
		report.Clinic.Specialty.String(),
		report.Clinic.Modalities.String(),
		report.Clinic.Location.String(),
		report.Clinic.ClinicSize.String(),
		strconv.Itoa(report.PagesCrawled()),
		strings.Join(report.Clinic.UnknownFields(), ";"),
		report.ErrorMessage,
	}
}
