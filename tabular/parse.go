package tabular

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/miku/counterkit/dateutil"
	"github.com/miku/counterkit/report"
	log "github.com/sirupsen/logrus"
)

// ParseRows consumes a row source and returns a normalized report. The
// header block follows a strict line order per report version; real world
// vendor noise outside that order is not detected. Parsing is best effort:
// empty data rows are skipped, dirty numeric cells become zero.
func ParseRows(src RowSource) (*report.Report, error) {
	first, err := nextRow(src)
	if err != nil {
		return nil, fmt.Errorf("empty report: %w", err)
	}
	var (
		r           report.Report
		reportType  string
		version     int
		resolveErr  error
		counterFive = len(first) > 0 && strings.TrimSpace(first[0]) == "Report_Name"
	)
	if counterFive {
		idRow, err := nextRow(src)
		if err != nil {
			return nil, err
		}
		releaseRow, err := nextRow(src)
		if err != nil {
			return nil, err
		}
		reportType, version, resolveErr = resolveCounter5(idRow, releaseRow)
	} else {
		reportType, version, resolveErr = ResolveType(cell(first, 0))
	}
	if resolveErr != nil {
		return nil, resolveErr
	}
	r.ReportType = reportType
	r.ReportVersion = version
	r.Metric = report.Metrics[reportType]
	lay, ok := layoutFor(reportType, version)
	if !ok {
		return nil, report.UnknownReportTypeError{Spec: reportType}
	}
	family, err := report.FamilyForType(reportType)
	if err != nil {
		return nil, err
	}

	// Header label rows keep the label in the first cell and, for release
	// 5, the value in the second.
	value := func(row []string) string {
		if version == 5 {
			return cell(row, 1)
		}
		return cell(row, 0)
	}

	row, err := nextRow(src)
	if err != nil {
		return nil, err
	}
	r.Customer = value(row)

	if version >= 4 {
		instRow, err := nextRow(src)
		if err != nil {
			return nil, err
		}
		r.InstitutionalIdentifier = value(instRow)
		if reportType == "BR2" {
			r.SectionType = cell(instRow, 1)
		}
		if _, err := nextRow(src); err != nil { // period label / Metric_Types
			return nil, err
		}
		coveredRow, err := nextRow(src)
		if err != nil {
			return nil, err
		}
		period, err := dateutil.ParseCovered(value(coveredRow))
		if err != nil {
			return nil, err
		}
		r.Period = period
	}

	if version < 5 {
		if _, err := nextRow(src); err != nil { // date run label
			return nil, err
		}
	}
	dateRow, err := nextRow(src)
	if err != nil {
		return nil, err
	}
	r.DateRun, err = dateutil.Parse(value(dateRow))
	if err != nil {
		return nil, fmt.Errorf("date run: %w", err)
	}
	if version == 5 {
		if _, err := nextRow(src); err != nil { // Created_By
			return nil, err
		}
	}

	// The blank line before the column header is dropped by some row
	// sources and delivered as an empty record by others.
	header, err := nextNonEmptyRow(src)
	if err != nil {
		return nil, err
	}
	lastCol := lastDataColumn(header, version)
	if version < 4 {
		// Release 3 reports lack a covered period line; the period is the
		// report year up to the last dated month column.
		year, err := yearFromHeader(header, lay.YearCol)
		if err != nil {
			return nil, err
		}
		end, err := dateutil.ParseMonthColumn(cell(header, lastCol-1))
		if err != nil {
			return nil, err
		}
		r.Period = dateutil.Period{
			Begin: dateutil.Date(year, 1, 1),
			End:   dateutil.LastOfMonth(end),
		}
	}
	if !r.Period.IsMonthAligned() {
		log.Warnf("report period %s is not aligned to month boundaries", r.Period)
	}

	for i := 0; i < lay.TotalsLines; i++ {
		if _, err := nextRow(src); err != nil {
			break // a report without data rows may end early
		}
	}

	for {
		row, err := nextRow(src)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if emptyRow(row) {
			continue
		}
		line, err := parseLine(row, &r, lay, family, lastCol)
		if err != nil {
			return nil, err
		}
		r.Lines = append(r.Lines, line)
	}
	return &r, nil
}

func nextRow(src RowSource) ([]string, error) {
	return src.Next()
}

func nextNonEmptyRow(src RowSource) ([]string, error) {
	for {
		row, err := nextRow(src)
		if err != nil {
			return nil, err
		}
		if !emptyRow(row) {
			return row, nil
		}
	}
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// lastDataColumn finds the boundary after the final monthly usage column.
// Release 4 and 5 headers may be ragged with trailing blanks; release 3
// headers end at a literal YTD marker.
func lastDataColumn(header []string, version int) int {
	if version >= 4 {
		n := len(header)
		if n > 8 {
			n = 8
		}
		count := n
		for _, c := range header[n:] {
			if strings.TrimSpace(c) != "" {
				count++
			}
		}
		return count
	}
	var count int
	for _, c := range header {
		if strings.Contains(c, "YTD") {
			break
		}
		count++
	}
	return count
}

// yearFromHeader reads the report year from a dated column header like
// "Jan-2011" or "Jan-11".
func yearFromHeader(header []string, col int) (int, error) {
	parts := strings.SplitN(cell(header, col), "-", 2)
	if len(parts) < 2 {
		return 0, fmt.Errorf("no year in header column %d: %q", col, cell(header, col))
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("no year in header column %d: %w", col, err)
	}
	if year < 100 {
		year += 2000
	}
	return year, nil
}

// parseLine slices one data row according to the report layout and returns
// the normalized resource line.
func parseLine(row []string, r *report.Report, lay layout, family report.Family, lastCol int) (*report.Line, error) {
	if len(row) <= lay.FirstMonth {
		return nil, report.UnknownReportTypeError{
			Spec: fmt.Sprintf("%s row has %d cells, want more than %d", r.ReportType, len(row), lay.FirstMonth),
		}
	}
	trimmed := func(i int) string {
		if i == absent {
			return ""
		}
		return strings.TrimSpace(cell(row, i))
	}
	line := &report.Line{Family: family, Metric: r.Metric}
	if lay.PlatformFirst {
		line.Platform = cell(row, 0)
		line.Publisher = cell(row, 1)
	} else {
		line.Title = cell(row, 0)
		line.Publisher = cell(row, 1)
		line.Platform = cell(row, 2)
	}
	if lay.DOI != absent {
		line.DOI = cell(row, lay.DOI)
	}
	if lay.Prop != absent {
		line.ProprietaryID = cell(row, lay.Prop)
	}
	line.ISSN = trimmed(lay.ISSN)
	line.EISSN = trimmed(lay.EISSN)
	line.ISBN = trimmed(lay.ISBN)
	if lay.Metric != absent {
		line.Metric = strings.TrimSpace(cell(row, lay.Metric))
	}
	switch {
	case lay.TrailingHTMLPDF && len(row) >= 2:
		line.HTMLTotal = parseCount(row[len(row)-2])
		line.PDFTotal = parseCount(row[len(row)-1])
	case lay.HTML != absent:
		line.HTMLTotal = parseCount(cell(row, lay.HTML))
		line.PDFTotal = parseCount(cell(row, lay.PDF))
	}
	end := lastCol
	if end > len(row) {
		end = len(row)
	}
	month := r.Period.Begin
	for _, c := range row[lay.FirstMonth:end] {
		line.Usage = append(line.Usage, report.MonthUsage{Month: month, Count: parseCount(c)})
		month = dateutil.NextMonth(month)
	}
	return line, nil
}

// parseCount parses a usage cell, stripping thousands separators and the
// stray leading "=" some spreadsheets leave behind. Anything non numeric
// counts as zero; vendor data is dirty and a hard error here helps nobody.
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "=")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
