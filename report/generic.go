package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/miku/counterkit/atomicfile"
	log "github.com/sirupsen/logrus"
)

// AsGeneric renders the report as rows of cells, exactly as they would
// appear in a COUNTER tabular report: name and description, customer block,
// covered period, date run, column header, totals lines and title sorted
// resource lines with gap months zero filled.
func AsGeneric(r *Report) ([][]string, error) {
	var rows [][]string
	rows = append(rows, []string{reportName(r), Descriptions[r.ReportType]})
	if r.ReportType == "BR2" {
		rows = append(rows,
			[]string{r.Customer, "Section Type:"},
			[]string{r.InstitutionalIdentifier, r.SectionType})
	} else {
		rows = append(rows,
			[]string{r.Customer},
			[]string{r.InstitutionalIdentifier})
	}
	rows = append(rows,
		[]string{"Period covered by Report:"},
		[]string{r.Period.String()},
		[]string{"Date run:"},
		[]string{r.DateRun.Format("2006-01-02")},
		tableHeader(r))
	lines := r.Lines
	if required, ok := RequiredMetrics[r.ReportType]; ok {
		var err error
		lines, err = withRequiredMetrics(r)
		if err != nil {
			return nil, err
		}
		lines = sortByMetricOrder(lines, required)
	}
	if _, ok := TotalText[r.ReportType]; ok {
		rows = append(rows, totalsLines(r, lines)...)
	}
	for _, line := range sortByTitle(lines) {
		rows = append(rows, lineCells(line, r))
	}
	return rows, nil
}

// WriteTSV writes the serialized report to w, tab separated with newline
// terminated records.
func WriteTSV(r *Report, w io.Writer) error {
	rows, err := AsGeneric(r)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report to path in the given format. Only "tsv" is
// supported. The file is written atomically, then renamed into place.
func WriteFile(r *Report, path, format string) error {
	if format != "tsv" {
		return fmt.Errorf("unknown file type %s", format)
	}
	f, err := atomicfile.New(path)
	if err != nil {
		return err
	}
	if err := WriteTSV(r, f); err != nil {
		f.Abort()
		return err
	}
	return f.Close()
}

// reportName renders the two cell title line, e.g. "Journal Report 1 (R4)".
func reportName(r *Report) string {
	subtype := r.ReportType[2:]
	if i := strings.LastIndexByte(subtype, '_'); i >= 0 {
		// COUNTER 5 ids like TR_J1 are emitted in the release 4 style name.
		subtype = subtype[len(subtype)-1:]
	}
	return fmt.Sprintf("%s Report %s (R%d)", FamilyName(r.ReportType), subtype, r.ReportVersion)
}

func tableHeader(r *Report) []string {
	header := append([]string{}, HeaderFields[r.ReportType]...)
	for _, m := range r.Period.Months() {
		header = append(header, m.Format("Jan-2006"))
	}
	return header
}

// totalsLines computes one totals line per distinct metric present among the
// resource lines. Source totals are never trusted; they are recomputed here.
func totalsLines(r *Report, lines []*Line) (rows [][]string) {
	seen := make(map[string]bool)
	var metrics []string
	for _, line := range lines {
		if !seen[line.Metric] {
			seen[line.Metric] = true
			metrics = append(metrics, line.Metric)
		}
	}
	sort.Strings(metrics)
	for _, metric := range metrics {
		rows = append(rows, totalsLine(r, lines, metric))
	}
	return rows
}

func totalsLine(r *Report, lines []*Line, metric string) []string {
	cells := []string{TotalText[r.ReportType], uniform(lines, func(l *Line) string { return l.Publisher }),
		uniform(lines, func(l *Line) string { return l.Platform })}
	switch r.ReportType {
	case "JR1", "BR1", "BR2":
		cells = append(cells, "", "", "", "")
	case "JR2", "BR3":
		cells = append(cells, "", "", "", "", metric)
	case "DB2":
		cells = append(cells, metric)
	}
	var total, html, pdf int
	months := make([]int, len(r.Period.Months()))
	for _, line := range lines {
		if line.Metric != metric {
			continue
		}
		html += line.HTMLTotal
		pdf += line.PDFTotal
		for i, u := range line.Filled(r.Period) {
			total += u.Count
			months[i] += u.Count
		}
	}
	cells = append(cells, strconv.Itoa(total))
	if r.ReportType == "JR1" {
		cells = append(cells, strconv.Itoa(html), strconv.Itoa(pdf))
	}
	for _, m := range months {
		cells = append(cells, strconv.Itoa(m))
	}
	return cells
}

// uniform returns the shared field value if every line agrees, else blank.
func uniform(lines []*Line, field func(*Line) string) string {
	if len(lines) == 0 {
		return ""
	}
	v := field(lines[0])
	for _, line := range lines[1:] {
		if field(line) != v {
			return ""
		}
	}
	return v
}

// withRequiredMetrics returns a copy of the line slice with a zero usage
// line appended for every (title, metric) pair missing from a multi metric
// report, so each title reports the full metric set for its report type.
// The report itself is never modified, keeping serialization repeatable.
// Publisher and platform are borrowed from the first line, which rarely
// differs per metric in source data.
func withRequiredMetrics(r *Report) ([]*Line, error) {
	required, ok := RequiredMetrics[r.ReportType]
	if !ok {
		return nil, UnknownReportTypeError{Spec: r.ReportType}
	}
	lines := append([]*Line{}, r.Lines...)
	if len(lines) == 0 {
		return lines, nil
	}
	byTitle := make(map[string]map[string]bool)
	var titles []string
	for _, line := range lines {
		if byTitle[line.Title] == nil {
			byTitle[line.Title] = make(map[string]bool)
			titles = append(titles, line.Title)
		}
		byTitle[line.Title][line.Metric] = true
	}
	family, err := FamilyForType(r.ReportType)
	if err != nil {
		return nil, err
	}
	for _, title := range titles {
		for _, metric := range required {
			if byTitle[title][metric] {
				continue
			}
			lines = append(lines, &Line{
				Family:    family,
				Title:     title,
				Publisher: lines[0].Publisher,
				Platform:  lines[0].Platform,
				Metric:    metric,
				Usage:     []MonthUsage{{Month: r.Period.Begin, Count: 0}},
			})
		}
	}
	return lines, nil
}

// sortByMetricOrder orders lines by the position of their metric in the
// required metric table, keeping source order within a metric. Unknown
// metrics sort last and log a warning. Ranks are computed once per line,
// not inside the comparator.
func sortByMetricOrder(lines []*Line, required []string) []*Line {
	rank := func(metric string) int {
		for i, m := range required {
			if m == metric {
				return i
			}
		}
		log.Warnf("unrecognized metric: %q", metric)
		return len(required)
	}
	sorted := append([]*Line{}, lines...)
	ranks := make(map[*Line]int, len(sorted))
	for _, line := range sorted {
		ranks[line] = rank(line.Metric)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return ranks[sorted[i]] < ranks[sorted[j]]
	})
	return sorted
}

func sortByTitle(lines []*Line) []*Line {
	sorted := append([]*Line{}, lines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Title < sorted[j].Title
	})
	return sorted
}

// lineCells renders a single resource line in the column layout of the
// report type, month cells zero filled over the covered period.
func lineCells(l *Line, r *Report) []string {
	var cells []string
	switch r.ReportType {
	case "JR2", "TR_J2":
		cells = []string{l.Title, l.Publisher, l.Platform, l.DOI, l.ProprietaryID,
			l.ISSN, l.EISSN, l.Metric}
	case "BR3":
		cells = []string{l.Title, l.Publisher, l.Platform, l.DOI, l.ProprietaryID,
			l.ISBN, l.ISSN, l.Metric}
	case "PR1":
		cells = []string{l.Platform, l.Publisher, l.Metric}
	default:
		switch l.Family {
		case FamilyJournal:
			cells = []string{l.Title, l.Publisher, l.Platform, l.DOI, l.ProprietaryID,
				l.ISSN, l.EISSN}
		case FamilyBook:
			cells = []string{l.Title, l.Publisher, l.Platform, l.DOI, l.ProprietaryID,
				l.ISBN, l.ISSN}
		case FamilyDatabase:
			cells = []string{l.Title, l.Publisher, l.Platform, l.Metric}
		case FamilyPlatform:
			cells = []string{l.Platform, l.Publisher, l.Metric}
		}
	}
	filled := l.Filled(r.Period)
	var total int
	for _, u := range filled {
		total += u.Count
	}
	cells = append(cells, strconv.Itoa(total))
	if l.Family == FamilyJournal && r.ReportType != "JR2" && r.ReportType != "TR_J2" {
		cells = append(cells, strconv.Itoa(l.HTMLTotal), strconv.Itoa(l.PDFTotal))
	}
	for _, u := range filled {
		cells = append(cells, strconv.Itoa(u.Count))
	}
	return cells
}
