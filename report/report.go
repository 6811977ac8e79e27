// Package report holds the normalized COUNTER report model and the generic
// tabular serializer. A report is built once per parse or SUSHI fetch and
// serialized back out deterministically.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/miku/counterkit/dateutil"
)

// Header carries the per report metadata block.
type Header struct {
	// ReportType is the short type code, e.g. "JR1", "JR1 GOA", "BR2", "TR_J1".
	ReportType string
	// ReportVersion is the COUNTER release, 3, 4 or 5.
	ReportVersion int
	// Metric tracked by the whole report; empty for multi metric report
	// types (DB, PR, JR2, BR3), which carry a metric per line.
	Metric string
	// Customer is the customer name as printed on the report.
	Customer string
	// InstitutionalIdentifier is the vendor assigned customer id.
	InstitutionalIdentifier string
	// Period covered by the report, normally month aligned.
	Period dateutil.Period
	// DateRun is the date the source report was generated.
	DateRun time.Time
	// SectionType applies to BR2 only.
	SectionType string
}

// Report is a parsed COUNTER report: header metadata plus resource lines in
// source order. Lines are re-sorted by title at serialization time only.
type Report struct {
	Header
	Lines []*Line
}

func (r *Report) String() string {
	return fmt.Sprintf("<Report %s version %d for date range %s>",
		r.ReportType, r.ReportVersion, r.Period)
}

// MultiMetric reports whether this report type carries per row metrics.
func (r *Report) MultiMetric() bool {
	_, ok := Metrics[r.ReportType]
	return !ok
}

// Family is the coarse report category a resource line belongs to.
type Family int

const (
	FamilyJournal Family = iota
	FamilyBook
	FamilyDatabase
	FamilyPlatform
)

// FamilyForType maps a report type code to the resource line family.
func FamilyForType(reportType string) (Family, error) {
	switch {
	case strings.HasPrefix(reportType, "JR"), strings.HasPrefix(reportType, "TR"):
		return FamilyJournal, nil
	case strings.HasPrefix(reportType, "BR"):
		return FamilyBook, nil
	case strings.HasPrefix(reportType, "DB"):
		return FamilyDatabase, nil
	case strings.HasPrefix(reportType, "PR"):
		return FamilyPlatform, nil
	}
	return 0, UnknownReportTypeError{Spec: reportType}
}

// MonthUsage is one point of the usage series of a line.
type MonthUsage struct {
	Month time.Time
	Count int
}

// Line is a single resource line: one title, database or platform row.
// Family selects which identifier fields are meaningful. The usage series is
// kept sparse as parsed; gaps are only filled when serializing.
type Line struct {
	Family    Family
	Title     string // empty for platform lines
	Publisher string
	Platform  string

	DOI           string
	ProprietaryID string
	ISSN          string
	EISSN         string // journals only
	ISBN          string // books only

	// Metric for this line. Mirrors the header metric on single metric
	// reports; carries the per row category otherwise.
	Metric string

	// HTML and PDF sub totals, JR1 family only.
	HTMLTotal int
	PDFTotal  int

	Usage []MonthUsage
}

func (l *Line) String() string {
	return fmt.Sprintf("<Line %q, publisher %q, platform %q>", l.Title, l.Publisher, l.Platform)
}

// Total sums usage over all recorded months.
func (l *Line) Total() (total int) {
	for _, u := range l.Usage {
		total += u.Count
	}
	return total
}

// Filled returns a dense copy of the usage series covering every month of
// the period, with missing months zero filled. The line itself is not
// modified, so repeated serialization yields identical output and parse time
// gaps stay observable.
func (l *Line) Filled(period dateutil.Period) []MonthUsage {
	counts := make(map[time.Time]int, len(l.Usage))
	for _, u := range l.Usage {
		counts[dateutil.FirstOfMonth(u.Month)] += u.Count
	}
	months := period.Months()
	result := make([]MonthUsage, 0, len(months))
	for _, m := range months {
		result = append(result, MonthUsage{Month: m, Count: counts[m]})
	}
	return result
}
