package tabular

import "strings"

// layout describes where a report type keeps its columns: identifier and
// sub-total positions differ between JR1, BR1/BR2, DB1/DB2, PR1 and the
// access-denied variants, so row slicing is table driven rather than
// branched per type. A value of -1 marks an absent column.
type layout struct {
	DOI    int
	Prop   int
	ISSN   int
	EISSN  int
	ISBN   int
	Metric int // per row metric / category column, multi metric types only
	HTML   int
	PDF    int

	// FirstMonth is the index of the first monthly usage column.
	FirstMonth int
	// YearCol is the header column the report year is read from, used by
	// release 3 reports which lack an explicit covered period line.
	YearCol int
	// TotalsLines is the number of totals lines after the column header,
	// skipped on parse and recomputed at serialization.
	TotalsLines int
	// PlatformFirst marks platform reports, whose leading cell is the
	// platform rather than a title.
	PlatformFirst bool
	// TrailingHTMLPDF marks release 3 journal layouts that keep the HTML
	// and PDF sub totals in the last two cells of the row.
	TrailingHTMLPDF bool
}

const absent = -1

func none() layout {
	return layout{DOI: absent, Prop: absent, ISSN: absent, EISSN: absent,
		ISBN: absent, Metric: absent, HTML: absent, PDF: absent}
}

// layoutFor returns the column layout for a (report type, version) pair.
// The GOA qualifier does not change the layout.
func layoutFor(reportType string, version int) (layout, bool) {
	key := reportType
	if i := strings.IndexByte(key, ' '); i >= 0 {
		key = key[:i]
	}
	l := none()
	if version >= 4 {
		switch key {
		case "JR1", "TR_J1":
			l.DOI, l.Prop, l.ISSN, l.EISSN = 3, 4, 5, 6
			l.HTML, l.PDF = 8, 9
			l.FirstMonth, l.TotalsLines = 10, 1
		case "JR2", "TR_J2":
			l.DOI, l.Prop, l.ISSN, l.EISSN = 3, 4, 5, 6
			l.Metric = 7
			l.FirstMonth, l.TotalsLines = 9, 2
		case "BR1", "BR2":
			l.DOI, l.Prop, l.ISBN, l.ISSN = 3, 4, 5, 6
			l.FirstMonth, l.TotalsLines = 8, 1
		case "BR3":
			l.DOI, l.Prop, l.ISBN, l.ISSN = 3, 4, 5, 6
			l.Metric = 7
			l.FirstMonth, l.TotalsLines = 9, 2
		case "DB1":
			l.Metric = 3
			l.FirstMonth, l.TotalsLines = 5, 0
		case "DB2":
			l.Metric = 3
			l.FirstMonth, l.TotalsLines = 5, 2
		case "PR1":
			l.Metric = 2
			l.FirstMonth, l.TotalsLines = 4, 0
			l.PlatformFirst = true
		default:
			return layout{}, false
		}
		if version == 5 {
			// COUNTER 5 tabular reports carry no totals lines.
			l.TotalsLines = 0
		}
		return l, true
	}
	switch key {
	case "JR1":
		l.ISSN, l.EISSN = 3, 4
		l.TrailingHTMLPDF = true
		l.FirstMonth, l.YearCol, l.TotalsLines = 5, 5, 1
	case "BR1", "BR2":
		l.ISBN, l.ISSN = 3, 4
		l.FirstMonth, l.YearCol, l.TotalsLines = 5, 5, 1
	case "DB1":
		l.Metric = 3
		l.FirstMonth, l.YearCol, l.TotalsLines = 4, 4, 0
	case "DB2":
		l.Metric = 3
		l.FirstMonth, l.YearCol, l.TotalsLines = 4, 4, 2
	default:
		return layout{}, false
	}
	return l, true
}
