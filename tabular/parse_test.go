package tabular

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miku/counterkit/dateutil"
	"github.com/miku/counterkit/report"
)

func TestParseCount(t *testing.T) {
	var cases = []struct {
		s    string
		want int
	}{
		{"0", 0},
		{"42", 42},
		{" 42 ", 42},
		{"1,234", 1234},
		{"1,234,567", 1234567},
		{"=5", 5},
		{"N/A", 0},
		{"", 0},
		{"12.5", 0},
	}
	for _, c := range cases {
		if got := parseCount(c.s); got != c.want {
			t.Fatalf("parseCount(%q): got %v, want %v", c.s, got, c.want)
		}
	}
}

func TestParseJR1(t *testing.T) {
	r, err := Parse("testdata/simplejr1.csv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.ReportType != "JR1" || r.ReportVersion != 4 {
		t.Fatalf("got %v/%v, want JR1/4", r.ReportType, r.ReportVersion)
	}
	if r.Customer != "Health Sciences Library" {
		t.Fatalf("got customer %q", r.Customer)
	}
	if r.InstitutionalIdentifier != "University of Maximum Awesomeness" {
		t.Fatalf("got institutional identifier %q", r.InstitutionalIdentifier)
	}
	want := dateutil.Period{
		Begin: dateutil.Date(2011, 1, 1),
		End:   dateutil.Date(2011, 2, 28),
	}
	if diff := cmp.Diff(want, r.Period); diff != "" {
		t.Fatalf("period mismatch (-want +got):\n%s", diff)
	}
	if len(r.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(r.Lines))
	}
	line := r.Lines[0]
	if line.Title != "Fake Journal" || line.ISSN != "1234-5678" {
		t.Fatalf("unexpected first line: %v", line)
	}
	if line.HTMLTotal != 128 || line.PDFTotal != 132 {
		t.Fatalf("got html %v, pdf %v, want 128, 132", line.HTMLTotal, line.PDFTotal)
	}
	usage := []report.MonthUsage{
		{Month: dateutil.Date(2011, 1, 1), Count: 252},
		{Month: dateutil.Date(2011, 2, 1), Count: 8},
	}
	if diff := cmp.Diff(usage, line.Usage); diff != "" {
		t.Fatalf("usage mismatch (-want +got):\n%s", diff)
	}
	if total := r.Lines[0].Total() + r.Lines[1].Total(); total != 322 {
		t.Fatalf("got grand total %v, want 322", total)
	}
}

func TestParseJR1Release3(t *testing.T) {
	r, err := Parse("testdata/simplejr1_2003.csv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.ReportType != "JR1" || r.ReportVersion != 3 {
		t.Fatalf("got %v/%v, want JR1/3", r.ReportType, r.ReportVersion)
	}
	// No covered period line in release 3; derived from the header row.
	want := dateutil.Period{
		Begin: dateutil.Date(2011, 1, 1),
		End:   dateutil.Date(2011, 2, 28),
	}
	if diff := cmp.Diff(want, r.Period); diff != "" {
		t.Fatalf("period mismatch (-want +got):\n%s", diff)
	}
	if len(r.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(r.Lines))
	}
	line := r.Lines[0]
	if line.Total() != 260 {
		t.Fatalf("got total %v, want 260", line.Total())
	}
	if line.HTMLTotal != 128 || line.PDFTotal != 132 {
		t.Fatalf("got html %v, pdf %v, want 128, 132", line.HTMLTotal, line.PDFTotal)
	}
}

func TestParseBR2(t *testing.T) {
	r, err := Parse("testdata/simplebr2.csv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.ReportType != "BR2" || r.ReportVersion != 4 {
		t.Fatalf("got %v/%v, want BR2/4", r.ReportType, r.ReportVersion)
	}
	if r.SectionType != "Chapter" {
		t.Fatalf("got section type %q, want Chapter", r.SectionType)
	}
	if len(r.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(r.Lines))
	}
	if r.Lines[0].ISBN != "9780123456786" {
		t.Fatalf("got isbn %q", r.Lines[0].ISBN)
	}
	if r.Lines[0].Family != report.FamilyBook {
		t.Fatalf("got family %v, want book", r.Lines[0].Family)
	}
}

func TestParseDB1(t *testing.T) {
	r, err := Parse("testdata/simpledb1.csv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.ReportType != "DB1" || r.ReportVersion != 4 {
		t.Fatalf("got %v/%v, want DB1/4", r.ReportType, r.ReportVersion)
	}
	if !r.MultiMetric() {
		t.Fatalf("DB1 should be multi metric")
	}
	if len(r.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(r.Lines))
	}
	var cases = []struct {
		metric string
		total  int
	}{
		{"Regular Searches", 14},
		{"Result Clicks", 8},
	}
	for i, c := range cases {
		line := r.Lines[i]
		if line.Title != "Fake Database" {
			t.Fatalf("got title %q", line.Title)
		}
		if line.Metric != c.metric || line.Total() != c.total {
			t.Fatalf("got %v/%v, want %v/%v", line.Metric, line.Total(), c.metric, c.total)
		}
	}
}

func TestParsePR1(t *testing.T) {
	r, err := Parse("testdata/simplepr1.csv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.ReportType != "PR1" || r.ReportVersion != 4 {
		t.Fatalf("got %v/%v, want PR1/4", r.ReportType, r.ReportVersion)
	}
	line := r.Lines[0]
	if line.Platform != "MegaPlatform" || line.Title != "" {
		t.Fatalf("platform lines carry no title: %v", line)
	}
	if line.Publisher != "Mega Publisher" {
		t.Fatalf("got publisher %q", line.Publisher)
	}
	if line.Metric != "Regular Searches" || line.Total() != 14 {
		t.Fatalf("got %v/%v, want Regular Searches/14", line.Metric, line.Total())
	}
}

func TestParseCounter5Tabular(t *testing.T) {
	r, err := Parse("testdata/tr_j1.tsv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.ReportType != "TR_J1" || r.ReportVersion != 5 {
		t.Fatalf("got %v/%v, want TR_J1/5", r.ReportType, r.ReportVersion)
	}
	if r.Customer != "Mega University" {
		t.Fatalf("got customer %q", r.Customer)
	}
	want := dateutil.Period{
		Begin: dateutil.Date(2017, 1, 1),
		End:   dateutil.Date(2017, 2, 28),
	}
	if diff := cmp.Diff(want, r.Period); diff != "" {
		t.Fatalf("period mismatch (-want +got):\n%s", diff)
	}
	if r.DateRun != dateutil.Date(2017, 3, 15) {
		t.Fatalf("got date run %v", r.DateRun)
	}
	if len(r.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(r.Lines))
	}
	if total := r.Lines[0].Total(); total != 30 {
		t.Fatalf("got total %v, want 30", total)
	}
}

func TestParseCounter5AccessDenied(t *testing.T) {
	r, err := Parse("testdata/tr_j2.tsv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.ReportType != "TR_J2" || r.ReportVersion != 5 {
		t.Fatalf("got %v/%v, want TR_J2/5", r.ReportType, r.ReportVersion)
	}
	if r.Metric != "" {
		t.Fatalf("access denied reports carry per line metrics, got %q", r.Metric)
	}
	if len(r.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(r.Lines))
	}
	first := r.Lines[0]
	if first.Metric != "Limit_Exceeded" {
		t.Fatalf("got metric %q, want Limit_Exceeded", first.Metric)
	}
	if len(first.Usage) == 0 {
		t.Fatalf("no usage parsed")
	}
	u := first.Usage[0]
	if u.Month != dateutil.Date(2017, 1, 1) || u.Count != 3 {
		t.Fatalf("got %v/%v, want 2017-01-01/3", u.Month, u.Count)
	}
	if second := r.Lines[1]; second.Metric != "No_License" || second.Total() != 1 {
		t.Fatalf("got %q with total %d, want No_License with 1", second.Metric, second.Total())
	}
}

func TestParseGzip(t *testing.T) {
	r, err := Parse("testdata/simplejr1.csv.gz")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.ReportType != "JR1" || len(r.Lines) != 2 {
		t.Fatalf("got %v with %d lines, want JR1 with 2", r.ReportType, len(r.Lines))
	}
}

func TestParseRowsEmpty(t *testing.T) {
	if _, err := ParseRows(Rows(nil)); err == nil {
		t.Fatalf("want error on empty input")
	}
}

func TestGuessType(t *testing.T) {
	var cases = []struct {
		path string
		b    []byte
		want string
	}{
		{"report.csv", []byte("a,b"), "csv"},
		{"report.tsv", []byte("a\tb"), "tsv"},
		{"report.xlsx", []byte("PK\x03\x04"), "xlsx"},
		{"report.csv.gz", []byte("a,b"), "csv"},
		{"report.tsv.zst", []byte("a\tb"), "tsv"},
		{"report", []byte("PK\x03\x04"), "xlsx"},
		{"report", []byte("col\tcol"), "tsv"},
		{"report", []byte("col,col"), "csv"},
	}
	for _, c := range cases {
		if got := guessType(c.path, c.b); got != c.want {
			t.Fatalf("guessType(%q): got %v, want %v", c.path, got, c.want)
		}
	}
}

func TestShortRow(t *testing.T) {
	rows := [][]string{
		{"Journal Report 1 (R4)", ""},
		{"Customer"},
		{"ID"},
		{"Period covered by Report:"},
		{"2011-01-01 to 2011-01-31"},
		{"Date run:"},
		{"2011-02-01"},
		{"Journal", "Publisher", "Platform", "Journal DOI", "Proprietary Identifier",
			"Print ISSN", "Online ISSN", "Reporting Period Total",
			"Reporting Period HTML", "Reporting Period PDF", "Jan-2011"},
		{"Total for all journals", "", "", "", "", "", "", "9", "0", "0", "9"},
		{"Truncated Journal", "Publisher", "Platform"},
	}
	_, err := ParseRows(Rows(rows))
	var unknownType report.UnknownReportTypeError
	if err == nil {
		t.Fatalf("want error on truncated data row")
	}
	if _, ok := err.(report.UnknownReportTypeError); !ok {
		t.Fatalf("got %T (%v), want %T", err, err, unknownType)
	}
}
