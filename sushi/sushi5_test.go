package sushi

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miku/counterkit/dateutil"
	"github.com/miku/counterkit/report"
	"github.com/stretchr/testify/require"
)

func TestRequestURL(t *testing.T) {
	req := Request{
		URL:               "https://sushi.example.com/r5/",
		Report:            "TR_J1",
		Release:           5,
		Begin:             dateutil.Date(2017, 1, 1),
		End:               dateutil.Date(2017, 2, 28),
		RequestorID:       "myid",
		CustomerReference: "exampleLibrary",
	}
	u, err := RequestURL(req)
	require.NoError(t, err)
	want := "https://sushi.example.com/r5/reports/tr_j1?" +
		"begin_date=2017-01-01&customer_id=exampleLibrary&end_date=2017-02-28&requestor_id=myid"
	require.Equal(t, want, u)
}

func TestReportFromJSON(t *testing.T) {
	r, err := ReportFromJSON(readFixture(t, "tr_j1.json"))
	require.NoError(t, err)
	require.Equal(t, "TR_J1", r.ReportType)
	require.Equal(t, 5, r.ReportVersion)
	require.Equal(t, "FT Item Requests", r.Metric)
	require.Equal(t, "Example Library", r.Customer)
	require.Equal(t, "exampleLibrary", r.InstitutionalIdentifier)
	wantPeriod := dateutil.Period{
		Begin: dateutil.Date(2017, 1, 1),
		End:   dateutil.Date(2017, 2, 28),
	}
	if diff := cmp.Diff(wantPeriod, r.Period); diff != "" {
		t.Fatalf("period mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, r.Lines, 1)
	line := r.Lines[0]
	require.Equal(t, "Journal of fake data", line.Title)
	require.Equal(t, "1234-5678", line.ISSN)
	require.Equal(t, "5678-1234", line.EISSN)
	require.Equal(t, "10.9999/fake", line.DOI)
	wantUsage := []report.MonthUsage{
		{Month: dateutil.Date(2017, 1, 1), Count: 21},
		{Month: dateutil.Date(2017, 2, 1), Count: 13},
	}
	if diff := cmp.Diff(wantUsage, line.Usage); diff != "" {
		t.Fatalf("usage mismatch (-want +got):\n%s", diff)
	}
}

func TestReportFromJSONError(t *testing.T) {
	_, err := ReportFromJSON(readFixture(t, "sushi_error.json"))
	var denied RequestorNotAuthorizedError
	if !errors.As(err, &denied) {
		t.Fatalf("got %T (%v), want RequestorNotAuthorizedError", err, err)
	}
	require.Equal(t, 2000, denied.Code)
}

func TestReportFromJSONMissingPeriod(t *testing.T) {
	body := []byte(`{"Report_Header": {"Report_ID": "TR_J1", "Release": "5", "Report_Filters": []}}`)
	_, err := ReportFromJSON(body)
	require.Error(t, err)
}

func TestReportFromJSONGarbage(t *testing.T) {
	_, err := ReportFromJSON([]byte("not json"))
	require.Error(t, err)
}
