package sushi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/miku/counterkit/dateutil"
	"github.com/stretchr/testify/require"
)

// scriptedDoer plays back one canned response body per request.
type scriptedDoer struct {
	bodies   [][]byte
	requests []*http.Request
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.requests = append(d.requests, req)
	if len(d.bodies) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	body := d.bodies[0]
	d.bodies = d.bodies[1:]
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       io.NopCloser(bytes.NewReader(body)),
	}, nil
}

func TestFetchRetriesQueuedReport(t *testing.T) {
	queued, err := os.ReadFile("testdata/sushi_queued.xml")
	require.NoError(t, err)
	full, err := os.ReadFile("testdata/sushi_simple.xml")
	require.NoError(t, err)
	doer := &scriptedDoer{bodies: [][]byte{queued, queued, full}}
	var slept int
	client := &Client{
		Doer: doer,
		Retry: RetryPolicy{
			Delay: time.Millisecond,
			Sleep: func(time.Duration) { slept++ },
		},
	}
	req := Request{
		URL:         "https://sushi.example.com/soap",
		Report:      "JR1",
		Release:     4,
		Begin:       dateutil.Date(2013, 1, 1),
		End:         dateutil.Date(2013, 2, 28),
		RequestorID: "myid",
	}
	r, err := client.Fetch(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "JR1", r.ReportType)
	require.Len(t, doer.requests, 3)
	require.Equal(t, 2, slept)
	hreq := doer.requests[0]
	require.Equal(t, "POST", hreq.Method)
	require.Equal(t, `"SushiService:GetReportIn"`, hreq.Header.Get("SOAPAction"))
	require.Contains(t, hreq.Header.Get("Content-Type"), "text/xml")
}

func TestFetchMaxAttempts(t *testing.T) {
	queued, err := os.ReadFile("testdata/sushi_queued.xml")
	require.NoError(t, err)
	doer := &scriptedDoer{bodies: [][]byte{queued, queued, queued}}
	client := &Client{
		Doer: doer,
		Retry: RetryPolicy{
			MaxAttempts: 2,
			Sleep:       func(time.Duration) {},
		},
	}
	req := Request{URL: "https://sushi.example.com/soap", Report: "JR1", Release: 4}
	_, err = client.Fetch(context.Background(), req)
	require.Error(t, err)
	require.IsType(t, ServiceBusyError{}, err)
	require.Len(t, doer.requests, 2)
}

func TestFetchCounter5UsesGET(t *testing.T) {
	body, err := os.ReadFile("testdata/tr_j1.json")
	require.NoError(t, err)
	doer := &scriptedDoer{bodies: [][]byte{body}}
	client := &Client{Doer: doer}
	req := Request{
		URL:               "https://sushi.example.com/r5",
		Report:            "TR_J1",
		Release:           5,
		Begin:             dateutil.Date(2017, 1, 1),
		End:               dateutil.Date(2017, 2, 28),
		RequestorID:       "myid",
		CustomerReference: "exampleLibrary",
	}
	r, err := client.Fetch(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "TR_J1", r.ReportType)
	hreq := doer.requests[0]
	require.Equal(t, "GET", hreq.Method)
	require.Contains(t, hreq.URL.Path, "/reports/tr_j1")
}

func TestFetchUnsupportedRelease(t *testing.T) {
	client := &Client{Doer: &scriptedDoer{}}
	_, err := client.Fetch(context.Background(), Request{Release: 3})
	require.Error(t, err)
}

func TestFetchContextCancel(t *testing.T) {
	queued, err := os.ReadFile("testdata/sushi_queued.xml")
	require.NoError(t, err)
	doer := &scriptedDoer{bodies: [][]byte{queued, queued}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &Client{Doer: doer, Retry: RetryPolicy{Delay: time.Hour}}
	_, err = client.Fetch(ctx, Request{URL: "https://sushi.example.com/soap", Report: "JR1", Release: 4})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDumpDir(t *testing.T) {
	body, err := os.ReadFile("testdata/tr_j1.json")
	require.NoError(t, err)
	doer := &scriptedDoer{bodies: [][]byte{body}}
	dir := t.TempDir()
	client := &Client{Doer: doer, DumpDir: dir}
	req := Request{
		URL:     "https://sushi.example.com/r5",
		Report:  "TR_J1",
		Release: 5,
		Begin:   dateutil.Date(2017, 1, 1),
		End:     dateutil.Date(2017, 2, 28),
	}
	_, err = client.Fetch(context.Background(), req)
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
