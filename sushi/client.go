package sushi

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/miku/counterkit"
	"github.com/miku/counterkit/report"
	schema "github.com/miku/counterkit/schema/sushi"
	"github.com/sethgrid/pester"
	log "github.com/sirupsen/logrus"
)

// Doer abstracts the HTTP client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryPolicy controls the queued report retry loop. The zero value retries
// forever with a 60 second delay.
type RetryPolicy struct {
	// Delay between attempts after a queued report response.
	Delay time.Duration
	// MaxAttempts bounds the loop; zero means unbounded.
	MaxAttempts int
	// Sleep replaces time.Sleep in tests.
	Sleep func(d time.Duration)
}

func (p RetryPolicy) delay() time.Duration {
	if p.Delay == 0 {
		return 60 * time.Second
	}
	return p.Delay
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		p.Sleep(d)
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Client fetches SUSHI reports over HTTP, transparently waiting out queued
// reports.
type Client struct {
	Doer  Doer
	Retry RetryPolicy
	// DumpDir, when set, receives one file per raw response payload.
	DumpDir string
}

// New returns a client with exponential backoff on transport failures.
func New() *Client {
	c := pester.New()
	c.Backoff = pester.ExponentialBackoff
	c.RetryOnHTTP429 = true
	return &Client{Doer: c}
}

// NewInsecure returns a client that skips TLS certificate verification, for
// providers with broken certificate chains.
func NewInsecure() *Client {
	hc := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	c := pester.NewExtendedClient(hc)
	c.Backoff = pester.ExponentialBackoff
	c.RetryOnHTTP429 = true
	return &Client{Doer: c}
}

// Fetch requests a report and retries while the provider reports it as
// queued. All other errors, transport or SUSHI level, end the loop.
func (c *Client) Fetch(ctx context.Context, req Request) (*report.Report, error) {
	for attempt := 1; ; attempt++ {
		r, err := c.fetchOnce(ctx, req, attempt)
		var busy ServiceBusyError
		if err == nil || !errors.As(err, &busy) {
			return r, err
		}
		if c.Retry.MaxAttempts > 0 && attempt >= c.Retry.MaxAttempts {
			return nil, err
		}
		log.Infof("report queued, retrying in %v (attempt %d)", c.Retry.delay(), attempt)
		if err := c.Retry.sleep(ctx, c.Retry.delay()); err != nil {
			return nil, err
		}
	}
}

func (c *Client) fetchOnce(ctx context.Context, req Request, attempt int) (*report.Report, error) {
	var raw []byte
	var err error
	switch req.Release {
	case 4:
		raw, err = c.fetchSoap(ctx, req)
	case 5:
		raw, err = c.fetchJSON(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported COUNTER release: %d", req.Release)
	}
	if err != nil {
		return nil, err
	}
	if c.DumpDir != "" {
		c.dump(req, attempt, raw)
	}
	if req.Release == 5 {
		return ReportFromJSON(raw)
	}
	return ReportFromResponse(raw)
}

func (c *Client) fetchSoap(ctx context.Context, req Request) ([]byte, error) {
	body, err := BuildReportRequest(req)
	if err != nil {
		return nil, err
	}
	hreq, err := http.NewRequestWithContext(ctx, "POST", req.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	hreq.Header.Set("SOAPAction", schema.SOAPAction)
	hreq.Header.Set("User-Agent", counterkit.UserAgent)
	return c.do(hreq)
}

func (c *Client) fetchJSON(ctx context.Context, req Request) ([]byte, error) {
	u, err := RequestURL(req)
	if err != nil {
		return nil, err
	}
	hreq, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", counterkit.UserAgent)
	return c.do(hreq)
}

func (c *Client) do(hreq *http.Request) ([]byte, error) {
	resp, err := c.Doer.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	// SUSHI servers report business errors in the payload; a non-2xx
	// status without one is still a failure.
	if resp.StatusCode >= 400 && len(raw) == 0 {
		return nil, Exception{Message: "unexpected status: " + resp.Status}
	}
	return raw, nil
}

func (c *Client) dump(req Request, attempt int, raw []byte) {
	name := fmt.Sprintf("%s-r%d-%s-%d.raw", req.Report, req.Release,
		time.Now().UTC().Format("20060102150405"), attempt)
	path := filepath.Join(c.DumpDir, name)
	if err := os.MkdirAll(c.DumpDir, 0755); err != nil {
		log.Warnf("cannot create dump dir: %v", err)
		return
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		log.Warnf("cannot dump response: %v", err)
		return
	}
	log.Debugf("dumped raw response to %s", path)
}
