// Package sushi implements the NISO SUSHI protocol: building report
// requests, normalizing COUNTER 4 XML and COUNTER 5 JSON responses into the
// report model, and a transport client with a queued report retry loop.
package sushi

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/miku/counterkit/dateutil"
	"github.com/miku/counterkit/report"
	schema "github.com/miku/counterkit/schema/sushi"
	log "github.com/sirupsen/logrus"
)

// Request describes one SUSHI report request.
type Request struct {
	// URL of the service: the SOAP endpoint for release 4, the REST base
	// URL for release 5.
	URL string
	// Report code, e.g. "JR1" or "TR_J1".
	Report string
	// Release is the COUNTER release, 4 or 5.
	Release int
	// Begin and End bound the usage date range; normally the first and
	// last day of a month.
	Begin time.Time
	End   time.Time

	RequestorID    string
	RequestorName  string
	RequestorEmail string

	CustomerReference string
	CustomerName      string
}

// BuildReportRequest serializes the SOAP 1.1 GetReport envelope for a
// COUNTER 4 request, with a fresh message id and creation timestamp.
func BuildReportRequest(req Request) ([]byte, error) {
	env := schema.RequestEnvelope{
		NSSoapEnv:      schema.NSSoapEnv,
		NSSushi:        schema.NSSushi,
		NSSushiCounter: schema.NSSushiCounter,
		NSCounter:      schema.NSCounter,
		Body: schema.RequestBody{
			ReportRequest: schema.ReportRequest{
				Created: time.Now().UTC().Format(time.RFC3339),
				ID:      uuid.NewString(),
				Requestor: schema.Requestor{
					ID:    req.RequestorID,
					Name:  req.RequestorName,
					Email: req.RequestorEmail,
				},
				CustomerReference: schema.CustomerReference{
					ID:   req.CustomerReference,
					Name: req.CustomerName,
				},
				ReportDefinition: schema.ReportDefinition{
					Name:    req.Report,
					Release: req.Release,
					Filters: schema.RequestFilters{
						UsageDateRange: schema.RequestDateRange{
							Begin: req.Begin.Format("2006-01-02"),
							End:   req.End.Format("2006-01-02"),
						},
					},
				},
			},
		},
	}
	b, err := xml.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// reportQueuedMarker appears verbatim in queued report responses; its
// presence turns a missing report into a retryable condition.
var reportQueuedMarker = []byte("Report Queued")

// ReportFromResponse parses a raw COUNTER 4 SUSHI response into a
// normalized report. A response without a report payload but containing the
// queued marker raises ServiceBusyError; anything else that does not look
// like a report response raises Exception with the raw payload attached.
func ReportFromResponse(raw []byte) (*report.Report, error) {
	var env schema.ResponseEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		log.Errorf("sushi: XML syntax error: %v", err)
		return nil, Exception{Message: "XML syntax error", Raw: raw}
	}
	if rr := env.Body.ReportResponse; rr != nil {
		for _, exc := range rr.Exceptions {
			if err := errorFromException(exc.Number, exc.Severity, exc.Message, raw); err != nil {
				return nil, err
			}
		}
	}
	payload := findReport(&env)
	if payload == nil {
		if bytes.Contains(raw, reportQueuedMarker) {
			return nil, ServiceBusyError{Exception{Message: "Report Queued", Code: codeReportQueued, Raw: raw}}
		}
		return nil, Exception{Message: "provider did not return any report", Raw: raw}
	}

	var r report.Report
	if def := responseDefinition(&env); def != nil {
		r.ReportType = def.Name
		r.ReportVersion = atoiDefault(def.Release, 4)
		begin, errB := dateutil.Parse(def.Filters.UsageDateRange.Begin)
		end, errE := dateutil.Parse(def.Filters.UsageDateRange.End)
		if errB == nil && errE == nil {
			r.Period = dateutil.Period{Begin: begin, End: end}
		}
	}
	if r.ReportType == "" {
		r.ReportType = payload.Name
	}
	if r.ReportVersion == 0 {
		r.ReportVersion = atoiDefault(payload.Version, 4)
	}
	if r.Period.Begin.IsZero() {
		r.Period = periodFromItems(payload)
	}
	r.Metric = report.Metrics[r.ReportType]
	if created, err := dateutil.Parse(payload.Created); err == nil {
		r.DateRun = created
	} else {
		r.DateRun = time.Now()
	}
	if len(payload.Customers) > 0 {
		r.Customer = payload.Customers[0].Name
		r.InstitutionalIdentifier = payload.Customers[0].ID
	}
	family, err := report.FamilyForType(r.ReportType)
	if err != nil {
		return nil, err
	}
	for _, customer := range payload.Customers {
		for _, item := range customer.ReportItems {
			lines, err := linesFromItem(item, &r, family)
			if err != nil {
				return nil, err
			}
			r.Lines = append(r.Lines, lines...)
		}
	}
	return &r, nil
}

// findReport locates the counter report element across the wrapper
// variations seen in responses.
func findReport(env *schema.ResponseEnvelope) *schema.Report {
	if rr := env.Body.ReportResponse; rr != nil && rr.Payload != nil {
		if rr.Payload.Reports != nil && len(rr.Payload.Reports.Report) > 0 {
			return &rr.Payload.Reports.Report[0]
		}
		if len(rr.Payload.Report) > 0 {
			return &rr.Payload.Report[0]
		}
	}
	if env.Body.Reports != nil && len(env.Body.Reports.Report) > 0 {
		return &env.Body.Reports.Report[0]
	}
	return nil
}

func responseDefinition(env *schema.ResponseEnvelope) *schema.ResponseDefinition {
	if rr := env.Body.ReportResponse; rr != nil {
		return rr.Definition
	}
	return nil
}

// periodFromItems derives a covered period from the item performance
// elements, for responses that omit the report definition.
func periodFromItems(payload *schema.Report) (p dateutil.Period) {
	for _, customer := range payload.Customers {
		for _, item := range customer.ReportItems {
			for _, perf := range item.Performance {
				begin, err := dateutil.Parse(perf.Period.Begin)
				if err != nil {
					continue
				}
				end, err := dateutil.Parse(perf.Period.End)
				if err != nil {
					continue
				}
				if p.Begin.IsZero() || begin.Before(p.Begin) {
					p.Begin = begin
				}
				if end.After(p.End) {
					p.End = end
				}
			}
		}
	}
	return p
}

// linesFromItem maps one report item to resource lines. Journal and book
// items map one to one; database and platform items fan out into one line
// per distinct metric, since COUNTER models multiple metrics per database
// and period.
func linesFromItem(item schema.ReportItem, r *report.Report, family report.Family) ([]*report.Line, error) {
	line := &report.Line{
		Family:    family,
		Title:     item.Name,
		Publisher: item.Publisher,
		Platform:  item.Platform,
		Metric:    r.Metric,
	}
	for _, id := range item.Identifiers {
		switch id.Type {
		case "Print_ISSN":
			line.ISSN = id.Value
		case "Online_ISSN":
			line.EISSN = id.Value
		case "Print_ISBN", "Online_ISBN", "ISBN":
			if line.ISBN == "" {
				line.ISBN = id.Value
			}
		case "DOI":
			line.DOI = id.Value
		case "Proprietary", "Proprietary_ID":
			line.ProprietaryID = id.Value
		}
	}
	var (
		metricOrder []string
		byMetric    = make(map[string][]report.MonthUsage)
	)
	for _, perf := range item.Performance {
		month, err := dateutil.Parse(perf.Period.Begin)
		if err != nil {
			return nil, Exception{Message: "unparseable performance period: " + perf.Period.Begin}
		}
		usage := -1
		for _, inst := range perf.Instances {
			count := atoiDefault(inst.Count, 0)
			switch inst.MetricType {
			case "ft_total":
				usage = count
			case "ft_html":
				line.HTMLTotal += count
			case "ft_pdf":
				line.PDFTotal += count
			default:
				display, ok := report.MetricCodes[inst.MetricType]
				if !ok {
					log.Warnf("unrecognized metric: %q", inst.MetricType)
					continue
				}
				if _, seen := byMetric[display]; !seen {
					metricOrder = append(metricOrder, display)
				}
				byMetric[display] = append(byMetric[display], report.MonthUsage{Month: month, Count: count})
			}
		}
		if usage >= 0 {
			line.Usage = append(line.Usage, report.MonthUsage{Month: month, Count: usage})
		}
	}
	if family == report.FamilyDatabase || family == report.FamilyPlatform {
		var lines []*report.Line
		for _, metric := range metricOrder {
			lines = append(lines, &report.Line{
				Family:    family,
				Title:     item.Name,
				Publisher: item.Publisher,
				Platform:  item.Platform,
				Metric:    metric,
				Usage:     byMetric[metric],
			})
		}
		return lines, nil
	}
	return []*report.Line{line}, nil
}

func atoiDefault(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
