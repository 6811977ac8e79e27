package sushi

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/miku/counterkit/dateutil"
	"github.com/miku/counterkit/report"
	"github.com/miku/counterkit/schema/counter5"
	"github.com/segmentio/encoding/json"
)

// RequestURL builds the COUNTER 5 REST request URL for a report, e.g.
// {base}/reports/tr_j1?customer_id=...&begin_date=...&end_date=...
func RequestURL(req Request) (string, error) {
	base, err := url.Parse(req.URL)
	if err != nil {
		return "", err
	}
	base.Path = strings.TrimRight(base.Path, "/") + "/reports/" + strings.ToLower(req.Report)
	vs := url.Values{}
	vs.Set("customer_id", req.CustomerReference)
	vs.Set("begin_date", req.Begin.Format("2006-01-02"))
	vs.Set("end_date", req.End.Format("2006-01-02"))
	vs.Set("requestor_id", req.RequestorID)
	base.RawQuery = vs.Encode()
	return base.String(), nil
}

// ReportFromJSON parses a raw COUNTER 5 REST response into a normalized
// report. Server reported exceptions, either in the report header or as the
// whole response body, map to the error taxonomy; a queued report is a
// ServiceBusyError.
func ReportFromJSON(raw []byte) (*report.Report, error) {
	var doc counter5.Report
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, Exception{Message: "JSON syntax error", Raw: raw}
	}
	for _, exc := range doc.ReportHeader.Exceptions {
		if err := errorFromException(exc.Code, exc.Severity, exc.Message, raw); err != nil {
			return nil, err
		}
	}
	if doc.ReportHeader.ReportID == "" {
		// Some endpoints answer with a single exception object.
		var exc counter5.Exception
		if err := json.Unmarshal(raw, &exc); err == nil && exc.Code != 0 {
			if err := errorFromException(exc.Code, exc.Severity, exc.Message, raw); err != nil {
				return nil, err
			}
		}
		return nil, Exception{Message: "response carries no report header", Raw: raw}
	}
	period, err := periodFromFilters(doc.ReportHeader.ReportFilters)
	if err != nil {
		return nil, err
	}
	r := report.Report{
		Header: report.Header{
			ReportType:              doc.ReportHeader.ReportID,
			ReportVersion:           atoiDefault(doc.ReportHeader.Release, 5),
			Customer:                doc.ReportHeader.InstitutionName,
			InstitutionalIdentifier: doc.ReportHeader.CustomerID,
			Period:                  period,
		},
	}
	r.Metric = report.Metrics[r.ReportType]
	if r.Metric == "" {
		r.Metric = "FT Item Requests"
	}
	if created, err := dateutil.Parse(doc.ReportHeader.Created); err == nil {
		r.DateRun = created
	} else {
		r.DateRun = time.Now()
	}
	// Only the title report family for journals is modeled; book and
	// database COUNTER 5 reports are not reachable through this path.
	if !strings.HasPrefix(r.ReportType, "TR_J") {
		return &r, nil
	}
	for _, item := range doc.ReportItems {
		line := &report.Line{
			Family:    report.FamilyJournal,
			Title:     item.Title,
			Publisher: item.Publisher,
			Platform:  item.Platform,
			Metric:    r.Metric,
		}
		for _, id := range item.ItemID {
			switch id.Type {
			case "Print_ISSN":
				line.ISSN = id.Value
			case "Online_ISSN":
				line.EISSN = id.Value
			case "ISBN":
				line.ISBN = id.Value
			case "DOI":
				line.DOI = id.Value
			case "Proprietary_ID", "Proprietary":
				line.ProprietaryID = id.Value
			}
		}
		for _, perf := range item.Performance {
			month, err := dateutil.Parse(perf.Period.BeginDate)
			if err != nil {
				continue
			}
			usage := -1
			for _, inst := range perf.Instance {
				if inst.MetricType == "Total_Item_Requests" {
					usage = inst.Count
				}
			}
			if usage >= 0 {
				line.Usage = append(line.Usage, report.MonthUsage{Month: month, Count: usage})
			}
		}
		r.Lines = append(r.Lines, line)
	}
	return &r, nil
}

// periodFromFilters extracts the begin and end dates from the report filter
// list; a report without both is unusable.
func periodFromFilters(filters []counter5.NameValue) (dateutil.Period, error) {
	var p dateutil.Period
	for _, f := range filters {
		switch f.Name {
		case "Begin_Date":
			t, err := dateutil.Parse(f.Value)
			if err != nil {
				return p, err
			}
			p.Begin = t
		case "End_Date":
			t, err := dateutil.Parse(f.Value)
			if err != nil {
				return p, err
			}
			p.End = t
		}
	}
	if p.Begin.IsZero() || p.End.IsZero() {
		return p, fmt.Errorf("report filters must include a Begin_Date and End_Date")
	}
	return p, nil
}
