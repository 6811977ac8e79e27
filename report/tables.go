package report

// Codes maps report family names as they appear in tabular headers to their
// two letter type prefixes.
var Codes = map[string]string{
	"Database":   "DB",
	"Journal":    "JR",
	"Book":       "BR",
	"Title":      "TR",
	"Platform":   "PR",
	"Multimedia": "MR",
	"Consortium": "CR",
}

// FamilyName returns the spelled out family name for a report type code,
// e.g. "Journal" for "JR1".
func FamilyName(reportType string) string {
	if len(reportType) < 2 {
		return ""
	}
	prefix := reportType[:2]
	for name, code := range Codes {
		if code == prefix {
			return name
		}
	}
	return ""
}

// Metrics maps single metric report types to the metric they track. Multi
// metric reports (DB, PR, JR2, BR3) carry their metric per row instead.
var Metrics = map[string]string{
	"JR1":     "FT Article Requests",
	"JR1 GOA": "Gold Open Access Article Requests",
	"BR1":     "Book Title Requests",
	"BR2":     "Book Section Requests",
	"TR_J1":   "FT Item Requests",
}

// RequiredMetrics lists the metrics every title must report for multi metric
// report types. Missing combinations are reconciled with zero usage lines
// before serialization.
var RequiredMetrics = map[string][]string{
	"DB1": {
		"Regular Searches",
		"Searches-federated and automated",
		"Result Clicks",
		"Record Views",
	},
	"DB2": {
		"Access denied: concurrent/simultaneous user license exceeded",
		"Access denied: content item not licensed",
	},
	"PR1": {
		"Regular Searches",
		"Searches-federated and automated",
		"Result Clicks",
		"Record Views",
	},
}

// MetricCodes maps SUSHI wire metric codes to display names, cf. the COUNTER
// 4 code list.
var MetricCodes = map[string]string{
	"search_reg":   "Regular Searches",
	"search_fed":   "Searches-federated and automated",
	"result_click": "Result Clicks",
	"record_view":  "Record Views",
	"turnaway":     "Access denied: concurrent/simultaneous user license exceeded",
	"no_license":   "Access denied: content item not licensed",
}

// Descriptions holds the static description cell emitted next to the report
// name, from the NISO SUSHI registry. Not all of these types are parseable.
var Descriptions = map[string]string{
	"BR1": "Number of Successful Title Requests by Month and Title",
	"BR2": "Number of Successful Section Requests by Month and Title",
	"BR3": "Access Denied to Content Items by Month, Title, and Category",
	"BR4": "Access Denied to Content Items by Month, Platform, and Category",
	"BR5": "Total Searches by Month and Title",
	"CR1": "Number of Successful Full-text Journal Article or Book Chapter Requests by Month",
	"CR2": "Total Searches by Month and Database",
	"CR3": "Number of Successful Multimedia Full Content Unit Requests by Month and Collection",
	"DB1": "Total Searches, Result Clicks and Record Views by Month and Database",
	"DB2": "Access Denied by Month, Database and Category",
	"JR1": "Number of Successful Full-Text Article Requests by Month and Journal",
	"JR1 GOA": "Number of Successful Gold Open Access Full-Text Article " +
		"Requests by Month and Journal",
	"JR2": "Access Denied to Full Text Articles by Month, Journal, and Category",
	"JR3": "Number of Successful Item Requests and Turnaways by Month, Journal, and Page-Type",
	"JR4": "Total Searches Run by Month and Collection",
	"JR5": "Number of Successful Full-Text Article Requests by Year-of-Publication (YOP) and Journal",
	"MR1": "Number of Successful Multimedia Full Content Unit Requests by Month and Collection",
	"PR1": "Total Searches, Result Clicks, and Record Views by Month and Platform",
	"TR1": "Number of Successful Requests for Journal Full-Text Articles " +
		"and Book Sections by Month and Title",
	"TR2":   "Access Denied to Full-Text Items by Month, Title, and Category",
	"TR3":   "Number of Successful Item Requests by Month, Title, and Page-Type",
	"TR_J1": `Journal Requests (Excluding "OA_Gold")`,
	"TR_J2": "Journal Access Denied",
}

// HeaderFields holds the static part of the column header row per report
// type; one month column per covered month follows.
var HeaderFields = map[string][]string{
	"JR1": {
		"Journal", "Publisher", "Platform", "Journal DOI",
		"Proprietary Identifier", "Print ISSN", "Online ISSN",
		"Reporting Period Total", "Reporting Period HTML", "Reporting Period PDF",
	},
	"JR1 GOA": {
		"Journal", "Publisher", "Platform", "Journal DOI",
		"Proprietary Identifier", "Print ISSN", "Online ISSN",
		"Reporting Period Total", "Reporting Period HTML", "Reporting Period PDF",
	},
	"JR2": {
		"Journal", "Publisher", "Platform", "Journal DOI",
		"Proprietary Identifier", "Print ISSN", "Online ISSN",
		"Access Denied Category", "Reporting Period Total",
	},
	"BR1": {
		"", "Publisher", "Platform", "Book DOI", "Proprietary Identifier",
		"ISBN", "ISSN", "Reporting Period Total",
	},
	"BR2": {
		"", "Publisher", "Platform", "Book DOI", "Proprietary Identifier",
		"ISBN", "ISSN", "Reporting Period Total",
	},
	"BR3": {
		"", "Publisher", "Platform", "Book DOI", "Proprietary Identifier",
		"ISBN", "ISSN", "Access Denied Category", "Reporting Period Total",
	},
	"DB1": {
		"Database", "Publisher", "Platform", "User Activity", "Reporting Period Total",
	},
	"DB2": {
		"Database", "Publisher", "Platform", "Access denied category", "Reporting Period Total",
	},
	"PR1": {
		"Platform", "Publisher", "User Activity", "Reporting Period Total",
	},
	"TR_J1": {
		"Journal", "Publisher", "Platform", "Journal DOI",
		"Proprietary Identifier", "Print ISSN", "Online ISSN",
		"Reporting Period Total", "Reporting Period HTML", "Reporting Period PDF",
	},
	"TR_J2": {
		"Journal", "Publisher", "Platform", "Journal DOI",
		"Proprietary Identifier", "Print ISSN", "Online ISSN",
		"Access Denied Category", "Reporting Period Total",
	},
}

// TotalText is the label of the leading cell of totals lines, for report
// types that carry totals lines.
var TotalText = map[string]string{
	"JR1": "Total for all journals",
	"JR2": "Total for all journals",
	"BR1": "Total for all titles",
	"BR2": "Total for all titles",
	"BR3": "Total for all titles",
	"DB2": "Total for all databases",
}
