// Package counter5 contains the JSON types of the COUNTER release 5 REST
// reports and the SUSHI error schema.
package counter5

// Report is a complete COUNTER 5 report as returned by a SUSHI endpoint.
type Report struct {
	ReportHeader ReportHeader `json:"Report_Header"`
	ReportItems  []ReportItem `json:"Report_Items"`
}

type ReportHeader struct {
	Created         string      `json:"Created"`
	CreatedBy       string      `json:"Created_By"`
	CustomerID      string      `json:"Customer_ID"`
	ReportID        string      `json:"Report_ID"`
	Release         string      `json:"Release"`
	ReportName      string      `json:"Report_Name"`
	InstitutionName string      `json:"Institution_Name"`
	InstitutionID   []TypeValue `json:"Institution_ID"`
	ReportFilters   []NameValue `json:"Report_Filters"`
	Exceptions      []Exception `json:"Exceptions"`
}

type NameValue struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type TypeValue struct {
	Type  string `json:"Type"`
	Value string `json:"Value"`
}

// Exception is a SUSHI error or warning, carrying a numeric code and a
// severity from the COUNTER 5 error schema. A whole response body may also
// be a single exception.
type Exception struct {
	Code     int    `json:"Code"`
	Severity string `json:"Severity"`
	Message  string `json:"Message"`
	Data     string `json:"Data"`
	HelpURL  string `json:"Help_URL"`
}

type ReportItem struct {
	Title       string        `json:"Title"`
	ItemID      []TypeValue   `json:"Item_ID"`
	Platform    string        `json:"Platform"`
	Publisher   string        `json:"Publisher"`
	PublisherID []TypeValue   `json:"Publisher_ID"`
	DataType    string        `json:"Data_Type"`
	AccessType  string        `json:"Access_Type"`
	Performance []Performance `json:"Performance"`
}

type Performance struct {
	Period   Period     `json:"Period"`
	Instance []Instance `json:"Instance"`
}

type Period struct {
	BeginDate string `json:"Begin_Date"`
	EndDate   string `json:"End_Date"`
}

type Instance struct {
	MetricType string `json:"Metric_Type"`
	Count      int    `json:"Count"`
}
