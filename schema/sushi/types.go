// Package sushi contains the XML types of the NISO SUSHI protocol used by
// COUNTER release 4, both the SOAP request envelope counterkit emits and the
// response payloads it consumes.
package sushi

import "encoding/xml"

// Namespace URIs of the SUSHI SOAP envelope.
const (
	NSSoapEnv      = "http://schemas.xmlsoap.org/soap/envelope/"
	NSSushi        = "http://www.niso.org/schemas/sushi"
	NSSushiCounter = "http://www.niso.org/schemas/sushi/counter"
	NSCounter      = "http://www.niso.org/schemas/counter"
)

// SOAPAction header value for GetReport requests.
const SOAPAction = `"SushiService:GetReportIn"`

// RequestEnvelope is the outgoing SOAP 1.1 envelope. Element names carry
// literal prefixes; the xmlns attributes below bind them.
type RequestEnvelope struct {
	XMLName        xml.Name    `xml:"SOAP-ENV:Envelope"`
	NSSoapEnv      string      `xml:"xmlns:SOAP-ENV,attr"`
	NSSushi        string      `xml:"xmlns:sushi,attr"`
	NSSushiCounter string      `xml:"xmlns:sushicounter,attr"`
	NSCounter      string      `xml:"xmlns:counter,attr"`
	Body           RequestBody `xml:"SOAP-ENV:Body"`
}

type RequestBody struct {
	ReportRequest ReportRequest `xml:"sushicounter:ReportRequest"`
}

type ReportRequest struct {
	Created           string            `xml:"Created,attr"`
	ID                string            `xml:"ID,attr"`
	Requestor         Requestor         `xml:"sushi:Requestor"`
	CustomerReference CustomerReference `xml:"sushi:CustomerReference"`
	ReportDefinition  ReportDefinition  `xml:"sushi:ReportDefinition"`
}

type Requestor struct {
	ID    string `xml:"sushi:ID"`
	Name  string `xml:"sushi:Name"`
	Email string `xml:"sushi:Email"`
}

type CustomerReference struct {
	ID   string `xml:"sushi:ID"`
	Name string `xml:"sushi:Name"`
}

type ReportDefinition struct {
	Name    string         `xml:"Name,attr"`
	Release int            `xml:"Release,attr"`
	Filters RequestFilters `xml:"sushi:Filters"`
}

type RequestFilters struct {
	UsageDateRange RequestDateRange `xml:"sushi:UsageDateRange"`
}

type RequestDateRange struct {
	Begin string `xml:"sushi:Begin"`
	End   string `xml:"sushi:End"`
}

// ResponseEnvelope is the incoming SOAP envelope. Tags match on local names
// only, so namespace prefix variations between vendors do not matter.
type ResponseEnvelope struct {
	XMLName xml.Name
	Body    ResponseBody `xml:"Body"`
}

type ResponseBody struct {
	ReportResponse *ReportResponse `xml:"ReportResponse"`
	// Some vendors skip the response wrapper and put the report list
	// directly into the body.
	Reports *Reports `xml:"Reports"`
}

type ReportResponse struct {
	Exceptions []Exception         `xml:"Exception"`
	Definition *ResponseDefinition `xml:"ReportDefinition"`
	Payload    *ReportPayload      `xml:"Report"`
}

// ReportPayload is the sushicounter Report element wrapping the counter
// report list.
type ReportPayload struct {
	Reports *Reports `xml:"Reports"`
	// Direct Report children, another wrapper variation seen in the wild.
	Report []Report `xml:"Report"`
}

type Reports struct {
	Report []Report `xml:"Report"`
}

type ResponseDefinition struct {
	Name    string `xml:"Name,attr"`
	Release string `xml:"Release,attr"`
	Filters struct {
		UsageDateRange struct {
			Begin string `xml:"Begin"`
			End   string `xml:"End"`
		} `xml:"UsageDateRange"`
	} `xml:"Filters"`
}

type Exception struct {
	Number   int    `xml:"Number"`
	Severity string `xml:"Severity"`
	Message  string `xml:"Message"`
	Data     string `xml:"Data"`
}

// Report is a COUNTER report payload element.
type Report struct {
	Created   string     `xml:"Created,attr"`
	ID        string     `xml:"ID,attr"`
	Name      string     `xml:"Name,attr"`
	Title     string     `xml:"Title,attr"`
	Version   string     `xml:"Version,attr"`
	Vendor    Vendor     `xml:"Vendor"`
	Customers []Customer `xml:"Customer"`
}

type Vendor struct {
	ID   string `xml:"ID"`
	Name string `xml:"Name"`
}

type Customer struct {
	ID          string       `xml:"ID"`
	Name        string       `xml:"Name"`
	ReportItems []ReportItem `xml:"ReportItems"`
}

type ReportItem struct {
	Identifiers []ItemIdentifier  `xml:"ItemIdentifier"`
	Platform    string            `xml:"ItemPlatform"`
	Publisher   string            `xml:"ItemPublisher"`
	Name        string            `xml:"ItemName"`
	DataType    string            `xml:"ItemDataType"`
	Performance []ItemPerformance `xml:"ItemPerformance"`
}

type ItemIdentifier struct {
	Type  string `xml:"Type"`
	Value string `xml:"Value"`
}

type ItemPerformance struct {
	Period    PerformancePeriod `xml:"Period"`
	Category  string            `xml:"Category"`
	Instances []Instance        `xml:"Instance"`
}

type PerformancePeriod struct {
	Begin string `xml:"Begin"`
	End   string `xml:"End"`
}

type Instance struct {
	MetricType string `xml:"MetricType"`
	Count      string `xml:"Count"`
}
