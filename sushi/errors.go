package sushi

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Exception is the base SUSHI failure: transport, XML or JSON level problems
// and server reported business errors. Raw keeps the offending payload for
// diagnostics.
type Exception struct {
	Message  string
	Code     int
	Severity string
	Raw      []byte
}

func (e Exception) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("sushi: %s (code %d, severity %s)", e.Message, e.Code, e.Severity)
	}
	return "sushi: " + e.Message
}

// ServiceBusyError signals a queued report; the only condition the client
// retry loop resolves by itself.
type ServiceBusyError struct{ Exception }

// ServiceNotAvailableError signals a server side internal failure.
type ServiceNotAvailableError struct{ Exception }

// TooManyRequestsError signals client side rate limiting by the server.
type TooManyRequestsError struct{ Exception }

// RequestorNotAuthorizedError signals unrecognized requestor or customer
// credentials.
type RequestorNotAuthorizedError struct{ Exception }

// ReportNotSupportedError signals an unsupported report name or release.
type ReportNotSupportedError struct{ Exception }

// InvalidDateError signals malformed or illogical request dates.
type InvalidDateError struct{ Exception }

// NoUsageAvailableError signals that the service has no data for the
// requested range.
type NoUsageAvailableError struct{ Exception }

// SUSHI exception codes, cf. the COUNTER error registry.
const (
	codeServiceNotAvailable    = 1000
	codeServiceBusy            = 1010
	codeReportQueued           = 1011
	codeTooManyRequests        = 1020
	codeRequestorNotAuthorized = 2000
	codeReportNotSupported     = 3000
	codeInvalidDate            = 3020
	codeNoUsageAvailable       = 3030
	codePartialData            = 3040
)

// errorFromException maps a server reported exception to the error
// taxonomy. Warnings (partial data, ignored filters and attributes) are
// logged and processing continues, so they map to nil.
func errorFromException(code int, severity, message string, raw []byte) error {
	if severity == "Warning" || severity == "Info" || severity == "Debug" {
		log.Warnf("sushi warning %d: %s", code, message)
		return nil
	}
	base := Exception{Message: message, Code: code, Severity: severity, Raw: raw}
	switch code {
	case codeServiceNotAvailable:
		return ServiceNotAvailableError{base}
	case codeServiceBusy, codeReportQueued:
		return ServiceBusyError{base}
	case codeTooManyRequests:
		return TooManyRequestsError{base}
	case codeRequestorNotAuthorized:
		return RequestorNotAuthorizedError{base}
	case codeReportNotSupported:
		return ReportNotSupportedError{base}
	case codeInvalidDate:
		return InvalidDateError{base}
	case codeNoUsageAvailable:
		return NoUsageAvailableError{base}
	case codePartialData:
		log.Warnf("sushi: partial data returned: %s", message)
		return nil
	}
	return base
}
