package report

import "fmt"

// UnknownReportTypeError signals that a report header did not match any
// supported report family or version. It is never retried and always
// surfaced to the caller.
type UnknownReportTypeError struct {
	Spec string
}

func (e UnknownReportTypeError) Error() string {
	return fmt.Sprintf("unknown report type: %s", e.Spec)
}
