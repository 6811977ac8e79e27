package tabular

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/miku/counterkit/report"
)

var typePattern = regexp.MustCompile(
	`.*(Database|Journal|Book|Title|Platform|Multimedia|Consortium) Report (\d(?: GOA)?) ?\(R(\d)\)`)

// supportedPrefixes are the report families the tabular normalizer handles.
var supportedPrefixes = []string{"JR", "BR", "DB", "PR"}

// ResolveType determines report type code and COUNTER release from a free
// text header cell like "Journal Report 1 (R4)". Unrecognized text, or a
// recognized family outside the supported set, is an UnknownReportTypeError.
func ResolveType(spec string) (string, int, error) {
	m := typePattern.FindStringSubmatch(spec)
	if m == nil {
		return "", 0, report.UnknownReportTypeError{Spec: "no match in line: " + spec}
	}
	code := report.Codes[m[1]] + m[2]
	version, err := strconv.Atoi(m[3])
	if err != nil {
		return "", 0, report.UnknownReportTypeError{Spec: spec}
	}
	if !supported(code) {
		return "", 0, report.UnknownReportTypeError{Spec: code}
	}
	return code, version, nil
}

// resolveCounter5 reads the explicit Report_ID and Release header rows of a
// COUNTER 5 tabular report; release 5 reports self-describe unambiguously.
func resolveCounter5(idRow, releaseRow []string) (string, int, error) {
	if len(idRow) < 2 || strings.TrimSpace(idRow[0]) != "Report_ID" {
		return "", 0, report.UnknownReportTypeError{Spec: "missing Report_ID row"}
	}
	if len(releaseRow) < 2 || strings.TrimSpace(releaseRow[0]) != "Release" {
		return "", 0, report.UnknownReportTypeError{Spec: "missing Release row"}
	}
	code := strings.TrimSpace(idRow[1])
	version, err := strconv.Atoi(strings.TrimSpace(releaseRow[1]))
	if err != nil {
		return "", 0, report.UnknownReportTypeError{Spec: "release: " + releaseRow[1]}
	}
	if !supported(code) && !strings.HasPrefix(code, "TR") {
		return "", 0, report.UnknownReportTypeError{Spec: code}
	}
	return code, version, nil
}

func supported(code string) bool {
	for _, prefix := range supportedPrefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}
