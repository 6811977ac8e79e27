// Package counterkit parses and emits COUNTER usage statistics reports
// (releases 3, 4 and 5) and talks NISO SUSHI to fetch them from vendors.
package counterkit

const (
	AppName = "counterkit"
	Version = "0.1.0"
)

// UserAgent is sent with every outgoing SUSHI request.
const UserAgent = AppName + "/" + Version
