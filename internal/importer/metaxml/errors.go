package metaxml

import (
	"fmt"
	"strings"
)

// Severity of a single validation finding.
const (
	SeverityWarning = "Warning"
	SeverityError   = "Error"
	SeverityFatal   = "Fatal Error"
)

// Issue is one structured parsing or validation finding. Line is zero when
// the finding was produced by tree validation rather than the parser; Path
// then locates the offending element instead.
type Issue struct {
	Line     int
	Path     string
	Severity string
	Message  string
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Line > 0 {
		fmt.Fprintf(&b, "on line %d ", i.Line)
	}
	if i.Path != "" {
		fmt.Fprintf(&b, "at %s ", i.Path)
	}
	fmt.Fprintf(&b, "(%s): %s", i.Severity, i.Message)
	return b.String()
}

// InvalidXMLError carries every issue collected while loading or validating
// a metadata document. Parsing and validation never stop at the first
// problem; all findings are reported in one diagnostic.
type InvalidXMLError struct {
	Issues []Issue
}

func (e *InvalidXMLError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid metadata XML"
	}
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.String()
	}
	return "invalid metadata XML:\n" + strings.Join(lines, "\n")
}
