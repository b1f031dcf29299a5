package convert

import (
	"fmt"
	"strings"

	"github.com/kolah/xml2openrpc/internal/loader"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic reports a problem with one schema element. Diagnostics never
// end up in the emitted documents.
type Diagnostic struct {
	Severity Severity
	Path     string
	Message  string
	Element  string
	Line     int
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.Path != "" {
		sb.WriteString(d.Path)
		if d.Line > 0 {
			fmt.Fprintf(&sb, " (line %d)", d.Line)
		}
		sb.WriteString(": ")
	}
	sb.WriteString(d.Message)
	if d.Element != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Element)
	}
	return sb.String()
}

// pathOf renders an element as a path segment, e.g. "method[add]".
func pathOf(el *loader.Element) string {
	if name := el.AttrOr("name", ""); name != "" {
		return el.Name + "[" + name + "]"
	}
	return el.Name
}
