package convert

import (
	"fmt"
	"strings"

	"github.com/kolah/xml2openrpc/internal/loader"
	"github.com/kolah/xml2openrpc/internal/typemap"
)

// builder converts the elements of one handler. It records diagnostics and,
// in strict mode, the first unknown type tag as a fatal error.
type builder struct {
	table  *typemap.Table
	strict bool
	path   []string
	diags  []Diagnostic
	fatal  error
}

func (b *builder) push(el *loader.Element) {
	b.path = append(b.path, pathOf(el))
}

func (b *builder) pop() {
	b.path = b.path[:len(b.path)-1]
}

func (b *builder) report(sev Severity, el *loader.Element, format string, args ...any) {
	d := Diagnostic{
		Severity: sev,
		Path:     strings.Join(b.path, "/"),
		Message:  fmt.Sprintf(format, args...),
	}
	if el != nil {
		d.Element = el.String()
		d.Line = el.Line
	}
	b.diags = append(b.diags, d)
}

func (b *builder) warn(el *loader.Element, format string, args ...any) {
	b.report(SeverityWarning, el, format, args...)
}

func (b *builder) fail(el *loader.Element, format string, args ...any) {
	b.report(SeverityError, el, format, args...)
}

// lookup resolves a type tag. Unknown tags are reported; in strict mode the
// first one also becomes the run's fatal error.
func (b *builder) lookup(el *loader.Element, tag string) (typemap.Mapping, bool) {
	m, err := b.table.Lookup(tag)
	if err != nil {
		b.unknownType(el, err)
		return typemap.Mapping{}, false
	}
	return m, true
}

func (b *builder) unknownType(el *loader.Element, err error) {
	b.fail(el, "%v", err)
	if b.strict && b.fatal == nil {
		b.fatal = fmt.Errorf("%s: %w", strings.Join(b.path, "/"), err)
	}
}
