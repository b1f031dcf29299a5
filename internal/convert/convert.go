// Package convert turns handler XML schema trees into OpenRPC-style method
// descriptors. It performs no I/O.
package convert

import (
	"strings"

	"github.com/kolah/xml2openrpc/internal/loader"
	"github.com/kolah/xml2openrpc/internal/model"
	"github.com/kolah/xml2openrpc/internal/typemap"
)

type Options struct {
	Table *typemap.Table
	// Strict turns unknown type tags into a fatal error instead of
	// skipping the element that uses them.
	Strict bool
}

type Converter struct {
	table  *typemap.Table
	strict bool
}

func New(opts Options) *Converter {
	table := opts.Table
	if table == nil {
		table = typemap.Default()
	}
	return &Converter{table: table, strict: opts.Strict}
}

type HandlerStatus int

const (
	HandlerConverted HandlerStatus = iota
	HandlerSkipped
	HandlerAborted
)

func (s HandlerStatus) String() string {
	switch s {
	case HandlerConverted:
		return "converted"
	case HandlerSkipped:
		return "skipped"
	case HandlerAborted:
		return "aborted"
	}
	return "unknown"
}

// HandlerResult is the outcome of converting one <handler>. Only converted
// handlers produce a document; Err is set for aborted handlers.
type HandlerResult struct {
	Name        string
	Status      HandlerStatus
	Methods     []*model.Method
	Skipped     int
	Diagnostics []Diagnostic
	Err         error
	// Fatal is set in strict mode when an unknown type tag was found. The
	// caller is expected to stop the run.
	Fatal error
}

// Handler converts the <method> children of a <handler> element in
// document order.
func (c *Converter) Handler(el *loader.Element) HandlerResult {
	b := &builder{table: c.table, strict: c.strict}
	b.push(el)

	name := el.AttrOr("name", "")
	if name == "" {
		b.warn(el, "handler has no name")
		return HandlerResult{Status: HandlerSkipped, Diagnostics: b.diags}
	}
	if !validHandlerName(name) {
		b.warn(el, "handler name %q is not a valid file name", name)
		return HandlerResult{Status: HandlerSkipped, Diagnostics: b.diags}
	}

	result := HandlerResult{Name: name, Status: HandlerConverted, Methods: []*model.Method{}}
	for _, child := range el.Children {
		if child.Name != "method" {
			continue
		}
		outcome := b.method(name, child)
		if b.fatal != nil {
			result.Status = HandlerAborted
			result.Err = b.fatal
			result.Fatal = b.fatal
			break
		}
		switch outcome.Status {
		case MethodProduced:
			result.Methods = append(result.Methods, outcome.Method)
		case MethodSkipped:
			result.Skipped++
		case MethodAbortsHandler:
			result.Status = HandlerAborted
			result.Err = outcome.Err
		}
		if result.Status == HandlerAborted {
			break
		}
	}

	if result.Status == HandlerAborted {
		result.Methods = nil
	}
	result.Diagnostics = b.diags
	return result
}

// validHandlerName reports whether name can be used as an output file name
// inside the branch directory.
func validHandlerName(name string) bool {
	return name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
