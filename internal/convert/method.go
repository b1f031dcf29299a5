package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kolah/xml2openrpc/internal/loader"
	"github.com/kolah/xml2openrpc/internal/model"
)

var (
	ErrMissingAuthType   = errors.New("method has no auth_type attribute")
	ErrMissingOutputType = errors.New("output has neither type nor value")
)

type MethodStatus int

const (
	MethodProduced MethodStatus = iota
	MethodSkipped
	// MethodAbortsHandler stops the enclosing handler; nothing is written
	// for it.
	MethodAbortsHandler
)

func (s MethodStatus) String() string {
	switch s {
	case MethodProduced:
		return "produced"
	case MethodSkipped:
		return "skipped"
	case MethodAbortsHandler:
		return "aborts handler"
	}
	return "unknown"
}

type MethodOutcome struct {
	Status MethodStatus
	Method *model.Method
	Err    error
}

func skipped() MethodOutcome {
	return MethodOutcome{Status: MethodSkipped}
}

func aborted(err error) MethodOutcome {
	return MethodOutcome{Status: MethodAbortsHandler, Err: err}
}

func (b *builder) method(handlerName string, el *loader.Element) MethodOutcome {
	b.push(el)
	defer b.pop()

	authAttr, ok := el.Attr("auth_type")
	if !ok {
		b.fail(el, "no auth_type")
		return aborted(ErrMissingAuthType)
	}
	authTypes := b.authTypes(el, authAttr)

	name := el.AttrOr("name", "")
	if name == "" {
		b.warn(el, "method has no name")
		return skipped()
	}
	input := el.Find("input")
	if input == nil {
		b.warn(el, "no <input>")
		return skipped()
	}
	output := el.Find("output")
	if output == nil {
		b.warn(el, "no <output>")
		return skipped()
	}

	method := &model.Method{
		Name:         handlerName + "." + name,
		Description:  el.AttrOr("comment", ""),
		AuthTypes:    authTypes,
		RequiresPerm: el.AttrOr("requires_perm", ""),
		Params:       b.params(input),
	}

	result, outcome := b.result(output)
	if outcome != nil {
		return *outcome
	}
	method.Result = result

	return MethodOutcome{Status: MethodProduced, Method: method}
}

// authTypes splits a comma separated auth_type list. Unknown levels are
// reported but kept; an empty list means every authenticated level.
func (b *builder) authTypes(el *loader.Element, attr string) []model.AuthType {
	if attr == "" {
		return model.DefaultAuthTypes()
	}

	var result []model.AuthType
	for _, token := range strings.Split(attr, ",") {
		at := model.AuthType(strings.TrimSpace(token))
		if !at.Valid() {
			b.warn(el, "bad auth_type=%s in %q", at, attr)
		}
		result = append(result, at)
	}
	return result
}

// result resolves an <output> element. A literal value wins over a choice
// list, which wins over a mapped type. A non-nil outcome means the method
// is not produced.
func (b *builder) result(el *loader.Element) (model.Result, *MethodOutcome) {
	b.push(el)
	defer b.pop()

	result := model.Result{Comment: el.AttrOr("comment", "")}
	typ := el.AttrOr("type", "")

	if value := el.AttrOr("value", ""); value != "" {
		result.Name = model.ResultNameEnum
		result.Enum = []string{value}
		return result, nil
	}

	switch typ {
	case "":
		b.fail(el, "no output type nor value")
		out := aborted(ErrMissingOutputType)
		return result, &out
	case "choice":
		result.Name = model.ResultNameEnum
		result.Enum = b.resultChoices(el)
		return result, nil
	}

	mapping, ok := b.lookup(el, typ)
	if !ok {
		out := skipped()
		return result, &out
	}
	if !mapping.Typed() {
		return result, nil
	}

	schema := &model.Schema{
		Title: model.Ptr(""),
		Type:  mapping.Types,
	}
	if props := b.properties(el); props.Len() > 0 {
		schema.Properties = props
	}
	result.Name = model.ResultName(mapping.Types)
	result.Schema = schema
	return result, nil
}

func (b *builder) resultChoices(el *loader.Element) []string {
	values := []string{}
	for _, child := range el.Children {
		if child.Name != "choice" {
			b.warn(child, "expected <choice>, got <%s>", child.Name)
			continue
		}
		value := child.AttrOr("value", "")
		if value == "" {
			b.warn(child, "empty value")
			continue
		}
		values = append(values, value)
	}
	return values
}

func (o MethodOutcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s: %v", o.Status, o.Err)
	}
	return o.Status.String()
}
