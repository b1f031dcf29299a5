// Package typemap maps the type tags used in handler XML schemas to JSON
// Schema types.
package typemap

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// ErrUnknownType is returned when a source type tag has no mapping.
var ErrUnknownType = errors.New("unknown type tag")

// DatetimePattern matches "%Y-%m-%d %H:%M:%S" and "%Y-%m-%d %H:%M".
const DatetimePattern = "^[0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2}(:[0-9]{2})?$"

// Mapping is the JSON rendering of one source type tag. Types holds one
// entry, or several for a disjunction; the order is kept as declared.
type Mapping struct {
	Types   []string
	Comment string
	Pattern string
}

// Has reports whether jsonType is one of the mapped types.
func (m Mapping) Has(jsonType string) bool {
	return slices.Contains(m.Types, jsonType)
}

// Typed reports whether the mapping names at least one concrete JSON type.
// "any" and "dynamic" map to the empty type.
func (m Mapping) Typed() bool {
	return slices.ContainsFunc(m.Types, func(t string) bool { return t != "" })
}

// String joins the types for display, e.g. "string, null".
func (m Mapping) String() string {
	return strings.Join(m.Types, ", ")
}

func one(t string) []string { return []string{t} }

func either(a, b string) []string { return []string{a, b} }

var builtin = map[string]Mapping{
	"any": {Types: one("")},

	"str": {Types: one("string")},
	"srt": {Types: one("string")},

	"str_int": {Types: one("string"), Pattern: "^[0-9]+$"},

	"int":       {Types: one("number")},
	"float":     {Types: one("number")},
	"str_float": {Types: one("string"), Comment: "float as string"},

	"datetime":        {Types: one("string"), Comment: "datetime", Pattern: DatetimePattern},
	"datetime, float": {Types: either("string", "number"), Comment: "datetime or number"},
	"datetime, null":  {Types: either("string", "null"), Comment: "datetime or null", Pattern: DatetimePattern},

	"bool":           {Types: one("boolean")},
	"true_if_exists": {Types: one("boolean"), Comment: "true if exists"},

	"list":      {Types: one("array")},
	"list, str": {Types: either("array", "string")},
	"list, int": {Types: either("array", "number"), Comment: "array or int"},
	"int, list": {Types: either("number", "array"), Comment: "int or array"},
	"str, list": {Types: either("string", "array"), Comment: "string or array"},

	"dict": {Types: one("object")},

	"null":      {Types: one("null")},
	"int, null": {Types: either("number", "null"), Comment: "int or null"},

	"dynamic": {Types: one(""), Comment: "dynamic type"},
}

// Table is an immutable lookup table. The zero value is empty; use Default.
type Table struct {
	entries map[string]Mapping
}

var defaultTable = &Table{entries: builtin}

// Default returns the built-in table.
func Default() *Table {
	return defaultTable
}

// Lookup returns the mapping for tag, or an error wrapping ErrUnknownType.
func (t *Table) Lookup(tag string) (Mapping, error) {
	m, ok := t.entries[tag]
	if !ok {
		return Mapping{}, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}
	return m, nil
}

// Tags returns all known tags in sorted order.
func (t *Table) Tags() []string {
	return slices.Sorted(maps.Keys(t.entries))
}

// With returns a new table holding the receiver's entries plus extra.
// Built-in tags cannot be redefined.
func (t *Table) With(extra map[string]Mapping) (*Table, error) {
	if len(extra) == 0 {
		return t, nil
	}
	entries := maps.Clone(t.entries)
	for _, tag := range slices.Sorted(maps.Keys(extra)) {
		m := extra[tag]
		if strings.TrimSpace(tag) == "" {
			return nil, fmt.Errorf("type mapping with empty tag")
		}
		if _, exists := entries[tag]; exists {
			return nil, fmt.Errorf("type mapping %q: tag is already defined", tag)
		}
		if len(m.Types) == 0 {
			return nil, fmt.Errorf("type mapping %q: at least one type is required", tag)
		}
		if m.Pattern != "" {
			if _, err := regexp.Compile(m.Pattern); err != nil {
				return nil, fmt.Errorf("type mapping %q: invalid pattern: %w", tag, err)
			}
		}
		m.Types = slices.Clone(m.Types)
		entries[tag] = m
	}
	return &Table{entries: entries}, nil
}
