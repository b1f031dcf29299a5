package model

import (
	"strings"

	"github.com/pb33f/libopenapi/orderedmap"
)

// TypeSet is a JSON type, or a disjunction of types when it holds more than
// one entry. A nil TypeSet means the type key is absent.
type TypeSet []string

func (t TypeSet) String() string {
	return strings.Join(t, ", ")
}

// Constraints are the value-level keys shared by parameters and the
// property schemas flattened from them.
type Constraints struct {
	Enum         []any
	Default      any
	HasDefault   bool
	ValueComment *orderedmap.Map[string, string]
	Optional     bool
}

// Param is one named entry of a method's input list.
type Param struct {
	Name        string
	Description *string
	Schema      *Schema
	Constraints
}

// Flatten folds the parameter's schema into a single object titled with
// the parameter description. This is the shape used for dict properties,
// list items, dynamic values and result fields.
func (p *Param) Flatten() *Schema {
	s := &Schema{}
	if p.Schema != nil {
		*s = *p.Schema
	}
	title := ""
	if p.Description != nil {
		title = *p.Description
	}
	s.Title = &title
	s.Constraints = p.Constraints
	return s
}

type Schema struct {
	Index   *int
	Title   *string
	Type    TypeSet
	Pattern string

	// Arrays. Tuple is used instead of Items for fixed-arity lists.
	Items  *Schema
	Tuple  []*Schema
	Length string

	// Objects
	DynamicKeys bool
	Key         *KeySchema
	Value       *Schema
	Properties  *orderedmap.Map[string, *Schema]

	Constraints
}

type KeySchema struct {
	Type  string
	Title string
}

func Ptr[T any](v T) *T {
	return &v
}
