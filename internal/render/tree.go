// Package render serialises documents with a fixed key order.
package render

import (
	"github.com/kolah/xml2openrpc/internal/model"
	"github.com/pb33f/libopenapi/orderedmap"
)

// Object is an insertion-ordered JSON object.
type Object = orderedmap.Map[string, any]

func newObject() *Object {
	return orderedmap.New[string, any]()
}

// Tree converts a document to ordered objects, slices and scalars.
func Tree(doc *model.Document) *Object {
	info := newObject()
	info.Set("version", doc.Info.Version)
	info.Set("title", doc.Info.Title)

	methods := make([]any, 0, len(doc.Methods))
	for _, m := range doc.Methods {
		methods = append(methods, methodTree(m))
	}

	root := newObject()
	root.Set("openrpc", doc.OpenRPC)
	root.Set("info", info)
	root.Set("methods", methods)
	return root
}

func methodTree(m *model.Method) *Object {
	authTypes := make([]any, 0, len(m.AuthTypes))
	for _, at := range m.AuthTypes {
		authTypes = append(authTypes, string(at))
	}

	params := make([]any, 0, len(m.Params))
	for _, p := range m.Params {
		params = append(params, ParamTree(p))
	}

	obj := newObject()
	obj.Set("name", m.Name)
	obj.Set("description", m.Description)
	obj.Set("auth_type", authTypes)
	if m.RequiresPerm != "" {
		obj.Set("requires_perm", m.RequiresPerm)
	}
	obj.Set("params", params)
	obj.Set("result", ResultTree(&m.Result))
	return obj
}

func ResultTree(r *model.Result) *Object {
	obj := newObject()
	obj.Set("name", r.Name)
	obj.Set("comment", r.Comment)
	if r.Schema != nil {
		obj.Set("schema", SchemaTree(r.Schema))
	}
	if r.Enum != nil {
		values := make([]any, 0, len(r.Enum))
		for _, v := range r.Enum {
			values = append(values, v)
		}
		obj.Set("enum", values)
	}
	return obj
}

func ParamTree(p *model.Param) *Object {
	obj := newObject()
	if p.Name != "" {
		obj.Set("name", p.Name)
	}
	if p.Description != nil {
		obj.Set("description", *p.Description)
	}
	if p.Schema != nil {
		obj.Set("schema", SchemaTree(p.Schema))
	}
	setConstraints(obj, &p.Constraints)
	return obj
}

func SchemaTree(s *model.Schema) *Object {
	obj := newObject()
	if s.Index != nil {
		obj.Set("index", *s.Index)
	}
	if s.Title != nil {
		obj.Set("title", *s.Title)
	}
	if s.Type != nil {
		obj.Set("type", typeValue(s.Type))
	}
	if s.Pattern != "" {
		obj.Set("pattern", s.Pattern)
	}

	switch {
	case len(s.Tuple) > 0:
		items := make([]any, 0, len(s.Tuple))
		for _, item := range s.Tuple {
			items = append(items, SchemaTree(item))
		}
		obj.Set("items", items)
	case s.Items != nil:
		obj.Set("items", SchemaTree(s.Items))
	}
	if s.Length != "" {
		obj.Set("length", s.Length)
	}

	if s.DynamicKeys {
		obj.Set("dynamic_keys", true)
	}
	if s.Key != nil {
		key := newObject()
		key.Set("type", s.Key.Type)
		key.Set("title", s.Key.Title)
		obj.Set("__key__", key)
	}
	if s.Value != nil {
		obj.Set("__value__", SchemaTree(s.Value))
	}
	if s.Properties != nil {
		props := newObject()
		for name, prop := range s.Properties.FromOldest() {
			props.Set(name, SchemaTree(prop))
		}
		obj.Set("properties", props)
	}

	setConstraints(obj, &s.Constraints)
	return obj
}

func setConstraints(obj *Object, c *model.Constraints) {
	if c.Enum != nil {
		obj.Set("enum", c.Enum)
	}
	if c.Optional {
		obj.Set("required", false)
	}
	if c.HasDefault {
		obj.Set("default", c.Default)
	}
	if c.ValueComment != nil && c.ValueComment.Len() > 0 {
		comments := newObject()
		for value, comment := range c.ValueComment.FromOldest() {
			comments.Set(value, comment)
		}
		obj.Set("value_comment", comments)
	}
}

// typeValue renders a single type as a string and a disjunction as a list.
func typeValue(t model.TypeSet) any {
	if len(t) == 1 {
		return t[0]
	}
	types := make([]any, 0, len(t))
	for _, v := range t {
		types = append(types, v)
	}
	return types
}
