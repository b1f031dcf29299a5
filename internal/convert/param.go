package convert

import (
	"fmt"
	"strconv"

	"github.com/kolah/xml2openrpc/internal/loader"
	"github.com/kolah/xml2openrpc/internal/model"
	"github.com/pb33f/libopenapi/orderedmap"
)

// params converts the <param> children of el. Children without a name or
// that fail to convert are dropped.
func (b *builder) params(el *loader.Element) []*model.Param {
	result := []*model.Param{}
	for _, child := range el.Children {
		if child.Name != "param" {
			continue
		}
		if child.AttrOr("name", "") == "" {
			b.warn(child, "param name is empty")
			continue
		}
		if p := b.param(child); p != nil {
			result = append(result, p)
		}
	}
	return result
}

// properties converts the <param> children of el into flattened property
// schemas keyed by parameter name.
func (b *builder) properties(el *loader.Element) *orderedmap.Map[string, *model.Schema] {
	props := orderedmap.New[string, *model.Schema]()
	for _, p := range b.params(el) {
		props.Set(p.Name, p.Flatten())
	}
	return props
}

func (b *builder) param(el *loader.Element) *model.Param {
	b.push(el)
	defer b.pop()

	if el.AttrOr("type", "") == "" {
		b.warn(el, "param type is empty")
	}

	kind, mapping, err := Classify(el, b.table)
	if err != nil {
		b.unknownType(el, err)
		return nil
	}

	switch kind {
	case KindChoice:
		return b.choiceParam(el)
	case KindConstant:
		p := &model.Param{
			Name:        el.AttrOr("name", ""),
			Description: model.Ptr(el.AttrOr("comment", "")),
		}
		p.Enum = []any{el.AttrOr("value", "")}
		applyRequirement(el, &p.Constraints)
		return p
	}

	description := el.AttrOr("comment", "")
	if mapping.Comment != "" {
		description = mapping.Comment + ", " + description
	}

	var schema *model.Schema
	if kind == KindList {
		schema = b.listSchema(el, mapping.Types)
	} else {
		schema = &model.Schema{Type: mapping.Types}
	}

	switch {
	case mapping.Pattern != "":
		schema.Pattern = mapping.Pattern
	case kind == KindDict || kind == KindDynamicKeyDict:
		b.dictSchema(el, kind == KindDynamicKeyDict, schema)
	}

	p := &model.Param{
		Name:        el.AttrOr("name", ""),
		Description: &description,
		Schema:      schema,
	}
	applyRequirement(el, &p.Constraints)
	return p
}

// applyRequirement marks a parameter optional when it declares a default
// or a truthy optional attribute. Defaults are kept as raw strings.
func applyRequirement(el *loader.Element, c *model.Constraints) {
	if def, ok := el.Attr("default"); ok {
		c.Optional = true
		c.Default = def
		c.HasDefault = true
		return
	}
	if el.AttrOr("optional", "") != "" {
		c.Optional = true
	}
}

// choiceParam converts an element whose children are all <choice> tags
// into an enumeration. It returns nil when a child is not a valid choice.
func (b *builder) choiceParam(el *loader.Element) *model.Param {
	p := &model.Param{Name: el.AttrOr("name", "")}
	if comment, ok := el.Attr("comment"); ok {
		p.Description = &comment
	}

	values := []any{}
	comments := orderedmap.New[string, string]()
	var def any
	hasDefault := false

	for _, child := range el.Children {
		if child.Name != "choice" {
			b.warn(child, "expected <choice>, got <%s>", child.Name)
			return nil
		}
		raw, ok := child.Attr("value")
		if !ok {
			b.warn(child, "choice with no value")
			return nil
		}

		var value any = raw
		switch typ := child.AttrOr("type", ""); typ {
		case "", "str":
		case "int":
			n, err := strconv.Atoi(raw)
			if err != nil {
				b.warn(child, "choice value %q is not an int", raw)
				return nil
			}
			value = n
		default:
			b.warn(child, "invalid choice type %q", typ)
		}

		values = append(values, value)
		if comment := child.AttrOr("comment", ""); comment != "" {
			comments.Set(fmt.Sprint(value), comment)
		}
		if child.AttrOr("default", "") != "" {
			if hasDefault {
				b.warn(child, "more than one default choice")
			}
			def = value
			hasDefault = true
		}
	}

	if len(values) == 0 {
		b.warn(el, "choice with no values")
	}

	p.Enum = values
	if hasDefault {
		p.Default = coerceDefault(def)
		p.HasDefault = true
	}
	if comments.Len() > 0 {
		p.ValueComment = comments
	}
	return p
}

// coerceDefault turns "true"/"false" into booleans and numeric strings
// into integers.
func coerceDefault(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func (b *builder) listSchema(el *loader.Element, types model.TypeSet) *model.Schema {
	schema := &model.Schema{Type: types}

	items := el.FindAll("item")
	switch {
	case len(items) == 1:
		schema.Items = b.item(items[0])
	case len(items) > 1:
		for i, item := range items {
			s := b.item(item)
			if s == nil {
				continue
			}
			s.Index = model.Ptr(i)
			schema.Tuple = append(schema.Tuple, s)
		}
	}

	if length := el.AttrOr("length", ""); length != "" && length != "-1" {
		schema.Length = length
	}
	return schema
}

// item converts one <item> of a list. Item types are emitted as written
// in the source; only "choice" and "dict" get structural treatment.
func (b *builder) item(el *loader.Element) *model.Schema {
	typ := el.AttrOr("type", "")
	if typ == "" {
		b.warn(el, "item has no type")
		return nil
	}
	title := el.AttrOr("comment", "")

	switch typ {
	case "choice":
		p := b.choiceParam(el)
		if p == nil {
			return nil
		}
		s := p.Flatten()
		s.Title = &title
		return s
	case "dict":
		s := &model.Schema{
			Title: &title,
			Type:  model.TypeSet{"object"},
		}
		b.dictSchema(el, el.AttrOr("dynamic_keys", "") == "true", s)
		return s
	}

	return &model.Schema{
		Title: &title,
		Type:  model.TypeSet{typ},
	}
}

func (b *builder) dictSchema(el *loader.Element, dynamic bool, schema *model.Schema) {
	if dynamic {
		b.dynamicKeys(el, schema)
	} else if el.Find("key") != nil {
		b.warn(el, "<key> found but dynamic_keys is not \"true\"")
	}
	schema.Properties = b.properties(el)
}

func (b *builder) dynamicKeys(el *loader.Element, schema *model.Schema) {
	schema.DynamicKeys = true

	key := el.Find("key")
	if key == nil {
		return
	}
	value := el.Find("value")
	if value == nil {
		b.warn(el, "<key> without <value>")
		return
	}

	p := b.param(value)
	if p == nil {
		b.warn(value, "dynamic value could not be converted")
		return
	}

	schema.Key = &model.KeySchema{
		Type:  key.AttrOr("type", ""),
		Title: key.AttrOr("comment", ""),
	}
	schema.Value = p.Flatten()
}
