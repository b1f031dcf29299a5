package loader

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type Result struct {
	Root     *Element
	Path     string
	Warnings []string
}

// Element is one node of the handler schema tree. Character data is
// dropped; the schema vocabulary only uses attributes and child elements.
type Element struct {
	Name     string
	Attrs    []xml.Attr
	Children []*Element
	// Line is the line of the start tag's opening '<'.
	Line int
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute, or def when it is absent.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// Find returns the first child with the given tag.
func (e *Element) Find(tag string) *Element {
	for _, c := range e.Children {
		if c.Name == tag {
			return c
		}
	}
	return nil
}

// FindAll returns the children with the given tag in document order.
func (e *Element) FindAll(tag string) []*Element {
	var result []*Element
	for _, c := range e.Children {
		if c.Name == tag {
			result = append(result, c)
		}
	}
	return result
}

// String renders the start tag, e.g. `<param name="id" type="int">`.
func (e *Element) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(e.Name)
	for _, a := range e.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name.Local)
		sb.WriteString(`="`)
		_ = xml.EscapeText(&sb, []byte(a.Value))
		sb.WriteByte('"')
	}
	if len(e.Children) == 0 {
		sb.WriteString("/>")
	} else {
		sb.WriteByte('>')
	}
	return sb.String()
}

func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	result, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	result.Path = path
	return result, nil
}

func Parse(data []byte) (*Result, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *Element
	var stack []*Element
	for {
		// The position before the token is the line of its opening '<'.
		line, _ := dec.InputPos()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Name:  t.Name.Local,
				Attrs: t.Copy().Attr,
				Line:  line,
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("parsing XML: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, fmt.Errorf("parsing XML: document has no root element")
	}

	result := &Result{Root: root}
	if len(root.FindAll("handler")) == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("no <handler> elements under <%s>", root.Name))
	}
	return result, nil
}
