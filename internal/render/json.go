package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/kolah/xml2openrpc/internal/model"
)

const indent = "  "

// JSON renders doc with two-space indentation, keys in insertion order and
// every non-ASCII character escaped. The output has no trailing newline.
func JSON(doc *model.Document) ([]byte, error) {
	return MarshalJSON(Tree(doc))
}

// MarshalJSON encodes a tree built from *Object, []any and scalar values.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any, depth int) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case int:
		buf.WriteString(strconv.Itoa(x))
	case string:
		writeString(buf, x)
	case *Object:
		if x.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		i := 0
		for key, val := range x.FromOldest() {
			if i > 0 {
				buf.WriteString(",\n")
			}
			buf.WriteString(strings.Repeat(indent, depth+1))
			writeString(buf, key)
			buf.WriteString(": ")
			if err := writeJSON(buf, val, depth+1); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			i++
		}
		buf.WriteString("\n")
		buf.WriteString(strings.Repeat(indent, depth))
		buf.WriteString("}")
	case []any:
		if len(x) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, val := range x {
			if i > 0 {
				buf.WriteString(",\n")
			}
			buf.WriteString(strings.Repeat(indent, depth+1))
			if err := writeJSON(buf, val, depth+1); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteString("\n")
		buf.WriteString(strings.Repeat(indent, depth))
		buf.WriteString("]")
	default:
		return fmt.Errorf("unsupported value of type %T", v)
	}
	return nil
}

const hex = "0123456789abcdef"

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r < 0x7f:
				buf.WriteRune(r)
			case r > 0xFFFF:
				hi, lo := utf16.EncodeRune(r)
				writeEscape(buf, hi)
				writeEscape(buf, lo)
			default:
				writeEscape(buf, r)
			}
		}
	}
	buf.WriteByte('"')
}

func writeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hex[r>>12&0xF])
	buf.WriteByte(hex[r>>8&0xF])
	buf.WriteByte(hex[r>>4&0xF])
	buf.WriteByte(hex[r&0xF])
}
