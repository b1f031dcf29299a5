package render

import (
	"fmt"

	"github.com/kolah/xml2openrpc/internal/model"
)

// Format selects the serialisation of emitted documents.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) Valid() bool {
	return f == FormatJSON || f == FormatYAML
}

func Marshal(f Format, doc *model.Document) ([]byte, error) {
	switch f {
	case FormatJSON:
		return JSON(doc)
	case FormatYAML:
		return YAML(doc)
	}
	return nil, fmt.Errorf("unsupported format: %s", f)
}
