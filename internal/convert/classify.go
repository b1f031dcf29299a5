package convert

import (
	"github.com/kolah/xml2openrpc/internal/loader"
	"github.com/kolah/xml2openrpc/internal/typemap"
)

// Kind is the shape a <param> element renders to.
type Kind int

const (
	KindScalar Kind = iota
	KindConstant
	KindChoice
	KindList
	KindDict
	KindDynamicKeyDict
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindConstant:
		return "constant"
	case KindChoice:
		return "choice"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindDynamicKeyDict:
		return "dynamic-key dict"
	}
	return "unknown"
}

// Classify resolves the kind of a <param> element once so the builders can
// dispatch on it. Choices and constants carry the zero Mapping; an empty
// type attribute maps to the empty JSON type.
func Classify(el *loader.Element, table *typemap.Table) (Kind, typemap.Mapping, error) {
	typ := el.AttrOr("type", "")
	if typ == "choice" {
		return KindChoice, typemap.Mapping{}, nil
	}
	if el.AttrOr("value", "") != "" {
		return KindConstant, typemap.Mapping{}, nil
	}
	if typ == "" {
		return KindScalar, typemap.Mapping{Types: []string{""}}, nil
	}

	mapping, err := table.Lookup(typ)
	if err != nil {
		return KindScalar, typemap.Mapping{}, err
	}

	switch {
	case mapping.Has("array"):
		return KindList, mapping, nil
	case typ == "dict" && mapping.Pattern == "":
		if el.AttrOr("dynamic_keys", "") == "true" {
			return KindDynamicKeyDict, mapping, nil
		}
		return KindDict, mapping, nil
	}
	return KindScalar, mapping, nil
}
