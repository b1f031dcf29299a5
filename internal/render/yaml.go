package render

import (
	"fmt"
	"strconv"

	"github.com/kolah/xml2openrpc/internal/model"
	"go.yaml.in/yaml/v4"
)

// YAML renders doc as YAML with the same key order as JSON.
func YAML(doc *model.Document) ([]byte, error) {
	node, err := yamlNode(Tree(doc))
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return out, nil
}

func yamlNode(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(x)}, nil
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(x)}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: x}, nil
	case *Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if x.Len() == 0 {
			node.Style = yaml.FlowStyle
		}
		for key, val := range x.FromOldest() {
			child, err := yamlNode(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				child,
			)
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if len(x) == 0 {
			node.Style = yaml.FlowStyle
		}
		for i, val := range x {
			child, err := yamlNode(val)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	}
	return nil, fmt.Errorf("unsupported value of type %T", v)
}
