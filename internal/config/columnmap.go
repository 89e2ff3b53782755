package config

import (
	"fmt"

	"github.com/Rana718/sheetsync/internal/types"
	"gopkg.in/yaml.v3"
)

// ParseColumnMap decodes a YAML or JSON mapping of sheet header to column
// name. The node tree is walked directly so the mapping keeps the order the
// author wrote it in. A sequence of {header, column} objects is accepted
// too.
func ParseColumnMap(data []byte) (types.ColumnMapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse column map: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	var mapping types.ColumnMapping

	switch root.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, val := root.Content[i], root.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("column map line %d: value for %q must be a column name", val.Line, key.Value)
			}
			mapping = append(mapping, types.ColumnPair{Header: key.Value, Column: val.Value})
		}
	case yaml.SequenceNode:
		if err := root.Decode(&mapping); err != nil {
			return nil, fmt.Errorf("failed to decode column map list: %w", err)
		}
	default:
		return nil, fmt.Errorf("column map must be an object or a list, got %s", kindName(root.Kind))
	}

	return checkMapping(mapping)
}

func checkMapping(mapping types.ColumnMapping) (types.ColumnMapping, error) {
	headers := make(map[string]bool, len(mapping))
	columns := make(map[string]string, len(mapping))
	for _, p := range mapping {
		if p.Header == "" || p.Column == "" {
			return nil, fmt.Errorf("column map entries need both header and column (got %q -> %q)", p.Header, p.Column)
		}
		if headers[p.Header] {
			return nil, fmt.Errorf("header %q is mapped twice", p.Header)
		}
		if prev, ok := columns[p.Column]; ok {
			return nil, fmt.Errorf("column %q is the target of both %q and %q", p.Column, prev, p.Header)
		}
		headers[p.Header] = true
		columns[p.Column] = p.Header
	}
	return mapping, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return fmt.Sprintf("kind %d", k)
	}
}
