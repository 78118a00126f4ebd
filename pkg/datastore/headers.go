package datastore

import (
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/xrsl/texcv/pkg/model"
)

// loadHeaders reads headers.yaml keeping the key order of the file. The file
// holds either a mapping or a list whose first element is the mapping.
func loadHeaders(dir string) (headers *model.Headers, err error) {
	data, found, err := readFile(dir, HeadersFile)
	if err != nil || !found {
		return nil, err
	}
	path := filepath.Join(dir, HeadersFile)

	var doc yaml.Node
	if err = yaml.Unmarshal(data, &doc); err != nil {
		err = errors.Wrapf(err, "failed to parse %s", path)
		return nil, err
	}
	if len(doc.Content) == 0 {
		return &model.Headers{}, nil
	}

	node := doc.Content[0]
	if node.Kind == yaml.SequenceNode {
		if len(node.Content) == 0 {
			return &model.Headers{}, nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		err = errors.Errorf("failed to parse %s: expected a mapping at line %d", path, node.Line)
		return nil, err
	}

	headers = &model.Headers{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var values []string
		switch value.Kind {
		case yaml.ScalarNode:
			values = []string{value.Value}
		case yaml.SequenceNode:
			if err = value.Decode(&values); err != nil {
				err = errors.Wrapf(err, "failed to parse %s: header %q", path, key.Value)
				return nil, err
			}
		default:
			err = errors.Errorf("failed to parse %s: header %q must be a string or a list of strings", path, key.Value)
			return nil, err
		}

		headers.Fields = append(headers.Fields, model.HeaderField{Key: key.Value, Values: values})
	}

	return headers, nil
}
