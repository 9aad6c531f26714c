package cli

import (
	"bytes"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/VitalGuard/pkg/errors"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// readSnapshots decodes one snapshot or a list of snapshots from path, or
// from stdin when path is "-". JSON input is accepted as YAML. The bool
// reports whether the document was a list.
func readSnapshots(path string, stdin io.Reader) ([]clinical.Snapshot, bool, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeMalformedInput, "cannot read snapshot input").WithDetail(path)
	}
	return decodeSnapshots(data)
}

// dateFields are the snapshot keys holding timestamps. A quoted date-only
// value there is not resolved as a YAML timestamp, so JSON input needs it
// rewritten before decoding.
var dateFields = map[string]bool{"birthDate": true, "measuredAt": true}

// normalizeDates rewrites "2006-01-02" values of dateFields as RFC 3339
// midnight UTC, the same instant an unquoted YAML date resolves to.
func normalizeDates(n *yaml.Node) {
	switch n.Kind {
	case yaml.SequenceNode:
		for _, c := range n.Content {
			normalizeDates(c)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if val.Kind == yaml.ScalarNode && dateFields[key.Value] {
				if d, err := time.Parse(time.DateOnly, val.Value); err == nil {
					val.Value = d.Format(time.RFC3339)
				}
				continue
			}
			normalizeDates(val)
		}
	}
}

func decodeSnapshots(data []byte) ([]clinical.Snapshot, bool, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false, errors.Malformed("snapshot input is empty")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeMalformedInput, "snapshot input is not valid YAML or JSON")
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, false, errors.Malformed("snapshot input is empty")
	}

	root := doc.Content[0]
	normalizeDates(root)
	switch root.Kind {
	case yaml.SequenceNode:
		var list []clinical.Snapshot
		if err := root.Decode(&list); err != nil {
			return nil, true, errors.Wrap(err, errors.ErrCodeMalformedInput, "snapshot list does not match the snapshot schema")
		}
		if len(list) == 0 {
			return nil, true, errors.Malformed("snapshot list is empty")
		}
		return list, true, nil
	case yaml.MappingNode:
		var snap clinical.Snapshot
		if err := root.Decode(&snap); err != nil {
			return nil, false, errors.Wrap(err, errors.ErrCodeMalformedInput, "snapshot does not match the snapshot schema")
		}
		return []clinical.Snapshot{snap}, false, nil
	default:
		return nil, false, errors.Malformed("snapshot input must be a mapping or a list of mappings")
	}
}
