package formats

import (
	"bytes"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/errors"
)

type yamlCodec struct{}

// Decode reads a YAML sequence of mappings. Scalar values of any type are
// kept as their text.
func (yamlCodec) Decode(r io.Reader) ([]bibliography.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", "", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []bibliography.Record{}, nil
	}
	var items []map[string]any
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, errors.NewParseError(string(YAML), "", yaml.FormatError(err, false, true), err)
	}
	return toRecords(string(YAML), items)
}

// Encode writes records as a YAML sequence with fields in sorted order.
func (yamlCodec) Encode(w io.Writer, records []bibliography.Record) error {
	items := make([]yaml.MapSlice, len(records))
	for i, rec := range records {
		item := make(yaml.MapSlice, 0, len(rec))
		for _, field := range rec.Fields() {
			item = append(item, yaml.MapItem{Key: field, Value: rec[field]})
		}
		items[i] = item
	}
	data, err := yaml.MarshalWithOptions(items,
		yaml.Indent(2),
		yaml.IndentSequence(false),
		yaml.UseLiteralStyleIfMultiline(true),
	)
	if err != nil {
		return errors.NewParseError(string(YAML), "", "encoding records", err)
	}
	if _, err := w.Write(data); err != nil {
		return errors.WrapIO("write", "", err)
	}
	return nil
}
