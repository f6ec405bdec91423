package formats

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/errors"
)

type jsonCodec struct{}

// Decode reads a JSON array of objects. Numbers keep their literal text.
func (jsonCodec) Decode(r io.Reader) ([]bibliography.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", "", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []bibliography.Record{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var items []map[string]any
	if err := dec.Decode(&items); err != nil {
		return nil, errors.WrapParse(string(JSON), "", err)
	}
	return toRecords(string(JSON), items)
}

// Encode writes records as an indented JSON array. Object keys are sorted
// by encoding/json.
func (jsonCodec) Encode(w io.Writer, records []bibliography.Record) error {
	if records == nil {
		records = []bibliography.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return errors.WrapIO("write", "", err)
	}
	return nil
}
