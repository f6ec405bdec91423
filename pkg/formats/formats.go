// Package formats reads and writes datasets as YAML, JSON or BibTeX.
//
// Every codec maps a file to an ordered list of records and back. The
// field mapping of a record, including derived fields such as the merge
// key, survives a round trip through any codec.
package formats

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/constants"
	"github.com/agentstation/bibmerge/pkg/errors"
)

// Format names a codec.
type Format string

const (
	// YAML is a sequence of mappings.
	YAML Format = "yaml"
	// JSON is an array of objects.
	JSON Format = "json"
	// BibTeX is a .bib database.
	BibTeX Format = "bibtex"
)

// Codec decodes and encodes record lists.
type Codec interface {
	Decode(r io.Reader) ([]bibliography.Record, error)
	Encode(w io.Writer, records []bibliography.Record) error
}

var codecs = map[Format]Codec{
	YAML:   yamlCodec{},
	JSON:   jsonCodec{},
	BibTeX: bibtexCodec{},
}

var extensions = map[string]Format{
	".yaml":   YAML,
	".yml":    YAML,
	".json":   JSON,
	".bib":    BibTeX,
	".bibtex": BibTeX,
}

// Names returns the supported format names, sorted.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for f := range codecs {
		names = append(names, string(f))
	}
	slices.Sort(names)
	return names
}

// Parse validates a format name. "yml" and "bib" are accepted as aliases.
func Parse(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case "yml":
		f = YAML
	case "bib":
		f = BibTeX
	}
	if _, ok := codecs[f]; !ok {
		return "", unknownFormat(name)
	}
	return f, nil
}

// Lookup returns the codec for f.
func Lookup(f Format) (Codec, error) {
	c, ok := codecs[f]
	if !ok {
		return nil, unknownFormat(string(f))
	}
	return c, nil
}

// Detect picks a format from the file extension of path.
func Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := extensions[ext]
	if !ok {
		return "", errors.NewConfigError("formats",
			fmt.Sprintf("cannot deduce format from %q; known formats: %s", path, strings.Join(Names(), ", ")),
			errors.ErrUnknownFormat)
	}
	return f, nil
}

// DetectAll picks the one format shared by every path.
func DetectAll(paths []string) (Format, error) {
	if len(paths) == 0 {
		return "", errors.NewValidationError("files", nil, "at least one file must be specified")
	}
	first, err := Detect(paths[0])
	if err != nil {
		return "", err
	}
	for _, p := range paths[1:] {
		f, err := Detect(p)
		if err != nil {
			return "", err
		}
		if f != first {
			return "", errors.NewConfigError("formats",
				fmt.Sprintf("input files mix formats (%s and %s); pass the format explicitly", first, f),
				errors.ErrUnknownFormat)
		}
	}
	return first, nil
}

// Load decodes records from r.
func Load(r io.Reader, f Format) ([]bibliography.Record, error) {
	c, err := Lookup(f)
	if err != nil {
		return nil, err
	}
	return c.Decode(r)
}

// Dump encodes records to w.
func Dump(w io.Writer, f Format, records []bibliography.Record) error {
	c, err := Lookup(f)
	if err != nil {
		return err
	}
	return c.Encode(w, records)
}

// LoadFile reads a dataset from path. An empty format is detected from the
// extension. The dataset is named after the file without its extension.
func LoadFile(path string, f Format) (*bibliography.Dataset, error) {
	if f == "" {
		var err error
		if f, err = Detect(path); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	records, err := Load(bytes.NewReader(data), f)
	if err != nil {
		return nil, withFile(err, path)
	}
	return bibliography.NewDataset(DatasetName(path), records), nil
}

// DumpFile writes records to path, creating parent directories.
func DumpFile(path string, f Format, records []bibliography.Record) error {
	if f == "" {
		var err error
		if f, err = Detect(path); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if err := Dump(&buf, f, records); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// DatasetName derives a dataset name from a file path.
func DatasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func unknownFormat(name string) error {
	return errors.NewConfigError("formats",
		fmt.Sprintf("unknown format %q; known formats: %s", name, strings.Join(Names(), ", ")),
		errors.ErrUnknownFormat)
}

func withFile(err error, path string) error {
	var pe *errors.ParseError
	if errors.As(err, &pe) && pe.File == "" {
		pe.File = path
	}
	return err
}

// scalar renders a decoded YAML or JSON value as field text.
func scalar(field string, v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x), true
	case fmt.Stringer:
		return x.String(), true
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := scalar(field, item)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		sep := ", "
		if field == constants.FieldAuthor || field == "editor" {
			sep = " and "
		}
		return strings.Join(parts, sep), true
	default:
		return "", false
	}
}

// toRecords converts decoded mappings into records. Keys are kept as
// written.
func toRecords(format string, items []map[string]any) ([]bibliography.Record, error) {
	records := make([]bibliography.Record, 0, len(items))
	for i, item := range items {
		rec := make(bibliography.Record, len(item))
		for k, v := range item {
			if v == nil {
				continue
			}
			s, ok := scalar(k, v)
			if !ok {
				return nil, errors.NewParseError(format, "",
					fmt.Sprintf("record %d: field %q holds a nested value", i, k), errors.ErrInvalidInput)
			}
			rec[k] = s
		}
		records = append(records, rec)
	}
	return records, nil
}
