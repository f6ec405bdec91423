package bibmerge

import (
	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/formats"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence reads and writes dataset files.
type Persistence interface {
	// Load reads a dataset; an empty format is detected from the extension.
	Load(path string, format formats.Format) (*bibliography.Dataset, error)

	// Save writes the records of ds to path.
	Save(ds *bibliography.Dataset, path string, format formats.Format) error
}

// Load reads a dataset from path.
func (c *client) Load(path string, format formats.Format) (*bibliography.Dataset, error) {
	return formats.LoadFile(path, format)
}

// Save writes ds to path.
func (c *client) Save(ds *bibliography.Dataset, path string, format formats.Format) error {
	var records []bibliography.Record
	if ds != nil {
		records = ds.Records
	}
	return formats.DumpFile(path, format, records)
}
