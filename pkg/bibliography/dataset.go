package bibliography

import (
	"fmt"
	"slices"
)

// Dataset is an ordered sequence of records harvested from one source.
//
// Once keyed, Keys is parallel to Records and Selectors names the key
// configuration every record was built with.
type Dataset struct {
	Name      string
	Records   []Record
	Selectors []string
	Keys      []Key
}

// NewDataset creates an unkeyed dataset owning the given records.
func NewDataset(name string, records []Record) *Dataset {
	return &Dataset{Name: name, Records: records}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Keyed reports whether every record has a key attached.
func (d *Dataset) Keyed() bool {
	return d != nil && len(d.Keys) == len(d.Records) && d.Selectors != nil
}

// KeyAt returns the key of the i-th record.
func (d *Dataset) KeyAt(i int) Key {
	return d.Keys[i]
}

// Clone deep-copies the dataset so callers can enrich records without
// touching the source.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{
		Name:      d.Name,
		Records:   make([]Record, len(d.Records)),
		Selectors: slices.Clone(d.Selectors),
	}
	for i, r := range d.Records {
		out.Records[i] = r.Clone()
	}
	if d.Keys != nil {
		out.Keys = make([]Key, len(d.Keys))
		for i, k := range d.Keys {
			out.Keys[i] = NewKey(k.Components...)
		}
	}
	return out
}

// String implements fmt.Stringer.
func (d *Dataset) String() string {
	if d == nil {
		return "<nil dataset>"
	}
	return fmt.Sprintf("%s (%d records)", d.Name, len(d.Records))
}
