// Package constants provides shared constants used throughout the bibmerge codebase.
// This includes well-known record fields, default key selectors, file
// permissions and concurrency limits.
package constants

// Well-known record fields
const (
	// FieldAuthor is the raw author list of a record
	FieldAuthor = "author"

	// FieldYear is the raw publication year of a record
	FieldYear = "year"

	// FieldTitle is the raw title of a record
	FieldTitle = "title"

	// FieldID is the record identifier (BibTeX cite key, MR number)
	FieldID = "ID"

	// FieldEntryType is the BibTeX entry type (article, book, ...)
	FieldEntryType = "ENTRYTYPE"

	// FieldNormAuthor holds the normalized author token
	FieldNormAuthor = "normauthor"

	// FieldNormTitle holds the normalized title token
	FieldNormTitle = "normtitle"

	// FieldMergeKey holds the attached join key token
	FieldMergeKey = "mergekey"
)

// Key construction
const (
	// KeySeparator joins key components into a single token
	KeySeparator = "|"

	// NormPrefix marks a selector as naming a normalized field
	NormPrefix = "norm"
)

// DefaultSelectors is the key configuration used when none is given.
var DefaultSelectors = []string{FieldNormAuthor, FieldYear, FieldNormTitle}

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// DefaultWorkers is the number of goroutines keying records in parallel
	DefaultWorkers = 8

	// MaxWorkers caps the configurable worker count
	MaxWorkers = 64

	// MaxReportedKeys bounds the keys listed in a collision error message
	MaxReportedKeys = 10
)
