// Package output provides common output formatting utilities for CLI commands.
package output

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/agentstation/bibmerge/internal/cmd/constants"
	"github.com/agentstation/bibmerge/internal/cmd/table"
	"github.com/agentstation/bibmerge/pkg/collisions"
	"github.com/agentstation/bibmerge/pkg/keys"
	"github.com/agentstation/bibmerge/pkg/reconcile"
)

// FormatCollisions writes collision reports. Table formats get one row per
// colliding key; structured formats get the full reports, records included.
func FormatCollisions(w io.Writer, reports []*collisions.Report, format string) error {
	if reports == nil {
		reports = []*collisions.Report{}
	}
	return write(w, format, reports, func(wide bool) table.Data {
		return table.CollisionsToTableData(reports, wide)
	})
}

// FormatMergeStats writes the statistics of a merge.
func FormatMergeStats(w io.Writer, result *reconcile.Result, format string) error {
	return write(w, format, result.Stats, func(bool) table.Data {
		return table.MergeStatsToTableData(result)
	})
}

// FormatKeyStats writes the statistics of keying one dataset.
func FormatKeyStats(w io.Writer, name string, stats keys.Stats, format string) error {
	return write(w, format, stats, func(bool) table.Data {
		return table.KeyStatsToTableData(name, stats)
	})
}

// write renders structured for json and yaml and the table built by rows
// for everything else.
func write(w io.Writer, format string, structured any, rows func(wide bool) table.Data) error {
	formatter := NewFormatter(Format(format))
	switch format {
	case constants.FormatJSON, constants.FormatYAML:
		return formatter.Format(w, structured)
	default:
		return formatter.Format(w, rows(format == constants.FormatWide))
	}
}

// ReportFormat picks a structured format for a report file from its
// extension; anything but .json is written as YAML.
func ReportFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return constants.FormatJSON
	}
	return constants.FormatYAML
}
