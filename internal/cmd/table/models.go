// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/bibmerge/internal/cmd/emoji"
	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/collisions"
	"github.com/agentstation/bibmerge/pkg/constants"
	"github.com/agentstation/bibmerge/pkg/keys"
	"github.com/agentstation/bibmerge/pkg/reconcile"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// CollisionsToTableData converts collision reports to table format, one
// row per colliding key. Wide output adds the record titles.
func CollisionsToTableData(reports []*collisions.Report, wide bool) Data {
	headers := []string{"DATASET", "KEY", "RECORDS", "IDS"}
	if wide {
		headers = append(headers, "TITLES")
	}

	var rows [][]string
	for _, report := range reports {
		if report.Empty() {
			rows = append(rows, []string{report.Dataset, emoji.Success + " unique", FormatNumber(int64(report.Records)), "-"})
			if wide {
				rows[len(rows)-1] = append(rows[len(rows)-1], "-")
			}
			continue
		}
		for _, c := range report.Collisions {
			row := []string{
				report.Dataset,
				DisplayKey(c.Key),
				emoji.Warning + " " + strconv.Itoa(len(c.Records)),
				strings.Join(c.IDs(), ", "),
			}
			if wide {
				row = append(row, BuildTitlesString(c.Records))
			}
			rows = append(rows, row)
		}
	}

	align := []Align{AlignDefault, AlignDefault, AlignCenter, AlignDefault}
	if wide {
		align = append(align, AlignDefault)
	}
	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: align,
	}
}

// MergeStatsToTableData converts merge statistics to a key-value table.
func MergeStatsToTableData(r *reconcile.Result) Data {
	s := r.Stats
	rows := [][]string{
		{"Left", fmt.Sprintf("%s (%s records)", r.Left, FormatNumber(int64(s.LeftRecords)))},
		{"Right", fmt.Sprintf("%s (%s records)", r.Right, FormatNumber(int64(s.RightRecords)))},
		{"Key", strings.Join(r.Selectors, ", ")},
		{"Matched", FormatNumber(int64(s.Matched))},
		{"Left only", FormatNumber(int64(s.LeftOnly))},
		{"Right only", FormatNumber(int64(s.RightOnly))},
		{"Ambiguous", FormatNumber(int64(s.Ambiguous))},
		{"Duration", s.Duration.String()},
	}
	return Data{
		Headers:         []string{"PROPERTY", "VALUE"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignDefault, AlignRight},
	}
}

// KeyStatsToTableData converts keying statistics to a key-value table.
// Missing field counts are listed in field name order.
func KeyStatsToTableData(name string, s keys.Stats) Data {
	rows := [][]string{
		{"Dataset", name},
		{"Records", FormatNumber(int64(s.Records))},
		{"Blank keys", FormatNumber(int64(s.BlankKeys))},
	}
	fields := make([]string, 0, len(s.MissingFields))
	for f := range s.MissingFields {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		rows = append(rows, []string{"Missing " + f, FormatNumber(int64(s.MissingFields[f]))})
	}
	rows = append(rows, []string{"Duration", s.Duration.String()})
	return Data{
		Headers:         []string{"PROPERTY", "VALUE"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignDefault, AlignRight},
	}
}

// DisplayKey renders a key token, marking blank components.
func DisplayKey(key string) string {
	parts := bibliography.ParseKey(key).Components
	for i, p := range parts {
		if p == "" {
			parts[i] = emoji.Optional
		}
	}
	return bibliography.NewKey(parts...).String()
}

// BuildTitlesString joins record titles, truncating long ones.
func BuildTitlesString(records []bibliography.Record) string {
	titles := make([]string, 0, len(records))
	for _, r := range records {
		title, ok := r.Get(constants.FieldTitle)
		if !ok || title == "" {
			title = emoji.Optional
		}
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		titles = append(titles, title)
	}
	return strings.Join(titles, "; ")
}

// FormatNumber formats large numbers with comma separators.
func FormatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	if len(str) <= 3 {
		return str
	}

	// Add commas every 3 digits
	result := ""
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(r)
	}
	return result
}
