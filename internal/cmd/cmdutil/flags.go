// Package cmdutil provides shared flags and file handling for bibmerge commands.
package cmdutil

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/bibmerge"
	"github.com/agentstation/bibmerge/internal/cmd/output"
	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/collisions"
	"github.com/agentstation/bibmerge/pkg/constants"
	"github.com/agentstation/bibmerge/pkg/errors"
	"github.com/agentstation/bibmerge/pkg/formats"
)

// IOFlags holds the input and output format flags shared by commands that
// read and write datasets.
type IOFlags struct {
	From string
	To   string
	Out  string
}

// AddIOFlags adds -f/--from, -t/--to and -o/--out to a command.
func AddIOFlags(cmd *cobra.Command) *IOFlags {
	flags := &IOFlags{}

	cmd.Flags().StringVarP(&flags.From, "from", "f", "",
		"Input format: bibtex, json, yaml (default: from file extensions)")
	cmd.Flags().StringVarP(&flags.To, "to", "t", "",
		"Output format: bibtex, json, yaml (default: from --out extension)")
	cmd.Flags().StringVarP(&flags.Out, "out", "o", "",
		"Output file (default: stdout)")

	return flags
}

// Formats resolves the reader and writer. Without --from every input file
// must share one known extension; without --to the writer comes from the
// --out extension.
func (f *IOFlags) Formats(files []string) (in, out formats.Format, err error) {
	if len(files) == 0 {
		return "", "", errors.NewValidationError("files", nil, "at least one file must be specified")
	}

	if f.From != "" {
		in, err = formats.Parse(f.From)
	} else {
		in, err = formats.DetectAll(files)
	}
	if err != nil {
		return "", "", err
	}

	switch {
	case f.To != "":
		out, err = formats.Parse(f.To)
	case f.Out != "":
		out, err = formats.Detect(f.Out)
	default:
		err = errors.NewConfigError("formats",
			"cannot deduce output format; pass --to or --out", errors.ErrUnknownFormat)
	}
	if err != nil {
		return "", "", err
	}
	return in, out, nil
}

// LoadAll reads every file with the given format, in order.
func LoadAll(p bibmerge.Persistence, files []string, in formats.Format) ([]*bibliography.Dataset, error) {
	datasets := make([]*bibliography.Dataset, 0, len(files))
	for _, file := range files {
		ds, err := p.Load(file, in)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

// Write stores ds in --out, or prints it to the command's output stream.
func (f *IOFlags) Write(cmd *cobra.Command, p bibmerge.Persistence, ds *bibliography.Dataset, out formats.Format) error {
	if f.Out != "" {
		return p.Save(ds, f.Out, out)
	}
	var records []bibliography.Record
	if ds != nil {
		records = ds.Records
	}
	return formats.Dump(cmd.OutOrStdout(), out, records)
}

// KeyFlags holds the key configuration flags.
type KeyFlags struct {
	Selectors []string
	Workers   int
}

// AddKeyFlags adds -k/--key and --workers to a command.
func AddKeyFlags(cmd *cobra.Command) *KeyFlags {
	flags := &KeyFlags{}

	cmd.Flags().StringSliceVarP(&flags.Selectors, "key", "k", nil,
		"Key selector, repeatable and ordered (e.g. -k normauthor -k year -k normtitle)")
	cmd.Flags().IntVar(&flags.Workers, "workers", constants.DefaultWorkers,
		"Records keyed concurrently")

	return flags
}

// Options returns client options for the flags the user set explicitly,
// so configured defaults stay in effect otherwise.
func (f *KeyFlags) Options(cmd *cobra.Command) []bibmerge.Option {
	var opts []bibmerge.Option
	if cmd.Flags().Changed("key") {
		opts = append(opts, bibmerge.WithSelectors(f.Selectors...))
	}
	if cmd.Flags().Changed("workers") {
		opts = append(opts, bibmerge.WithWorkers(f.Workers))
	}
	return opts
}

// ReportFlags holds the collision report flags.
type ReportFlags struct {
	Report string
	Strict bool
}

// AddReportFlags adds --report and --strict to a command.
func AddReportFlags(cmd *cobra.Command) *ReportFlags {
	flags := &ReportFlags{}

	cmd.Flags().StringVar(&flags.Report, "report", "",
		"Write collision reports to FILE (.json or .yaml)")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false,
		"Fail when a dataset has non-unique keys")

	return flags
}

// Options returns client options for the flags the user set explicitly.
func (f *ReportFlags) Options(cmd *cobra.Command) []bibmerge.Option {
	if cmd.Flags().Changed("strict") {
		return []bibmerge.Option{bibmerge.WithStrict(f.Strict)}
	}
	return nil
}

// WriteReport writes reports to --report when it is set.
func (f *ReportFlags) WriteReport(reports []*collisions.Report) error {
	if f.Report == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := output.FormatCollisions(&buf, reports, output.ReportFormat(f.Report)); err != nil {
		return err
	}
	if err := os.WriteFile(f.Report, buf.Bytes(), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", f.Report, err)
	}
	return nil
}
