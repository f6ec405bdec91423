// Package union implements the union command.
package union

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/bibmerge/cmd/application"
	"github.com/agentstation/bibmerge/internal/cmd/cmdutil"
)

// NewCommand creates the union command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var ioFlags *cmdutil.IOFlags

	cmd := &cobra.Command{
		Use:     "union FILE...",
		GroupID: "core",
		Short:   "Combine bibliographies by record ID",
		Args:    cobra.MinimumNArgs(1),
		Long: `Union combines bibliographies on their IDs (BibTeX cite keys) without
deriving a key.

When an ID occurs in several files the fields are combined and values
from the leftmost file win. Each record keeps the position of its first
occurrence. Records without an ID are always kept.`,
		Example: `  bibmerge union a.bib b.bib -o all.bib
  bibmerge union msn.yaml extra.yaml -t json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.Logger()

			in, out, err := ioFlags.Formats(args)
			if err != nil {
				return err
			}
			bm, err := app.Bibmerge()
			if err != nil {
				return err
			}

			datasets, err := cmdutil.LoadAll(bm, args, in)
			if err != nil {
				return err
			}
			result := bm.Union(datasets...)

			logger.Info().
				Int("files", len(datasets)).
				Int("records", result.Len()).
				Msg("Combined bibliographies")
			return ioFlags.Write(cmd, bm, result, out)
		},
	}

	ioFlags = cmdutil.AddIOFlags(cmd)

	return cmd
}
