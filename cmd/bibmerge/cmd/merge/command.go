// Package merge implements the merge command.
package merge

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/bibmerge"
	"github.com/agentstation/bibmerge/cmd/application"
	"github.com/agentstation/bibmerge/internal/cmd/cmdutil"
	"github.com/agentstation/bibmerge/internal/cmd/output"
	"github.com/agentstation/bibmerge/pkg/logging"
	"github.com/agentstation/bibmerge/pkg/reconcile"
)

// Flags holds the merge-specific flags.
type Flags struct {
	Union   bool
	Left    bool
	KeepKey bool
	DelKey  bool
	Right   bool
	Stats   bool
}

// Options returns client options for the flags the user set explicitly.
func (f *Flags) Options(cmd *cobra.Command) []bibmerge.Option {
	var opts []bibmerge.Option
	switch {
	case f.Left:
		opts = append(opts, bibmerge.WithUnion(false))
	case cmd.Flags().Changed("union"):
		opts = append(opts, bibmerge.WithUnion(f.Union))
	}
	switch {
	case f.DelKey:
		opts = append(opts, bibmerge.WithKeepKey(false))
	case cmd.Flags().Changed("keep-key"):
		opts = append(opts, bibmerge.WithKeepKey(f.KeepKey))
	}
	if f.Right {
		opts = append(opts, bibmerge.WithDirection(reconcile.RightToLeft))
	}
	return opts
}

// NewCommand creates the merge command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		flags       = &Flags{}
		ioFlags     *cmdutil.IOFlags
		keyFlags    *cmdutil.KeyFlags
		reportFlags *cmdutil.ReportFlags
	)

	cmd := &cobra.Command{
		Use:     "merge FILE...",
		GroupID: "core",
		Short:   "Merge bibliographies on a derived key",
		Args:    cobra.MinimumNArgs(1),
		Long: `Merge joins bibliographies pairwise from left to right: the running result
is merged with the next FILE.

Each left record is paired with at most one right record sharing its key,
the earliest one not already taken. A paired record keeps every field of
both sides, with left values winning. Left records without a partner are
kept; right records without a partner are appended unless --left is set.

--right swaps the roles of each pair, so right values win and right order
is kept. Key collisions are logged and written to --report; --strict turns
them into an error.`,
		Example: `  bibmerge merge msn.yaml zbl.yaml -o merged.yaml
  bibmerge merge --left --keep-key msn.bib zbl.bib -t yaml
  bibmerge merge -k normauthor -k year -k normtitle a.bib b.bib c.bib -o all.bib
  bibmerge merge msn.yaml zbl.yaml -t json --report collisions.yaml --stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.Logger()
			ctx := logging.WithLogger(cmd.Context(), logger)

			in, out, err := ioFlags.Formats(args)
			if err != nil {
				return err
			}

			var opts []bibmerge.Option
			opts = append(opts, keyFlags.Options(cmd)...)
			opts = append(opts, reportFlags.Options(cmd)...)
			opts = append(opts, flags.Options(cmd)...)
			bm, err := app.Bibmerge(opts...)
			if err != nil {
				return err
			}

			datasets, err := cmdutil.LoadAll(bm, args, in)
			if err != nil {
				return err
			}

			outcome, mergeErr := bm.MergeAll(ctx, datasets...)
			if outcome != nil {
				if err := reportFlags.WriteReport(outcome.Collisions); err != nil {
					return err
				}
			}
			if mergeErr != nil {
				return mergeErr
			}

			logger.Info().Msg(outcome.Result.Summary())
			if flags.Stats {
				if err := output.FormatMergeStats(cmd.ErrOrStderr(), outcome.Result, app.OutputFormat()); err != nil {
					return err
				}
			}
			return ioFlags.Write(cmd, bm, outcome.Output, out)
		},
	}

	ioFlags = cmdutil.AddIOFlags(cmd)
	keyFlags = cmdutil.AddKeyFlags(cmd)
	reportFlags = cmdutil.AddReportFlags(cmd)

	cmd.Flags().BoolVar(&flags.Union, "union", true, "Append unmatched right records")
	cmd.Flags().BoolVar(&flags.Left, "left", false, "Only update the left bibliography (opposite of --union)")
	cmd.Flags().BoolVar(&flags.KeepKey, "keep-key", false, "Keep mergekey and normalized fields in the output")
	cmd.Flags().BoolVar(&flags.DelKey, "del-key", false, "Remove mergekey and normalized fields (opposite of --keep-key)")
	cmd.Flags().BoolVar(&flags.Right, "right", false, "Let the right file of each pair play the left role")
	cmd.Flags().BoolVar(&flags.Stats, "stats", false, "Print merge statistics of the last step to stderr")
	cmd.MarkFlagsMutuallyExclusive("union", "left")
	cmd.MarkFlagsMutuallyExclusive("keep-key", "del-key")

	return cmd
}
