// Package validate implements the validate command.
package validate

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/bibmerge/cmd/application"
	"github.com/agentstation/bibmerge/internal/cmd/cmdutil"
	"github.com/agentstation/bibmerge/internal/cmd/output"
	"github.com/agentstation/bibmerge/pkg/collisions"
	"github.com/agentstation/bibmerge/pkg/errors"
	"github.com/agentstation/bibmerge/pkg/formats"
	"github.com/agentstation/bibmerge/pkg/logging"
)

// NewCommand creates the validate command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		from        string
		keyFlags    *cmdutil.KeyFlags
		reportFlags *cmdutil.ReportFlags
	)

	cmd := &cobra.Command{
		Use:     "validate FILE...",
		GroupID: "core",
		Short:   "Report records that share a merge key",
		Args:    cobra.MinimumNArgs(1),
		Long: `Validate keys every FILE and lists each key shared by more than one
record, with every colliding record in file order.

Collisions are reported, not fixed: a merge still runs on a dataset with
collisions, but only the first record of a group can be matched by a
given partner. Pass --strict to exit non-zero when any collision is found.`,
		Example: `  bibmerge validate msn.yaml zbl.bib
  bibmerge validate -k normauthor -k year refs.bib --format wide
  bibmerge validate refs.bib --report collisions.yaml --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.Logger()
			ctx := logging.WithLogger(cmd.Context(), logger)

			var in formats.Format
			if from != "" {
				var err error
				if in, err = formats.Parse(from); err != nil {
					return err
				}
			}

			opts := append(keyFlags.Options(cmd), reportFlags.Options(cmd)...)
			bm, err := app.Bibmerge(opts...)
			if err != nil {
				return err
			}

			datasets, err := cmdutil.LoadAll(bm, args, in)
			if err != nil {
				return err
			}

			reports := make([]*collisions.Report, 0, len(datasets))
			var strictErr error
			for _, ds := range datasets {
				keyed, _, err := bm.Key(ctx, ds)
				if err != nil {
					return err
				}
				report, err := bm.Validate(keyed)
				if report != nil {
					reports = append(reports, report)
				}
				if err != nil {
					if !errors.IsNonUniqueKeys(err) {
						return err
					}
					if strictErr == nil {
						strictErr = err
					}
				}
				if !report.Empty() {
					logger.Warn().
						Str("dataset", report.Dataset).
						Int("collisions", report.Count()).
						Int("affected", report.Affected()).
						Msg("Dataset has non-unique keys")
				}
			}

			if err := reportFlags.WriteReport(reports); err != nil {
				return err
			}
			if err := output.FormatCollisions(cmd.OutOrStdout(), reports, app.OutputFormat()); err != nil {
				return err
			}
			return strictErr
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Input format: bibtex, json, yaml (default: from file extension)")
	keyFlags = cmdutil.AddKeyFlags(cmd)
	reportFlags = cmdutil.AddReportFlags(cmd)

	return cmd
}
