// Package makekey implements the make-key command.
package makekey

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/bibmerge/cmd/application"
	"github.com/agentstation/bibmerge/internal/cmd/cmdutil"
	"github.com/agentstation/bibmerge/internal/cmd/output"
	"github.com/agentstation/bibmerge/pkg/logging"
	"github.com/agentstation/bibmerge/pkg/reconcile"
)

// NewCommand creates the make-key command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		ioFlags  *cmdutil.IOFlags
		keyFlags *cmdutil.KeyFlags
		keepNorm bool
		stats    bool
	)

	cmd := &cobra.Command{
		Use:     "make-key FILE",
		GroupID: "core",
		Short:   "Add a merge key to every record",
		Args:    cobra.ExactArgs(1),
		Long: `Make-key derives a join key for every record of FILE and stores it in
the mergekey field.

Selectors are evaluated in the order given. A selector starting with
"norm" names a normalized field: normauthor is derived from author and
normtitle from title. Any other selector copies a raw field. A record
missing a field gets an empty key component.

Every selector starting with "norm" is reserved for normalizers, so a raw
field such as normalized_by cannot be used as a selector.`,
		Example: `  bibmerge make-key -k normauthor -k year -k normtitle msn.yaml -o msn-keyed.yaml
  bibmerge make-key -k ID refs.bib -t json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.Logger()
			ctx := logging.WithLogger(cmd.Context(), logger)

			in, out, err := ioFlags.Formats(args)
			if err != nil {
				return err
			}
			bm, err := app.Bibmerge(keyFlags.Options(cmd)...)
			if err != nil {
				return err
			}

			ds, err := bm.Load(args[0], in)
			if err != nil {
				return err
			}
			keyed, st, err := bm.Key(ctx, ds)
			if err != nil {
				return err
			}
			if !keepNorm {
				for _, rec := range keyed.Records {
					reconcile.StripNormalized(rec, keyed.Selectors)
				}
			}

			logger.Info().
				Str("dataset", keyed.Name).
				Strs("selectors", keyed.Selectors).
				Int("records", st.Records).
				Int("blank_keys", st.BlankKeys).
				Msg("Keyed dataset")

			if stats {
				if err := output.FormatKeyStats(cmd.ErrOrStderr(), keyed.Name, st, app.OutputFormat()); err != nil {
					return err
				}
			}
			return ioFlags.Write(cmd, bm, keyed, out)
		},
	}

	ioFlags = cmdutil.AddIOFlags(cmd)
	keyFlags = cmdutil.AddKeyFlags(cmd)
	cmd.Flags().BoolVar(&keepNorm, "keep-norm", false, "Keep the normalized fields next to mergekey")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print keying statistics to stderr")

	return cmd
}
