package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNoHistory = errors.New("history_db is not configured")

func newHistoryCommand(options *rootOptions) *cobra.Command {
	var limit int
	var format string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the images saved by copy, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, options)
			if err != nil {
				return err
			}
			application, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer application.close()

			db, store, err := application.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errNoHistory
			}
			defer db.Close()

			entries, err := store.GetSavedImages(limit)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), format, entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries, 0 for all")
	cmd.Flags().StringVarP(&format, "format", "f", formatJson, "Output format: json or yaml")
	return cmd
}
