package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInputsCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inputs",
		Short: "List the images available in the input directory",
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

			files, err := application.loader.ListInputFiles()
			if err != nil {
				return err
			}
			for _, file := range files {
				fmt.Fprintln(cmd.OutOrStdout(), file)
			}
			return nil
		},
	}
}
