package cli

import (
	"github.com/spf13/cobra"
	"vincit.fi/image-metadata/api/apitype"
)

type loadResult struct {
	Image    string            `json:"image" yaml:"image"`
	Shape    [4]int            `json:"shape" yaml:"shape"`
	Metadata apitype.Metadata  `json:"metadata" yaml:"metadata"`
	Exif     map[string]string `json:"exif,omitempty" yaml:"exif,omitempty"`
}

func newLoadCommand(options *rootOptions) *cobra.Command {
	var format string
	var withExif bool
	cmd := &cobra.Command{
		Use:   "load <image>",
		Short: "Load an image and print its shape and metadata",
		Long: `Load an image from the input directory and print the tensor shape
[frames, height, width, channels] with the metadata read from the file.

The image name may carry an [input], [output] or [temp] annotation.`,
		Args: cobra.ExactArgs(1),
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

			tensor, metadata, err := application.loader.LoadImageWithMetadata(args[0])
			if err != nil {
				return err
			}
			result := &loadResult{
				Image:    args[0],
				Shape:    tensor.Shape(),
				Metadata: metadata,
			}
			if withExif {
				if result.Exif, err = application.loader.LoadExifTags(args[0]); err != nil {
					return err
				}
			}
			return writeOutput(cmd.OutOrStdout(), format, result)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJson, "Output format: json or yaml")
	cmd.Flags().BoolVar(&withExif, "exif", false, "Include the EXIF tags of the image")
	return cmd
}
