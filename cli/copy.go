package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"vincit.fi/image-metadata/api/apitype"
	"vincit.fi/image-metadata/backend/imagesaver"
	"vincit.fi/image-metadata/common/logger"
)

type copyOptions struct {
	prefix       string
	subdirectory string
	metadataFile string
	assignments  []string
	format       string
}

func newCopyCommand(options *rootOptions) *cobra.Command {
	copyOpts := &copyOptions{}
	cmd := &cobra.Command{
		Use:   "copy <image>",
		Short: "Load an image and save it to the output directory with its metadata",
		Long: `Load an image with its metadata and save every frame as a PNG file in
the output directory.

The prefix may contain %date:yyyy-MM-dd%, %time:HH-mm-ss% and %batch_num%.
The subdirectory may contain %date:yyyy-MM-dd%.

Metadata read from the image can be extended with a JSON or YAML mapping
given with --metadata and with --set key=value pairs, applied in that order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(cmd, options, copyOpts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&copyOpts.prefix, "prefix", "p", imagesaver.DefaultFilenamePrefix, "Filename prefix")
	flags.StringVarP(&copyOpts.subdirectory, "subdir", "s", "", "Subdirectory under the output directory")
	flags.StringVarP(&copyOpts.metadataFile, "metadata", "m", "", "JSON or YAML file with metadata to add")
	flags.StringArrayVar(&copyOpts.assignments, "set", nil, "Set a metadata value (key=value), repeatable")
	flags.StringVarP(&copyOpts.format, "format", "f", formatJson, "Output format: json or yaml")
	return cmd
}

func runCopy(cmd *cobra.Command, options *rootOptions, copyOpts *copyOptions, name string) error {
	cfg, err := resolveConfig(cmd, options)
	if err != nil {
		return err
	}
	application, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer application.close()

	tensor, metadata, err := application.loader.LoadImageWithMetadata(name)
	if err != nil {
		return err
	}

	if copyOpts.metadataFile != "" {
		fileMetadata, err := readMetadataFile(copyOpts.metadataFile)
		if err != nil {
			return err
		}
		for key, value := range fileMetadata {
			metadata[key] = value
		}
	}
	assignments, err := parseAssignments(copyOpts.assignments)
	if err != nil {
		return err
	}
	for key, value := range assignments {
		metadata[key] = value
	}

	results, err := application.saver.SaveImages(tensor, metadata, copyOpts.prefix, copyOpts.subdirectory)
	if err != nil {
		if len(results) > 0 {
			logger.Warn.Printf("%d image(s) were saved before the failure", len(results))
		}
		return err
	}

	db, store, err := application.openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer db.Close()
		if err := store.AddSavedImages(application.paths.OutputDirectory(), results, metadata); err != nil {
			return fmt.Errorf("recording history: %w", err)
		}
	}

	return writeOutput(cmd.OutOrStdout(), copyOpts.format, results)
}

// readMetadataFile reads a mapping from a YAML file. JSON files parse the
// same way.
func readMetadataFile(path string) (apitype.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	metadata := apitype.NewMetadata()
	if err := yaml.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("parsing metadata file '%s': %w", path, err)
	}
	return metadata, nil
}

func parseAssignments(assignments []string) (map[string]string, error) {
	values := map[string]string{}
	for _, assignment := range assignments {
		key, value, found := strings.Cut(assignment, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid metadata assignment '%s', expected key=value", assignment)
		}
		values[key] = value
	}
	return values, nil
}
