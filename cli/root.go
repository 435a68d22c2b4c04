package cli

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"vincit.fi/image-metadata/common/logger"
	"vincit.fi/image-metadata/config"
)

type rootOptions struct {
	configPath string
	inputDir   string
	outputDir  string
	tempDir    string
	logLevel   string
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	options := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "imgmeta",
		Short: "Load and save images together with their metadata",
		Long: `imgmeta loads images into float tensors along with the text metadata
stored in the file, and saves tensors back as PNG files with the metadata
written as text chunks.

Files are numbered <prefix>_<counter>_.png where the counter continues
from the highest number already in the output folder.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.configPath, "config", "c", config.ConfigFileName, "Path to the config file")
	flags.StringVar(&options.inputDir, "input-dir", "", "Input directory")
	flags.StringVar(&options.outputDir, "output-dir", "", "Output directory")
	flags.StringVar(&options.tempDir, "temp-dir", "", "Temp directory")
	flags.StringVar(&options.logLevel, "log-level", "", "Log level: error, warn, info, debug or trace")

	rootCmd.AddCommand(
		newInputsCommand(options),
		newLoadCommand(options),
		newCopyCommand(options),
		newHistoryCommand(options),
	)
	return rootCmd
}

// resolveConfig combines the config file, environment and flags in that
// order and initializes logging.
func resolveConfig(cmd *cobra.Command, options *rootOptions) (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(options.configPath)
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) || cmd.Flags().Changed("config") {
			return nil, err
		}
	}
	if err := cfg.ApplyEnvironment(os.LookupEnv); err != nil {
		return nil, err
	}

	overrides := []struct {
		flag   string
		value  string
		target *string
	}{
		{"input-dir", options.inputDir, &cfg.InputDir},
		{"output-dir", options.outputDir, &cfg.OutputDir},
		{"temp-dir", options.tempDir, &cfg.TempDir},
		{"log-level", options.logLevel, &cfg.LogLevel},
	}
	for _, override := range overrides {
		if cmd.Flags().Changed(override.flag) {
			*override.target = override.value
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.InitializeWithWriters(logger.StringToLogLevel(cfg.LogLevel), cmd.ErrOrStderr(), cmd.ErrOrStderr())
	return cfg, nil
}
