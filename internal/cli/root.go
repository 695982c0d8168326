// Package cli provides the command-line interface for huesort.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/huesort/huesort/internal/config"
	"github.com/huesort/huesort/internal/version"
)

var (
	// Global flags
	flagConfig  string
	flagVerbose bool
	flagQuiet   bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "huesort",
		Short: "Classify product photos into colour categories",
		Long: `Huesort extracts the dominant colour from product photographs and maps
it to a configured colour category, for automated classification of
catalogue items.

Images are fetched, background pixels are filtered out, the dominant
colour is found by k-means clustering, and the closest category is
picked with a perceptually-adjusted distance. Items that cannot be
classified report N/A instead of failing the run.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	registerGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(categoriesCmd)
}

// registerGlobalFlags defines the flags shared by every command.
func registerGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&flagConfig, "config", "c", "settings.yaml", "path to the settings file")
	fs.BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	fs.BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-error output")
}

// newLogger builds the application logger from the verbosity flags.
func newLogger() hclog.Logger {
	level := hclog.Info
	if flagQuiet {
		level = hclog.Error
	}
	if flagVerbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "huesort",
		Level:  level,
		Output: os.Stderr,
	})
}

// loadConfig reads the settings file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}
