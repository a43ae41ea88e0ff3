// =============================================================================
// txconv - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (txconv)
//   ├── convertCmd  (txconv convert)
//   ├── validateCmd (txconv validate)
//   ├── processCmd  (txconv process)
//   └── versionCmd  (txconv version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the configuration file named by --config (built-in defaults
//      when the flag is empty)
//   2. Sets up logging to stderr (debug level with --verbose)
//   3. Builds the converter shared by the subcommands
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/txconv/internal/config"
	"github.com/ginjaninja78/txconv/internal/converter"
	"github.com/ginjaninja78/txconv/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// Empty means built-in defaults.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// Set up by initApp for the running subcommand.
var (
	appConfig *config.Config
	appLogger *logging.AppLogger
	conv      *converter.Converter
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "txconv",
	Short: "txconv - Convert financial transaction records between formats",
	Long: `txconv converts financial transaction records between a quoted CSV
layout, JSON documents, XML documents and XLSX workbooks.

Key Features:
  - Strict parsing with line and field numbers in every error
  - Streaming conversion between files, stdin and stdout
  - Batch processing of an input directory with archival and reports
  - Configurable character set, indentation and element names

Example Usage:
  txconv convert -i jan.csv -o jan.json     # Convert one file
  cat jan.csv | txconv convert --in-format csv --out-format xml
  txconv validate -i jan.xlsx               # Check a file without converting
  txconv process --to json                  # Convert the whole input directory`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd)
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeApp()
	},

	// If no subcommand is provided, print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		closeApp()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the YAML configuration file (built-in defaults when empty)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initApp loads the configuration and builds the logger and converter.
func initApp(cmd *cobra.Command) error {
	closeApp()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = logrus.DebugLevel.String()
	}

	logger, err := logging.New(logging.Config{
		Level:    level,
		Format:   cfg.LogFormat,
		FilePath: cfg.LogFile,
	}, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	appConfig = cfg
	appLogger = logger
	conv = converter.New(cfg, logger)

	if cfgFile != "" {
		logger.WithField("config", cfgFile).Debug("Loaded configuration")
	}
	return nil
}

// closeApp releases the log file, if any. It is safe to call twice.
func closeApp() {
	if appLogger != nil {
		appLogger.Close()
		appLogger = nil
	}
}
