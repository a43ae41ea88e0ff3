// =============================================================================
// txconv - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which converts a single record set
// from one format to another.
//
// COMMAND USAGE:
//   txconv convert [-i FILE] [-o FILE] [--in-format F] [--out-format F]
//
// FLAGS:
//   -i, --input       : Input file (stdin when omitted)
//   -o, --output      : Output file (stdout when omitted)
//   --in-format       : Input format; detected from the input extension
//                       when omitted
//   --out-format      : Output format; same as the input format when omitted
//
// FORMATS:
//   csv, json, xml, xlsx
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/txconv/internal/converter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	inputPath  string
	outputPath string
	inFormat   converter.Format
	outFormat  converter.Format
)

// ErrInputRequired is returned when no input file is given and stdin is a
// terminal.
var ErrInputRequired = errors.New("no input: pass --input or pipe data to stdin")

// ErrInputFormatUndefined is returned when the input format is neither given
// nor detectable from the input file name.
var ErrInputFormatUndefined = errors.New("cannot determine input format: pass --in-format")

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a record set between formats",
	Long: `The convert command reads one record set and writes it in another format.

The input is read from --input or stdin, the output is written to --output
or stdout. An existing output file is replaced only after the conversion
succeeds.

Converting CSV or XLSX to JSON or XML drops transaction descriptions, which
those formats do not carry. A warning reports how many were dropped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the convert command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input file (stdin when omitted)")
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (stdout when omitted)")
	convertCmd.Flags().Var(&inFormat, "in-format", "Input format: csv, json, xml or xlsx")
	convertCmd.Flags().Var(&outFormat, "out-format", "Output format: csv, json, xml or xlsx")
}

// =============================================================================
// MAIN CONVERT FUNCTION
// =============================================================================

func runConvert(cmd *cobra.Command) error {
	from, err := resolveInputFormat(inputPath, inFormat)
	if err != nil {
		return err
	}
	to := outFormat
	if to == 0 {
		to = from
	}

	log := appLogger.WithFields(logrus.Fields{"input": displayPath(inputPath), "from": from, "to": to})

	// Both ends are files: convert through a temporary file so a failure
	// leaves the previous output untouched.
	if inputPath != "" && outputPath != "" {
		result := conv.ConvertFile(inputPath, outputPath, from, to)
		if !result.Success {
			return result.Error
		}
		log.WithField("records", result.Stats.Records).Info("Conversion complete")
		return nil
	}

	input, closeInput, err := openInput(cmd, inputPath)
	if err != nil {
		return err
	}
	defer closeInput()

	var output io.Writer = cmd.OutOrStdout()
	var file *os.File
	if outputPath != "" {
		file, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer file.Close()
		output = file
	}

	stats, err := conv.Convert(input, output, from, to)
	if err != nil {
		return err
	}

	if file != nil {
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	log.WithField("records", stats.Records).Info("Conversion complete")
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resolveInputFormat returns the flag value if set, else the format named by
// the extension of path.
func resolveInputFormat(path string, flag converter.Format) (converter.Format, error) {
	if flag != 0 {
		return flag, nil
	}
	if path == "" {
		return 0, ErrInputFormatUndefined
	}
	format, err := converter.DetectFormat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInputFormatUndefined, err)
	}
	return format, nil
}

// openInput opens path, or returns the command's stdin when path is empty.
//
// RETURNS:
//   - The reader.
//   - A function that closes it.
//   - ErrInputRequired if stdin is an interactive terminal.
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" {
		in := cmd.InOrStdin()
		if isTerminal(in) {
			return nil, nil, ErrInputRequired
		}
		return in, func() {}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return file, func() { file.Close() }, nil
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func displayPath(path string) string {
	if path == "" {
		return "-"
	}
	return path
}
