// =============================================================================
// txconv - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which parses a record set and
// reports whether it is valid without writing any output.
//
// COMMAND USAGE:
//   txconv validate [-i FILE] [--in-format F]
//
// OUTPUT:
//   jan.csv: 2 valid record(s) (csv)
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/txconv/internal/converter"
)

var (
	validateInput  string
	validateFormat converter.Format
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that a record set parses",
	Long: `The validate command parses the input with the same rules as convert and
reports the number of records. The first invalid line or record is reported
with its position and exits with a non-zero status.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Input file (stdin when omitted)")
	validateCmd.Flags().Var(&validateFormat, "in-format", "Input format: csv, json, xml or xlsx")
}

func runValidate(cmd *cobra.Command) error {
	format, err := resolveInputFormat(validateInput, validateFormat)
	if err != nil {
		return err
	}

	input, closeInput, err := openInput(cmd, validateInput)
	if err != nil {
		return err
	}
	defer closeInput()

	set, err := conv.Parse(input, format)
	if err != nil {
		return fmt.Errorf("invalid %s input: %w", format, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d valid record(s) (%s)\n", displayPath(validateInput), set.Len(), format)
	return nil
}
