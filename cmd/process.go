// =============================================================================
// txconv - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every supported
// file in the input directory to one target format.
//
// COMMAND USAGE:
//   txconv process --to F [flags]
//
// FLAGS:
//   --to          : Target format (csv, json, xml or xlsx)
//   --dry-run     : Parse every file without writing or archiving anything
//
// PROCESSING PIPELINE:
//   1. Discover csv, json, xml and xlsx files in the input directory
//   2. For each file, in name order:
//      a. Detect the source format from the extension
//      b. Convert it into the output directory (temporary file + rename)
//      c. Archive the input and a copy of the output
//   3. Write the error log (if any file failed) and the summary report
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/txconv/internal/converter"
	"github.com/ginjaninja78/txconv/internal/csvparser"
	"github.com/ginjaninja78/txconv/internal/jsondoc"
	"github.com/ginjaninja78/txconv/internal/records"
	"github.com/ginjaninja78/txconv/internal/xmldoc"
	"github.com/ginjaninja78/txconv/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// processTo is the target format of every converted file.
var processTo converter.Format

// dryRun parses the inputs without writing output files.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every file in the input directory",
	Long: `The process command scans the input directory for csv, json, xml and xlsx
files and converts each of them to the target format, one file at a time.

On successful conversion:
  - The converted file is placed in the output directory
  - The original is moved to the input archive
  - A copy of the output is placed in the output archive

On error:
  - The original stays in the input directory
  - No output file is left behind
  - The error is recorded in an error log in the output directory
  - Processing continues with the next file unless continue_on_error is false

A summary report is written to the output directory at the end of every run.
The command exits with a non-zero status if any file failed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().Var(&processTo, "to", "Target format: csv, json, xml or xlsx")
	processCmd.MarkFlagRequired("to")

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Parse every file without writing or archiving anything",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the batch conversion.
func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()
	runID := uuid.New().String()
	out := cmd.OutOrStdout()
	log := appLogger.WithFields(logrus.Fields{"run_id": runID, "to": processTo})

	fm := utils.NewFileManager(
		appConfig.InputDir,
		appConfig.OutputDir,
		appConfig.InputArchiveDir,
		appConfig.OutputArchiveDir,
	)
	fm.ArchiveOnSuccess = appConfig.ArchiveOnSuccess
	fm.UseTimestampSubdirs = appConfig.UseTimestampSubdirs

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	var extensions []string
	for _, format := range converter.Formats() {
		extensions = append(extensions, format.Extension())
	}

	inputFiles, err := fm.DiscoverInputFiles(extensions)
	if err != nil {
		return err
	}

	if len(inputFiles) == 0 {
		log.WithField("input_dir", fm.InputDir).Info("No input files found")
		fmt.Fprintln(out, "No input files found in the input directory.")
		return nil
	}

	log.WithField("files", len(inputFiles)).Info("Processing input directory")

	// =========================================================================
	// STEP 2: CONVERT FILES
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:        runID,
		StartTime:    startTime,
		TargetFormat: processTo.String(),
		TotalFiles:   len(inputFiles),
	}
	var errorEntries []utils.ErrorLogEntry

	for _, file := range inputFiles {
		var info utils.ProcessedFileInfo
		var descriptionsDropped int
		var err error

		if dryRun {
			info, err = checkFile(file)
		} else {
			info, descriptionsDropped, err = processFile(fm, file, log)
		}

		if err != nil {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    file,
				ErrorMessage: err.Error(),
			})
			errorEntries = append(errorEntries, newErrorLogEntry(file, err))

			log.WithField("input", file).WithError(err).Error("Failed to process file")
			fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(file), err)

			if !appConfig.ContinueOnError {
				break
			}
			continue
		}

		summary.SuccessfulFiles++
		summary.TotalRecords += info.Records
		summary.DescriptionsDropped += descriptionsDropped
		summary.ProcessedFiles = append(summary.ProcessedFiles, info)

		if dryRun {
			fmt.Fprintf(out, "  ✓ %s (%d records)\n", filepath.Base(file), info.Records)
		} else {
			fmt.Fprintf(out, "  ✓ %s -> %s\n", filepath.Base(file), filepath.Base(info.OutputFile))
		}
	}

	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 3: WRITE REPORTS
	// =========================================================================

	if !dryRun {
		errorLog, err := fm.WriteErrorLog(runID, errorEntries)
		if err != nil {
			return err
		}
		if errorLog != "" {
			log.WithField("path", errorLog).Info("Wrote error log")
		}

		summaryLog, err := fm.WriteSummaryLog(summary)
		if err != nil {
			return err
		}
		log.WithField("path", summaryLog).Debug("Wrote summary")
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Records:         %d\n", summary.TotalRecords)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	log.WithFields(logrus.Fields{
		"successful": summary.SuccessfulFiles,
		"failed":     summary.FailedFiles,
		"records":    summary.TotalRecords,
	}).Info("Processing complete")

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// processFile converts one input file into the output directory and archives
// it.
//
// RETURNS:
//   - Information for the summary report.
//   - The number of descriptions dropped by the conversion.
//   - The conversion error, if any. Archival failures are logged, not returned,
//     because the output has already been written.
func processFile(fm *utils.FileManager, file string, log logrus.FieldLogger) (utils.ProcessedFileInfo, int, error) {
	info := utils.ProcessedFileInfo{InputFile: file}

	from, err := converter.DetectFormat(file)
	if err != nil {
		return info, 0, err
	}

	outputName := fm.GenerateOutputFileName(appConfig.OutputNameFormat, file, processTo.Extension())
	outputPath := filepath.Join(fm.OutputDir, outputName)

	result := conv.ConvertFile(file, outputPath, from, processTo)
	if !result.Success {
		return info, 0, result.Error
	}

	info.OutputFile = result.OutputFile
	info.Records = result.Stats.Records
	info.ProcessTime = result.Stats.ProcessingTime

	fileLog := log.WithFields(logrus.Fields{"input": file, "records": info.Records})

	archived, err := fm.ArchiveInputFile(file)
	if err != nil {
		fileLog.WithError(err).Warn("Failed to archive input file")
	} else if archived != file {
		info.ArchivePath = archived
	}

	if _, err := fm.ArchiveOutputFile(result.OutputFile); err != nil {
		fileLog.WithError(err).Warn("Failed to archive output file")
	}

	fileLog.WithField("output", result.OutputFile).Info("Converted file")
	return info, result.Stats.DescriptionsDropped, nil
}

// checkFile parses one input file without writing anything.
func checkFile(file string) (utils.ProcessedFileInfo, error) {
	info := utils.ProcessedFileInfo{InputFile: file}
	start := time.Now()

	from, err := converter.DetectFormat(file)
	if err != nil {
		return info, err
	}

	input, err := os.Open(file)
	if err != nil {
		return info, fmt.Errorf("failed to open input: %w", err)
	}
	defer input.Close()

	set, err := conv.Parse(input, from)
	if err != nil {
		return info, fmt.Errorf("failed to parse %s input: %w", from, err)
	}

	info.Records = set.Len()
	info.ProcessTime = time.Since(start)
	return info, nil
}

// newErrorLogEntry builds an error log entry, extracting the position and
// classification of the failure where the codec reports one.
func newErrorLogEntry(file string, err error) utils.ErrorLogEntry {
	entry := utils.ErrorLogEntry{
		Timestamp:    time.Now(),
		FileName:     filepath.Base(file),
		ErrorType:    "conversion",
		ErrorMessage: err.Error(),
	}

	var parseErr *csvparser.ParseError
	var jsonMissing *jsondoc.MissingFieldError
	var xmlMissing *xmldoc.MissingFieldError
	var xmlSyntax *xml.SyntaxError
	var jsonSyntax *json.SyntaxError
	var validationErr *records.ValidationError
	var pathErr *fs.PathError

	switch {
	case errors.As(err, &parseErr):
		entry.ErrorType = parseErr.Kind.String()
		entry.LineNumber = parseErr.Line
		entry.FieldName = parseErr.Field
	case errors.As(err, &jsonMissing):
		entry.ErrorType = "missing_field"
		entry.FieldName = jsonMissing.Field
	case errors.As(err, &xmlMissing):
		entry.ErrorType = "missing_field"
		entry.FieldName = xmlMissing.Field
	case errors.As(err, &xmlSyntax):
		entry.ErrorType = "invalid_format"
		entry.LineNumber = xmlSyntax.Line
	case errors.As(err, &jsonSyntax),
		errors.Is(err, jsondoc.ErrNotArray),
		errors.Is(err, jsondoc.ErrTrailingData),
		errors.Is(err, xmldoc.ErrNoRoot),
		errors.Is(err, xmldoc.ErrUnexpectedElement):
		entry.ErrorType = "invalid_format"
	case errors.As(err, &validationErr):
		entry.ErrorType = "validation"
	case errors.As(err, &pathErr):
		entry.ErrorType = "io"
	}

	return entry
}
