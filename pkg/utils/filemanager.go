// =============================================================================
// txconv - File Manager Utility
// =============================================================================
//
// This module provides the file handling behind batch processing:
//   - Directory management
//   - Input discovery by extension
//   - Archival of processed inputs and converted outputs
//   - Output file naming
//   - Error log and summary generation
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to input_archive after successful conversion
//   - Output files are copied to output_archive and stay in the output directory
//   - Failed files remain in their original location
//   - An existing archive entry is never overwritten; the new file gets a
//     timestamp suffix instead
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	timestampLayout = "20060102_150405"
	dateLayout      = "20060102"
	displayLayout   = "2006-01-02 15:04:05"
	separator       = "================================================================================\n"
	subSeparator    = "--------------------------------------------------------------------------------\n"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the process command.
type FileManager struct {
	// InputDir is scanned for files to convert.
	InputDir string

	// OutputDir receives converted files, error logs and summaries.
	OutputDir string

	// InputArchiveDir receives inputs after successful conversion.
	InputArchiveDir string

	// OutputArchiveDir receives copies of converted outputs.
	OutputArchiveDir string

	// UseTimestampSubdirs files archives under a YYYY-MM-DD subdirectory.
	// Example: input_archive/2024-01-15/file.csv
	UseTimestampSubdirs bool

	// ArchiveOnSuccess enables archival. When false the Archive* methods
	// leave files where they are.
	ArchiveOnSuccess bool

	// now is the clock; tests replace it.
	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		ArchiveOnSuccess: true,
		now:              time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{
		fm.InputDir,
		fm.OutputDir,
	}
	if fm.ArchiveOnSuccess {
		dirs = append(dirs, fm.InputArchiveDir, fm.OutputArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the regular files of the input directory whose
// extension is one of extensions (case-insensitive, with the dot). Hidden
// files are skipped. The result is sorted by name.
func (fm *FileManager) DiscoverInputFiles(extensions []string) ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		if wanted[strings.ToLower(filepath.Ext(name))] {
			files = append(files, filepath.Join(fm.InputDir, name))
		}
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the input archive directory.
//
// RETURNS:
//   - The path to the archived file (filePath itself when archival is off).
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath, err := fm.prepareArchivePath(fm.InputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	// Move the file.
	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies an output file to the output archive directory.
//
// NOTE: Output files are copied, not moved, so they remain in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath, err := fm.prepareArchivePath(fm.OutputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// prepareArchivePath picks a free path for filePath under archiveDir and
// creates its directory.
func (fm *FileManager) prepareArchivePath(archiveDir, filePath string) (string, error) {
	now := fm.now()
	dir := archiveDir
	if fm.UseTimestampSubdirs {
		dir = filepath.Join(archiveDir, now.Format("2006-01-02"))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := filepath.Base(filePath)
	archivePath := filepath.Join(dir, name)
	if _, err := os.Stat(archivePath); errors.Is(err, os.ErrNotExist) {
		return archivePath, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, now.Format(timestampLayout), ext)), nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates the output file name for an input file.
//
// PARAMETERS:
//   - format: The name pattern, without extension.
//             Placeholders:
//               {original}  - Input file name without extension
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//   - inputPath: The input file.
//   - extension: The extension of the target format, with the dot.
//
// EXAMPLE:
//   format:    "{original}_{date}"
//   inputPath: "input/january.csv"
//   extension: ".json"
//   output:    "january_20240115.json"
func (fm *FileManager) GenerateOutputFileName(format, inputPath, extension string) string {
	now := fm.now()
	original := filepath.Base(inputPath)
	original = strings.TrimSuffix(original, filepath.Ext(original))

	replacer := strings.NewReplacer(
		"{original}", original,
		"{uuid}", uuid.NewString(),
		"{timestamp}", now.Format(timestampLayout),
		"{date}", now.Format(dateLayout),
	)
	name := replacer.Replace(format)

	// Path separators would escape the output directory.
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)

	if !strings.EqualFold(filepath.Ext(name), extension) {
		name += extension
	}
	return name
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single failed file.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	LineNumber   int
	FieldName    string
}

// WriteErrorLog writes error entries to error_log_<timestamp>.txt in the
// output directory. Nothing is written when entries is empty.
//
// RETURNS:
//   - The path to the error log file, empty when nothing was written.
//   - An error if writing fails.
func (fm *FileManager) WriteErrorLog(runID string, entries []ErrorLogEntry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := fm.now()
	logPath := filepath.Join(fm.OutputDir, fmt.Sprintf("error_log_%s.txt", now.Format(timestampLayout)))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "txconv - Error Log\n"+
		"Run ID: %s\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		separator+"\n",
		runID, now.Format(displayLayout), len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:  %s\n"+
			"  File:       %s\n"+
			"  Error Type: %s\n"+
			"  Message:    %s\n",
			i+1,
			entry.Timestamp.Format(displayLayout),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.LineNumber > 0 {
			fmt.Fprintf(writer, "  Line:       %d\n", entry.LineNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:      %s\n", entry.FieldName)
		}
		writer.WriteString("\n")
	}

	writer.WriteString(separator + "End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID               string
	StartTime           time.Time
	EndTime             time.Time
	TargetFormat        string
	TotalFiles          int
	SuccessfulFiles     int
	FailedFiles         int
	TotalRecords        int
	DescriptionsDropped int
	ProcessedFiles      []ProcessedFileInfo
	FailedFilesList     []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully converted file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	ArchivePath string
	Records     int
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes processing_summary_<timestamp>.txt to the output
// directory.
func (fm *FileManager) WriteSummaryLog(summary ProcessingSummary) (string, error) {
	summaryPath := filepath.Join(fm.OutputDir,
		fmt.Sprintf("processing_summary_%s.txt", fm.now().Format(timestampLayout)))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	if err := writeSummary(file, summary); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

func writeSummary(w io.Writer, summary ProcessingSummary) error {
	writer := bufio.NewWriter(w)

	fmt.Fprintf(writer, "txconv - Processing Summary\n"+
		separator+"\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Target Format:  %s\n\n"+
		"Statistics:\n"+
		"  Total Files:          %d\n"+
		"  Successful:           %d\n"+
		"  Failed:               %d\n"+
		"  Total Records:        %d\n"+
		"  Descriptions Dropped: %d\n\n",
		summary.RunID,
		summary.StartTime.Format(displayLayout),
		summary.EndTime.Format(displayLayout),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TargetFormat,
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRecords,
		summary.DescriptionsDropped)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n" + subSeparator)
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Output:       %s\n", pf.OutputFile)
			if pf.ArchivePath != "" {
				fmt.Fprintf(writer, "  Archived To:  %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(writer, "  Records:      %d\n", pf.Records)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n" + subSeparator)
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString(separator + "End of Summary\n")
	return writer.Flush()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
