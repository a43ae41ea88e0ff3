// =============================================================================
// txconv - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file.
//
// CONFIGURATION FILE:
//   A single, optional config.yaml. Every key has a default, so the converter
//   runs without any file at all. Keys left out of the file keep their
//   defaults; keys set to an empty string are reset to their defaults.
//
// EXAMPLE:
//   log_level: debug
//   input_dir: ./inbox
//   csv:
//     encoding: windows-1251
//   xml:
//     root_element: ledger
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/txconv/internal/charset"
)

// MaxSheetNameLength is the limit imposed by the XLSX format.
const MaxSheetNameLength = 31

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "trace", "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log line layout.
	// Valid values: "text", "json"
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// LogFile is an optional file that receives a copy of every log line.
	// Default: "" (stderr only)
	LogFile string `yaml:"log_file"`

	// =========================================================================
	// DIRECTORY SETTINGS (process command)
	// =========================================================================

	// InputDir is scanned for files to convert.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the converted files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after successful conversion.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of each converted file.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// ArchiveOnSuccess moves converted inputs into InputArchiveDir.
	// Default: true
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// UseTimestampSubdirs files archives under a YYYY-MM-DD subdirectory.
	// Default: false
	UseTimestampSubdirs bool `yaml:"use_timestamp_subdirs"`

	// ContinueOnError keeps processing the remaining files after a failure.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`

	// OutputNameFormat defines the output file name, without extension.
	// Placeholders:
	//   {original}  - Input file name without extension
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	// Default: "{original}_{uuid}"
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// FORMAT SETTINGS
	// =========================================================================

	CSV  CSVSettings  `yaml:"csv"`
	JSON JSONSettings `yaml:"json"`
	XML  XMLSettings  `yaml:"xml"`
	XLSX XLSXSettings `yaml:"xlsx"`
}

// CSVSettings configures the delimited text format.
type CSVSettings struct {
	// Encoding is the IANA name of the file character set.
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// JSONSettings configures the JSON document format.
type JSONSettings struct {
	// Indent is used for one level of nesting.
	// Default: "  "
	Indent string `yaml:"indent"`
}

// XMLSettings configures the XML document format.
type XMLSettings struct {
	Indent             string `yaml:"indent"`
	IncludeDeclaration bool   `yaml:"include_declaration"`
	RootElement        string `yaml:"root_element"`
	RecordElement      string `yaml:"record_element"`
}

// XLSXSettings configures the spreadsheet format.
type XLSXSettings struct {
	// SheetName is written on output and preferred on input.
	// Default: "Transactions"
	SheetName string `yaml:"sheet_name"`
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is given.
func Default() *Config {
	config := &Config{
		ArchiveOnSuccess: true,
		ContinueOnError:  true,
		XML: XMLSettings{
			IncludeDeclaration: true,
		},
	}
	applyDefaults(config)
	return config
}

// Load reads the configuration file at configPath.
//
// PARAMETERS:
//   - configPath: The path to the YAML file. An empty path returns Default().
//
// RETURNS:
//   - A pointer to the validated Config.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return Default(), nil
	}

	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Keys present but empty fall back to their defaults.
	applyDefaults(config)

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyDefaults sets default values for any empty string option.
func applyDefaults(config *Config) {
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}_{uuid}"
	}
	if config.CSV.Encoding == "" {
		config.CSV.Encoding = "UTF-8"
	}
	if config.JSON.Indent == "" {
		config.JSON.Indent = "  "
	}
	if config.XML.Indent == "" {
		config.XML.Indent = "  "
	}
	if config.XML.RootElement == "" {
		config.XML.RootElement = "transactions"
	}
	if config.XML.RecordElement == "" {
		config.XML.RecordElement = "transaction"
	}
	if config.XLSX.SheetName == "" {
		config.XLSX.SheetName = "Transactions"
	}
}

// validate checks option values that defaults cannot repair.
func validate(config *Config) error {
	var errs []error

	switch strings.ToLower(config.LogLevel) {
	case "panic", "fatal", "error", "warn", "warning", "info", "debug", "trace":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", config.LogLevel))
	}

	switch config.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", config.LogFormat))
	}

	if _, err := charset.Lookup(config.CSV.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("csv.encoding: %w", err))
	}

	elements := []struct{ key, name string }{
		{"xml.root_element", config.XML.RootElement},
		{"xml.record_element", config.XML.RecordElement},
	}
	for _, e := range elements {
		if strings.ContainsAny(e.name, " \t\n<>&\"'/") {
			errs = append(errs, fmt.Errorf("%s is not a valid element name: %q", e.key, e.name))
		}
	}

	if len(config.XLSX.SheetName) > MaxSheetNameLength {
		errs = append(errs, fmt.Errorf("xlsx.sheet_name is longer than %d characters", MaxSheetNameLength))
	}

	return errors.Join(errs...)
}
