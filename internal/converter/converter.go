// =============================================================================
// txconv - Converter Module
// =============================================================================
//
// This module contains the conversion pipeline. It dispatches parsing and
// printing to the codec of each format and converts between record families.
//
// CONVERSION PIPELINE:
//   1. Parse the input with the codec of the source format
//   2. Convert the record set to the family of the target format
//   3. Print the record set with the codec of the target format
//
// FORMATS:
//   csv, xlsx  - delimited family, records.Transactions (with description)
//   json, xml  - document family, records.Documents (no description)
//
// A conversion is synchronous and owns its streams for the duration of the
// call. Converting from the delimited family to the document family drops
// descriptions; the count is reported in Stats.
//
// =============================================================================

package converter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/txconv/internal/charset"
	"github.com/ginjaninja78/txconv/internal/config"
	"github.com/ginjaninja78/txconv/internal/csvparser"
	"github.com/ginjaninja78/txconv/internal/csvwriter"
	"github.com/ginjaninja78/txconv/internal/jsondoc"
	"github.com/ginjaninja78/txconv/internal/records"
	"github.com/ginjaninja78/txconv/internal/spreadsheet"
	"github.com/ginjaninja78/txconv/internal/xmldoc"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single file.
type Result struct {
	// InputFile is the path to the file that was read.
	InputFile string

	// OutputFile is the path to the written file.
	// This is empty if the conversion failed.
	OutputFile string

	// From and To are the source and target formats.
	From Format
	To   Format

	// Success indicates whether the conversion was successful.
	Success bool

	// Error contains the error if the conversion failed.
	Error error

	// Stats contains conversion statistics.
	Stats Stats
}

// Stats contains statistics about one conversion.
type Stats struct {
	// Records is the number of records read and written.
	Records int

	// DescriptionsDropped counts non-empty descriptions lost when converting
	// to the document family.
	DescriptionsDropped int

	// ProcessingTime is the time taken by the conversion.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs conversions with one configuration.
type Converter struct {
	cfg *config.Config
	log logrus.FieldLogger
}

// New creates a Converter.
//
// PARAMETERS:
//   - cfg: The application configuration. Nil means config.Default().
//   - log: The logger. Nil discards log output.
func New(cfg *config.Config, log logrus.FieldLogger) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Converter{cfg: cfg, log: log}
}

// =============================================================================
// PARSE / PRINT DISPATCH
// =============================================================================

// Parse reads a whole record set of the given format from r.
//
// RETURNS:
//   - records.Transactions for the delimited family, records.Documents for
//     the document family.
//   - The codec error, unchanged, if the input is invalid.
func (c *Converter) Parse(r io.Reader, format Format) (records.Set, error) {
	switch format {
	case FormatCSV:
		decoded, err := charset.NewReader(r, c.cfg.CSV.Encoding)
		if err != nil {
			return nil, err
		}
		txs, err := csvparser.Parse(decoded)
		if err != nil {
			return nil, err
		}
		return txs, nil
	case FormatXLSX:
		txs, err := spreadsheet.Parse(r, c.cfg.XLSX.SheetName)
		if err != nil {
			return nil, err
		}
		return txs, nil
	case FormatJSON:
		docs, err := jsondoc.Parse(r)
		if err != nil {
			return nil, err
		}
		return docs, nil
	case FormatXML:
		docs, err := xmldoc.Parse(r, c.xmlOptions())
		if err != nil {
			return nil, err
		}
		return docs, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
}

// Print writes set to w in the given format, converting it to the format's
// family first.
func (c *Converter) Print(w io.Writer, set records.Set, format Format) error {
	switch format {
	case FormatCSV:
		encoded, err := charset.NewWriter(w, c.cfg.CSV.Encoding)
		if err != nil {
			return err
		}
		if err := csvwriter.Print(encoded, records.AsTransactions(set)); err != nil {
			encoded.Close()
			return err
		}
		return encoded.Close()
	case FormatXLSX:
		return spreadsheet.Print(w, records.AsTransactions(set), c.cfg.XLSX.SheetName)
	case FormatJSON:
		return jsondoc.Print(w, records.AsDocuments(set), c.cfg.JSON.Indent)
	case FormatXML:
		return xmldoc.Print(w, records.AsDocuments(set), c.xmlOptions())
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
}

// Convert returns set as the record family of format. It does not modify set.
func Convert(set records.Set, to Format) records.Set {
	switch to.Family() {
	case FamilyDelimited:
		return records.AsTransactions(set)
	case FamilyDocument:
		return records.AsDocuments(set)
	default:
		return set
	}
}

func (c *Converter) xmlOptions() xmldoc.Options {
	return xmldoc.Options{
		Indent:             c.cfg.XML.Indent,
		IncludeDeclaration: c.cfg.XML.IncludeDeclaration,
		RootElement:        c.cfg.XML.RootElement,
		RecordElement:      c.cfg.XML.RecordElement,
	}
}

// =============================================================================
// PIPELINE
// =============================================================================

// Convert reads r as from, and writes it to w as to.
//
// RETURNS:
//   - Stats for the conversion.
//   - An error wrapping the parse or print failure.
func (c *Converter) Convert(r io.Reader, w io.Writer, from, to Format) (Stats, error) {
	startTime := time.Now()
	log := c.log.WithFields(logrus.Fields{"from": from, "to": to})

	for _, f := range []Format{from, to} {
		if f.Family() == 0 {
			return Stats{}, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
		}
	}

	set, err := c.Parse(r, from)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to parse %s input: %w", from, err)
	}
	log.WithField("records", set.Len()).Debug("Parsed input")

	stats := Stats{Records: set.Len()}
	if txs, ok := set.(records.Transactions); ok && to.Family() == FamilyDocument {
		stats.DescriptionsDropped = countDescriptions(txs)
		if stats.DescriptionsDropped > 0 {
			log.WithField("descriptions", stats.DescriptionsDropped).
				Warn("Target format has no description field; descriptions are dropped")
		}
	}

	if err := c.Print(w, Convert(set, to), to); err != nil {
		return Stats{}, fmt.Errorf("failed to write %s output: %w", to, err)
	}

	stats.ProcessingTime = time.Since(startTime)
	log.WithFields(logrus.Fields{
		"records":  stats.Records,
		"duration": stats.ProcessingTime.String(),
	}).Debug("Conversion complete")

	return stats, nil
}

// ConvertFile converts the file at inputPath into outputPath.
//
// The output is written to a temporary file next to outputPath and renamed
// into place on success, so a failed conversion never leaves a partial file.
func (c *Converter) ConvertFile(inputPath, outputPath string, from, to Format) Result {
	result := Result{InputFile: inputPath, From: from, To: to}

	c.log.WithFields(logrus.Fields{"input": inputPath, "output": outputPath}).Info("Converting file")

	input, err := os.Open(inputPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to open input: %w", err)
		return result
	}
	defer input.Close()

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*")
	if err != nil {
		result.Error = fmt.Errorf("failed to create output: %w", err)
		return result
	}
	defer os.Remove(tmp.Name()) // No-op once renamed.

	stats, err := c.Convert(input, tmp, from, to)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write output: %w", closeErr)
	}
	if err != nil {
		result.Error = err
		return result
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		result.Error = fmt.Errorf("failed to set output permissions: %w", err)
		return result
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		result.Error = fmt.Errorf("failed to move output into place: %w", err)
		return result
	}

	result.OutputFile = outputPath
	result.Success = true
	result.Stats = stats
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func countDescriptions(txs records.Transactions) int {
	n := 0
	for _, tx := range txs {
		if tx.Description != "" {
			n++
		}
	}
	return n
}
