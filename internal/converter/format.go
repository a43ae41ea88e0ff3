package converter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for format names and extensions outside the
// supported set.
var ErrUnknownFormat = errors.New("unknown format")

// Format is one of the supported wire formats.
type Format int

const (
	FormatCSV Format = iota + 1
	FormatJSON
	FormatXML
	FormatXLSX
)

// Family groups formats that carry the same record type.
type Family int

const (
	// FamilyDelimited formats carry records.Transactions.
	FamilyDelimited Family = iota + 1
	// FamilyDocument formats carry records.Documents.
	FamilyDocument
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatXML, FormatXLSX}
}

// String returns the format name used on the command line.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatXML:
		return "xml"
	case FormatXLSX:
		return "xlsx"
	case 0:
		// Unset flag value.
		return ""
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the file extension, including the dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// Family returns the record family of the format.
func (f Format) Family() Family {
	switch f {
	case FormatCSV, FormatXLSX:
		return FamilyDelimited
	case FormatJSON, FormatXML:
		return FamilyDocument
	default:
		return 0
	}
}

// ParseFormat maps a name such as "json" or "CSV" onto a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// DetectFormat picks the format from the extension of path.
func DetectFormat(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(strings.TrimPrefix(ext, "."))
}

// Set implements pflag.Value so a Format can be bound to a command flag.
func (f *Format) Set(name string) error {
	v, err := ParseFormat(name)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string {
	return "format"
}
