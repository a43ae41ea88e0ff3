// =============================================================================
// txconv - XML Document Module
// =============================================================================
//
// This module reads and writes the XML rendition of the document format.
//
// XML STRUCTURE:
//
//   <?xml version="1.0" encoding="UTF-8"?>   <!-- Optional declaration -->
//   <transactions>                           <!-- Root element -->
//     <transaction>                          <!-- One element per record -->
//       <tx_id>1001</tx_id>
//       <tx_type>DEPOSIT</tx_type>
//       <from>0</from>
//       <to>501</to>
//       <quantity>50000</quantity>
//       <timestamp>1672531200000</timestamp>
//       <status>SUCCESS</status>
//     </transaction>
//   </transactions>
//
// CUSTOMIZATION:
//   - Root and record element names come from Options (config: xml.*)
//   - Field element names are fixed and match the JSON keys
//
// =============================================================================

package xmldoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/ginjaninja78/txconv/internal/records"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Declaration is written before the root element when enabled.
const Declaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Options controls element naming and layout.
type Options struct {
	// Indent is the string used for one level of indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeDeclaration writes the XML declaration.
	// Default: true
	IncludeDeclaration bool

	// RootElement wraps the whole batch.
	// Default: "transactions"
	RootElement string

	// RecordElement wraps one record.
	// Default: "transaction"
	RecordElement string
}

// DefaultOptions returns the default layout.
func DefaultOptions() Options {
	return Options{
		Indent:             "  ",
		IncludeDeclaration: true,
		RootElement:        "transactions",
		RecordElement:      "transaction",
	}
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoRoot is returned for input without any element.
	ErrNoRoot = errors.New("no root element")

	// ErrUnexpectedElement is returned for an element outside the layout.
	ErrUnexpectedElement = errors.New("unexpected element")
)

// MissingFieldError reports a record element without one of its fields.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %d: missing element <%s>", e.Index, e.Field)
}

// =============================================================================
// PRINT
// =============================================================================

// Print writes docs to w as an XML document.
//
// PARAMETERS:
//   - w: The destination.
//   - docs: The records, written in order.
//   - options: The element names and layout.
//
// RETURNS:
//   - The sink error, if any.
func Print(w io.Writer, docs records.Documents, options Options) error {
	if options.IncludeDeclaration {
		if _, err := io.WriteString(w, Declaration); err != nil {
			return err
		}
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", options.Indent)

	root := xml.StartElement{Name: xml.Name{Local: options.RootElement}}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	record := xml.StartElement{Name: xml.Name{Local: options.RecordElement}}
	for _, doc := range docs {
		if err := enc.EncodeElement(doc, record); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	return enc.Close()
}

// =============================================================================
// PARSE
// =============================================================================

// wireDocument detects absent elements.
type wireDocument struct {
	TxID      *uint64         `xml:"tx_id"`
	TxType    *records.TxType `xml:"tx_type"`
	From      *uint64         `xml:"from"`
	To        *uint64         `xml:"to"`
	Quantity  *int64          `xml:"quantity"`
	Timestamp *int64          `xml:"timestamp"`
	Status    *records.Status `xml:"status"`
}

func (w wireDocument) document(index int) (records.Document, error) {
	fields := []struct {
		name    string
		present bool
	}{
		{"tx_id", w.TxID != nil},
		{"tx_type", w.TxType != nil},
		{"from", w.From != nil},
		{"to", w.To != nil},
		{"quantity", w.Quantity != nil},
		{"timestamp", w.Timestamp != nil},
		{"status", w.Status != nil},
	}
	for _, f := range fields {
		if !f.present {
			return records.Document{}, &MissingFieldError{Index: index, Field: f.name}
		}
	}

	if _, err := records.TimestampFromMillis(*w.Timestamp); err != nil {
		return records.Document{}, fmt.Errorf("record %d: %w", index, err)
	}

	return records.Document{
		TxID:      *w.TxID,
		TxType:    *w.TxType,
		From:      *w.From,
		To:        *w.To,
		Quantity:  *w.Quantity,
		Timestamp: *w.Timestamp,
		Status:    *w.Status,
	}, nil
}

// Parse reads an XML document written with the same options. Unknown child
// elements inside a record are ignored; anything else under the root is an
// error.
func Parse(r io.Reader, options Options) (records.Documents, error) {
	dec := xml.NewDecoder(r)

	if err := expectRoot(dec, options.RootElement); err != nil {
		return nil, err
	}

	docs := records.Documents{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != options.RecordElement {
				return nil, fmt.Errorf("%w <%s>", ErrUnexpectedElement, t.Name.Local)
			}
			index := len(docs)
			var wire wireDocument
			if err := dec.DecodeElement(&wire, &t); err != nil {
				return nil, fmt.Errorf("record %d: %w", index, err)
			}
			doc, err := wire.document(index)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		case xml.EndElement:
			// The decoder rejects mismatched end tags, so this closes the root.
			return docs, nil
		}
	}
}

// expectRoot skips the prolog and checks the name of the first element.
func expectRoot(dec *xml.Decoder, name string) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrNoRoot
			}
			return err
		}
		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local != name {
				return fmt.Errorf("%w <%s>, expected <%s>", ErrUnexpectedElement, start.Name.Local, name)
			}
			return nil
		}
	}
}
