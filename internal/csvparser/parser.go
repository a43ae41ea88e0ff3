// =============================================================================
// txconv - CSV Parser Module
// =============================================================================
//
// This module decodes the delimited transaction format. The format is
// self-describing: the first line carries a fixed, ordered header row, every
// following line is one transaction.
//
// EXAMPLE:
//   TX_ID,TX_TYPE,FROM_USER_ID,TO_USER_ID,AMOUNT,TIMESTAMP,STATUS,DESCRIPTION
//   1001,DEPOSIT,0,501,50000,1672531200000,SUCCESS,"Initial ""account"" funding"
//
// DECODING STATES:
//   ExpectHeaders -> ExpectRow* -> Done
//
//   The first field of a row is the only place where running out of input is
//   a normal outcome: it ends decoding with the rows collected so far. Every
//   other failure aborts the whole batch.
//
// ERROR REPORTING:
//   Every error is a *ParseError carrying the 1-based line number (the header
//   is line 1) and, for single-field errors, the header name of the field.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ginjaninja78/txconv/internal/records"
	"github.com/ginjaninja78/txconv/internal/textio"
)

// Delimiter separates fields on a line.
const Delimiter = ','

// =============================================================================
// SCHEMA
// =============================================================================

// Header names, in wire order.
const (
	TxIDHeader        = "TX_ID"
	TxTypeHeader      = "TX_TYPE"
	FromUserIDHeader  = "FROM_USER_ID"
	ToUserIDHeader    = "TO_USER_ID"
	AmountHeader      = "AMOUNT"
	TimestampHeader   = "TIMESTAMP"
	StatusHeader      = "STATUS"
	DescriptionHeader = "DESCRIPTION"
)

// Column describes one column of the fixed schema.
type Column struct {
	// Header is the expected header text.
	Header string

	// Quoted marks columns written with the quoting rule.
	Quoted bool

	// Assign converts the raw text and stores it into the raw record.
	Assign func(f *records.Fields, raw string) error
}

// Columns is the fixed, ordered schema of the delimited format. All columns
// are required.
var Columns = []Column{
	{Header: TxIDHeader, Assign: func(f *records.Fields, raw string) (err error) {
		f.TxID, err = parseUint(raw)
		return err
	}},
	{Header: TxTypeHeader, Assign: func(f *records.Fields, raw string) error {
		f.TxType = raw
		return nil
	}},
	{Header: FromUserIDHeader, Assign: func(f *records.Fields, raw string) (err error) {
		f.FromUserID, err = parseUint(raw)
		return err
	}},
	{Header: ToUserIDHeader, Assign: func(f *records.Fields, raw string) (err error) {
		f.ToUserID, err = parseUint(raw)
		return err
	}},
	{Header: AmountHeader, Assign: func(f *records.Fields, raw string) (err error) {
		f.Amount, err = parseInt(raw)
		return err
	}},
	{Header: TimestampHeader, Assign: func(f *records.Fields, raw string) (err error) {
		f.TimestampMillis, err = parseInt(raw)
		return err
	}},
	{Header: StatusHeader, Assign: func(f *records.Fields, raw string) error {
		f.Status = raw
		return nil
	}},
	{Header: DescriptionHeader, Quoted: true, Assign: func(f *records.Fields, raw string) error {
		f.Description = raw
		return nil
	}},
}

// Headers returns the header names in schema order.
func Headers() []string {
	headers := make([]string, len(Columns))
	for i, c := range Columns {
		headers[i] = c.Header
	}
	return headers
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// KindIO is a failure of the underlying stream.
	KindIO ErrorKind = iota
	// KindInvalidFormat is a lexical error from the field lexer.
	KindInvalidFormat
	// KindInvalidHeader is a header token that does not match the schema.
	KindInvalidHeader
	// KindConversion is a field that could not be converted to its type.
	KindConversion
	// KindValidation is a record that breaks a domain rule.
	KindValidation
)

// String returns a short name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInvalidFormat:
		return "invalid_format"
	case KindInvalidHeader:
		return "invalid_header"
	case KindConversion:
		return "conversion"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ErrInvalidHeader is the cause of KindInvalidHeader errors.
var ErrInvalidHeader = errors.New("unexpected value")

// ParseError is returned for every decoding failure.
type ParseError struct {
	// Line is the 1-based line number. The header is line 1.
	Line int

	// Field is the header name of the failing field, empty for record-level errors.
	Field string

	// Kind classifies the failure.
	Kind ErrorKind

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line: %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line: %d, field %s: %v", e.Line, e.Field, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConversionError reports a field value that is not valid for its type.
type ConversionError struct {
	// Value is the raw field text.
	Value string

	// Err is the strconv failure.
	Err error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q: %v", e.Value, e.Err)
}

// Unwrap returns the strconv failure.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse decodes a whole delimited batch from r.
//
// RETURNS:
//   - The transactions in input order (empty, never nil, when there are no rows).
//   - A *ParseError if any line is invalid; no partial result is returned.
func Parse(r io.Reader) (records.Transactions, error) {
	dec, err := NewDecoder(r)
	if err != nil {
		return nil, err
	}

	txs := records.Transactions{}
	for dec.Next() {
		txs = append(txs, dec.Transaction())
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// =============================================================================
// DECODER
// =============================================================================

// Decoder reads a delimited batch one row at a time.
//
// USAGE:
//   dec, err := NewDecoder(r)
//   if err != nil {
//       return err
//   }
//   for dec.Next() {
//       tx := dec.Transaction()
//       // ...
//   }
//   if err := dec.Err(); err != nil {
//       return err
//   }
type Decoder struct {
	reader  *bufio.Reader
	current records.Transaction
	line    int
	done    bool
	err     error
}

// NewDecoder wraps r and reads the header line. A header that does not match
// the schema is reported here.
func NewDecoder(r io.Reader) (*Decoder, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	d := &Decoder{reader: br, line: 1}
	if err := d.readHeaders(); err != nil {
		return nil, err
	}
	return d, nil
}

// readHeaders checks every header token against the schema.
func (d *Decoder) readHeaders() error {
	for _, column := range Columns {
		value, err := textio.ReadUntil(d.reader, Delimiter)
		if err != nil {
			return d.fieldError(column.Header, err)
		}
		if value != column.Header {
			return &ParseError{
				Line:  d.line,
				Field: column.Header,
				Kind:  KindInvalidHeader,
				Err:   fmt.Errorf("%w '%s'", ErrInvalidHeader, value),
			}
		}
	}
	return nil
}

// Next advances to the next row. It returns false at the end of data or on
// the first error; check Err to tell them apart.
func (d *Decoder) Next() bool {
	if d.done || d.err != nil {
		return false
	}

	d.line++
	tx, ok, err := d.readRow()
	if err != nil {
		d.err = err
		return false
	}
	if !ok {
		d.done = true
		return false
	}

	d.current = tx
	return true
}

// readRow reads one line. ok is false when the input is exhausted.
func (d *Decoder) readRow() (tx records.Transaction, ok bool, err error) {
	var fields records.Fields

	for i, column := range Columns {
		var raw string
		if column.Quoted {
			raw, err = textio.ReadQuoted(d.reader)
		} else {
			raw, err = textio.ReadUntil(d.reader, Delimiter)
		}

		if err != nil {
			// Nothing to read at the start of a row is the end of data.
			if i == 0 && errors.Is(err, textio.ErrUnexpectedEOF) {
				return records.Transaction{}, false, nil
			}
			return records.Transaction{}, false, d.fieldError(column.Header, err)
		}

		if err := column.Assign(&fields, raw); err != nil {
			return records.Transaction{}, false, &ParseError{
				Line:  d.line,
				Field: column.Header,
				Kind:  KindConversion,
				Err:   err,
			}
		}
	}

	tx, err = records.NewTransaction(fields)
	if err != nil {
		return records.Transaction{}, false, &ParseError{
			Line: d.line,
			Kind: KindValidation,
			Err:  err,
		}
	}
	return tx, true, nil
}

// fieldError tags a lexer or stream error with the current line and field.
func (d *Decoder) fieldError(field string, err error) *ParseError {
	kind := KindIO
	if isLexical(err) {
		kind = KindInvalidFormat
	}
	return &ParseError{Line: d.line, Field: field, Kind: kind, Err: err}
}

// Transaction returns the row read by the last successful call to Next.
func (d *Decoder) Transaction() records.Transaction {
	return d.current
}

// Line returns the line number of the current row.
func (d *Decoder) Line() int {
	return d.line
}

// Err returns the error that stopped decoding, or nil at a clean end of data.
func (d *Decoder) Err() error {
	return d.err
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

func isLexical(err error) bool {
	return errors.Is(err, textio.ErrMustStartWithQuote) ||
		errors.Is(err, textio.ErrMustEndWithQuote) ||
		errors.Is(err, textio.ErrUnexpectedEOF) ||
		errors.Is(err, textio.ErrInvalidEncoding)
}

func parseUint(raw string) (uint64, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, &ConversionError{Value: raw, Err: numError(err)}
	}
	return v, nil
}

func parseInt(raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ConversionError{Value: raw, Err: numError(err)}
	}
	return v, nil
}

// numError strips the strconv prefix; the value is already in ConversionError.
func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}
