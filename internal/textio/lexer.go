// =============================================================================
// txconv - Quoted Field Lexer
// =============================================================================
//
// This package contains the low-level routines used by the delimited text
// format to read and write single fields. Each routine works on a buffered
// byte stream and never looks further ahead than the terminator it consumes.
//
// FIELD GRAMMAR:
//   plain field  : bytes up to the stop byte or a newline
//   quoted field : '"' { any byte except '"' | '""' } '"'
//
// A doubled quote inside a quoted field is an escaped literal quote. The byte
// that follows the closing quote (delimiter or newline) is consumed.
//
// =============================================================================

package textio

import (
	"errors"
	"io"
	"unicode/utf8"
)

const (
	quoteChar   byte = '"'
	newlineChar byte = '\n'
	returnChar  byte = '\r'
)

// =============================================================================
// LEXICAL ERRORS
// =============================================================================

var (
	// ErrMustStartWithQuote is returned when a quoted field does not open with a quote.
	ErrMustStartWithQuote = errors.New("must start with quote")

	// ErrMustEndWithQuote is returned when a quoted field is not closed by an
	// unescaped quote before the stream ends.
	ErrMustEndWithQuote = errors.New("must end with quote")

	// ErrUnexpectedEOF is returned when there is nothing left to read for a field.
	// The delimited decoder treats it as the end of data on the first field of a row.
	ErrUnexpectedEOF = errors.New("unexpected end of file")

	// ErrInvalidEncoding is returned when a field is not valid UTF-8 text.
	ErrInvalidEncoding = errors.New("invalid UTF-8 sequence")
)

// =============================================================================
// READERS
// =============================================================================

// ReadQuoted reads one quoted field and returns its unescaped value.
//
// The stream must be positioned on the opening quote. On success the stream is
// positioned after the byte that terminated the field; a "\r\n" terminator is
// consumed as a whole.
//
// ERRORS:
//   - ErrUnexpectedEOF      : the stream is empty or ends right after the opening quote
//   - ErrMustStartWithQuote : the first byte is not a quote
//   - ErrMustEndWithQuote   : the stream ends inside the field
//   - ErrInvalidEncoding    : the value is not valid UTF-8
//   - any other error from the stream, unchanged
func ReadQuoted(r io.ByteScanner) (string, error) {
	first, err := r.ReadByte()
	if err == io.EOF {
		return "", ErrUnexpectedEOF
	}
	if err != nil {
		return "", err
	}
	if first != quoteChar {
		return "", ErrMustStartWithQuote
	}

	var value []byte
	pending := false
	scanned := 0

	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			if scanned == 0 {
				return "", ErrUnexpectedEOF
			}
			if !pending {
				return "", ErrMustEndWithQuote
			}
			break
		}
		if err != nil {
			return "", err
		}
		scanned++

		if pending {
			if b == quoteChar {
				// "" is an escaped quote.
				value = append(value, quoteChar)
				pending = false
				continue
			}
			if b == returnChar {
				if err := skipByte(r, newlineChar); err != nil {
					return "", err
				}
			}
			break
		}

		if b == quoteChar {
			pending = true
			continue
		}
		value = append(value, b)
	}

	if !utf8.Valid(value) {
		return "", ErrInvalidEncoding
	}
	return string(value), nil
}

// ReadUntil reads bytes up to stop or a newline, whichever comes first, and
// consumes the terminator. End of stream also terminates the field.
//
// A '\r' right before the newline is not part of the value. An empty value is
// reported as ErrUnexpectedEOF.
func ReadUntil(r io.ByteReader, stop byte) (string, error) {
	var value []byte

	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if b == newlineChar {
			if n := len(value); n > 0 && value[n-1] == returnChar {
				value = value[:n-1]
			}
			break
		}
		if b == stop {
			break
		}
		value = append(value, b)
	}

	if len(value) == 0 {
		return "", ErrUnexpectedEOF
	}
	if !utf8.Valid(value) {
		return "", ErrInvalidEncoding
	}
	return string(value), nil
}

// skipByte consumes the next byte if it equals want and leaves the stream
// untouched otherwise.
func skipByte(r io.ByteScanner, want byte) error {
	b, err := r.ReadByte()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	if b != want {
		return r.UnreadByte()
	}
	return nil
}

// =============================================================================
// WRITERS
// =============================================================================

// WriteQuoted writes value wrapped in quotes, doubling every quote inside it.
// No delimiter is written.
func WriteQuoted(w io.Writer, value string) error {
	buf := make([]byte, 0, len(value)+2)
	buf = append(buf, quoteChar)
	for i := 0; i < len(value); i++ {
		if value[i] == quoteChar {
			buf = append(buf, quoteChar)
		}
		buf = append(buf, value[i])
	}
	buf = append(buf, quoteChar)

	_, err := w.Write(buf)
	return err
}
