// =============================================================================
// txconv - CSV Writer Module
// =============================================================================
//
// This module writes transactions in the delimited format read by csvparser.
//
// OUTPUT LAYOUT:
//   TX_ID,TX_TYPE,FROM_USER_ID,TO_USER_ID,AMOUNT,TIMESTAMP,STATUS,DESCRIPTION
//   1001,DEPOSIT,0,501,50000,1672531200000,SUCCESS,"Initial ""account"" funding"
//
//   - The first seven fields of a row are each followed by a delimiter.
//   - The description is written with the quoting rule and has no terminator.
//   - Lines are separated by a single newline; there is no trailing newline.
//
// The decoder discards exactly one terminator per field, so this layout is
// what makes Parse(Print(R)) == R hold.
//
// =============================================================================

package csvwriter

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/ginjaninja78/txconv/internal/csvparser"
	"github.com/ginjaninja78/txconv/internal/records"
	"github.com/ginjaninja78/txconv/internal/textio"
)

// Print writes the header and every transaction to w.
//
// Errors are the sink's own errors, returned unchanged.
func Print(w io.Writer, txs records.Transactions) error {
	cw := New(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := cw.Write(tx); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// Writer encodes transactions one at a time. Call Flush when done.
type Writer struct {
	w *bufio.Writer
}

// New returns a Writer that buffers output to w.
func New(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line without a line terminator.
func (cw *Writer) WriteHeader() error {
	_, err := cw.w.WriteString(strings.Join(csvparser.Headers(), string(csvparser.Delimiter)))
	return err
}

// Write starts a new line and writes tx on it.
func (cw *Writer) Write(tx records.Transaction) error {
	fields := [...]string{
		strconv.FormatUint(tx.TxID, 10),
		tx.TxType.String(),
		strconv.FormatUint(tx.FromUserID, 10),
		strconv.FormatUint(tx.ToUserID, 10),
		strconv.FormatInt(tx.Amount, 10),
		strconv.FormatInt(tx.TimestampMillis(), 10),
		tx.Status.String(),
	}

	if err := cw.w.WriteByte('\n'); err != nil {
		return err
	}
	for _, field := range fields {
		if _, err := cw.w.WriteString(field); err != nil {
			return err
		}
		if err := cw.w.WriteByte(csvparser.Delimiter); err != nil {
			return err
		}
	}
	return textio.WriteQuoted(cw.w, tx.Description)
}

// Flush writes any buffered data to the underlying writer.
func (cw *Writer) Flush() error {
	return cw.w.Flush()
}
