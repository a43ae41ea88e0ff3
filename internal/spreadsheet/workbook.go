// =============================================================================
// txconv - XLSX Workbook Module
// =============================================================================
//
// This module reads and writes transactions as an XLSX workbook. The sheet
// mirrors the delimited format: row 1 holds the header names, every following
// row is one transaction.
//
// SHEET LAYOUT:
//   | TX_ID | TX_TYPE | FROM_USER_ID | TO_USER_ID | AMOUNT | TIMESTAMP | STATUS | DESCRIPTION |
//   | 1001  | DEPOSIT | 0            | 501        | 50000  | 1672531200000 | SUCCESS | Initial... |
//
// READING RULES:
//   - Rows containing only empty cells are skipped.
//   - A row may omit its trailing description cell (it is read as "").
//   - A row missing any other cell fails with records.ErrFieldsMissing.
//   - Errors are *csvparser.ParseError values tagged with the row number.
//
// All cells are written as text so that 64-bit values keep every digit.
//
// =============================================================================

package spreadsheet

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/txconv/internal/csvparser"
	"github.com/ginjaninja78/txconv/internal/records"
)

// DefaultSheetName is the sheet written when none is configured.
const DefaultSheetName = "Transactions"

// =============================================================================
// PARSE
// =============================================================================

// Parse reads transactions from the workbook in r.
//
// PARAMETERS:
//   - r: The XLSX content.
//   - sheetName: The sheet to read. When the workbook has no sheet with this
//     name, the first sheet is used.
//
// RETURNS:
//   - The transactions in row order (empty, never nil, without data rows).
//   - An error if the workbook cannot be read or any row is invalid.
func Parse(r io.Reader, sheetName string) (records.Transactions, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if !slices.Contains(f.GetSheetList(), sheetName) {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if err := checkHeader(rows); err != nil {
		return nil, err
	}

	txs := records.Transactions{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]

		// Skip empty rows.
		if isRowEmpty(row) {
			continue
		}

		tx, err := parseRow(row, i+1)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// checkHeader compares the first row with the schema.
func checkHeader(rows [][]string) error {
	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}

	for i, column := range csvparser.Columns {
		value := getCell(header, i)
		if value != column.Header {
			return &csvparser.ParseError{
				Line:  1,
				Field: column.Header,
				Kind:  csvparser.KindInvalidHeader,
				Err:   fmt.Errorf("%w '%s'", csvparser.ErrInvalidHeader, value),
			}
		}
	}
	return nil
}

// parseRow converts one data row into a Transaction.
//
// PARAMETERS:
//   - row: The cell values.
//   - rowNumber: The 1-based row number (for error messages).
func parseRow(row []string, rowNumber int) (records.Transaction, error) {
	required := len(csvparser.Columns)
	if csvparser.Columns[required-1].Quoted {
		// The trailing description may be left blank.
		required--
	}
	if len(row) < required {
		return records.Transaction{}, &csvparser.ParseError{
			Line: rowNumber,
			Kind: csvparser.KindValidation,
			Err:  &records.ValidationError{Err: records.ErrFieldsMissing},
		}
	}

	var fields records.Fields
	for i, column := range csvparser.Columns {
		raw := getCell(row, i)
		if !column.Quoted {
			raw = strings.TrimSpace(raw)
		}
		if err := column.Assign(&fields, raw); err != nil {
			return records.Transaction{}, &csvparser.ParseError{
				Line:  rowNumber,
				Field: column.Header,
				Kind:  csvparser.KindConversion,
				Err:   err,
			}
		}
	}

	tx, err := records.NewTransaction(fields)
	if err != nil {
		return records.Transaction{}, &csvparser.ParseError{
			Line: rowNumber,
			Kind: csvparser.KindValidation,
			Err:  err,
		}
	}
	return tx, nil
}

// =============================================================================
// PRINT
// =============================================================================

// Print writes txs to w as a single-sheet workbook.
func Print(w io.Writer, txs records.Transactions, sheetName string) error {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, 0, len(csvparser.Columns))
	for _, h := range csvparser.Headers() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := rowValues(tx)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}

// rowValues returns the cells of tx in schema order.
func rowValues(tx records.Transaction) []interface{} {
	return []interface{}{
		strconv.FormatUint(tx.TxID, 10),
		tx.TxType.String(),
		strconv.FormatUint(tx.FromUserID, 10),
		strconv.FormatUint(tx.ToUserID, 10),
		strconv.FormatInt(tx.Amount, 10),
		strconv.FormatInt(tx.TimestampMillis(), 10),
		tx.Status.String(),
		tx.Description,
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// getCell safely reads a cell; GetRows drops trailing empty cells.
func getCell(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
