package csvparser

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/txconv/internal/records"
	"github.com/ginjaninja78/txconv/internal/textio"
)

const headerLine = "TX_ID,TX_TYPE,FROM_USER_ID,TO_USER_ID,AMOUNT,TIMESTAMP,STATUS,DESCRIPTION"

const sampleRow = `1001,DEPOSIT,0,501,50000,1672531200000,SUCCESS,"Initial ""account"" funding"`

func TestParseSampleRow(t *testing.T) {
	txs, err := Parse(strings.NewReader(headerLine + "\n" + sampleRow))
	require.NoError(t, err)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, uint64(1001), tx.TxID)
	assert.Equal(t, records.Deposit, tx.TxType)
	assert.Equal(t, uint64(0), tx.FromUserID)
	assert.Equal(t, uint64(501), tx.ToUserID)
	assert.Equal(t, int64(50000), tx.Amount)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), tx.Timestamp)
	assert.Equal(t, records.Success, tx.Status)
	assert.Equal(t, `Initial "account" funding`, tx.Description)
}

func TestParseMultipleRowsKeepsOrder(t *testing.T) {
	input := strings.Join([]string{
		headerLine,
		`1,DEPOSIT,0,10,100,1672531200000,SUCCESS,"first"`,
		`2,TRANSFER,10,20,-40,1672531260000,PENDING,"second, with comma"`,
		`3,WITHDRAWAL,20,0,60,1672531320000,FAILURE,""`,
	}, "\n")

	txs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, uint64(1), txs[0].TxID)
	assert.Equal(t, records.Transfer, txs[1].TxType)
	assert.Equal(t, int64(-40), txs[1].Amount)
	assert.Equal(t, "second, with comma", txs[1].Description)
	assert.Equal(t, records.Withdrawal, txs[2].TxType)
	assert.Equal(t, records.Failure, txs[2].Status)
	assert.Equal(t, "", txs[2].Description)
}

func TestParseLineEndings(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "trailing newline", input: headerLine + "\n" + sampleRow + "\n"},
		{name: "crlf", input: headerLine + "\r\n" + sampleRow + "\r\n" + sampleRow},
		{name: "crlf at end", input: headerLine + "\r\n" + sampleRow + "\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			require.NotEmpty(t, txs)
			assert.Equal(t, `Initial "account" funding`, txs[0].Description)
		})
	}
}

func TestParseHeaderOnly(t *testing.T) {
	txs, err := Parse(strings.NewReader(headerLine + "\n"))
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestParseInvalidHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("full_name,balance\nPetr,100"))
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, TxIDHeader, perr.Field)
	assert.Equal(t, KindInvalidHeader, perr.Kind)
	assert.ErrorIs(t, err, ErrInvalidHeader)
	assert.EqualError(t, err, "line: 1, field TX_ID: unexpected value 'full_name'")
}

func TestParseLowercaseHeaderIsRejected(t *testing.T) {
	header := strings.Replace(headerLine, "STATUS", "status", 1)

	_, err := Parse(strings.NewReader(header + "\n" + sampleRow))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StatusHeader, perr.Field)
	assert.Equal(t, KindInvalidHeader, perr.Kind)
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, KindInvalidFormat, perr.Kind)
	assert.ErrorIs(t, err, textio.ErrUnexpectedEOF)
}

func TestParseRowErrors(t *testing.T) {
	tests := []struct {
		name  string
		rows  []string
		line  int
		field string
		kind  ErrorKind
		cause error
	}{
		{
			name:  "zero tx id",
			rows:  []string{`0,DEPOSIT,0,501,50000,1672531200000,SUCCESS,"x"`},
			line:  2,
			kind:  KindValidation,
			cause: records.ErrTxIDMustBePositive,
		},
		{
			name:  "unknown tx type",
			rows:  []string{`1,REFUND,0,501,50000,1672531200000,SUCCESS,"x"`},
			line:  2,
			kind:  KindValidation,
			cause: records.ErrInvalidTxType,
		},
		{
			name:  "unknown status on second row",
			rows:  []string{sampleRow, `2,DEPOSIT,0,501,50000,1672531200000,success,"x"`},
			line:  3,
			kind:  KindValidation,
			cause: records.ErrInvalidStatus,
		},
		{
			name:  "timestamp out of range",
			rows:  []string{`1,DEPOSIT,0,501,50000,9223372036854775807,SUCCESS,"x"`},
			line:  2,
			kind:  KindValidation,
			cause: records.ErrInvalidTimestamp,
		},
		{
			name:  "non numeric amount",
			rows:  []string{`1,DEPOSIT,0,501,fifty,1672531200000,SUCCESS,"x"`},
			line:  2,
			field: AmountHeader,
			kind:  KindConversion,
			cause: strconv.ErrSyntax,
		},
		{
			name:  "negative user id",
			rows:  []string{`1,DEPOSIT,-5,501,50000,1672531200000,SUCCESS,"x"`},
			line:  2,
			field: FromUserIDHeader,
			kind:  KindConversion,
			cause: strconv.ErrSyntax,
		},
		{
			name:  "tx id overflow",
			rows:  []string{`18446744073709551616,DEPOSIT,0,501,50000,1672531200000,SUCCESS,"x"`},
			line:  2,
			field: TxIDHeader,
			kind:  KindConversion,
			cause: strconv.ErrRange,
		},
		{
			name:  "unquoted description",
			rows:  []string{`1,DEPOSIT,0,501,50000,1672531200000,SUCCESS,x`},
			line:  2,
			field: DescriptionHeader,
			kind:  KindInvalidFormat,
			cause: textio.ErrMustStartWithQuote,
		},
		{
			name:  "unterminated description",
			rows:  []string{`1,DEPOSIT,0,501,50000,1672531200000,SUCCESS,"x`},
			line:  2,
			field: DescriptionHeader,
			kind:  KindInvalidFormat,
			cause: textio.ErrMustEndWithQuote,
		},
		{
			name:  "truncated row",
			rows:  []string{`1,DEPOSIT,0`},
			line:  2,
			field: ToUserIDHeader,
			kind:  KindInvalidFormat,
			cause: textio.ErrUnexpectedEOF,
		},
		{
			name:  "empty middle field",
			rows:  []string{`1,DEPOSIT,,501,50000,1672531200000,SUCCESS,"x"`},
			line:  2,
			field: FromUserIDHeader,
			kind:  KindInvalidFormat,
			cause: textio.ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := headerLine + "\n" + strings.Join(tt.rows, "\n")

			txs, err := Parse(strings.NewReader(input))
			require.Error(t, err)
			assert.Nil(t, txs)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.field, perr.Field)
			assert.Equal(t, tt.kind, perr.Kind)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestParseErrorMessages(t *testing.T) {
	_, err := Parse(strings.NewReader(headerLine + "\n" + `0,DEPOSIT,0,501,50000,1672531200000,SUCCESS,"x"`))
	assert.EqualError(t, err, "line: 2: tx_id must be greater than 0")

	_, err = Parse(strings.NewReader(headerLine + "\n" + `1,DEPOSIT,0,501,abc,1672531200000,SUCCESS,"x"`))
	assert.EqualError(t, err, `line: 2, field AMOUNT: cannot convert "abc": invalid syntax`)
}

type brokenReader struct{ data string }

func (r *brokenReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, errors.New("disk on fire")
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestParseReportsStreamErrors(t *testing.T) {
	_, err := Parse(&brokenReader{data: headerLine + "\n1001,DEP"})

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindIO, perr.Kind)
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, TxTypeHeader, perr.Field)
	assert.EqualError(t, err, "line: 2, field TX_TYPE: disk on fire")
}

func TestDecoderIteratesRows(t *testing.T) {
	input := headerLine + "\n" + sampleRow + "\n" + strings.Replace(sampleRow, "1001", "1002", 1)

	dec, err := NewDecoder(strings.NewReader(input))
	require.NoError(t, err)

	var ids []uint64
	var lines []int
	for dec.Next() {
		ids = append(ids, dec.Transaction().TxID)
		lines = append(lines, dec.Line())
	}
	require.NoError(t, dec.Err())

	assert.Equal(t, []uint64{1001, 1002}, ids)
	assert.Equal(t, []int{2, 3}, lines)
	assert.False(t, dec.Next())
}

func TestHeaders(t *testing.T) {
	assert.Equal(t, headerLine, strings.Join(Headers(), ","))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "invalid_header", KindInvalidHeader.String())
	assert.Equal(t, "unknown", ErrorKind(42).String())
}
