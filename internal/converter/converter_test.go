package converter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/txconv/internal/config"
	"github.com/ginjaninja78/txconv/internal/csvparser"
	"github.com/ginjaninja78/txconv/internal/records"
	"github.com/ginjaninja78/txconv/internal/textio"
)

const sampleCSV = "TX_ID,TX_TYPE,FROM_USER_ID,TO_USER_ID,AMOUNT,TIMESTAMP,STATUS,DESCRIPTION\n" +
	`1001,DEPOSIT,0,501,50000,1672531200000,SUCCESS,"Initial ""account"" funding"` + "\n" +
	`1002,TRANSFER,501,502,-150,1672531260000,PENDING,""`

const sampleJSON = `[
  {
    "tx_id": 1001,
    "tx_type": "DEPOSIT",
    "from": 0,
    "to": 501,
    "quantity": 50000,
    "timestamp": 1672531200000,
    "status": "SUCCESS"
  },
  {
    "tx_id": 1002,
    "tx_type": "TRANSFER",
    "from": 501,
    "to": 502,
    "quantity": -150,
    "timestamp": 1672531260000,
    "status": "PENDING"
  }
]`

func newTestConverter(t *testing.T) (*Converter, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return New(config.Default(), log), hook
}

func TestConvertCSVToJSON(t *testing.T) {
	c, hook := newTestConverter(t)

	var out bytes.Buffer
	stats, err := c.Convert(strings.NewReader(sampleCSV), &out, FormatCSV, FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, sampleJSON, out.String())
	assert.Equal(t, 2, stats.Records)
	assert.Equal(t, 1, stats.DescriptionsDropped)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, 1, entry.Data["descriptions"])
			assert.Equal(t, FormatJSON, entry.Data["to"])
		}
	}
	assert.True(t, warned, "dropping descriptions is logged")
}

func TestConvertJSONToCSVLeavesDescriptionEmpty(t *testing.T) {
	c, _ := newTestConverter(t)

	var out bytes.Buffer
	_, err := c.Convert(strings.NewReader(sampleJSON), &out, FormatJSON, FormatCSV)
	require.NoError(t, err)

	expected := strings.Replace(sampleCSV, `"Initial ""account"" funding"`, `""`, 1)
	assert.Equal(t, expected, out.String())
}

func TestConvertSameFormatReproducesInput(t *testing.T) {
	c, _ := newTestConverter(t)

	var out bytes.Buffer
	stats, err := c.Convert(strings.NewReader(sampleCSV), &out, FormatCSV, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, out.String())
	assert.Zero(t, stats.DescriptionsDropped)
}

func TestRoundTripThroughEveryFormat(t *testing.T) {
	c, _ := newTestConverter(t)

	original, err := csvparser.Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	for _, format := range Formats() {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, c.Print(&buf, original, format))

			set, err := c.Parse(&buf, format)
			require.NoError(t, err)

			switch format.Family() {
			case FamilyDelimited:
				assert.Equal(t, original, set)
			case FamilyDocument:
				assert.Equal(t, original.Documents(), set)
			}
		})
	}
}

func TestConvertChainPreservesDocumentFields(t *testing.T) {
	c, _ := newTestConverter(t)

	var xml, xlsx, json bytes.Buffer
	_, err := c.Convert(strings.NewReader(sampleJSON), &xml, FormatJSON, FormatXML)
	require.NoError(t, err)
	_, err = c.Convert(&xml, &xlsx, FormatXML, FormatXLSX)
	require.NoError(t, err)
	_, err = c.Convert(&xlsx, &json, FormatXLSX, FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, sampleJSON, json.String())
}

func TestConvertWithCharset(t *testing.T) {
	cfg := config.Default()
	cfg.CSV.Encoding = "windows-1251"
	c := New(cfg, nil)

	tx, err := records.NewTransaction(records.Fields{
		TxID: 1, TxType: "DEPOSIT", ToUserID: 2, Amount: 3, Status: "SUCCESS", Description: "пополнение",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Print(&buf, records.Transactions{tx}, FormatCSV))
	assert.NotContains(t, buf.String(), "пополнение", "output is not UTF-8")

	set, err := c.Parse(&buf, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, records.Transactions{tx}, set)
}

func TestConvertErrors(t *testing.T) {
	c, _ := newTestConverter(t)

	_, err := c.Convert(strings.NewReader("full_name,balance"), &bytes.Buffer{}, FormatCSV, FormatJSON)
	assert.ErrorIs(t, err, csvparser.ErrInvalidHeader)
	assert.ErrorContains(t, err, "failed to parse csv input: line: 1, field TX_ID")

	_, err = c.Convert(strings.NewReader(""), &bytes.Buffer{}, FormatCSV, FormatJSON)
	assert.ErrorIs(t, err, textio.ErrUnexpectedEOF)

	_, err = c.Convert(strings.NewReader(sampleCSV), &bytes.Buffer{}, FormatCSV, Format(0))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = c.Parse(strings.NewReader(sampleCSV), Format(99))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	err = c.Print(&bytes.Buffer{}, records.Transactions{}, Format(99))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(input, []byte(sampleCSV), 0o644))
	require.NoError(t, os.WriteFile(output, []byte("stale content that is longer than the output will be"), 0o644))

	c, _ := newTestConverter(t)
	result := c.ConvertFile(input, output, FormatCSV, FormatJSON)
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, output, result.OutputFile)
	assert.Equal(t, 2, result.Stats.Records)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, sampleJSON, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files are left behind")
}

func TestConvertFileFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(input, []byte(sampleCSV+"\n0,DEPOSIT,0,1,1,0,SUCCESS,\"x\""), 0o644))

	c, _ := newTestConverter(t)
	result := c.ConvertFile(input, output, FormatCSV, FormatJSON)
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, records.ErrTxIDMustBePositive)
	assert.Empty(t, result.OutputFile)

	assert.NoFileExists(t, output)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestConvertFileMissingInput(t *testing.T) {
	c, _ := newTestConverter(t)
	result := c.ConvertFile(filepath.Join(t.TempDir(), "absent.csv"), "out.json", FormatCSV, FormatJSON)
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, os.ErrNotExist)
}

func TestConvertSetFamilies(t *testing.T) {
	txs, err := csvparser.Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.IsType(t, records.Documents{}, Convert(txs, FormatXML))
	assert.IsType(t, records.Transactions{}, Convert(txs, FormatXLSX))
	assert.IsType(t, records.Transactions{}, Convert(txs.Documents(), FormatCSV))
}
