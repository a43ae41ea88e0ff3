package textio

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestReadQuoted(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: `"boo"`, want: "boo"},
		{name: "followed by delimiter", input: `"boo",`, want: "boo"},
		{name: "followed by newline", input: "\"boo\"\n", want: "boo"},
		{name: "escaped quotes", input: `"aaa""bbb"`, want: `aaa"bbb`},
		{name: "escaped words", input: `"ooo ""Romashka"" company"`, want: `ooo "Romashka" company`},
		{name: "nested escapes", input: `"ooo ""OOO ""Romashka"""" company"`, want: `ooo "OOO "Romashka"" company`},
		{name: "closing quote ends field", input: `"start"end"`, want: "start"},
		{name: "empty value", input: `""`, want: ""},
		{name: "empty value with delimiter", input: `"",`, want: ""},
		{name: "multibyte text", input: `"пополнение счёта"`, want: "пополнение счёта"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadQuoted(newReader(tt.input))
			require.NoError(t, err, "input: %q", tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadQuotedErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "missing opening quote", input: "content", want: ErrMustStartWithQuote},
		{name: "missing closing quote", input: `"content`, want: ErrMustEndWithQuote},
		{name: "empty input", input: "", want: ErrUnexpectedEOF},
		{name: "lone quote", input: `"`, want: ErrUnexpectedEOF},
		{name: "closing quote is escaped", input: `"ooo ""Romashka""`, want: ErrMustEndWithQuote},
		{name: "invalid utf8", input: "\"\x00\x9f\"", want: ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadQuoted(newReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadQuotedConsumesTerminator(t *testing.T) {
	for _, input := range []string{"\"aaa\",\"bbb\"", "\"aaa\"\n\"bbb\"", "\"aaa\"\r\n\"bbb\""} {
		r := newReader(input)

		first, err := ReadQuoted(r)
		require.NoError(t, err)
		assert.Equal(t, "aaa", first)

		second, err := ReadQuoted(r)
		require.NoError(t, err, "input: %q", input)
		assert.Equal(t, "bbb", second)
	}
}

func TestReadQuotedLeavesLoneCarriageReturnFollower(t *testing.T) {
	r := newReader("\"aaa\"\rX")

	_, err := ReadQuoted(r)
	require.NoError(t, err)

	rest, err := ReadUntil(r, ',')
	require.NoError(t, err)
	assert.Equal(t, "X", rest)
}

func TestReadUntil(t *testing.T) {
	tests := []struct {
		name  string
		input string
		stop  byte
		want  string
	}{
		{name: "end of stream", input: "123", stop: ',', want: "123"},
		{name: "trailing delimiter", input: "123,", stop: ',', want: "123"},
		{name: "delimiter in the middle", input: "123,456", stop: ',', want: "123"},
		{name: "newline as stop", input: "123\n", stop: '\n', want: "123"},
		{name: "newline before delimiter", input: "123\n456", stop: ',', want: "123"},
		{name: "crlf", input: "123\r\n456", stop: ',', want: "123"},
		{name: "newline with other stop", input: "123\n", stop: ',', want: "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadUntil(newReader(tt.input), tt.stop)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadUntilLeavesStreamAfterTerminator(t *testing.T) {
	for _, input := range []string{"123,456", "123\n456"} {
		r := newReader(input)

		_, err := ReadUntil(r, ',')
		require.NoError(t, err)

		rest, err := ReadUntil(r, ',')
		require.NoError(t, err)
		assert.Equal(t, "456", rest, "input: %q", input)
	}
}

func TestReadUntilErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "empty input", input: "", want: ErrUnexpectedEOF},
		{name: "empty field", input: ",rest", want: ErrUnexpectedEOF},
		{name: "blank crlf line", input: "\r\n", want: ErrUnexpectedEOF},
		{name: "invalid utf8", input: "\x00\x9f,", want: ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadUntil(newReader(tt.input), ',')
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWriteQuoted(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "wraps with quotes", value: "text", want: `"text"`},
		{name: "escapes inner quotes", value: `aaa "bbb" ccc`, want: `"aaa ""bbb"" ccc"`},
		{name: "empty", value: "", want: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteQuoted(&buf, tt.value))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteQuotedRoundTrip(t *testing.T) {
	values := []string{"", `"`, `""`, `a"b"c`, "line one\nline two", "comma, inside"}

	for _, value := range values {
		var buf bytes.Buffer
		require.NoError(t, WriteQuoted(&buf, value))

		got, err := ReadQuoted(bufio.NewReader(&buf))
		require.NoError(t, err)
		assert.Equal(t, value, got)
	}
}

func TestWriteQuotedReturnsWriterError(t *testing.T) {
	err := WriteQuoted(failingWriter{}, "text")
	assert.EqualError(t, err, "boom")
}
