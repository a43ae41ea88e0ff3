package charset

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUTF8(t *testing.T) {
	for _, name := range []string{"", "UTF-8", "utf8", " utf-8 "} {
		assert.True(t, IsUTF8(name), name)
	}
	assert.False(t, IsUTF8("windows-1251"))
}

func TestUTF8IsIdentity(t *testing.T) {
	src := strings.NewReader("TX_ID")
	r, err := NewReader(src, "UTF-8")
	require.NoError(t, err)
	assert.Same(t, src, r)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, "")
	require.NoError(t, err)
	_, err = io.WriteString(w, "перевод")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "перевод", buf.String())
}

func TestWindows1251(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "windows-1251")
	require.NoError(t, err)
	_, err = io.WriteString(w, `"перевод"`)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, []byte{'"', 0xEF, 0xE5, 0xF0, 0xE5, 0xE2, 0xEE, 0xE4, '"'}, buf.Bytes())

	r, err := NewReader(&buf, "Windows-1251")
	require.NoError(t, err)
	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, `"перевод"`, string(decoded))
}

func TestLatin1Alias(t *testing.T) {
	r, err := NewReader(bytes.NewReader([]byte{0xE9}), "ISO-8859-1")
	require.NoError(t, err)
	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "é", string(decoded))
}

func TestUnknownCharset(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), "klingon")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = NewWriter(io.Discard, "klingon")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Lookup("klingon")
	assert.ErrorContains(t, err, `"klingon"`)
}
