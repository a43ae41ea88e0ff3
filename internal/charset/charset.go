// Package charset transcodes delimited text between a configured character
// set and the UTF-8 the lexer works on.
package charset

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ErrUnsupported is returned for names the IANA index cannot map to an encoding.
var ErrUnsupported = errors.New("unsupported character set")

// Lookup resolves an IANA name or alias. It returns nil for UTF-8, which
// needs no transcoding.
func Lookup(name string) (encoding.Encoding, error) {
	if IsUTF8(name) {
		return nil, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnsupported, name, err)
	}
	// Known names without an implementation come back as nil.
	if enc == nil {
		return nil, fmt.Errorf("%w %q", ErrUnsupported, name)
	}
	return enc, nil
}

// IsUTF8 reports whether name denotes UTF-8. An empty name means UTF-8.
func IsUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// NewReader returns a reader that decodes r from the named charset into UTF-8.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// NewWriter returns a writer that encodes UTF-8 into the named charset.
// Close must be called to flush the final bytes; it does not close w.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
