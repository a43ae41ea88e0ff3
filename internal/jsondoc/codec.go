// Package jsondoc reads and writes the JSON document format: a single array
// of transaction objects.
//
//	[
//	  {
//	    "tx_id": 1001,
//	    "tx_type": "DEPOSIT",
//	    "from": 0,
//	    "to": 501,
//	    "quantity": 50000,
//	    "timestamp": 1672531200000,
//	    "status": "SUCCESS"
//	  }
//	]
package jsondoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ginjaninja78/txconv/internal/records"
)

// DefaultIndent is used by Print when no indent is configured.
const DefaultIndent = "  "

var (
	// ErrNotArray is returned when the top-level value is not an array.
	ErrNotArray = errors.New("expected a JSON array of transactions")

	// ErrTrailingData is returned when anything but whitespace follows the array.
	ErrTrailingData = errors.New("unexpected data after JSON array")
)

// MissingFieldError reports an object without one of the required keys.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %d: missing field %q", e.Index, e.Field)
}

// wireDocument detects absent keys; every key of a document is required.
type wireDocument struct {
	TxID      *uint64         `json:"tx_id"`
	TxType    *records.TxType `json:"tx_type"`
	From      *uint64         `json:"from"`
	To        *uint64         `json:"to"`
	Quantity  *int64          `json:"quantity"`
	Timestamp *int64          `json:"timestamp"`
	Status    *records.Status `json:"status"`
}

func (w wireDocument) document(index int) (records.Document, error) {
	missing := func(field string) error {
		return &MissingFieldError{Index: index, Field: field}
	}

	switch {
	case w.TxID == nil:
		return records.Document{}, missing("tx_id")
	case w.TxType == nil:
		return records.Document{}, missing("tx_type")
	case w.From == nil:
		return records.Document{}, missing("from")
	case w.To == nil:
		return records.Document{}, missing("to")
	case w.Quantity == nil:
		return records.Document{}, missing("quantity")
	case w.Timestamp == nil:
		return records.Document{}, missing("timestamp")
	case w.Status == nil:
		return records.Document{}, missing("status")
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

// Parse decodes a JSON array of documents from r, preserving order.
// Unknown keys are ignored. Enumeration tokens and timestamps are validated.
func Parse(r io.Reader) (records.Documents, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNotArray
		}
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, ErrNotArray
	}

	docs := records.Documents{}
	for index := 0; dec.More(); index++ {
		var wire wireDocument
		if err := dec.Decode(&wire); err != nil {
			return nil, fmt.Errorf("record %d: %w", index, err)
		}
		doc, err := wire.document(index)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	// Closing bracket.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return docs, nil
}

// Print writes docs to w as an indented JSON array. An empty or nil set is
// written as [].
func Print(w io.Writer, docs records.Documents, indent string) error {
	if docs == nil {
		docs = records.Documents{}
	}
	data, err := json.MarshalIndent(docs, "", indent)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
