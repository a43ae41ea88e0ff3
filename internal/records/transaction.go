// =============================================================================
// txconv - Transaction Domain Model
// =============================================================================
//
// This package contains the canonical transaction entity shared by the
// delimited formats (CSV, XLSX), the document record used by the document
// formats (JSON, XML), and the conversions between them.
//
// VALIDATION RULES:
//   - tx_id must be greater than 0
//   - tx_type must be one of DEPOSIT, TRANSFER, WITHDRAWAL (case-sensitive)
//   - status must be one of SUCCESS, FAILURE, PENDING (case-sensitive)
//   - timestamp (milliseconds since epoch) must be a representable instant
//
// A Transaction is only produced by NewTransaction, which validates once.
// Records are plain values and are never modified after construction.
//
// =============================================================================

package records

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

var (
	// ErrTxIDMustBePositive is returned when the transaction id is 0.
	ErrTxIDMustBePositive = errors.New("tx_id must be greater than 0")

	// ErrInvalidTxType is returned for a transaction type outside the closed set.
	ErrInvalidTxType = errors.New("unknown tx_type")

	// ErrInvalidStatus is returned for a status outside the closed set.
	ErrInvalidStatus = errors.New("unknown status")

	// ErrInvalidTimestamp is returned when the milliseconds value is out of range.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrFieldsMissing is returned when a source could not supply every field.
	ErrFieldsMissing = errors.New("some required fields are missing, cannot build transaction")
)

// ValidationError is a semantic rule violation on an assembled record.
type ValidationError struct {
	// Err is one of the sentinel errors above.
	Err error

	// Value is the offending raw value, empty when the rule has none.
	Value string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Value)
}

// Unwrap exposes the sentinel so callers can match with errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ENUMERATIONS
// =============================================================================

// TxType is the kind of a transaction.
type TxType string

const (
	Deposit    TxType = "DEPOSIT"
	Transfer   TxType = "TRANSFER"
	Withdrawal TxType = "WITHDRAWAL"
)

// ParseTxType maps an exact uppercase token onto a TxType.
func ParseTxType(s string) (TxType, error) {
	switch TxType(s) {
	case Deposit, Transfer, Withdrawal:
		return TxType(s), nil
	default:
		return "", &ValidationError{Err: ErrInvalidTxType, Value: s}
	}
}

// String returns the wire token.
func (t TxType) String() string {
	return string(t)
}

// UnmarshalText validates the token when decoding documents.
func (t *TxType) UnmarshalText(text []byte) error {
	v, err := ParseTxType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Status is the processing state of a transaction.
type Status string

const (
	Success Status = "SUCCESS"
	Failure Status = "FAILURE"
	Pending Status = "PENDING"
)

// ParseStatus maps an exact uppercase token onto a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case Success, Failure, Pending:
		return Status(s), nil
	default:
		return "", &ValidationError{Err: ErrInvalidStatus, Value: s}
	}
}

// String returns the wire token.
func (s Status) String() string {
	return string(s)
}

// UnmarshalText validates the token when decoding documents.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// =============================================================================
// TIMESTAMPS
// =============================================================================

// Representable millisecond range: years -262143 through 262142.
var (
	minTimestampMillis = time.Date(-262143, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	maxTimestampMillis = time.Date(262142, time.December, 31, 23, 59, 59, 999_000_000, time.UTC).UnixMilli()
)

// TimestampFromMillis converts milliseconds since the Unix epoch into a UTC instant.
func TimestampFromMillis(ms int64) (time.Time, error) {
	if ms < minTimestampMillis || ms > maxTimestampMillis {
		return time.Time{}, &ValidationError{Err: ErrInvalidTimestamp, Value: strconv.FormatInt(ms, 10)}
	}
	return time.UnixMilli(ms).UTC(), nil
}

// =============================================================================
// TRANSACTION
// =============================================================================

// Transaction is a single financial event.
type Transaction struct {
	// TxID is the unique identifier of the transaction.
	TxID uint64

	// TxType is the kind of the transaction.
	TxType TxType

	// FromUserID is the sender. 0 is the system itself (deposits).
	FromUserID uint64

	// ToUserID is the receiver. 0 is the system itself (withdrawals).
	ToUserID uint64

	// Amount is expressed in minor currency units (e.g. cents).
	Amount int64

	// Timestamp is the moment the transaction happened, in UTC.
	Timestamp time.Time

	// Status is the processing state.
	Status Status

	// Description is free text.
	Description string
}

// Fields holds the raw values of a transaction before validation.
type Fields struct {
	TxID            uint64
	TxType          string
	FromUserID      uint64
	ToUserID        uint64
	Amount          int64
	TimestampMillis int64
	Status          string
	Description     string
}

// NewTransaction validates the raw values and builds a Transaction.
//
// The checks run in a fixed order and the first failure is returned as a
// *ValidationError.
func NewTransaction(f Fields) (Transaction, error) {
	if f.TxID == 0 {
		return Transaction{}, &ValidationError{Err: ErrTxIDMustBePositive}
	}

	txType, err := ParseTxType(f.TxType)
	if err != nil {
		return Transaction{}, err
	}

	timestamp, err := TimestampFromMillis(f.TimestampMillis)
	if err != nil {
		return Transaction{}, err
	}

	status, err := ParseStatus(f.Status)
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{
		TxID:        f.TxID,
		TxType:      txType,
		FromUserID:  f.FromUserID,
		ToUserID:    f.ToUserID,
		Amount:      f.Amount,
		Timestamp:   timestamp,
		Status:      status,
		Description: f.Description,
	}, nil
}

// TimestampMillis returns the timestamp as milliseconds since the Unix epoch.
func (t Transaction) TimestampMillis() int64 {
	return t.Timestamp.UnixMilli()
}

// Document projects the transaction onto the document record, dropping the
// description.
func (t Transaction) Document() Document {
	return Document{
		TxID:      t.TxID,
		TxType:    t.TxType,
		From:      t.FromUserID,
		To:        t.ToUserID,
		Quantity:  t.Amount,
		Timestamp: t.TimestampMillis(),
		Status:    t.Status,
	}
}
