package records

import "time"

// Document is a transaction as carried by the document formats (JSON, XML).
// It has no description and keeps the timestamp as integer milliseconds.
type Document struct {
	TxID      uint64 `json:"tx_id" xml:"tx_id"`
	TxType    TxType `json:"tx_type" xml:"tx_type"`
	From      uint64 `json:"from" xml:"from"`
	To        uint64 `json:"to" xml:"to"`
	Quantity  int64  `json:"quantity" xml:"quantity"`
	Timestamp int64  `json:"timestamp" xml:"timestamp"`
	Status    Status `json:"status" xml:"status"`
}

// Transaction maps the document onto a Transaction. The mapping is total: the
// timestamp is taken as valid and the description is left empty.
func (d Document) Transaction() Transaction {
	return Transaction{
		TxID:       d.TxID,
		TxType:     d.TxType,
		FromUserID: d.From,
		ToUserID:   d.To,
		Amount:     d.Quantity,
		Timestamp:  time.UnixMilli(d.Timestamp).UTC(),
		Status:     d.Status,
	}
}
