package records

// Set is an ordered batch of records of one family. It is implemented only by
// Transactions and Documents.
type Set interface {
	// Len returns the number of records in the batch.
	Len() int

	sealed()
}

// Transactions is the record set of the delimited formats.
type Transactions []Transaction

// Len returns the number of transactions.
func (ts Transactions) Len() int { return len(ts) }

func (Transactions) sealed() {}

// Documents converts every transaction, preserving order.
func (ts Transactions) Documents() Documents {
	out := make(Documents, len(ts))
	for i, t := range ts {
		out[i] = t.Document()
	}
	return out
}

// Documents is the record set of the document formats.
type Documents []Document

// Len returns the number of documents.
func (ds Documents) Len() int { return len(ds) }

func (Documents) sealed() {}

// Transactions converts every document, preserving order.
func (ds Documents) Transactions() Transactions {
	out := make(Transactions, len(ds))
	for i, d := range ds {
		out[i] = d.Transaction()
	}
	return out
}

// AsTransactions returns set as delimited records, converting when needed.
func AsTransactions(set Set) Transactions {
	switch s := set.(type) {
	case Transactions:
		return s
	case Documents:
		return s.Transactions()
	case nil:
		return nil
	default:
		panic("records: unknown record set")
	}
}

// AsDocuments returns set as document records, converting when needed.
func AsDocuments(set Set) Documents {
	switch s := set.(type) {
	case Transactions:
		return s.Documents()
	case Documents:
		return s
	case nil:
		return nil
	default:
		panic("records: unknown record set")
	}
}
