package rowbase

import (
	"time"

	"github.com/google/uuid"
)

// TxType tags the kind of mutation a Transaction records.
type TxType int

const (
	TxInserted TxType = iota
	TxUpdated
	TxReplaced
	TxDeleted
)

func (t TxType) String() string {
	switch t {
	case TxInserted:
		return "Inserted"
	case TxUpdated:
		return "Updated"
	case TxReplaced:
		return "Replaced"
	case TxDeleted:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// Transaction is a tagged row mutation record (spec §4.4). Delete carries
// no row payload. TxID is a correlation identifier stamped at creation,
// useful for tracing a mutation from queue to committed flush in logs.
type Transaction struct {
	TxID      uuid.UUID
	Type      TxType
	ID        int64
	Row       *Row
	CreatedAt time.Time
}

// NewTransaction builds a Transaction with a fresh TxID and CreatedAt set
// to now.
func NewTransaction(txType TxType, id int64, row *Row) Transaction {
	return Transaction{
		TxID:      uuid.New(),
		Type:      txType,
		ID:        id,
		Row:       row,
		CreatedAt: time.Now(),
	}
}
