package types

// TransactionStatus is the status of a settled sale transaction. Settlements
// commit atomically, so a transaction is COMPLETED from the moment it exists
// and CANCELED once reversed.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusCanceled  TransactionStatus = "CANCELED"
)

func (s TransactionStatus) String() string {
	return string(s)
}

func (s TransactionStatus) Validate() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusCanceled:
		return true
	}
	return false
}
