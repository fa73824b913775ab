package model

// TransactionType classifies a normalized transaction.
type TransactionType string

const (
	PrimaryPurchase   TransactionType = "primary_purchase"
	SecondaryPurchase TransactionType = "secondary_purchase"
	Listing           TransactionType = "listing"
	Delisting         TransactionType = "delisting"
)

func (t TransactionType) String() string {
	return string(t)
}

// Valid reports whether t is one of the four known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case PrimaryPurchase, SecondaryPurchase, Listing, Delisting:
		return true
	default:
		return false
	}
}

// IsPurchase reports whether t moves funds from a buyer.
func (t TransactionType) IsPurchase() bool {
	return t == PrimaryPurchase || t == SecondaryPurchase
}
