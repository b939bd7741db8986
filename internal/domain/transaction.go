package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType says whether a transaction adds to or subtracts from the balance.
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

var transactionTypes = []TransactionType{
	TransactionTypeExpense,
	TransactionTypeIncome,
}

// TransactionTypes returns the closed set of transaction types in display order.
func TransactionTypes() []TransactionType {
	out := make([]TransactionType, len(transactionTypes))
	copy(out, transactionTypes)
	return out
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	for _, known := range transactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTransactionType normalizes s (case, surrounding whitespace) and
// returns the matching TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(normalize(s))
	if !t.Valid() {
		return "", &ValidationError{Field: "transaction_type", Value: s, Reason: "must be one of " + joinTypes()}
	}
	return t, nil
}

// Category classifies a transaction. The set is closed.
type Category string

const (
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryUtilities      Category = "utilities"
	CategoryEntertainment  Category = "entertainment"
	CategoryShopping       Category = "shopping"
	CategorySalary         Category = "salary"
	CategoryInvestment     Category = "investment"
	CategoryOther          Category = "other"
)

var categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryShopping,
	CategorySalary,
	CategoryInvestment,
	CategoryOther,
}

// Categories returns the closed set of categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes s and returns the matching Category.
func ParseCategory(s string) (Category, error) {
	c := Category(normalize(s))
	if !c.Valid() {
		return "", &ValidationError{Field: "category", Value: s, Reason: "must be one of " + joinCategories()}
	}
	return c, nil
}

// ParseAmount parses an exact decimal amount. Negative amounts are rejected:
// the sign of a transaction is carried by its type.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Value: s, Reason: "not a decimal number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "amount", Value: s, Reason: "must not be negative"}
	}
	return d, nil
}

// Transaction is one recorded financial event.
// ID is zero until the store assigns one.
type Transaction struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"transaction_type"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// Validate checks the fields the store requires before persisting.
func (t Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Value: t.Amount.String(), Reason: "must not be negative"}
	}
	if !t.Type.Valid() {
		return &ValidationError{Field: "transaction_type", Value: string(t.Type), Reason: "must be one of " + joinTypes()}
	}
	if !t.Category.Valid() {
		return &ValidationError{Field: "category", Value: string(t.Category), Reason: "must be one of " + joinCategories()}
	}
	return nil
}

// SignedAmount returns the amount with the sign implied by the type:
// positive for income, negative for expense.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Filter narrows a transaction listing. Nil fields do not constrain.
// Start and End are inclusive.
type Filter struct {
	Start    *time.Time
	End      *time.Time
	Type     *TransactionType
	Category *Category
}

// Matches reports whether tx satisfies every set field of f.
func (f Filter) Matches(tx Transaction) bool {
	if f.Start != nil && tx.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && tx.Date.After(*f.End) {
		return false
	}
	if f.Type != nil && tx.Type != *f.Type {
		return false
	}
	if f.Category != nil && tx.Category != *f.Category {
		return false
	}
	return true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func joinTypes() string {
	names := make([]string, len(transactionTypes))
	for i, t := range transactionTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func joinCategories() string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
