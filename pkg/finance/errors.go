package finance

import "errors"

var (
	// ErrCategoryNotFound is returned when a category cannot be resolved
	ErrCategoryNotFound = errors.New("category not found")

	// ErrTransactionNotFound is returned when a transaction cannot be resolved for the caller
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrCategoryForbidden is returned when using another user's category
	ErrCategoryForbidden = errors.New("you cannot use this category")

	// ErrInvalidType is returned when a transaction type is not Income or Expense
	ErrInvalidType = errors.New("type must be either 'Income' or 'Expense'")

	// ErrMissingFields is returned when required transaction fields are absent
	ErrMissingFields = errors.New("please provide category, type and amount")

	// ErrInvalidMonth is returned when a month filter is not in YYYY-MM format
	ErrInvalidMonth = errors.New("please provide month in format YYYY-MM")
)
