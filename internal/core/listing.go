package core

import (
	"math"
	"strings"
)

// Pagination defaults for transaction listings.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	Type       TxType
	CategoryID int64
	From       Date
	To         Date
	Search     string
	SortBy     string // date, amount or created_at
	Ascending  bool
	Page       int
	PerPage    int
}

// Normalize clamps paging and replaces unknown sort keys with date.
func (f TransactionFilter) Normalize(defaultPerPage, maxPerPage int) TransactionFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	// Keep Offset within int.
	if last := math.MaxInt / f.PerPage; f.Page > last {
		f.Page = last
	}
	switch f.SortBy {
	case "date", "amount", "created_at":
	default:
		f.SortBy = "date"
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

func (f TransactionFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

// Page is one page of a listing.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

func (p Page[T]) Pages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p Page[T]) HasNext() bool { return p.Page < p.Pages() }
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// CategoryStat is a category with its all-time usage.
type CategoryStat struct {
	Category Category
	Count    int64
	Total    Money
}

type categorySeed struct {
	Name  string
	Type  TxType
	Color string
}

// DefaultCategories are created for every new user.
var DefaultCategories = []categorySeed{
	{"Salary", Income, "#28a745"},
	{"Bonus", Income, "#17a2b8"},
	{"Investment Income", Income, "#ffc107"},
	{"Other Income", Income, "#6c757d"},
	{"Food", Expense, "#dc3545"},
	{"Transport", Expense, "#fd7e14"},
	{"Shopping", Expense, "#e83e8c"},
	{"Entertainment", Expense, "#6f42c1"},
	{"Healthcare", Expense, "#20c997"},
	{"Education", Expense, "#0dcaf0"},
	{"Housing", Expense, "#198754"},
	{"Other Expense", Expense, "#6c757d"},
}

// OtherIncomeCategory receives legacy income entries that name no category.
const OtherIncomeCategory = "Other Income"
