package core

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const DateLayout = "2006-01-02"

// Field limits shared by validation and storage.
const (
	MaxDescriptionLen  = 200
	MaxCategoryNameLen = 50
	DefaultColor       = "#007bff"
)

type (
	TxType string

	Date struct {
		time.Time
	}

	User struct {
		ID        int64
		Username  string
		Email     string
		CreatedAt time.Time
	}

	Category struct {
		ID        int64
		UserID    int64
		Name      string
		Type      TxType
		Color     string
		CreatedAt time.Time
	}

	Transaction struct {
		ID          int64
		UserID      int64
		CategoryID  int64
		Type        TxType
		Amount      Money
		Description string
		Date        Date
		CreatedAt   time.Time
		UpdatedAt   time.Time

		// Category is populated by reads that join the category row.
		Category *Category
	}
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseTxType accepts "income" or "expense", case-insensitively.
func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", Invalid("common.type_invalid")
	}
	return t, nil
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

func (t TxType) String() string {
	return string(t)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location, returned as UTC midnight.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, Invalid("common.date_invalid")
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n calendar days later (earlier when n < 0).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysUntil counts calendar days from d to o. Both are UTC midnights, so
// whole seconds divide evenly.
func (d Date) DaysUntil(o Date) int {
	return int((o.Time.Unix() - d.Time.Unix()) / 86400)
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }

// MarshalText renders the date as YYYY-MM-DD, so JSON payloads carry plain dates.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (c Category) Validate() error {
	var keys []string
	name := strings.TrimSpace(c.Name)
	if name == "" {
		keys = append(keys, "categories.name_required")
	} else if utf8.RuneCountInString(name) > MaxCategoryNameLen {
		keys = append(keys, "categories.name_too_long")
	}
	if !c.Type.Valid() {
		keys = append(keys, "categories.type_invalid")
	}
	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		keys = append(keys, "categories.color_invalid")
	}
	if len(keys) > 0 {
		return Invalid(keys...)
	}
	return nil
}

// Validate checks the fields a client controls. Category existence and type
// agreement need storage and are checked by the service.
func (t Transaction) Validate() error {
	var keys []string
	if err := t.Amount.Validate(); err != nil {
		keys = append(keys, keysOf(err)...)
	}
	if !t.Type.Valid() {
		keys = append(keys, "transactions.type_invalid")
	}
	if t.Date.IsZero() {
		keys = append(keys, "transactions.date_required")
	}
	if t.CategoryID <= 0 {
		keys = append(keys, "transactions.category_required")
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLen {
		keys = append(keys, "transactions.description_too_long")
	}
	if len(keys) > 0 {
		return Invalid(keys...)
	}
	return nil
}
