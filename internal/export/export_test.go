package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incometracker/internal/core"
	"incometracker/internal/period"
)

var labels = Labels{
	Header:  [7]string{"ID", "Date", "Type", "Category", "Amount", "Description", "Created At"},
	Income:  "Income",
	Expense: "Expense",
}

func sampleTransactions() []core.Transaction {
	created := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	salary := &core.Category{ID: 1, Name: "Salary", Type: core.Income, Color: "#28a745", CreatedAt: created}
	return []core.Transaction{
		{ID: 7, Type: core.Income, Amount: core.Money{Cents: 350000}, Description: "March pay, net",
			Date: core.NewDate(2024, 3, 25), CreatedAt: created, UpdatedAt: created, Category: salary},
		{ID: 3, Type: core.Expense, Amount: core.Money{Cents: 1250},
			Date: core.NewDate(2024, 3, 2), CreatedAt: created.Add(1500 * time.Microsecond), UpdatedAt: created},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, CSV, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestRenderCSV(t *testing.T) {
	out, err := RenderCSV(sampleTransactions(), labels)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Date", "Type", "Category", "Amount", "Description", "Created At"}, rows[0])
	assert.Equal(t, []string{"7", "2024-03-25", "Income", "Salary", "3500", "March pay, net", "2024-03-05T10:30:00"}, rows[1])
	assert.Equal(t, []string{"3", "2024-03-02", "Expense", "", "12.5", "", "2024-03-05T10:30:00.001500"}, rows[2])
}

func TestRenderCSVEmpty(t *testing.T) {
	out, err := RenderCSV(nil, labels)
	require.NoError(t, err)
	assert.Equal(t, "ID,Date,Type,Category,Amount,Description,Created At\n", out)
}

func TestFilename(t *testing.T) {
	iv := period.Interval{Start: core.NewDate(2024, 3, 1), End: core.NewDate(2024, 3, 31)}
	assert.Equal(t, "transactions_2024-03-01_2024-03-31.csv", Filename(iv))
}

func TestEnvelopeJSON(t *testing.T) {
	iv := period.Interval{Start: core.NewDate(2024, 3, 1), End: core.NewDate(2024, 3, 31)}
	env := NewEnvelope(core.User{ID: 4, Username: "ana"}, iv, sampleTransactions(),
		time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC))

	b, err := json.Marshal(env)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	info := doc["export_info"].(map[string]any)
	assert.Equal(t, float64(4), info["user_id"])
	assert.Equal(t, "ana", info["username"])
	assert.Equal(t, "2024-04-01T08:00:00", info["export_date"])
	assert.Equal(t, map[string]any{"start_date": "2024-03-01", "end_date": "2024-03-31"}, info["period"])

	txs := doc["transactions"].([]any)
	require.Len(t, txs, 2)
	first := txs[0].(map[string]any)
	assert.Equal(t, float64(7), first["id"])
	assert.Equal(t, 3500.0, first["amount"])
	assert.Equal(t, "Salary", first["category"].(map[string]any)["name"])
	assert.Nil(t, txs[1].(map[string]any)["category"])
}
