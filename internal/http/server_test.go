package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incometracker/internal/analytics"
	"incometracker/internal/auth"
	"incometracker/internal/i18n"
	"incometracker/internal/period"
	"incometracker/internal/services"
	"incometracker/internal/storage"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

type testEnv struct {
	t      *testing.T
	server *Server
	cookie *http.Cookie
}

func newTestEnv(t *testing.T, opts Options, ready func(context.Context) error) *testEnv {
	t.Helper()
	store, err := storage.Open(context.Background(), storage.Options{
		Dialect:    storage.SQLite,
		SQLitePath: filepath.Join(t.TempDir(), "api.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	catalog, err := i18n.Default("en")
	require.NoError(t, err)

	resolver := period.NewResolver()
	sessions := auth.NewManager(store.Sessions(), time.Hour)
	if opts.RateLimitPerMin == 0 {
		opts.RateLimitPerMin = 1000
	}
	s := NewServer(":0", opts, Deps{
		Auth:         services.NewAuthService(store, sessions),
		Categories:   services.NewCategoryService(store),
		Transactions: services.NewTransactionService(store, nil),
		Analytics:    analytics.NewEngine(store, resolver),
		Resolver:     resolver,
		Catalog:      catalog,
		Ready:        ready,
		Now:          func() time.Time { return fixedNow },
	})
	t.Cleanup(func() { s.limiter.Stop() })
	return &testEnv{t: t, server: s}
}

func (e *testEnv) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// login registers alice and keeps her session cookie.
func (e *testEnv) login() {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret123",
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "secret123"})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_token" {
			e.cookie = c
		}
	}
	require.NotNil(e.t, e.cookie, "login should set the session cookie")
}

func (e *testEnv) categoryID(typ, name string) int64 {
	e.t.Helper()
	rec := e.do(http.MethodGet, "/api/categories?type="+typ, nil)
	require.Equal(e.t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Categories []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"categories"`
	}](e.t, rec)
	for _, c := range resp.Categories {
		if c.Name == name {
			return c.ID
		}
	}
	e.t.Fatalf("category %q not found", name)
	return 0
}

func (e *testEnv) createTransaction(body map[string]any) int64 {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/transactions", body)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[struct {
		Transaction struct {
			ID int64 `json:"id"`
		} `json:"transaction"`
	}](e.t, rec)
	return resp.Transaction.ID
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, Options{}, func(context.Context) error { return errors.New("db down") })

	rec := env.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = env.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[healthResponse](t, rec)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, Version, health.Version)
	assert.Equal(t, "en", health.Language)
	assert.Contains(t, health.SupportedLanguages, "zh")

	rec = env.do(http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[configResponse](t, rec)
	assert.Equal(t, AppName, cfg.AppName)
	assert.True(t, cfg.Features["bulk_operations"])
	assert.Len(t, cfg.Features, 7)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)

	rec := env.do(http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, CodeUnauthorized, decode[errorBody](t, rec).Code)

	env.login()

	rec = env.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "wrong123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[userResponse](t, rec)
	assert.Equal(t, "alice", me.User.Username)
	assert.Equal(t, "alice@example.com", me.User.Email)

	rec = env.do(http.MethodPost, "/api/auth/change-password", map[string]string{
		"current_password": "wrong123", "new_password": "newsecret1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/auth/change-password", map[string]string{
		"current_password": "secret123", "new_password": "newsecret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerToken(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	env.login()
	token := env.cookie.Value
	env.cookie = nil

	rec := env.do(http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	env.login()

	rec := env.do(http.MethodGet, "/api/categories?type=income", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[categoryListResponse](t, rec).Categories, 4)

	rec = env.do(http.MethodPost, "/api/categories", map[string]string{"name": "Pets", "type": "expense"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[categoryResponse](t, rec)
	assert.Equal(t, "#007bff", created.Category.Color)
	assert.NotEmpty(t, created.Message)

	rec = env.do(http.MethodPost, "/api/categories", map[string]string{"name": "Pets", "type": "expense"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/api/categories", map[string]string{"name": "Pets", "type": "gift"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/api/categories/" + itoa(created.Category.ID)
	rec = env.do(http.MethodPut, path, map[string]string{"color": "#112233"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[categoryResponse](t, rec)
	assert.Equal(t, "Pets", updated.Category.Name)
	assert.Equal(t, "#112233", updated.Category.Color)

	rec = env.do(http.MethodPut, path, map[string]string{"color": "blue"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.createTransaction(map[string]any{
		"amount": "30", "type": "expense", "category_id": created.Category.ID, "date": "2024-03-02",
	})

	rec = env.do(http.MethodGet, path+"/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[categoryTransactionsResponse](t, rec)
	assert.Len(t, listed.Transactions, 1)
	assert.Equal(t, int64(1), listed.Pagination.Total)

	rec = env.do(http.MethodGet, "/api/categories/stats?type=expense", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[categoryStatsResponse](t, rec)
	var pets categoryStatRecord
	for _, st := range stats.Categories {
		if st.Name == "Pets" {
			pets = st
		}
	}
	assert.Equal(t, int64(1), pets.TransactionCount)
	assert.Equal(t, 30.0, pets.TotalAmount)

	rec = env.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodGet, "/api/categories/999999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodGet, "/api/categories/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionEndpoints(t *testing.T) {
	env := newTestEnv(t, Options{PerPage: 2}, nil)
	env.login()
	salary := env.categoryID("income", "Salary")
	food := env.categoryID("expense", "Food")

	rec := env.do(http.MethodPost, "/api/transactions", map[string]any{
		"amount": "abc", "type": "expense", "category_id": food, "date": "2024-13-01",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error, "; ")

	rec = env.do(http.MethodPost, "/api/transactions", map[string]any{
		"amount": 10, "type": "income", "category_id": food, "date": "2024-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id1 := env.createTransaction(map[string]any{"amount": "1500,50", "type": "income", "category_id": salary, "date": "2024-03-01"})
	id2 := env.createTransaction(map[string]any{"amount": 12.5, "type": "expense", "category_id": food, "date": "2024-03-05", "description": "lunch"})
	id3 := env.createTransaction(map[string]any{"amount": 20, "type": "expense", "category_id": food, "date": "2024-03-06", "description": "dinner"})

	rec = env.do(http.MethodGet, "/api/transactions/"+itoa(id1), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[transactionResponse](t, rec)
	assert.Equal(t, 1500.5, got.Transaction.Amount)
	require.NotNil(t, got.Transaction.Category)
	assert.Equal(t, "Salary", got.Transaction.Category.Name)

	rec = env.do(http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[transactionPageResponse](t, rec)
	assert.Len(t, page.Transactions, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)
	assert.True(t, page.Pagination.HasNext)
	assert.Equal(t, "2024-03-06", page.Transactions[0].Date)

	rec = env.do(http.MethodGet, "/api/transactions?page=9223372036854775807", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page = decode[transactionPageResponse](t, rec)
	assert.Empty(t, page.Transactions)
	assert.Equal(t, int64(3), page.Pagination.Total)

	rec = env.do(http.MethodGet, "/api/transactions?type=expense&search=lunch", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[transactionPageResponse](t, rec)
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, id2, page.Transactions[0].ID)

	rec = env.do(http.MethodGet, "/api/transactions?type=bogus&category_id=x", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), decode[transactionPageResponse](t, rec).Pagination.Total)

	rec = env.do(http.MethodGet, "/api/transactions?start_date=March", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, "/api/transactions/"+itoa(id2), map[string]any{"amount": "15", "description": "late lunch"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[transactionResponse](t, rec)
	assert.Equal(t, 15.0, updated.Transaction.Amount)
	assert.Equal(t, "late lunch", updated.Transaction.Description)
	assert.Equal(t, "2024-03-05", updated.Transaction.Date)

	rec = env.do(http.MethodPut, "/api/transactions/"+itoa(id2), map[string]any{"type": "income", "category_id": salary}, "Accept-Language", "en")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Transaction type cannot be changed", decode[errorBody](t, rec).Error)

	rec = env.do(http.MethodPut, "/api/transactions/"+itoa(id2), map[string]any{"type": "expense", "amount": 16})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "expense", decode[transactionResponse](t, rec).Transaction.Type)

	rec = env.do(http.MethodPost, "/api/transactions/bulk-delete", map[string]any{"ids": []int64{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/transactions/bulk-delete", map[string]any{"ids": []int64{id2, 999999}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/transactions/bulk-delete", map[string]any{"ids": []int64{id2, id3}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(2), decode[bulkDeleteResponse](t, rec).Deleted)

	rec = env.do(http.MethodDelete, "/api/transactions/"+itoa(id1), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodDelete, "/api/transactions/"+itoa(id1), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLegacyIncome(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	env.login()

	rec := env.do(http.MethodPost, "/api/income", map[string]any{"amount": "250", "description": "gift"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[transactionResponse](t, rec)
	assert.Equal(t, "income", created.Transaction.Type)
	assert.Equal(t, "2024-03-15", created.Transaction.Date)
	require.NotNil(t, created.Transaction.Category)
	assert.Equal(t, "Other Income", created.Transaction.Category.Name)

	rec = env.do(http.MethodGet, "/api/income", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[transactionPageResponse](t, rec).Transactions, 1)
}

func TestAnalyticsEndpoints(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	env.login()
	salary := env.categoryID("income", "Salary")
	food := env.categoryID("expense", "Food")
	transport := env.categoryID("expense", "Transport")

	env.createTransaction(map[string]any{"amount": "1000", "type": "income", "category_id": salary, "date": "2024-02-10"})
	env.createTransaction(map[string]any{"amount": "2000", "type": "income", "category_id": salary, "date": "2024-03-01"})
	env.createTransaction(map[string]any{"amount": "75", "type": "expense", "category_id": food, "date": "2024-03-02"})
	env.createTransaction(map[string]any{"amount": "25", "type": "expense", "category_id": transport, "date": "2024-03-02"})

	t.Run("overview", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/analytics/overview", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		o := decode[overviewResponse](t, rec)
		assert.Equal(t, "2024-03-01", o.Period.StartDate)
		assert.Equal(t, "2024-03-31", o.Period.EndDate)
		assert.Equal(t, "month", o.Period.PeriodType)
		assert.Equal(t, 2000.0, o.Summary.TotalIncome)
		assert.Equal(t, 100.0, o.Summary.TotalExpense)
		assert.Equal(t, 1900.0, o.Summary.NetIncome)
		assert.Equal(t, int64(3), o.Summary.TotalTransactions)
		assert.Equal(t, 100.0, o.Changes.IncomeChange)
		assert.Equal(t, 0.0, o.Changes.ExpenseChange)
	})

	t.Run("invalid period", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/analytics/overview?period=decade", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		for _, p := range []string{"MONTH", "Month", "", "%20month"} {
			rec = env.do(http.MethodGet, "/api/analytics/overview?period="+p, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, p)
		}
		rec = env.do(http.MethodGet, "/api/analytics/overview?period=custom&start_date=2024-03-10", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("trends", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/analytics/trends?group_by=bogus", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		tr := decode[trendsResponse](t, rec)
		assert.Equal(t, "day", tr.Period.GroupBy)
		require.Len(t, tr.ExpenseTrends, 1)
		assert.Equal(t, trendPoint{Date: "2024-03-02", Amount: 100}, tr.ExpenseTrends[0])
	})

	t.Run("categories", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/analytics/categories-analysis", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		b := decode[breakdownResponse](t, rec)
		assert.Equal(t, "expense", b.Period.Type)
		assert.Equal(t, 100.0, b.TotalAmount)
		require.Len(t, b.Categories, 2)
		assert.Equal(t, "Food", b.Categories[0].Name)
		assert.Equal(t, 75.0, b.Categories[0].Percentage)

		rec = env.do(http.MethodGet, "/api/analytics/categories?type=gift", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("monthly comparison", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/analytics/monthly-comparison?months=2", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		m := decode[monthlyComparisonResponse](t, rec)
		require.Len(t, m.MonthlyComparison, 2)
		assert.Equal(t, "2024-02", m.MonthlyComparison[0].Month)
		assert.Equal(t, 1000.0, m.MonthlyComparison[0].Income)
		assert.Equal(t, 3, m.MonthlyComparison[1].MonthNum)
		assert.Equal(t, 1900.0, m.MonthlyComparison[1].Net)

		rec = env.do(http.MethodGet, "/api/analytics/monthly-comparison", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[monthlyComparisonResponse](t, rec).MonthlyComparison, 6)

		for _, months := range []string{"abc", "0", "25"} {
			rec = env.do(http.MethodGet, "/api/analytics/monthly-comparison?months="+months, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, months)
		}
	})

	t.Run("export", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/analytics/export", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		csvResp := decode[csvExportResponse](t, rec)
		assert.Equal(t, "transactions_2024-03-01_2024-03-31.csv", csvResp.Filename)
		lines := strings.Split(strings.TrimSpace(csvResp.CSVData), "\n")
		assert.Len(t, lines, 4)
		assert.Equal(t, "ID,Date,Type,Category,Amount,Description,Created At", lines[0])

		rec = env.do(http.MethodGet, "/api/analytics/export?format=json&period=year", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		doc := decode[struct {
			ExportInfo struct {
				Username string `json:"username"`
				Period   struct {
					StartDate string `json:"start_date"`
				} `json:"period"`
			} `json:"export_info"`
			Transactions []json.RawMessage `json:"transactions"`
		}](t, rec)
		assert.Equal(t, "alice", doc.ExportInfo.Username)
		assert.Equal(t, "2024-01-01", doc.ExportInfo.Period.StartDate)
		assert.Len(t, doc.Transactions, 4)
	})

	t.Run("export format", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/analytics/export?format=xml", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLanguageNegotiation(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)

	rec := env.do(http.MethodGet, "/api/health", nil, "Accept-Language", "zh-CN,zh;q=0.9")
	assert.Equal(t, "zh", rec.Header().Get("Content-Language"))

	rec = env.do(http.MethodGet, "/api/health?lang=fr", nil, "Accept-Language", "zh")
	assert.Equal(t, "fr", rec.Header().Get("Content-Language"))

	rec = env.do(http.MethodGet, "/api/transactions", nil, "Accept-Language", "zh")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEqual(t, "Unauthorized access", decode[errorBody](t, rec).Error)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, Options{CORSOrigins: []string{"http://localhost:3000"}}, nil)

	rec := env.do(http.MethodOptions, "/api/transactions", nil,
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", "POST")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = env.do(http.MethodGet, "/api/health", nil, "Origin", "http://evil.example")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, Options{RateLimitPerMin: 2}, nil)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/health", nil).Code)
	}
	rec := env.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, CodeTooMany, decode[errorBody](t, rec).Code)

	// Probes bypass the API limiter.
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz", nil).Code)
}

func TestNotFoundIsJSON(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	rec := env.do(http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decode[errorBody](t, rec).Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
