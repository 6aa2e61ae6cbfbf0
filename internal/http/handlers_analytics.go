package http

import (
	"net/http"
	"strconv"
	"strings"

	"incometracker/internal/analytics"
	"incometracker/internal/core"
	"incometracker/internal/export"
	"incometracker/internal/period"
)

const defaultComparisonMonths = 6

type overviewPeriod struct {
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	PeriodType string `json:"period_type"`
}

type overviewSummary struct {
	TotalIncome       float64 `json:"total_income"`
	TotalExpense      float64 `json:"total_expense"`
	NetIncome         float64 `json:"net_income"`
	IncomeCount       int64   `json:"income_count"`
	ExpenseCount      int64   `json:"expense_count"`
	TotalTransactions int64   `json:"total_transactions"`
}

type overviewChanges struct {
	IncomeChange  float64 `json:"income_change"`
	ExpenseChange float64 `json:"expense_change"`
}

type overviewResponse struct {
	Period  overviewPeriod  `json:"period"`
	Summary overviewSummary `json:"summary"`
	Changes overviewChanges `json:"changes"`
}

type trendPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	GroupBy   string `json:"group_by"`
}

type trendPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type trendsResponse struct {
	Period        trendPeriod  `json:"period"`
	IncomeTrends  []trendPoint `json:"income_trends"`
	ExpenseTrends []trendPoint `json:"expense_trends"`
}

type breakdownPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Type      string `json:"type"`
}

type categoryShare struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Color            string  `json:"color"`
	Amount           float64 `json:"amount"`
	Percentage       float64 `json:"percentage"`
	TransactionCount int64   `json:"transaction_count"`
}

type breakdownResponse struct {
	Period      breakdownPeriod `json:"period"`
	TotalAmount float64         `json:"total_amount"`
	Categories  []categoryShare `json:"categories"`
}

type monthRecord struct {
	Month    string  `json:"month"`
	Year     int     `json:"year"`
	MonthNum int     `json:"month_num"`
	Income   float64 `json:"income"`
	Expense  float64 `json:"expense"`
	Net      float64 `json:"net"`
}

type monthlyComparisonResponse struct {
	MonthlyComparison []monthRecord `json:"monthly_comparison"`
}

type csvExportResponse struct {
	CSVData  string `json:"csv_data"`
	Filename string `json:"filename"`
}

// periodParam is ?period, or month when the parameter is absent.
func periodParam(r *http.Request) string {
	q := r.URL.Query()
	if !q.Has("period") {
		return string(period.Month)
	}
	return q.Get("period")
}

// interval resolves ?period, ?start_date and ?end_date against today.
func (s *Server) interval(r *http.Request) (period.Interval, error) {
	q := r.URL.Query()
	return s.resolver.Resolve(periodParam(r), q.Get("start_date"), q.Get("end_date"), s.now())
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	iv, err := s.interval(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	o, err := s.engine.Overview(r.Context(), userIDFrom(r.Context()), iv)
	if err != nil {
		s.writeError(w, r, err, "analytics.overview_failed")
		return
	}
	writeJSON(w, http.StatusOK, overviewResponse{
		Period: overviewPeriod{
			StartDate:  iv.Start.String(),
			EndDate:    iv.End.String(),
			PeriodType: periodParam(r),
		},
		Summary: overviewSummary{
			TotalIncome:       o.Income.Total.Float(),
			TotalExpense:      o.Expense.Total.Float(),
			NetIncome:         o.Net.Float(),
			IncomeCount:       o.Income.Count,
			ExpenseCount:      o.Expense.Count,
			TotalTransactions: o.TotalTransactions(),
		},
		Changes: overviewChanges{
			IncomeChange:  o.IncomeChange.InexactFloat64(),
			ExpenseChange: o.ExpenseChange.InexactFloat64(),
		},
	})
}

func trendPoints(points []analytics.TrendPoint) []trendPoint {
	out := make([]trendPoint, 0, len(points))
	for _, p := range points {
		out = append(out, trendPoint{Date: p.Date.String(), Amount: p.Amount.Float()})
	}
	return out
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	iv, err := s.interval(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	g := analytics.ParseGranularity(r.URL.Query().Get("group_by"))
	t, err := s.engine.Trends(r.Context(), userIDFrom(r.Context()), iv, g)
	if err != nil {
		s.writeError(w, r, err, "analytics.trends_failed")
		return
	}
	writeJSON(w, http.StatusOK, trendsResponse{
		Period:        trendPeriod{StartDate: iv.Start.String(), EndDate: iv.End.String(), GroupBy: string(t.GroupBy)},
		IncomeTrends:  trendPoints(t.Income),
		ExpenseTrends: trendPoints(t.Expense),
	})
}

func (s *Server) handleCategoryAnalysis(w http.ResponseWriter, r *http.Request) {
	typ := core.Expense
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, err := core.ParseTxType(raw)
		if err != nil {
			s.writeError(w, r, core.Invalid("analytics.type_invalid"), "")
			return
		}
		typ = parsed
	}
	iv, err := s.interval(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	b, err := s.engine.Categories(r.Context(), userIDFrom(r.Context()), typ, iv)
	if err != nil {
		s.writeError(w, r, err, "analytics.categories_failed")
		return
	}

	shares := make([]categoryShare, 0, len(b.Categories))
	for _, c := range b.Categories {
		shares = append(shares, categoryShare{
			ID:               c.CategoryID,
			Name:             c.Name,
			Color:            c.Color,
			Amount:           c.Amount.Float(),
			Percentage:       c.Percentage.InexactFloat64(),
			TransactionCount: c.Count,
		})
	}
	writeJSON(w, http.StatusOK, breakdownResponse{
		Period:      breakdownPeriod{StartDate: iv.Start.String(), EndDate: iv.End.String(), Type: typ.String()},
		TotalAmount: b.Total.Float(),
		Categories:  shares,
	})
}

func (s *Server) handleMonthlyComparison(w http.ResponseWriter, r *http.Request) {
	months := defaultComparisonMonths
	if raw := strings.TrimSpace(r.URL.Query().Get("months")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, core.Invalid("analytics.months_invalid"), "")
			return
		}
		months = n
	}
	summaries, err := s.engine.MonthlyComparison(r.Context(), userIDFrom(r.Context()), months, s.now())
	if err != nil {
		s.writeError(w, r, err, "analytics.monthly_failed")
		return
	}

	out := make([]monthRecord, 0, len(summaries))
	for _, m := range summaries {
		out = append(out, monthRecord{
			Month:    m.Label(),
			Year:     m.Interval.Start.Year(),
			MonthNum: int(m.Interval.Start.Month()),
			Income:   m.Income.Float(),
			Expense:  m.Expense.Float(),
			Net:      m.Net.Float(),
		})
	}
	writeJSON(w, http.StatusOK, monthlyComparisonResponse{MonthlyComparison: out})
}

// exportLabels localizes the CSV header and type labels.
func (s *Server) exportLabels(r *http.Request) export.Labels {
	lang := languageFrom(r.Context())
	var l export.Labels
	for i, key := range []string{"id", "date", "type", "category", "amount", "description", "created_at"} {
		l.Header[i] = s.catalog.Message(lang, "export."+key)
	}
	l.Income = s.catalog.Message(lang, "export.income")
	l.Expense = s.catalog.Message(lang, "export.expense")
	return l
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	iv, err := s.interval(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	userID := userIDFrom(r.Context())
	txs, err := s.txs.Between(r.Context(), userID, iv)
	if err != nil {
		s.writeError(w, r, err, "analytics.export_failed")
		return
	}

	if format == export.JSON {
		u, err := s.auth.CurrentUser(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, err, "analytics.export_failed")
			return
		}
		writeJSON(w, http.StatusOK, export.NewEnvelope(u, iv, txs, s.now()))
		return
	}

	data, err := export.RenderCSV(txs, s.exportLabels(r))
	if err != nil {
		s.writeError(w, r, err, "analytics.export_failed")
		return
	}
	writeJSON(w, http.StatusOK, csvExportResponse{CSVData: data, Filename: export.Filename(iv)})
}
