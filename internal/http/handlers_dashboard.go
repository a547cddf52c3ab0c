package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"tripledger/internal/core"
	"tripledger/internal/rates"
)

type summaryRow struct {
	Category string
	Amount   string
	Percent  string
	Status   string
	Width    int
}

type summaryView struct {
	Trip       string
	Budget     string
	HasBudget  bool
	TotalSpent string
	Remaining  string
	Base       string
	Rows       []summaryRow
}

type expenseRow struct {
	ID          string
	Date        string
	Category    string
	Description string
	Amount      string
	Currency    string
	Normalized  string
	Location    string
	Trip        string
	SharedWith  string
	SplitAmount string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	owner := usernameFrom(r.Context())
	trip := sanitizeInput(r.URL.Query().Get("trip"))

	records, err := s.getRecords(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Ledger load error", "error", err, "owner", owner)
		http.Error(w, "could not load expenses", http.StatusInternalServerError)
		return
	}

	filtered := filterByTrip(records, trip)
	budget := s.budgets.Get(r.Context(), owner)

	data := struct {
		Username   string
		Trips      []string
		Trip       string
		Categories []string
		Currencies []string
		Base       string
		Summary    summaryView
		Expenses   []expenseRow
	}{
		Username:   owner,
		Trips:      core.Trips(records),
		Trip:       trip,
		Categories: core.Categories,
		Currencies: core.Currencies,
		Base:       s.converter.Base(),
		Summary:    buildSummaryView(filtered, budget, trip, s.converter.Base()),
		Expenses:   buildExpenseRows(filtered),
	}

	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err, "template", "dashboard.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleSummary renders the budget-vs-spend partial for the trip filter.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	owner := usernameFrom(r.Context())
	trip := sanitizeInput(r.URL.Query().Get("trip"))

	records, err := s.getRecords(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary load error", "error", err, "owner", owner, "trip", trip)
		_, _ = w.Write([]byte(`<section id="summary" class="summary"><div class="placeholder">Could not load summary</div></section>`))
		return
	}

	filtered := filterByTrip(records, trip)
	budget := s.budgets.Get(r.Context(), owner)
	view := buildSummaryView(filtered, budget, trip, s.converter.Base())

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="summary" class="summary"><div class="placeholder">Total: ` +
			template.HTMLEscapeString(view.TotalSpent) + `</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "summary.html", view); err != nil {
		slog.ErrorContext(r.Context(), "Summary template execution failed", "error", err, "template", "summary.html")
		_, _ = w.Write([]byte(`<section id="summary" class="summary"><div class="placeholder">Could not render summary</div></section>`))
	}
}

// handleConvert renders the converter widget result.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	amountStr := strings.TrimSpace(r.URL.Query().Get("amount"))
	currency := strings.ToUpper(sanitizeInput(r.URL.Query().Get("currency")))

	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Invalid amount</div>`))
		return
	}

	base := s.converter.Base()
	snap := s.converter.RatesFor(r.Context())
	converted, err := rates.Convert(core.Money{Cents: cents}, currency, base, snap.Rates)
	if err != nil {
		slog.WarnContext(r.Context(), "Conversion failed", "currency", currency, "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">No rate available for ` + template.HTMLEscapeString(currency) + `</div>`))
		return
	}

	_, _ = w.Write([]byte(`<div class="converted">` +
		template.HTMLEscapeString(amountStr) + ` ` + template.HTMLEscapeString(currency) +
		` = ` + template.HTMLEscapeString(converted.String()) + ` ` + template.HTMLEscapeString(base) +
		`</div>`))
}

// handleLocations proxies location autocomplete queries.
func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	query := sanitizeInput(r.URL.Query().Get("q"))
	places, err := s.geocoder.Search(r.Context(), query)
	if err != nil {
		slog.ErrorContext(r.Context(), "Location search failed", "query", query, "error", err)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"location search unavailable"}`))
		return
	}
	if places == nil {
		_, _ = w.Write([]byte(`[]`))
		return
	}
	if err := json.NewEncoder(w).Encode(places); err != nil {
		slog.ErrorContext(r.Context(), "Location encode failed", "error", err)
	}
}

func buildSummaryView(records []core.ExpenseRecord, budget core.Money, trip, base string) summaryView {
	summary := core.Summarize(records, budget)

	view := summaryView{
		Trip:       trip,
		Budget:     budget.String(),
		HasBudget:  budget.Cents > 0,
		TotalSpent: summary.TotalSpent.String(),
		Remaining:  summary.Remaining.String(),
		Base:       base,
	}

	categories := make([]string, 0, len(summary.ByCategory))
	for cat := range summary.ByCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var maxCents int64
	for _, cs := range summary.ByCategory {
		if cs.Amount.Cents > maxCents {
			maxCents = cs.Amount.Cents
		}
	}

	for _, cat := range categories {
		cs := summary.ByCategory[cat]
		row := summaryRow{
			Category: cat,
			Amount:   cs.Amount.String(),
			Percent:  "N/A",
			Status:   string(cs.Status),
		}
		if cs.PercentDefined {
			row.Percent = fmt.Sprintf("%.2f%%", cs.PercentOfBudget)
		}
		if maxCents > 0 && cs.Amount.Cents > 0 {
			row.Width = int((cs.Amount.Cents*100 + maxCents/2) / maxCents) // rounded percent
			if row.Width > 0 && row.Width < 2 {
				row.Width = 2
			}
			if row.Width > 100 {
				row.Width = 100
			}
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func buildExpenseRows(records []core.ExpenseRecord) []expenseRow {
	rows := make([]expenseRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, expenseRow{
			ID:          rec.ID,
			Date:        rec.Date.String(),
			Category:    rec.Category,
			Description: rec.Description,
			Amount:      rec.Amount.String(),
			Currency:    rec.Currency,
			Normalized:  rec.Normalized.String(),
			Location:    rec.Location,
			Trip:        rec.Trip,
			SharedWith:  strings.Join(rec.SharedWith, ", "),
			SplitAmount: rec.SplitAmount.String(),
		})
	}
	return rows
}
