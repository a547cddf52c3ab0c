package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"tripledger/internal/core"
	"tripledger/internal/ledger"
	"tripledger/internal/rates"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	owner := usernameFrom(r.Context())
	rec, errMsg := s.recordFromForm(r, owner)
	if errMsg != "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(errMsg) + `</div>`))
		return
	}

	// Classify against category history before the new record lands.
	hint := s.suggestionFor(r, owner, rec.Category, rec.Amount)

	created, err := s.ledger.Create(r.Context(), rec)
	if err != nil {
		s.writeMutationError(w, r, err, "Expense create error")
		return
	}

	s.invalidateRecords(owner)
	w.Header().Set("HX-Trigger", `{"expense:created": {"id": "`+template.JSEscapeString(created.ID)+`"}}`)
	w.WriteHeader(http.StatusOK)

	msg := `<div class="success">Expense saved: ` +
		template.HTMLEscapeString(created.Description) +
		` (` + template.HTMLEscapeString(created.Amount.String()) + ` ` + template.HTMLEscapeString(created.Currency) + `)</div>`
	if hint != "" {
		msg += `<div class="hint" data-kind="` + template.HTMLEscapeString(hint) + `">` + template.HTMLEscapeString(suggestionText(hint)) + `</div>`
	}
	_, _ = w.Write([]byte(msg))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	owner := usernameFrom(r.Context())
	rec, errMsg := s.recordFromForm(r, owner)
	if errMsg != "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(errMsg) + `</div>`))
		return
	}
	rec.ID = sanitizeInput(r.Form.Get("id"))
	if rec.ID == "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Missing record id</div>`))
		return
	}

	updated, err := s.ledger.Update(r.Context(), rec)
	if err != nil {
		s.writeMutationError(w, r, err, "Expense update error")
		return
	}

	s.invalidateRecords(owner)
	w.Header().Set("HX-Trigger", `{"expense:updated": {"id": "`+template.JSEscapeString(updated.ID)+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Expense updated: ` + template.HTMLEscapeString(updated.Description) + `</div>`))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	owner := usernameFrom(r.Context())
	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Missing record id</div>`))
		return
	}

	if err := s.ledger.Delete(r.Context(), owner, id); err != nil {
		s.writeMutationError(w, r, err, "Expense delete error")
		return
	}

	s.invalidateRecords(owner)
	w.Header().Set("HX-Trigger", `{"expense:deleted": {"id": "`+template.JSEscapeString(id)+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Expense deleted</div>`))
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	owner := usernameFrom(r.Context())
	amountStr := strings.TrimSpace(r.Form.Get("amount"))
	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Invalid budget amount</div>`))
		return
	}

	if err := s.budgets.Set(r.Context(), owner, core.Money{Cents: cents}); err != nil {
		s.writeMutationError(w, r, err, "Budget set error")
		return
	}

	w.Header().Set("HX-Trigger", `{"budget:updated": {}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Budget set to ` + template.HTMLEscapeString(core.Money{Cents: cents}.String()) + `</div>`))
}

// recordFromForm builds an unvalidated expense record from form fields.
// A non-empty second return value is the user-facing rejection message.
func (s *Server) recordFromForm(r *http.Request, owner string) (core.ExpenseRecord, string) {
	date, err := core.ParseDate(strings.TrimSpace(r.Form.Get("date")))
	if err != nil {
		return core.ExpenseRecord{}, "Invalid date, use YYYY-MM-DD"
	}

	amountStr := strings.TrimSpace(r.Form.Get("amount"))
	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil || cents <= 0 {
		return core.ExpenseRecord{}, "Invalid amount"
	}

	rec := core.ExpenseRecord{
		Owner:       owner,
		Date:        date,
		Category:    sanitizeInput(r.Form.Get("category")),
		Description: sanitizeInput(r.Form.Get("description")),
		Amount:      core.Money{Cents: cents},
		Currency:    strings.ToUpper(sanitizeInput(r.Form.Get("currency"))),
		Location:    sanitizeInput(r.Form.Get("location")),
		Trip:        sanitizeInput(r.Form.Get("trip")),
	}

	if shared := sanitizeInput(r.Form.Get("shared_with")); shared != "" {
		for _, name := range strings.Split(shared, ",") {
			if name = strings.TrimSpace(name); name != "" {
				rec.SharedWith = append(rec.SharedWith, name)
			}
		}
	}

	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, "Invalid expense: " + err.Error()
	}
	return rec, ""
}

// suggestionFor classifies the amount against the owner's history in the
// category. Failures degrade to no hint.
func (s *Server) suggestionFor(r *http.Request, owner, category string, amount core.Money) string {
	records, err := s.getRecords(r.Context(), owner)
	if err != nil {
		slog.WarnContext(r.Context(), "Suggestion lookup failed", "owner", owner, "error", err)
		return ""
	}
	avg, count := core.CategoryAverage(records, category)
	kind := core.Suggest(amount, avg, count)
	if kind == core.SuggestionNone {
		return ""
	}
	return kind.String()
}

func suggestionText(kind string) string {
	switch kind {
	case core.SuggestionFirstInCategory.String():
		return "First expense in this category."
	case core.SuggestionTypicalSpend.String():
		return "In line with your usual spend for this category."
	case core.SuggestionAboveAverage.String():
		return "Above your category average."
	case core.SuggestionWellAboveAverage.String():
		return "Well above your category average."
	default:
		return ""
	}
}

func (s *Server) writeMutationError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	slog.ErrorContext(r.Context(), logMsg, "error", err)
	switch {
	case errors.Is(err, ledger.ErrRecordNotFound):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<div class="error">Record not found, it may have been deleted</div>`))
	case errors.Is(err, rates.ErrRateUnavailable):
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">No exchange rate available for that currency</div>`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Something went wrong, try again</div>`))
	}
}
