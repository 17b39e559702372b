package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"billetera/internal/core"
	"billetera/internal/ledger"
)

// View models handed to templates. Amounts are formatted strings so the
// templates never touch decimals.
type summaryView struct {
	Income   string
	Expenses string
	Savings  string
	Balance  string
	Negative bool
}

type monthView struct {
	Key   string
	Label string
}

type cellView struct {
	Amount   string
	HasDebt  bool
	Paid     bool
	Account  string
	MonthKey string
}

type rowView struct {
	Account string
	Cells   []cellView
}

type totalView struct {
	Amount    string
	FullyPaid bool
}

type creditView struct {
	Account     string
	TotalDebt   string
	PaidAmount  string
	Usage       string
	Available   string
	Utilization int
	OverLimit   bool
}

type purchaseView struct {
	ID           string
	Description  string
	Account      string
	Category     string
	Amount       string
	Installments int
	Date         string
}

type matrixView struct {
	Card      string
	Accounts  []string
	Months    []monthView
	Rows      []rowView
	Totals    []totalView
	Credits   []creditView
	Purchases []purchaseView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "List accounts error", "error", err)
	}

	categories := map[string][]string{}
	for _, kind := range []core.TransactionKind{core.Income, core.Expense, core.Saving} {
		names, err := s.store.ListCategories(ctx, kind)
		if err != nil {
			slog.ErrorContext(ctx, "List categories error", "kind", kind, "error", err)
			continue
		}
		categories[string(kind)] = names
	}

	accountNames := make([]string, 0, len(accounts))
	for _, a := range accounts {
		accountNames = append(accountNames, a.Name)
	}

	data := struct {
		Today             string
		Accounts          []string
		IncomeCategories  []string
		ExpenseCategories []string
		SavingCategories  []string
	}{
		Today:             time.Now().Format("2006-01-02"),
		Accounts:          accountNames,
		IncomeCategories:  categories[string(core.Income)],
		ExpenseCategories: categories[string(core.Expense)],
		SavingCategories:  categories[string(core.Saving)],
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(ctx, "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// transactionFromForm builds a transaction from the shared create/update
// form fields. Returns a ready error response when a field is invalid.
func transactionFromForm(r *http.Request) (core.Transaction, *HTMXResponseBuilder) {
	kind := core.TransactionKind(sanitizeInput(r.Form.Get("kind")))
	switch kind {
	case core.Income, core.Expense, core.Saving:
	default:
		return core.Transaction{}, UnprocessableEntityError("Tipo de movimiento no válido")
	}

	amount, err := core.ParseAmount(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		return core.Transaction{}, UnprocessableEntityError("Monto no válido")
	}

	date := core.Today()
	if v := strings.TrimSpace(r.Form.Get("date")); v != "" {
		date, err = core.ParseDate(v)
		if err != nil {
			return core.Transaction{}, UnprocessableEntityError("Fecha no válida")
		}
	}

	installments := 1
	if v := strings.TrimSpace(r.Form.Get("installments")); v != "" {
		installments, err = strconv.Atoi(v)
		if err != nil || installments < 1 {
			return core.Transaction{}, UnprocessableEntityError("Número de cuotas no válido")
		}
	}

	var firstPayment core.Date
	if v := strings.TrimSpace(r.Form.Get("first_payment_date")); v != "" {
		firstPayment, err = core.ParseDate(v)
		if err != nil {
			return core.Transaction{}, UnprocessableEntityError("Fecha de primer pago no válida")
		}
	}

	tx := core.Transaction{
		Kind:             kind,
		Account:          sanitizeInput(r.Form.Get("account")),
		Description:      sanitizeInput(r.Form.Get("description")),
		Category:         sanitizeInput(r.Form.Get("category")),
		Amount:           amount,
		Date:             date,
		Installments:     installments,
		FirstPaymentDate: firstPayment,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, UnprocessableEntityError("Datos no válidos: " + err.Error())
	}
	return tx, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	tx, errResp := transactionFromForm(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	id, err := s.writer.CreateTransaction(ctx, tx)
	if err != nil {
		slog.ErrorContext(ctx, "Transaction create error", "error", err,
			"description", tx.Description, "amount", tx.Amount.String())
		InternalServerError("Error al guardar el movimiento").Write(w)
		return
	}

	s.invalidateViews()

	NewHTMXResponse().
		TriggerTransactionCreated(id).
		TriggerMatrixRefresh().
		TriggerSuccessNotification("Movimiento registrado: " + tx.Description).
		BodyHTML(`<div class="success">Movimiento registrado: ` +
			template.HTMLEscapeString(tx.Description) +
			` — ` + template.HTMLEscapeString(core.FormatCLP(tx.Amount)) + `</div>`).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		BadRequestError("Falta el identificador del movimiento").Write(w)
		return
	}

	tx, errResp := transactionFromForm(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}
	tx.ID = id

	if err := s.writer.UpdateTransaction(ctx, tx); err != nil {
		slog.ErrorContext(ctx, "Transaction update error", "error", err, "id", id)
		InternalServerError("Error al actualizar el movimiento").Write(w)
		return
	}

	s.invalidateViews()

	NewHTMXResponse().
		Trigger("transaction:updated", map[string]string{"id": id}).
		TriggerMatrixRefresh().
		TriggerSuccessNotification("Movimiento actualizado: " + tx.Description).
		BodyHTML(`<div class="success">Movimiento actualizado</div>`).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	id := parser.Get("id")
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	if id == "" {
		BadRequestError("Falta el identificador del movimiento").Write(w)
		return
	}

	if err := s.writer.DeleteTransaction(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete error", "error", err, "id", id)
		InternalServerError("Error al eliminar el movimiento").Write(w)
		return
	}

	s.invalidateViews()

	NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerMatrixRefresh().
		TriggerSuccessNotification("Movimiento eliminado").
		BodyHTML(`<div class="success">Movimiento eliminado</div>`).
		Write(w)
}

func (s *Server) handleTogglePaid(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	account := parser.Get("account")
	month := parser.Get("month")
	if account == "" || month == "" {
		// Legacy single-field form: "<account>_<month>".
		if key, ok := ledger.ParseKeyString(parser.Get("key")); ok {
			account, month = key.Account, key.Month
		}
	}
	if account == "" || month == "" {
		BadRequestError("Faltan tarjeta y mes").Write(w)
		return
	}

	paid, err := s.store.TogglePaidMonth(r.Context(), account, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Toggle paid month error", "error", err,
			"account", account, "month", month)
		InternalServerError("Error al actualizar el estado de pago").Write(w)
		return
	}

	s.invalidateViews()

	NewHTMXResponse().
		TriggerPaidMonthToggled(account, month, paid).
		TriggerMatrixRefresh().
		Status(http.StatusOK).
		Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	ctx := r.Context()

	view, found := s.summaryCache.Get("summary")
	if !found {
		transactions, err := s.store.ListTransactions(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Summary load error", "error", err)
			_, _ = w.Write([]byte(`<section id="summary" class="summary"><div class="placeholder">Error cargando el resumen</div></section>`))
			return
		}

		summary := core.Summarize(transactions)
		balance := summary.Balance()
		view = summaryView{
			Income:   core.FormatCLP(summary.Income),
			Expenses: core.FormatCLP(summary.Expenses),
			Savings:  core.FormatCLP(summary.Savings),
			Balance:  core.FormatCLP(balance),
			Negative: balance.IsNegative(),
		}
		s.summaryCache.Set("summary", view)
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="summary" class="summary"><div class="placeholder">Balance: ` + view.Balance + `</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "summary.html", view); err != nil {
		slog.ErrorContext(ctx, "Template execution error", "error", err, "template", "summary.html")
		_, _ = w.Write([]byte(`<section id="summary" class="summary"><div class="placeholder">Error mostrando el resumen</div></section>`))
	}
}

func (s *Server) handlePaymentMatrix(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	ctx := r.Context()

	card := strings.TrimSpace(r.URL.Query().Get("card"))
	if card == "" {
		card = ledger.AllAccounts
	}

	view, found := s.matrixCache.Get(card)
	if !found {
		var err error
		view, err = s.buildMatrixView(r, card)
		if err != nil {
			slog.ErrorContext(ctx, "Payment matrix load error", "error", err, "card", card)
			_, _ = w.Write([]byte(`<section id="payment-matrix" class="payment-matrix"><div class="placeholder">Error cargando las cuotas</div></section>`))
			return
		}
		s.matrixCache.Set(card, view)
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="payment-matrix" class="payment-matrix"><div class="placeholder">Sin plantilla de cuotas</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "payment_matrix.html", view); err != nil {
		slog.ErrorContext(ctx, "Template execution error", "error", err, "template", "payment_matrix.html", "card", card)
		_, _ = w.Write([]byte(`<section id="payment-matrix" class="payment-matrix"><div class="placeholder">Error mostrando las cuotas</div></section>`))
	}
}

func (s *Server) buildMatrixView(r *http.Request, card string) (matrixView, error) {
	ctx := r.Context()

	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return matrixView{}, err
	}
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return matrixView{}, err
	}
	overlay, err := s.store.LoadOverlay(ctx)
	if err != nil {
		return matrixView{}, err
	}

	matrix := ledger.BuildMatrix(transactions, accounts, overlay, card, time.Now(), ledger.DefaultWindowMonths)

	view := matrixView{Card: card}
	for _, a := range accounts {
		view.Accounts = append(view.Accounts, a.Name)
	}
	for _, m := range matrix.Months {
		view.Months = append(view.Months, monthView{Key: m.Key, Label: m.Label})
	}
	for _, row := range matrix.Rows {
		rv := rowView{Account: row.Account}
		for _, cell := range row.Cells {
			rv.Cells = append(rv.Cells, cellView{
				Amount:   core.FormatCLP(cell.Amount),
				HasDebt:  cell.Amount.IsPositive(),
				Paid:     cell.Paid,
				Account:  cell.Account,
				MonthKey: cell.MonthKey,
			})
		}
		view.Rows = append(view.Rows, rv)
	}
	for i, total := range matrix.Totals {
		view.Totals = append(view.Totals, totalView{
			Amount:    core.FormatCLP(total),
			FullyPaid: matrix.FullyPaid[i],
		})
	}

	// Purchase detail: card expenses behind the selected rows.
	cardNames := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		cardNames[a.Name] = true
	}
	for _, t := range transactions {
		if t.Kind != core.Expense || !cardNames[t.Account] {
			continue
		}
		if card != ledger.AllAccounts && t.Account != card {
			continue
		}
		view.Purchases = append(view.Purchases, purchaseView{
			ID:           t.ID,
			Description:  t.Description,
			Account:      t.Account,
			Category:     t.Category,
			Amount:       core.FormatCLP(t.Amount),
			Installments: t.EffectiveInstallments(),
			Date:         t.Date.String(),
		})
	}

	// Credit strip: one card per row of the matrix.
	for _, a := range accounts {
		if card != ledger.AllAccounts && a.Name != card {
			continue
		}
		status := ledger.Credit(a, transactions, overlay)
		view.Credits = append(view.Credits, creditView{
			Account:     a.Name,
			TotalDebt:   core.FormatCLP(status.TotalDebt),
			PaidAmount:  core.FormatCLP(status.PaidAmount),
			Usage:       core.FormatCLP(status.Usage),
			Available:   core.FormatCLP(status.Available),
			Utilization: int(status.UtilizationPercent + 0.5),
			OverLimit:   status.Available.IsNegative(),
		})
	}

	return view, nil
}
