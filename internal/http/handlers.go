package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"zenfin/internal/core"
	applog "zenfin/internal/log"
	"zenfin/internal/report"
)

const maxSuggestBody = 10 << 20 // 10 MiB

type transactionJSON struct {
	ID            string `json:"id"`
	Description   string `json:"description"`
	AmountCents   int64  `json:"amount_cents"`
	Date          string `json:"date"`
	Kind          string `json:"kind"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Recurrence    string `json:"recurrence"`
	IsPaid        bool   `json:"is_paid"`
}

type summaryJSON struct {
	IncomeCents  int64 `json:"income_cents"`
	ExpenseCents int64 `json:"expense_cents"`
	BalanceCents int64 `json:"balance_cents"`
}

type trendPointJSON struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Label        string `json:"label"`
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
	Current      bool   `json:"current"`
	HasData      bool   `json:"has_data"`
}

type sliceJSON struct {
	Category    string  `json:"category"`
	AmountCents int64   `json:"amount_cents"`
	Percent     float64 `json:"percent"`
	ArcStart    float64 `json:"arc_start"`
	ArcSweep    float64 `json:"arc_sweep"`
}

type distributionJSON struct {
	TotalExpenseCents int64       `json:"total_expense_cents"`
	Slices            []sliceJSON `json:"slices"`
}

type limitStatusJSON struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	LimitCents  int64   `json:"limit_cents"`
	SpentCents  int64   `json:"spent_cents"`
	Ratio       float64 `json:"ratio"`
	OverBudget  bool    `json:"over_budget"`
}

type commitmentJSON struct {
	Category           string           `json:"category"`
	Status             string           `json:"status"`
	DisplayAmountCents int64            `json:"display_amount_cents"`
	Transaction        *transactionJSON `json:"transaction,omitempty"`
}

type templateJSON struct {
	Category           string `json:"category"`
	IsActive           bool   `json:"is_active"`
	DefaultAmountCents int64  `json:"default_amount_cents"`
}

type dashboardResponse struct {
	Year          int              `json:"year"`
	Month         int              `json:"month"`
	Label         string           `json:"label"`
	Summary       summaryJSON      `json:"summary"`
	Trend         []trendPointJSON `json:"trend"`
	TrendMaxCents int64            `json:"trend_max_cents"`
	Distribution  distributionJSON `json:"distribution"`
	Limits        []limitStatusJSON `json:"limits"`
}

type flowsResponse struct {
	Year         int               `json:"year"`
	Month        int               `json:"month"`
	Transactions []transactionJSON `json:"transactions"`
	Summary      summaryJSON       `json:"summary"`
}

type reportResponse struct {
	Year        int              `json:"year"`
	Month       int              `json:"month"`
	Commitments []commitmentJSON `json:"commitments"`
	Others      []transactionJSON `json:"others"`
	Summary     summaryJSON      `json:"summary"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:            t.ID,
		Description:   t.Description,
		AmountCents:   t.Amount.Cents,
		Date:          t.Date.UTC().Format("2006-01-02"),
		Kind:          string(t.Kind),
		Category:      string(t.Category),
		PaymentMethod: t.PaymentMethod,
		Recurrence:    string(t.Recurrence),
		IsPaid:        t.IsPaid,
	}
}

func toSummaryJSON(s report.Summary) summaryJSON {
	return summaryJSON{
		IncomeCents:  s.Income.Cents,
		ExpenseCents: s.Expense.Cents,
		BalanceCents: s.Balance.Cents,
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	key := month.String()
	if cached, found := s.dashboardCache.Get(key); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.transactions.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard snapshot error", "error", err)
		writeError(w, err)
		return
	}
	subset := report.FilterMonth(txs, month)
	summary := report.Summarize(subset)
	trend := report.TrendSeries(txs, month)
	dist := report.Distribute(subset)

	limitView, err := s.limits.MonthView(r.Context(), month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard limits error", "error", err)
		writeError(w, err)
		return
	}

	resp := dashboardResponse{
		Year:          month.Year,
		Month:         int(month.Month),
		Label:         month.Label(),
		Summary:       toSummaryJSON(summary),
		Trend:         make([]trendPointJSON, 0, len(trend.Points)),
		TrendMaxCents: trend.MaxCents(),
		Distribution: distributionJSON{
			TotalExpenseCents: dist.TotalExpense.Cents,
			Slices:            make([]sliceJSON, 0, len(dist.Slices)),
		},
		Limits: make([]limitStatusJSON, 0, len(limitView)),
	}
	for _, p := range trend.Points {
		resp.Trend = append(resp.Trend, trendPointJSON{
			Year:         p.Month.Year,
			Month:        int(p.Month.Month),
			Label:        p.Label,
			IncomeCents:  p.Income.Cents,
			ExpenseCents: p.Expense.Cents,
			Current:      p.Current,
			HasData:      p.HasData,
		})
	}
	for _, sl := range dist.Slices {
		resp.Distribution.Slices = append(resp.Distribution.Slices, sliceJSON{
			Category:    string(sl.Category),
			AmountCents: sl.Amount.Cents,
			Percent:     sl.Percent,
			ArcStart:    sl.ArcStart(),
			ArcSweep:    sl.ArcSweep(),
		})
	}
	for _, ls := range limitView {
		resp.Limits = append(resp.Limits, limitStatusJSON{
			ID:         ls.Limit.ID,
			Category:   string(ls.Limit.Category),
			LimitCents: ls.Limit.Limit.Cents,
			SpentCents: ls.Spent.Cents,
			Ratio:      ls.Ratio(),
			OverBudget: ls.Spent.Cents > ls.Limit.Limit.Cents,
		})
	}

	s.dashboardCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFlows(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	txs, err := s.transactions.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Flows snapshot error", "error", err)
		writeError(w, err)
		return
	}
	subset := report.FilterMonth(txs, month)

	resp := flowsResponse{
		Year:         month.Year,
		Month:        int(month.Month),
		Transactions: make([]transactionJSON, 0, len(subset)),
		Summary:      toSummaryJSON(report.Summarize(subset)),
	}
	for _, t := range subset {
		resp.Transactions = append(resp.Transactions, toTransactionJSON(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	key := month.String()
	if cached, found := s.reportCache.Get(key); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	rec, err := s.commitments.MonthReport(r.Context(), month)
	if err != nil {
		s.structured.LogError(r.Context(), "Report error", err, applog.ComponentCommitment, applog.OpReconcile,
			applog.NewFields().WithMonth(month.Year, int(month.Month)))
		writeError(w, err)
		return
	}

	txs, err := s.transactions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	summary := report.Summarize(report.FilterMonth(txs, month))

	resp := reportResponse{
		Year:        month.Year,
		Month:       int(month.Month),
		Commitments: make([]commitmentJSON, 0, len(rec.Commitments)),
		Others:      make([]transactionJSON, 0, len(rec.Others)),
		Summary:     toSummaryJSON(summary),
	}
	for _, c := range rec.Commitments {
		cj := commitmentJSON{
			Category:           string(c.Category),
			Status:             string(c.Status),
			DisplayAmountCents: c.DisplayAmount.Cents,
		}
		if c.Transaction != nil {
			tj := toTransactionJSON(*c.Transaction)
			cj.Transaction = &tj
		}
		resp.Commitments = append(resp.Commitments, cj)
	}
	for _, t := range rec.Others {
		resp.Others = append(resp.Others, toTransactionJSON(t))
	}

	s.reportCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

type createTransactionRequest struct {
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Kind          string `json:"kind"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method"`
	Recurrence    string `json:"recurrence"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid amount"})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid date, expected YYYY-MM-DD"})
		return
	}

	recurrence := core.Recurrence(req.Recurrence)
	if req.Recurrence == "" {
		recurrence = core.Unique
	}

	draft := core.TransactionDraft{
		Description:   sanitizeInput(req.Description),
		Amount:        core.Money{Cents: cents},
		Date:          date.UTC(),
		Kind:          core.Kind(req.Kind),
		Category:      core.Category(req.Category),
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Recurrence:    recurrence,
	}
	if err := draft.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	t, err := s.transactions.Create(r.Context(), draft)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction error", "error", err)
		writeError(w, err)
		return
	}
	s.structured.LogTransactionCreated(r.Context(), t.ID, t.Description, t.Amount.Cents, string(t.Kind), string(t.Category))

	s.invalidateViews()
	writeJSON(w, http.StatusCreated, toTransactionJSON(t))
}

func (s *Server) handleTogglePaid(w http.ResponseWriter, r *http.Request) {
	t, err := s.transactions.TogglePaid(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusOK, toTransactionJSON(t))
}

type confirmTemplateRequest struct {
	Category string `json:"category"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
}

func (s *Server) handleConfirmTemplate(w http.ResponseWriter, r *http.Request) {
	var req confirmTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 1970 || req.Year > 9999 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid year or month"})
		return
	}
	month := report.Month{Year: req.Year, Month: time.Month(req.Month)}

	t, err := s.commitments.ConfirmTemplate(r.Context(), category, month)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusCreated, toTransactionJSON(t))
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	tpls, err := s.commitments.ListTemplates(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]templateJSON, 0, len(tpls))
	for _, tpl := range tpls {
		out = append(out, templateJSON{
			Category:           string(tpl.Category),
			IsActive:           tpl.IsActive,
			DefaultAmountCents: tpl.DefaultAmount.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleToggleTemplate(w http.ResponseWriter, r *http.Request) {
	category, err := core.ParseCategory(r.PathValue("category"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	tpl, err := s.commitments.ToggleTemplate(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusOK, templateJSON{
		Category:           string(tpl.Category),
		IsActive:           tpl.IsActive,
		DefaultAmountCents: tpl.DefaultAmount.Cents,
	})
}

type setAmountRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleSetTemplateAmount(w http.ResponseWriter, r *http.Request) {
	category, err := core.ParseCategory(r.PathValue("category"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	var req setAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid amount"})
		return
	}

	tpl, err := s.commitments.SetTemplateAmount(r.Context(), category, core.Money{Cents: cents})
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusOK, templateJSON{
		Category:           string(tpl.Category),
		IsActive:           tpl.IsActive,
		DefaultAmountCents: tpl.DefaultAmount.Cents,
	})
}

func (s *Server) handleListLimits(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	view, err := s.limits.MonthView(r.Context(), month)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]limitStatusJSON, 0, len(view))
	for _, ls := range view {
		out = append(out, limitStatusJSON{
			ID:         ls.Limit.ID,
			Category:   string(ls.Limit.Category),
			LimitCents: ls.Limit.Limit.Cents,
			SpentCents: ls.Spent.Cents,
			Ratio:      ls.Ratio(),
			OverBudget: ls.Spent.Cents > ls.Limit.Limit.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type saveLimitRequest struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

func (s *Server) handleSaveLimit(w http.ResponseWriter, r *http.Request) {
	var req saveLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	cents, err := core.ParseDecimalToCents(req.Limit)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid limit amount"})
		return
	}

	l, err := s.limits.Save(r.Context(), core.SpendingLimit{
		ID:       req.ID,
		Category: category,
		Limit:    core.Money{Cents: cents},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusCreated, limitStatusJSON{
		ID:         l.ID,
		Category:   string(l.Category),
		LimitCents: l.Limit.Cents,
	})
}

func (s *Server) handleDeleteLimit(w http.ResponseWriter, r *http.Request) {
	if err := s.limits.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	png, err := s.renderer.TrendPNG(report.TrendSeries(txs, month))
	if err != nil {
		slog.ErrorContext(r.Context(), "Trend chart render error", "error", err)
		writeError(w, err)
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Server) handleDistributionChart(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	png, err := s.renderer.DistributionPNG(report.Distribute(report.FilterMonth(txs, month)))
	if err != nil {
		slog.ErrorContext(r.Context(), "Distribution chart render error", "error", err)
		writeError(w, err)
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

type suggestionJSON struct {
	Description   string `json:"description"`
	AmountCents   int64  `json:"amount_cents"`
	Date          string `json:"date"`
	Kind          string `json:"kind"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Recurrence    string `json:"recurrence"`
}

func (s *Server) handleSuggestImage(w http.ResponseWriter, r *http.Request) {
	s.handleSuggest(w, r, func(body []byte) (*core.TransactionDraft, error) {
		return s.producer.FromImage(r.Context(), body)
	})
}

func (s *Server) handleSuggestVoice(w http.ResponseWriter, r *http.Request) {
	mime := r.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/ogg"
	}
	s.handleSuggest(w, r, func(body []byte) (*core.TransactionDraft, error) {
		return s.producer.FromVoice(r.Context(), body, mime)
	})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request, produce func([]byte) (*core.TransactionDraft, error)) {
	if s.producer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "suggestions not configured"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSuggestBody))
	if err != nil || len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "empty or unreadable body"})
		return
	}

	draft, err := produce(body)
	if err != nil {
		slog.ErrorContext(r.Context(), "Suggestion error", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "suggestion backend unavailable"})
		return
	}
	if draft == nil {
		// No usable suggestion; the client falls back to manual entry.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, suggestionJSON{
		Description:   draft.Description,
		AmountCents:   draft.Amount.Cents,
		Date:          draft.Date.UTC().Format("2006-01-02"),
		Kind:          string(draft.Kind),
		Category:      string(draft.Category),
		PaymentMethod: draft.PaymentMethod,
		Recurrence:    string(draft.Recurrence),
	})
}
