package http

import (
	"errors"
	"fmt"
	"net/http"

	"aracgider/internal/core"
	applog "aracgider/internal/log"
	"aracgider/internal/report"
	"aracgider/internal/store"
)

type vehicleRequest struct {
	Plate string `json:"plate"`
	Class string `json:"class"`
}

type vehicleResponse struct {
	ID    string `json:"id"`
	Plate string `json:"plate"`
	Class string `json:"class"`
}

type expenseRequest struct {
	VehicleID string  `json:"vehicle_id"`
	Category  string  `json:"category"`
	Gross     string  `json:"gross"`
	VATRate   float64 `json:"vat_rate"`
	Date      string  `json:"date"`
	Note      string  `json:"note"`
}

type expenseResponse struct {
	ID        string  `json:"id"`
	VehicleID string  `json:"vehicle_id"`
	Category  string  `json:"category"`
	Gross     string  `json:"gross"`
	VATRate   float64 `json:"vat_rate"`
	Date      string  `json:"date"`
	Note      string  `json:"note,omitempty"`
}

type postingResponse struct {
	Base                 float64 `json:"base"`
	GeneralExpense       float64 `json:"general_expense_770"`
	DeductibleVAT        float64 `json:"deductible_vat_191"`
	NonDeductibleExpense float64 `json:"non_deductible_689"`
	Payable              float64 `json:"payable_320"`
}

type categoryTotalResponse struct {
	Category   string  `json:"category"`
	TotalGross float64 `json:"total_gross"`
	Count      int     `json:"count"`
}

type summaryResponse struct {
	RecordCount               int                     `json:"record_count"`
	TotalGross                float64                 `json:"total_gross"`
	TotalGeneralExpense       float64                 `json:"total_general_expense_770"`
	TotalDeductibleVAT        float64                 `json:"total_deductible_vat_191"`
	TotalNonDeductibleExpense float64                 `json:"total_non_deductible_689"`
	ByCategory                []categoryTotalResponse `json:"by_category"`
}

func toVehicleResponse(v core.Vehicle) vehicleResponse {
	return vehicleResponse{ID: v.ID, Plate: v.Plate, Class: string(v.Class)}
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:        e.ID,
		VehicleID: e.VehicleID,
		Category:  string(e.Category),
		Gross:     fmt.Sprintf("%.2f", e.Gross.Amount()),
		VATRate:   e.VATRate,
		Date:      e.Date.Format("2006-01-02"),
		Note:      e.Note,
	}
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	v := core.Vehicle{
		Plate: sanitizeInput(req.Plate),
		Class: core.VehicleClass(req.Class),
	}

	id, err := s.store.AddVehicle(r.Context(), v)
	if err != nil {
		writeError(w, err)
		return
	}
	v.ID = id
	s.invalidateSummaries()

	s.logger.InfoContext(r.Context(), "Vehicle registered",
		applog.NewFields().WithVehicle(v.Plate, string(v.Class)).ToSlice()...)

	writeJSON(w, http.StatusCreated, toVehicleResponse(v))
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.GetVehicle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVehicleResponse(v))
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.store.ListVehicles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toVehicleResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDeleteVehicle removes only the vehicle. Its expenses survive with a
// dangling reference and drop out of posting reports.
func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteVehicle(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	cents, err := core.ParseDecimalToCents(req.Gross)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid gross amount: %v", err)})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, expected YYYY-MM-DD"})
		return
	}

	e := core.Expense{
		VehicleID: req.VehicleID,
		Category:  core.Category(req.Category),
		Gross:     core.Money{Cents: cents},
		Date:      date,
		VATRate:   req.VATRate,
		Note:      sanitizeInput(req.Note),
	}

	// Reject references to vehicles that never existed. Deleting a vehicle
	// later is allowed, pointing at one that is already gone is not.
	if _, err := s.store.GetVehicle(r.Context(), e.VehicleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown vehicle"})
			return
		}
		writeError(w, err)
		return
	}

	id, err := s.store.AddExpense(r.Context(), e)
	if err != nil {
		writeError(w, err)
		return
	}
	e.ID = id
	s.invalidateSummaries()

	s.audit.LogExpenseRecorded(r.Context(), id, e.VehicleID, string(e.Category), e.Gross.Cents, e.VATRate)

	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	filter := filterFromQuery(r)
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		if !filter.Matches(e) {
			continue
		}
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

// handleReceipt renders the accounting receipt for one expense as plain text.
func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	v, err := s.store.GetVehicle(r.Context(), e.VehicleID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "vehicle no longer exists, receipt cannot be derived"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := core.ComputePosting(e, v)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report.Receipt(e, v, p)))
}

// handlePostingPreview derives a posting for a hypothetical expense without
// storing anything. Query: class, gross, vat_rate.
func (s *Server) handlePostingPreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	class := core.VehicleClass(q.Get("class"))
	if !class.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid vehicle class, expected binek or ticari"})
		return
	}

	cents, err := core.ParseDecimalToCents(q.Get("gross"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid gross amount: %v", err)})
		return
	}

	rate, err := core.ParseRate(q.Get("vat_rate"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid vat rate: %v", err)})
		return
	}

	e := core.Expense{Gross: core.Money{Cents: cents}, VATRate: rate}
	v := core.Vehicle{Class: class}

	p, err := core.ComputePosting(e, v)
	if err != nil {
		writeError(w, err)
		return
	}
	base, err := e.Base()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postingResponse{
		Base:                 base,
		GeneralExpense:       p.GeneralExpense,
		DeductibleVAT:        p.DeductibleVAT,
		NonDeductibleExpense: p.NonDeductibleExpense,
		Payable:              p.Payable,
	})
}

// handleSummary aggregates all surviving expenses, optionally filtered by
// vehicle_id and category. Results are cached briefly.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	cacheKey := filter.VehicleID + "|" + string(filter.Category)

	if summary, ok := s.summaryCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, toSummaryResponse(summary))
		return
	}

	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	vehicles, err := s.store.ListVehicles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	summary := core.Aggregate(expenses, core.IndexVehicles(vehicles), filter)
	s.summaryCache.Set(cacheKey, summary)

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// handleExportCSV streams the full ledger table, newest first.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		s.audit.LogError(r.Context(), "CSV export failed", err, applog.ComponentHTTP, applog.OpRender, applog.NewFields())
		writeError(w, err)
		return
	}
	vehicles, err := s.store.ListVehicles(r.Context())
	if err != nil {
		s.audit.LogError(r.Context(), "CSV export failed", err, applog.ComponentHTTP, applog.OpRender, applog.NewFields())
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="giderler.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report.Table(expenses, core.IndexVehicles(vehicles))))
}

func filterFromQuery(r *http.Request) core.Filter {
	q := r.URL.Query()
	return core.Filter{
		VehicleID: q.Get("vehicle_id"),
		Category:  core.Category(q.Get("category")),
	}
}

func toSummaryResponse(s core.Summary) summaryResponse {
	byCat := make([]categoryTotalResponse, 0, len(s.ByCategory))
	for _, ct := range s.ByCategory {
		byCat = append(byCat, categoryTotalResponse{
			Category:   string(ct.Category),
			TotalGross: ct.TotalGross,
			Count:      ct.Count,
		})
	}
	return summaryResponse{
		RecordCount:               s.RecordCount,
		TotalGross:                s.TotalGross,
		TotalGeneralExpense:       s.TotalGeneralExpense,
		TotalDeductibleVAT:        s.TotalDeductibleVAT,
		TotalNonDeductibleExpense: s.TotalNonDeductibleExpense,
		ByCategory:                byCat,
	}
}
