package server

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/store"
)

type itemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"gt=0"`
	Price     decimal.Decimal `json:"price"`
}

type tradeRequest struct {
	InvoiceNumber  string          `json:"invoice_number" validate:"max=40"`
	CounterpartyID string          `json:"counterparty_id" validate:"required"`
	Date           string          `json:"date" validate:"required,datetime=2006-01-02"`
	Items          []itemRequest   `json:"items" validate:"required,min=1,dive"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	PaymentMethod  string          `json:"payment_method" validate:"required"`
}

func (req tradeRequest) draft() (books.TradeDraft, error) {
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		return books.TradeDraft{}, err
	}
	pm, err := ledger.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return books.TradeDraft{}, err
	}
	items := make([]ledger.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = ledger.Item{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}
	return books.TradeDraft{
		InvoiceNumber:  req.InvoiceNumber,
		CounterpartyID: req.CounterpartyID,
		Date:           date,
		Items:          items,
		TaxRate:        req.TaxRate,
		PaymentMethod:  pm,
	}, nil
}

func (s *Server) recordSale(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if !s.decode(w, r, &req) {
		return
	}
	draft, err := req.draft()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sale, err := s.svc.RecordSale(r.Context(), actor(r), draft)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (s *Server) getSale(w http.ResponseWriter, r *http.Request) {
	sale, err := s.svc.GetSale(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (s *Server) listSales(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListSales(r.Context(), queryBool(r, "deleted"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) recordPurchase(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if !s.decode(w, r, &req) {
		return
	}
	draft, err := req.draft()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.svc.RecordPurchase(r.Context(), actor(r), draft)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) getPurchase(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetPurchase(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listPurchases(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListPurchases(r.Context(), queryBool(r, "deleted"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

type expenseRequest struct {
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Category    string          `json:"category" validate:"required,max=100"`
	Description string          `json:"description" validate:"required,max=500"`
	Amount      decimal.Decimal `json:"amount"`
}

func (s *Server) recordExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !s.decode(w, r, &req) {
		return
	}
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.svc.RecordExpense(r.Context(), actor(r), books.ExpenseDraft{
		Date:        date,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

type expenseUpdateRequest struct {
	Version     int64            `json:"version" validate:"gte=0"`
	Date        *string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description *string          `json:"description" validate:"omitempty,min=1,max=500"`
	Category    *string          `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseUpdateRequest
	if !s.decode(w, r, &req) {
		return
	}
	in := books.ExpenseUpdate{Description: req.Description, Category: req.Category, Amount: req.Amount}
	if req.Date != nil {
		date, err := ledger.ParseDate(*req.Date)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		in.Date = &date
	}
	e, err := s.svc.UpdateExpense(r.Context(), actor(r), pathParam(r, "id"), req.Version, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.GetExpense(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListExpenses(r.Context(), queryBool(r, "deleted"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) nextInvoice(w http.ResponseWriter, r *http.Request) {
	rt, err := ledger.ParseRecordType(r.URL.Query().Get("type"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	number, err := s.svc.NextInvoiceNumber(r.Context(), rt, r.URL.Query().Get("counterparty"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"invoice_number": number})
}

type lineRequest struct {
	AccountID string          `json:"account_id" validate:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
}

type entryRequest struct {
	Date        string        `json:"date" validate:"required,datetime=2006-01-02"`
	Description string        `json:"description" validate:"required,max=500"`
	Lines       []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

func (s *Server) postEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !s.decode(w, r, &req) {
		return
	}
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	lines := make([]ledger.Line, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = ledger.Line{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		}
	}
	e, err := s.svc.PostEntry(r.Context(), actor(r), books.EntryDraft{Date: date, Description: req.Description, Lines: lines})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) approveEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.ApproveEntry(r.Context(), actor(r), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.GetEntry(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	filter := store.EntryFilter{
		Status:         ledger.Approval(r.URL.Query().Get("status")),
		IncludeDeleted: queryBool(r, "deleted"),
	}
	var err error
	if filter.From, err = queryDate(r, "from"); err != nil {
		s.fail(w, r, err)
		return
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		s.fail(w, r, err)
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil || filter.Limit < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
	}
	entries, err := s.svc.ListEntries(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}
