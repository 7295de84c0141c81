// Package client talks to a minibooks server. Errors returned by the server
// unwrap to the matching ledger error kind.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/report"
	"github.com/simonvc/minibooks/internal/server"
	"github.com/simonvc/minibooks/internal/store"
)

type Client struct {
	baseURL    string
	user       string
	httpClient *http.Client
}

func New(baseURL, user string) *Client {
	return &Client{
		baseURL: baseURL,
		user:    user,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// User is the id requests act as.
func (c *Client) User() string { return c.user }

// APIError is a non-2xx reply.
type APIError struct {
	Status  int
	Kind    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return server.KindByName(e.Kind)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/healthz", nil)
}

// Chart of accounts

func (c *Client) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	return list[ledger.Account](ctx, c, "/api/v1/accounts")
}

func (c *Client) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	var out ledger.Account
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAccount(ctx context.Context, id, name string, typ ledger.AccountType) (*ledger.Account, error) {
	body := map[string]any{"id": id, "name": name, "type": typ}
	var out ledger.Account
	if err := c.post(ctx, "/api/v1/accounts", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AccountMap(ctx context.Context) (*ledger.AccountMap, error) {
	var out ledger.AccountMap
	if err := c.get(ctx, "/api/v1/settings/accounts", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetAccountRole(ctx context.Context, role ledger.AccountRole, accountID string) (*ledger.AccountMap, error) {
	var out ledger.AccountMap
	path := "/api/v1/settings/accounts/" + url.PathEscape(string(role))
	if err := c.put(ctx, path, map[string]any{"account_id": accountID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users

func (c *Client) ListUsers(ctx context.Context) ([]auth.User, error) {
	return list[auth.User](ctx, c, "/api/v1/users")
}

func (c *Client) CreateUser(ctx context.Context, in books.UserInput) (*auth.User, error) {
	var out auth.User
	if err := c.post(ctx, "/api/v1/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, in books.UserInput) (*auth.User, error) {
	var out auth.User
	if err := c.put(ctx, "/api/v1/users/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Master data

func listPath(base string, deleted bool) string {
	if deleted {
		return base + "?deleted=true"
	}
	return base
}

func withVersion(in any, version int64) (map[string]any, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	m["version"] = version
	return m, nil
}

func (c *Client) ListCustomers(ctx context.Context, deleted bool) ([]ledger.Customer, error) {
	return list[ledger.Customer](ctx, c, listPath("/api/v1/customers", deleted))
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*ledger.Customer, error) {
	var out ledger.Customer
	if err := c.get(ctx, "/api/v1/customers/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCustomer(ctx context.Context, in books.ContactInput) (*ledger.Customer, error) {
	var out ledger.Customer
	if err := c.post(ctx, "/api/v1/customers", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, version int64, in books.ContactInput) (*ledger.Customer, error) {
	body, err := withVersion(in, version)
	if err != nil {
		return nil, err
	}
	var out ledger.Customer
	if err := c.put(ctx, "/api/v1/customers/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSuppliers(ctx context.Context, deleted bool) ([]ledger.Supplier, error) {
	return list[ledger.Supplier](ctx, c, listPath("/api/v1/suppliers", deleted))
}

func (c *Client) GetSupplier(ctx context.Context, id string) (*ledger.Supplier, error) {
	var out ledger.Supplier
	if err := c.get(ctx, "/api/v1/suppliers/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSupplier(ctx context.Context, in books.ContactInput) (*ledger.Supplier, error) {
	var out ledger.Supplier
	if err := c.post(ctx, "/api/v1/suppliers", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSupplier(ctx context.Context, id string, version int64, in books.ContactInput) (*ledger.Supplier, error) {
	body, err := withVersion(in, version)
	if err != nil {
		return nil, err
	}
	var out ledger.Supplier
	if err := c.put(ctx, "/api/v1/suppliers/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProducts(ctx context.Context, deleted bool) ([]ledger.Product, error) {
	return list[ledger.Product](ctx, c, listPath("/api/v1/products", deleted))
}

func (c *Client) GetProduct(ctx context.Context, id string) (*ledger.Product, error) {
	var out ledger.Product
	if err := c.get(ctx, "/api/v1/products/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in books.ProductInput) (*ledger.Product, error) {
	var out ledger.Product
	if err := c.post(ctx, "/api/v1/products", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, version int64, in books.ProductInput) (*ledger.Product, error) {
	body, err := withVersion(in, version)
	if err != nil {
		return nil, err
	}
	var out ledger.Product
	if err := c.put(ctx, "/api/v1/products/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Business transactions

func tradeBody(d books.TradeDraft) map[string]any {
	return map[string]any{
		"invoice_number":  d.InvoiceNumber,
		"counterparty_id": d.CounterpartyID,
		"date":            d.Date.Format(ledger.DateLayout),
		"items":           d.Items,
		"tax_rate":        d.TaxRate,
		"payment_method":  d.PaymentMethod,
	}
}

func (c *Client) RecordSale(ctx context.Context, d books.TradeDraft) (*ledger.Sale, error) {
	var out ledger.Sale
	if err := c.post(ctx, "/api/v1/sales", tradeBody(d), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSales(ctx context.Context, deleted bool) ([]ledger.Sale, error) {
	return list[ledger.Sale](ctx, c, listPath("/api/v1/sales", deleted))
}

func (c *Client) RecordPurchase(ctx context.Context, d books.TradeDraft) (*ledger.Purchase, error) {
	var out ledger.Purchase
	if err := c.post(ctx, "/api/v1/purchases", tradeBody(d), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPurchases(ctx context.Context, deleted bool) ([]ledger.Purchase, error) {
	return list[ledger.Purchase](ctx, c, listPath("/api/v1/purchases", deleted))
}

func (c *Client) RecordExpense(ctx context.Context, d books.ExpenseDraft) (*ledger.Expense, error) {
	body := map[string]any{
		"date":        d.Date.Format(ledger.DateLayout),
		"category":    d.Category,
		"description": d.Description,
		"amount":      d.Amount,
	}
	var out ledger.Expense
	if err := c.post(ctx, "/api/v1/expenses", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateExpense changes the description of an expense. The other fields
// are fixed once the expense is posted.
func (c *Client) UpdateExpense(ctx context.Context, id string, version int64, description string) (*ledger.Expense, error) {
	body := map[string]any{"version": version, "description": description}
	var out ledger.Expense
	if err := c.patch(ctx, "/api/v1/expenses/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetExpense(ctx context.Context, id string) (*ledger.Expense, error) {
	var out ledger.Expense
	if err := c.get(ctx, "/api/v1/expenses/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListExpenses(ctx context.Context, deleted bool) ([]ledger.Expense, error) {
	return list[ledger.Expense](ctx, c, listPath("/api/v1/expenses", deleted))
}

func (c *Client) NextInvoiceNumber(ctx context.Context, rt ledger.RecordType, counterparty string) (string, error) {
	params := url.Values{"type": {string(rt)}, "counterparty": {counterparty}}
	var out map[string]string
	if err := c.get(ctx, "/api/v1/invoices/next?"+params.Encode(), &out); err != nil {
		return "", err
	}
	return out["invoice_number"], nil
}

// Journal

func (c *Client) PostEntry(ctx context.Context, d books.EntryDraft) (*ledger.JournalEntry, error) {
	body := map[string]any{
		"date":        d.Date.Format(ledger.DateLayout),
		"description": d.Description,
		"lines":       d.Lines,
	}
	var out ledger.JournalEntry
	if err := c.post(ctx, "/api/v1/journal", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	var out ledger.JournalEntry
	if err := c.post(ctx, "/api/v1/journal/"+url.PathEscape(id)+"/approve", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	var out ledger.JournalEntry
	if err := c.get(ctx, "/api/v1/journal/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListEntries(ctx context.Context, filter store.EntryFilter) ([]ledger.JournalEntry, error) {
	params := url.Values{}
	if filter.Status != "" {
		params.Set("status", string(filter.Status))
	}
	if filter.IncludeDeleted {
		params.Set("deleted", "true")
	}
	setDate(params, "from", filter.From)
	setDate(params, "to", filter.To)
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}
	return list[ledger.JournalEntry](ctx, c, "/api/v1/journal?"+params.Encode())
}

// Workflow and audit

func (c *Client) RequestDelete(ctx context.Context, rt ledger.RecordType, recordID string) (*ledger.ApprovalRequest, error) {
	var out ledger.ApprovalRequest
	body := map[string]any{"record_type": rt, "record_id": recordID}
	if err := c.post(ctx, "/api/v1/approvals", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveRequest(ctx context.Context, id string) (*ledger.ApprovalRequest, error) {
	var out ledger.ApprovalRequest
	if err := c.post(ctx, "/api/v1/approvals/"+url.PathEscape(id)+"/approve", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RejectRequest(ctx context.Context, id string) (*ledger.ApprovalRequest, error) {
	var out ledger.ApprovalRequest
	if err := c.post(ctx, "/api/v1/approvals/"+url.PathEscape(id)+"/reject", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListRequests(ctx context.Context, status ledger.RequestStatus) ([]ledger.ApprovalRequest, error) {
	path := "/api/v1/approvals"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	return list[ledger.ApprovalRequest](ctx, c, path)
}

func (c *Client) History(ctx context.Context, rt ledger.RecordType, id string) ([]ledger.EditLog, error) {
	path := "/api/v1/history/" + url.PathEscape(string(rt))
	if id != "" {
		path += "/" + url.PathEscape(id)
	}
	return list[ledger.EditLog](ctx, c, path)
}

func (c *Client) Activity(ctx context.Context, limit int) ([]ledger.ActivityLog, error) {
	return list[ledger.ActivityLog](ctx, c, "/api/v1/activity?limit="+strconv.Itoa(limit))
}

// Reports

func setDate(params url.Values, name string, t time.Time) {
	if !t.IsZero() {
		params.Set(name, t.Format(ledger.DateLayout))
	}
}

func reportValues(rq books.ReportQuery) url.Values {
	params := url.Values{}
	setDate(params, "from", rq.Period.From)
	setDate(params, "to", rq.Period.To)
	if rq.IncludePending {
		params.Set("pending", "true")
	}
	return params
}

func reportParams(rq books.ReportQuery) string {
	return encodeQuery(reportValues(rq))
}

func encodeQuery(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

func (c *Client) TrialBalance(ctx context.Context, rq books.ReportQuery) (*report.TrialBalance, error) {
	var out report.TrialBalance
	if err := c.get(ctx, "/api/v1/reports/trial-balance"+reportParams(rq), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AccountLedger(ctx context.Context, accountID string, rq books.ReportQuery) (*report.AccountLedger, error) {
	var out report.AccountLedger
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(accountID)+"/ledger"+reportParams(rq), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProfitAndLoss(ctx context.Context, rq books.ReportQuery) (*report.ProfitAndLoss, error) {
	var out report.ProfitAndLoss
	if err := c.get(ctx, "/api/v1/reports/profit-and-loss"+reportParams(rq), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BalanceSheet(ctx context.Context, rq books.ReportQuery) (*report.BalanceSheet, error) {
	var out report.BalanceSheet
	if err := c.get(ctx, "/api/v1/reports/balance-sheet"+reportParams(rq), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summary fetches the dashboard figures. A nil LowStockThreshold leaves the
// server's configured level in place.
func (c *Client) Summary(ctx context.Context, sq books.SummaryQuery) (*report.Summary, error) {
	params := reportValues(sq.ReportQuery)
	if sq.LowStockThreshold != nil {
		params.Set("low_stock", strconv.FormatInt(*sq.LowStockThreshold, 10))
	}
	var out report.Summary
	if err := c.get(ctx, "/api/v1/reports/summary"+encodeQuery(params), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckIntegrity(ctx context.Context) (*books.IntegrityReport, error) {
	var out books.IntegrityReport
	if err := c.get(ctx, "/api/v1/reports/integrity", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportXLSX copies the statements workbook to w.
func (c *Client) ExportXLSX(ctx context.Context, rq books.ReportQuery, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/reports/export.xlsx"+reportParams(rq), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, body)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// Backup

func (c *Client) Export(ctx context.Context) (*store.Snapshot, error) {
	var out store.Snapshot
	if err := c.get(ctx, "/api/v1/backup", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Restore(ctx context.Context, snap *store.Snapshot) error {
	return c.post(ctx, "/api/v1/backup/restore", snap, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.Header.Set(server.ActorHeader, c.user)
	}
	return req, nil
}

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

func (c *Client) patch(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, data)
	}
	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func apiError(status int, body []byte) error {
	var resp server.ErrorResponse
	if json.Unmarshal(body, &resp) == nil && resp.Error != "" {
		return &APIError{Status: status, Kind: resp.Kind, Message: resp.Error, Fields: resp.Fields}
	}
	return &APIError{Status: status, Message: string(bytes.TrimSpace(body))}
}
