package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/report"
	"github.com/simonvc/minibooks/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func reportQuery(r *http.Request) (books.ReportQuery, error) {
	var rq books.ReportQuery
	var err error
	if rq.Period.From, err = queryDate(r, "from"); err != nil {
		return rq, err
	}
	if rq.Period.To, err = queryDate(r, "to"); err != nil {
		return rq, err
	}
	rq.IncludePending = queryBool(r, "pending")
	return rq, nil
}

// shared runs build once for concurrent identical report requests. The
// actor is part of the key since permissions are checked inside build.
func (s *Server) shared(r *http.Request, build func(context.Context) (any, error)) (any, error) {
	key := actor(r) + " " + r.URL.Path + "?" + r.URL.Query().Encode()
	ch := s.reports.DoChan(key, func() (any, error) {
		return build(context.WithoutCancel(r.Context()))
	})
	select {
	case <-r.Context().Done():
		return nil, r.Context().Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, build func(context.Context, books.ReportQuery) (any, error)) {
	rq, err := reportQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v, err := s.shared(r, func(ctx context.Context) (any, error) { return build(ctx, rq) })
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, func(ctx context.Context, rq books.ReportQuery) (any, error) {
		return s.svc.TrialBalance(ctx, actor(r), rq)
	})
}

func (s *Server) profitAndLoss(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, func(ctx context.Context, rq books.ReportQuery) (any, error) {
		return s.svc.ProfitAndLoss(ctx, actor(r), rq)
	})
}

func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, func(ctx context.Context, rq books.ReportQuery) (any, error) {
		return s.svc.BalanceSheet(ctx, actor(r), rq)
	})
}

func (s *Server) accountLedger(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	s.serveReport(w, r, func(ctx context.Context, rq books.ReportQuery) (any, error) {
		return s.svc.AccountLedger(ctx, actor(r), id, rq)
	})
}

// summary serves the dashboard. low_stock overrides the configured
// stock alert level for this request.
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	var threshold *int64
	if raw := r.URL.Query().Get("low_stock"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			badRequest(w, "low_stock must be a non-negative integer")
			return
		}
		threshold = &n
	}
	s.serveReport(w, r, func(ctx context.Context, rq books.ReportQuery) (any, error) {
		return s.svc.Dashboard(ctx, actor(r), books.SummaryQuery{ReportQuery: rq, LowStockThreshold: threshold})
	})
}

func (s *Server) integrity(w http.ResponseWriter, r *http.Request) {
	v, err := s.shared(r, func(ctx context.Context) (any, error) {
		return s.svc.CheckIntegrity(ctx, actor(r))
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) exportXLSX(w http.ResponseWriter, r *http.Request) {
	rq, err := reportQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v, err := s.shared(r, func(ctx context.Context) (any, error) {
		st, err := s.svc.Statements(ctx, actor(r), rq)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := report.WriteXLSX(&buf, st); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body := v.([]byte)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="minibooks-statements.xlsx"`)
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) exportBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Export(r.Context(), actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) restoreBackup(w http.ResponseWriter, r *http.Request) {
	var snap store.Snapshot
	if !s.decode(w, r, &snap) {
		return
	}
	if err := s.svc.Restore(r.Context(), actor(r), &snap); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
