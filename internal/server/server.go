// Package server exposes the books service over a JSON HTTP API. The acting
// user is taken from the X-User-ID header and checked by the service.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/unrolled/secure"
	"golang.org/x/sync/singleflight"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/config"
)

// ActorHeader carries the id of the user a request acts as.
const ActorHeader = "X-User-ID"

type Server struct {
	svc      *books.Service
	router   chi.Router
	log      zerolog.Logger
	cfg      config.ServerConfig
	validate *validator.Validate
	reports  singleflight.Group
}

func New(svc *books.Service, cfg config.ServerConfig, log zerolog.Logger) *Server {
	s := &Server{
		svc:      svc,
		router:   chi.NewRouter(),
		log:      log.With().Str("component", "http").Logger(),
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	headers := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "no-referrer",
	})

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(headers.Handler)
	if cfg.RateLimit > 0 {
		r.Use(httprate.Limit(cfg.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Chart of accounts
		r.Get("/accounts", s.listAccounts)
		r.Post("/accounts", s.createAccount)
		r.Get("/accounts/{id}", s.getAccount)
		r.Get("/accounts/{id}/ledger", s.accountLedger)

		r.Get("/settings", s.listSettings)
		r.Get("/settings/accounts", s.getAccountMap)
		r.Put("/settings/accounts/{role}", s.setAccountRole)

		r.Get("/users", s.listUsers)
		r.Post("/users", s.createUser)
		r.Get("/users/{id}", s.getUser)
		r.Put("/users/{id}", s.updateUser)

		// Master data
		r.Get("/customers", s.listCustomers)
		r.Post("/customers", s.createCustomer)
		r.Get("/customers/{id}", s.getCustomer)
		r.Put("/customers/{id}", s.updateCustomer)

		r.Get("/suppliers", s.listSuppliers)
		r.Post("/suppliers", s.createSupplier)
		r.Get("/suppliers/{id}", s.getSupplier)
		r.Put("/suppliers/{id}", s.updateSupplier)

		r.Get("/products", s.listProducts)
		r.Post("/products", s.createProduct)
		r.Get("/products/{id}", s.getProduct)
		r.Put("/products/{id}", s.updateProduct)

		// Business transactions
		r.Get("/sales", s.listSales)
		r.Post("/sales", s.recordSale)
		r.Get("/sales/{id}", s.getSale)

		r.Get("/purchases", s.listPurchases)
		r.Post("/purchases", s.recordPurchase)
		r.Get("/purchases/{id}", s.getPurchase)

		r.Get("/expenses", s.listExpenses)
		r.Post("/expenses", s.recordExpense)
		r.Get("/expenses/{id}", s.getExpense)
		r.Patch("/expenses/{id}", s.updateExpense)

		r.Get("/invoices/next", s.nextInvoice)

		r.Get("/journal", s.listEntries)
		r.Post("/journal", s.postEntry)
		r.Get("/journal/{id}", s.getEntry)
		r.Post("/journal/{id}/approve", s.approveEntry)

		// Lifecycle and audit
		r.Get("/approvals", s.listRequests)
		r.Post("/approvals", s.requestDelete)
		r.Post("/approvals/{id}/approve", s.approveRequest)
		r.Post("/approvals/{id}/reject", s.rejectRequest)

		r.Get("/history/{type}", s.history)
		r.Get("/history/{type}/{id}", s.history)
		r.Get("/activity", s.activity)

		// Reports
		r.Get("/reports/trial-balance", s.trialBalance)
		r.Get("/reports/profit-and-loss", s.profitAndLoss)
		r.Get("/reports/balance-sheet", s.balanceSheet)
		r.Get("/reports/summary", s.summary)
		r.Get("/reports/export.xlsx", s.exportXLSX)
		r.Get("/reports/integrity", s.integrity)

		r.Get("/backup", s.exportBackup)
		r.Post("/backup/restore", s.restoreBackup)
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve runs the API on ln until ctx is cancelled, then drains in-flight
// requests for at most the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("minibooks server listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		ev := s.log.Info()
		if ww.Status() >= http.StatusInternalServerError {
			ev = s.log.Error()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("user", r.Header.Get(ActorHeader)).
			Msg("request")
	})
}
