package server

import (
	"net/http"

	"github.com/simonvc/minibooks/internal/ledger"
)

type createAccountRequest struct {
	ID   string `json:"id" validate:"required,max=16"`
	Name string `json:"name" validate:"required,max=120"`
	Type string `json:"type" validate:"required"`
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !s.decode(w, r, &req) {
		return
	}
	typ, err := ledger.ParseAccountType(req.Type)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	acct, err := s.svc.CreateAccount(r.Context(), actor(r), ledger.Account{ID: req.ID, Name: req.Name, Type: typ})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.ListAccounts(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if t := r.URL.Query().Get("type"); t != "" {
		typ, err := ledger.ParseAccountType(t)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		filtered := accounts[:0]
		for _, a := range accounts {
			if a.Type == typ {
				filtered = append(filtered, a)
			}
		}
		accounts = filtered
	}
	writeJSON(w, http.StatusOK, nonNil(accounts))
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.svc.GetAccount(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) listSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.Settings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) getAccountMap(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.AccountMap(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type setAccountRoleRequest struct {
	AccountID string `json:"account_id" validate:"required"`
}

func (s *Server) setAccountRole(w http.ResponseWriter, r *http.Request) {
	var req setAccountRoleRequest
	if !s.decode(w, r, &req) {
		return
	}
	role := ledger.AccountRole(pathParam(r, "role"))
	if err := s.svc.SetAccountRole(r.Context(), actor(r), role, req.AccountID); err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := s.svc.AccountMap(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
