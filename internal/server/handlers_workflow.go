package server

import (
	"net/http"
	"strconv"

	"github.com/simonvc/minibooks/internal/ledger"
)

type deleteRequest struct {
	RecordType string `json:"record_type" validate:"required"`
	RecordID   string `json:"record_id" validate:"required"`
}

func (s *Server) requestDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !s.decode(w, r, &req) {
		return
	}
	rt, err := ledger.ParseRecordType(req.RecordType)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ar, err := s.svc.RequestDelete(r.Context(), actor(r), rt, req.RecordID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ar)
}

func (s *Server) approveRequest(w http.ResponseWriter, r *http.Request) {
	ar, err := s.svc.ApproveRequest(r.Context(), actor(r), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ar)
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	ar, err := s.svc.RejectRequest(r.Context(), actor(r), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ar)
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	status := ledger.RequestStatus(r.URL.Query().Get("status"))
	switch status {
	case "", ledger.RequestPending, ledger.RequestApproved, ledger.RequestRejected:
	default:
		badRequest(w, "status must be pending, approved or rejected")
		return
	}
	list, err := s.svc.ListRequests(r.Context(), status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	rt, err := ledger.ParseRecordType(pathParam(r, "type"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	edits, err := s.svc.History(r.Context(), rt, pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(edits))
}

func (s *Server) activity(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}
	list, err := s.svc.Activity(r.Context(), actor(r), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}
