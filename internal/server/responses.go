package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/simonvc/minibooks/internal/ledger"
)

// ErrorResponse is the body of every non-2xx reply. Kind is one of
// validation, not_found, conflict, forbidden, persistence, data_integrity.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

var kindNames = map[error]string{
	ledger.ErrValidation:    "validation",
	ledger.ErrNotFound:      "not_found",
	ledger.ErrConflict:      "conflict",
	ledger.ErrForbidden:     "forbidden",
	ledger.ErrPersistence:   "persistence",
	ledger.ErrDataIntegrity: "data_integrity",
}

// KindByName maps a wire kind back to its ledger sentinel.
func KindByName(name string) error {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(kind error) int {
	switch kind {
	case ledger.ErrValidation:
		return http.StatusBadRequest
	case ledger.ErrNotFound:
		return http.StatusNotFound
	case ledger.ErrConflict:
		return http.StatusConflict
	case ledger.ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status of its kind. Server-side failures are
// logged and replaced by a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := ledger.Kind(err)
	status := statusFor(kind)
	resp := ErrorResponse{Error: err.Error(), Kind: kindNames[kind]}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		resp.Error = "internal error"
		if kind == nil {
			resp.Kind = kindNames[ledger.ErrPersistence]
		}
	}
	writeJSON(w, status, resp)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Kind: kindNames[ledger.ErrValidation]})
}

// decode reads a JSON body into dst and runs its validate tags. It writes the
// 400 reply itself and reports whether the handler may continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			badRequest(w, err.Error())
			return false
		}
		fields := make(map[string]string, len(verrs))
		names := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
			names = append(names, fe.Field())
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "invalid request: " + strings.Join(names, ", "),
			Kind:   kindNames[ledger.ErrValidation],
			Fields: fields,
		})
		return false
	}
	return true
}

func actor(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(ActorHeader))
}

func pathParam(r *http.Request, name string) string {
	v, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		return chi.URLParam(r, name)
	}
	return v
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := ledger.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
