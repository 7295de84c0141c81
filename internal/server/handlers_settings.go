package server

import (
	"net/http"

	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/books"
)

type userRequest struct {
	ID     string `json:"id" validate:"omitempty,max=64"`
	Name   string `json:"name" validate:"required,max=120"`
	Email  string `json:"email" validate:"omitempty,email"`
	Role   string `json:"role" validate:"required"`
	Active *bool  `json:"active"`
}

func (req userRequest) input() books.UserInput {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return books.UserInput{
		ID:     req.ID,
		Name:   req.Name,
		Email:  req.Email,
		Role:   auth.Role(req.Role),
		Active: active,
	}
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.svc.CreateUser(r.Context(), actor(r), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.svc.UpdateUser(r.Context(), actor(r), pathParam(r, "id"), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.GetUser(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.ListUsers(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}
