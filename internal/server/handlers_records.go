package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/simonvc/minibooks/internal/books"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=40"`
	Address string `json:"address" validate:"max=500"`
	Version int64  `json:"version" validate:"gte=0"`
}

func (req contactRequest) input() books.ContactInput {
	return books.ContactInput{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := s.svc.CreateCustomer(r.Context(), actor(r), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := s.svc.UpdateCustomer(r.Context(), actor(r), pathParam(r, "id"), req.Version, req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.GetCustomer(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListCustomers(r.Context(), queryBool(r, "deleted"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !s.decode(w, r, &req) {
		return
	}
	sp, err := s.svc.CreateSupplier(r.Context(), actor(r), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

func (s *Server) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !s.decode(w, r, &req) {
		return
	}
	sp, err := s.svc.UpdateSupplier(r.Context(), actor(r), pathParam(r, "id"), req.Version, req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *Server) getSupplier(w http.ResponseWriter, r *http.Request) {
	sp, err := s.svc.GetSupplier(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *Server) listSuppliers(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListSuppliers(r.Context(), queryBool(r, "deleted"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

type productRequest struct {
	Name          string          `json:"name" validate:"required,max=200"`
	SKU           string          `json:"sku" validate:"max=64"`
	Category      string          `json:"category" validate:"max=100"`
	Unit          string          `json:"unit" validate:"max=20"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Version       int64           `json:"version" validate:"gte=0"`
}

func (req productRequest) input() books.ProductInput {
	return books.ProductInput{
		Name:          req.Name,
		SKU:           req.SKU,
		Category:      req.Category,
		Unit:          req.Unit,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
	}
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.svc.CreateProduct(r.Context(), actor(r), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.svc.UpdateProduct(r.Context(), actor(r), pathParam(r, "id"), req.Version, req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetProduct(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListProducts(r.Context(), queryBool(r, "deleted"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}
