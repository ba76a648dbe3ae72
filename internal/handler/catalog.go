package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"warehub-core-api/internal/service"
	"warehub-core-api/pkg/apierror"
	"warehub-core-api/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CatalogHandler handles product catalog HTTP requests.
type CatalogHandler struct {
	warehouse *service.WarehouseService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(warehouse *service.WarehouseService) *CatalogHandler {
	return &CatalogHandler{warehouse: warehouse}
}

type registerProductRequest struct {
	Name      string          `json:"name"`
	Weight    decimal.Decimal `json:"weight"`
	MaxPerBox int             `json:"max_per_box"`
}

// RegisterProduct handles POST /api/v1/products
func (h *CatalogHandler) RegisterProduct(w http.ResponseWriter, r *http.Request) {
	var req registerProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	product, err := h.warehouse.RegisterProduct(r.Context(), req.Name, req.Weight, req.MaxPerBox)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}

	response.Created(w, product)
}

// SearchProducts handles GET /api/v1/products?q=
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	products, err := h.warehouse.SearchProducts(r.Context(), query)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}

	response.OK(w, products)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid product id"))
		return
	}

	product, err := h.warehouse.GetProduct(r.Context(), id)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}

	response.OK(w, product)
}
