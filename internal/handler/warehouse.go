package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"warehub-core-api/internal/service"
	"warehub-core-api/pkg/apierror"
	"warehub-core-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// WarehouseHandler handles box, pallet and transfer HTTP requests.
type WarehouseHandler struct {
	warehouse *service.WarehouseService
	engine    *service.AllocationEngine
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(warehouse *service.WarehouseService, engine *service.AllocationEngine) *WarehouseHandler {
	return &WarehouseHandler{warehouse: warehouse, engine: engine}
}

// GetStockStatus handles GET /api/v1/stock
func (h *WarehouseHandler) GetStockStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.warehouse.GetStockStatus(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, status)
}

// ListBoxes handles GET /api/v1/boxes
func (h *WarehouseHandler) ListBoxes(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.warehouse.ListBoxes(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, boxes)
}

type createBoxRequest struct {
	ProductID       *int64 `json:"product_id,omitempty"`
	InitialQuantity int    `json:"initial_quantity"`
}

// CreateBox handles POST /api/v1/boxes
func (h *WarehouseHandler) CreateBox(w http.ResponseWriter, r *http.Request) {
	var req createBoxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	barcode, err := h.warehouse.CreateBox(r.Context(), req.ProductID, req.InitialQuantity)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}

	response.Created(w, map[string]interface{}{"barcode": barcode})
}

// DeleteBox handles DELETE /api/v1/boxes/{id}
func (h *WarehouseHandler) DeleteBox(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid box id"))
		return
	}

	deleted, err := h.warehouse.DeleteBox(r.Context(), id)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	if !deleted {
		// Not an error: the box still holds units or a product binding.
		response.OK(w, map[string]interface{}{"deleted": false})
		return
	}

	response.OK(w, map[string]interface{}{"deleted": true})
}

// ListPallets handles GET /api/v1/pallets
func (h *WarehouseHandler) ListPallets(w http.ResponseWriter, r *http.Request) {
	pallets, err := h.warehouse.ListPallets(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, pallets)
}

type receivePalletRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Label     string `json:"label,omitempty"`
}

// ReceivePallet handles POST /api/v1/pallets
func (h *WarehouseHandler) ReceivePallet(w http.ResponseWriter, r *http.Request) {
	var req receivePalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	id, err := h.warehouse.ReceivePallet(r.Context(), req.ProductID, req.Quantity, req.Label)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}

	response.Created(w, map[string]interface{}{"id": id})
}

type transferRequest struct {
	PalletID int64   `json:"pallet_id"`
	BoxID    int64   `json:"box_id"`
	Quantity int     `json:"quantity"`
	SlotID   *string `json:"slot_id,omitempty"`
}

// Transfer handles POST /api/v1/transfers
func (h *WarehouseHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	err := h.engine.TransferPalletToBox(r.Context(), req.PalletID, req.BoxID, req.Quantity, req.SlotID)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}

	h.warehouse.InvalidateStockStatus(r.Context())
	response.OK(w, map[string]interface{}{"transferred": req.Quantity})
}
