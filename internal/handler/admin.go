package handler

import (
	"encoding/json"
	"net/http"

	"warehub-core-api/internal/repository"
	"warehub-core-api/internal/service"
	"warehub-core-api/pkg/apierror"
	"warehub-core-api/pkg/response"
)

// AdminHandler handles administrative HTTP requests: stats, product
// seeding and slot grid management.
type AdminHandler struct {
	warehouse *service.WarehouseService
	slots     repository.SlotRepository
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(warehouse *service.WarehouseService, slots repository.SlotRepository) *AdminHandler {
	return &AdminHandler{warehouse: warehouse, slots: slots}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.warehouse.Stats(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, stats)
}

// SeedProducts handles POST /api/v1/admin/seed
func (h *AdminHandler) SeedProducts(w http.ResponseWriter, r *http.Request) {
	seeded, err := h.warehouse.SeedSampleProducts(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, map[string]interface{}{"seeded": seeded})
}

type generateSlotsRequest struct {
	Aisles         int `json:"aisles"`
	Columns        int `json:"columns"`
	SlotsPerColumn int `json:"slots_per_column"`
}

// GenerateSlots handles POST /api/v1/admin/slots/generate
func (h *AdminHandler) GenerateSlots(w http.ResponseWriter, r *http.Request) {
	req := generateSlotsRequest{Aisles: 5, Columns: 10, SlotsPerColumn: 20}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, apierror.BadRequest("invalid JSON"))
			return
		}
		defer r.Body.Close()
	}
	if req.Aisles <= 0 || req.Aisles > 26 || req.Columns <= 0 || req.SlotsPerColumn <= 0 {
		response.Error(w, apierror.BadRequest("invalid slot grid dimensions"))
		return
	}

	created, err := h.slots.Generate(r.Context(), req.Aisles, req.Columns, req.SlotsPerColumn)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, map[string]interface{}{"created": created})
}

// FreeSlot handles GET /api/v1/slots/free
func (h *AdminHandler) FreeSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := h.slots.FreeSlot(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	if slot == nil {
		response.Error(w, apierror.NotFound("no free slot available"))
		return
	}
	response.OK(w, slot)
}
