package handler

import (
	"encoding/json"
	"net/http"

	"warehub-core-api/internal/service"
	"warehub-core-api/pkg/apierror"
	"warehub-core-api/pkg/response"
)

// EventHandler handles event queue HTTP requests.
type EventHandler struct {
	warehouse  *service.WarehouseService
	dispatcher *service.Dispatcher
}

// NewEventHandler creates a new event handler.
func NewEventHandler(warehouse *service.WarehouseService, dispatcher *service.Dispatcher) *EventHandler {
	return &EventHandler{warehouse: warehouse, dispatcher: dispatcher}
}

type enqueueRequest struct {
	Type    string          `json:"event_type"`
	Payload json.RawMessage `json:"payload"`
}

// Enqueue handles POST /api/v1/events
func (h *EventHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	id, err := h.warehouse.EnqueueEvent(r.Context(), req.Type, req.Payload)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}

	response.Created(w, map[string]interface{}{"id": id, "status": "PENDING"})
}

// List handles GET /api/v1/events and GET /api/v1/events?status=pending
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("status") == "pending" {
		events, err := h.warehouse.PendingEvents(r.Context())
		if err != nil {
			response.Error(w, mapError(err))
			return
		}
		response.OK(w, events)
		return
	}

	events, err := h.warehouse.Events(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, events)
}

// Drain handles POST /api/v1/events/drain - immediate drain outside the
// dispatcher interval.
func (h *EventHandler) Drain(w http.ResponseWriter, r *http.Request) {
	attempted, err := h.dispatcher.Drain(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}

	response.OK(w, map[string]interface{}{"attempted": attempted})
}
