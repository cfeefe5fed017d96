package handler

import (
	"encoding/json"
	"net/http"

	"sudsy/internal/availability/service"
	httputil "sudsy/pkg/http"
	"sudsy/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/providers/:id/availability", h.GetCalendar)
	router.PUT("/api/v1/providers/:id/availability/:date/:shift", h.SetStatus)
	router.POST("/api/v1/providers/:id/availability/block", h.BlockRange)
}

func (h *AvailabilityHandler) GetCalendar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	slots, err := h.service.GetCalendar(r.Context(), ps.ByName("id"), query.Get("from"), query.Get("to"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetCalendar", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCalendar", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	err := h.service.SetStatus(r.Context(), ps.ByName("id"), ps.ByName("date"), ps.ByName("shift"), body.Status)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) BlockRange(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		From   string   `json:"from"`
		To     string   `json:"to"`
		Shifts []string `json:"shifts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "BlockRange", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.BlockRange(r.Context(), ps.ByName("id"), body.From, body.To, body.Shifts)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "BlockRange", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "BlockRange", "operation", "WriteSuccess", "error", err)
	}
}
