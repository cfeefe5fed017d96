package handler

import (
	"encoding/json"
	"net/http"

	"sudsy/internal/offers/service"
	httputil "sudsy/pkg/http"
	"sudsy/pkg/logger"
	"sudsy/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type OfferHandler struct {
	service service.OfferService
	log     *logger.Logger
}

func NewOfferHandler(service service.OfferService, log *logger.Logger) *OfferHandler {
	return &OfferHandler{
		service: service,
		log:     log,
	}
}

func (h *OfferHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/:id/broadcast", h.Broadcast)
	router.GET("/api/v1/providers/:id/offers", h.ListForProvider)
	router.POST("/api/v1/bookings/:id/accept", h.Accept)
	router.POST("/api/v1/bookings/:id/decline", h.Decline)
}

func (h *OfferHandler) Broadcast(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	result, err := h.service.Broadcast(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Broadcast", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Broadcast", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OfferHandler) ListForProvider(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	offers, err := h.service.ListForProvider(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForProvider", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, offers); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForProvider", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OfferHandler) Accept(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		ProviderID string `json:"provider_id"`
		Date       string `json:"date"`
		Shift      string `json:"shift"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Accept", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Accept(r.Context(), ps.ByName("id"), body.ProviderID,
		model.CandidateSlot{Date: body.Date, Shift: body.Shift})
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Accept", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Accept", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OfferHandler) Decline(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		ProviderID string `json:"provider_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Decline", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Decline(r.Context(), ps.ByName("id"), body.ProviderID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Decline", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}
