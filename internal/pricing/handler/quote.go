package handler

import (
	"encoding/json"
	"net/http"

	"sudsy/internal/pricing/service"
	httputil "sudsy/pkg/http"
	"sudsy/pkg/logger"
	"sudsy/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type QuoteHandler struct {
	service service.PricingService
	log     *logger.Logger
}

func NewQuoteHandler(service service.PricingService, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		service: service,
		log:     log,
	}
}

func (h *QuoteHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/quotes", h.Quote)
	router.POST("/api/v1/promos", h.CreatePromo)
	router.GET("/api/v1/promos/:code", h.GetPromo)
}

func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Quote", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	breakdown, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Quote", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, breakdown); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *QuoteHandler) CreatePromo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var promo model.PromoCode
	if err := json.NewDecoder(r.Body).Decode(&promo); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreatePromo", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreatePromo(r.Context(), &promo); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreatePromo", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, promo); err != nil {
		h.log.Error("failed to write created response", "handler", "CreatePromo", "operation", "WriteCreated", "error", err)
	}
}

func (h *QuoteHandler) GetPromo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	promo, err := h.service.GetPromo(r.Context(), ps.ByName("code"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetPromo", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, promo); err != nil {
		h.log.Error("failed to write success response", "handler", "GetPromo", "operation", "WriteSuccess", "error", err)
	}
}
