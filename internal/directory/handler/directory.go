package handler

import (
	"encoding/json"
	"net/http"

	"sudsy/internal/directory/service"
	httputil "sudsy/pkg/http"
	"sudsy/pkg/logger"
	"sudsy/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DirectoryHandler struct {
	service service.DirectoryService
	log     *logger.Logger
}

func NewDirectoryHandler(service service.DirectoryService, log *logger.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		service: service,
		log:     log,
	}
}

func (h *DirectoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/providers", h.CreateProvider)
	router.GET("/api/v1/providers/:id", h.GetProvider)
	router.PATCH("/api/v1/providers/:id/status", h.UpdateProviderStatus)
	router.POST("/api/v1/properties", h.CreateProperty)
	router.GET("/api/v1/properties/:id", h.GetProperty)
	router.GET("/api/v1/owners/:id/properties", h.ListOwnerProperties)
}

func (h *DirectoryHandler) CreateProvider(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var provider model.Provider
	if err := json.NewDecoder(r.Body).Decode(&provider); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateProvider", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.RegisterProvider(r.Context(), &provider); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateProvider", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, provider); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateProvider", "operation", "WriteCreated", "error", err)
	}
}

func (h *DirectoryHandler) GetProvider(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	provider, err := h.service.GetProvider(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetProvider", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, provider); err != nil {
		h.log.Error("failed to write success response", "handler", "GetProvider", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DirectoryHandler) UpdateProviderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateProviderStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.SetProviderStatus(r.Context(), ps.ByName("id"), body.Status); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateProviderStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *DirectoryHandler) CreateProperty(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var property model.Property
	if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateProperty", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.RegisterProperty(r.Context(), &property); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateProperty", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, property); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateProperty", "operation", "WriteCreated", "error", err)
	}
}

func (h *DirectoryHandler) GetProperty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	property, err := h.service.GetProperty(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetProperty", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, property); err != nil {
		h.log.Error("failed to write success response", "handler", "GetProperty", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DirectoryHandler) ListOwnerProperties(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	properties, err := h.service.ListPropertiesByOwner(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListOwnerProperties", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, properties); err != nil {
		h.log.Error("failed to write success response", "handler", "ListOwnerProperties", "operation", "WriteSuccess", "error", err)
	}
}
