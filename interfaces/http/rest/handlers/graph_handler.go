package handlers

import (
	"encoding/json"
	"net/http"

	"capsulehub/application/queries"
	querybus "capsulehub/application/queries/bus"
	pkgerrors "capsulehub/pkg/errors"

	"go.uber.org/zap"
)

// GraphHandler handles corpus-wide graph HTTP requests
type GraphHandler struct {
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Overview handles GET /provenance/graph/overview
func (h *GraphHandler) Overview(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GraphOverviewQuery{})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// FullGraph handles GET /provenance/graph
func (h *GraphHandler) FullGraph(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.FullGraphQuery{})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

func (h *GraphHandler) respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
