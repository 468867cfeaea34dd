package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/catalogmind/attribute-engine/pkg/llm"
	"github.com/catalogmind/attribute-engine/pkg/logging"
	"github.com/catalogmind/attribute-engine/pkg/models"
	"github.com/catalogmind/attribute-engine/pkg/services"
)

// StatusClientClosedRequest mirrors nginx's non-standard code for requests
// abandoned by the client.
const StatusClientClosedRequest = 499

// ============================================================================
// Request/Response Types
// ============================================================================

// SubcategoryRequest identifies one subcategory to generate attributes for.
type SubcategoryRequest struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CategoryGroupRequest is one named group of subcategories.
type CategoryGroupRequest struct {
	Name          string               `json:"name"`
	Subcategories []SubcategoryRequest `json:"subcategories"`
}

// GenerateAttributesRequest for POST /api/attributes/generate.
type GenerateAttributesRequest struct {
	Groups []CategoryGroupRequest `json:"groups"`
}

// AttributeSetResponse carries the generated attributes for one subcategory.
type AttributeSetResponse struct {
	CategoryID int      `json:"category_id"`
	Attributes []string `json:"attributes"`
}

// GenerateAttributesResponse for the generate endpoint.
type GenerateAttributesResponse struct {
	Results []AttributeSetResponse `json:"results"`
	Total   int                    `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// AttributesHandler handles attribute generation HTTP requests.
type AttributesHandler struct {
	generationService services.AttributeGenerationService
	logger            *zap.Logger
}

// NewAttributesHandler creates a new attributes handler.
func NewAttributesHandler(generationService services.AttributeGenerationService, logger *zap.Logger) *AttributesHandler {
	return &AttributesHandler{
		generationService: generationService,
		logger:            logger,
	}
}

// RegisterRoutes registers the attributes handler's routes on the given mux.
func (h *AttributesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/attributes/generate", h.Generate)
}

// Generate handles POST /api/attributes/generate
func (h *AttributesHandler) Generate(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := h.logger.With(zap.String("request_id", requestID))

	var req GenerateAttributesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	groups := make([]models.CategoryGroup, len(req.Groups))
	for i, g := range req.Groups {
		subcategories := make([]models.Subcategory, len(g.Subcategories))
		for j, sc := range g.Subcategories {
			subcategories[j] = models.Subcategory{ID: sc.ID, Name: sc.Name}
		}
		groups[i] = models.CategoryGroup{Name: g.Name, Subcategories: subcategories}
	}

	results, err := h.generationService.Generate(r.Context(), groups)
	if err != nil {
		h.writeGenerationError(w, logger, err)
		return
	}

	data := GenerateAttributesResponse{
		Results: make([]AttributeSetResponse, len(results)),
		Total:   len(results),
	}
	for i, set := range results {
		data.Results[i] = AttributeSetResponse{CategoryID: set.CategoryID, Attributes: set.Attributes}
	}

	response := ApiResponse{Success: true, Data: data}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeGenerationError maps a batch failure to an HTTP status. Error messages
// are sanitized so credential material never reaches the client or the logs.
func (h *AttributesHandler) writeGenerationError(w http.ResponseWriter, logger *zap.Logger, err error) {
	message := logging.SanitizeError(err)

	if llm.IsCancelled(err) {
		logger.Info("Attribute generation cancelled by client")
		w.WriteHeader(StatusClientClosedRequest)
		return
	}

	status := http.StatusInternalServerError
	errorCode := "generation_failed"

	var malformedErr *services.MalformedResponseError
	var countErr *services.CountMismatchError
	var invalidErr *services.InvalidAttributeError

	switch {
	case llm.GetErrorType(err) == llm.ErrorTypeConfig:
		errorCode = "configuration_error"
	case errors.As(err, &malformedErr), errors.As(err, &countErr), errors.As(err, &invalidErr):
		status = http.StatusBadGateway
		errorCode = "invalid_model_response"
	case llm.GetErrorType(err) == llm.ErrorTypeUpstream,
		llm.GetErrorType(err) == llm.ErrorTypeEmptyResponse:
		status = http.StatusBadGateway
		errorCode = "upstream_error"
	}

	logger.Error("Attribute generation failed",
		zap.String("error_code", errorCode),
		zap.String("error", message))
	if err := ErrorResponse(w, status, errorCode, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
